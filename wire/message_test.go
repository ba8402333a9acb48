package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMessageRoundTrip(t *testing.T) {
	cases := []Message{
		Credit(30),
		Debit(200),
		Refused(),
		Connect(),
		OK(),
		Marker("bank-a"),
	}

	for _, want := range cases {
		b, err := Encode(want)
		require.NoError(t, err)

		got, err := Decode(b)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestDecodeWireShape(t *testing.T) {
	// Literal wire shape for a refused DEBIT request.
	got, err := Decode([]byte(`{"type":"DEBIT","amount":200}`))
	require.NoError(t, err)
	require.True(t, got.IsDebit())
	require.Equal(t, 200, got.Amount)

	got, err = Decode([]byte(`{"type":"REFUSED","amount":-1}`))
	require.NoError(t, err)
	require.True(t, got.IsRefused())
}

func TestMarkerCarriesID(t *testing.T) {
	m := Marker("A")
	require.True(t, m.IsMarker())
	require.Equal(t, "A", m.MarkerID)
}

func TestReportRoundTrip(t *testing.T) {
	want := Report{
		BankID:   "B",
		MarkerID: "A",
		Status:   100,
		ChannelMessages: map[string][]Message{
			"link-to-A": {Credit(10)},
		},
	}

	b, err := EncodeReport(want)
	require.NoError(t, err)

	got, err := DecodeReport(b)
	require.NoError(t, err)
	require.Equal(t, want, got)
}
