// Package wire defines the tagged message record exchanged between bank
// nodes and reported to the state collector, along with its JSON codec.
package wire

import (
	"encoding/json"
	"fmt"
)

// MsgType is the tag on a Message record.
type MsgType string

const (
	// MsgCredit carries a positive amount to be added to the recipient's
	// balance. No reply is expected.
	MsgCredit MsgType = "CREDIT"

	// MsgDebit asks the recipient to pay Amount back as a CREDIT, or
	// reply REFUSED if its balance is insufficient.
	MsgDebit MsgType = "DEBIT"

	// MsgRefused signals that a DEBIT (or a bad handshake attempt)
	// could not be honored. Amount is unused.
	MsgRefused MsgType = "REFUSED"

	// MsgConnect is the first message a dial-out link sends on a fresh
	// socket. Amount is unused.
	MsgConnect MsgType = "CONNECT"

	// MsgOK is the listen-side reply to a successful CONNECT. Amount is
	// unused.
	MsgOK MsgType = "OK"

	// MsgMarker drives the Chandy-Lamport snapshot protocol. The marker
	// id travels in MarkerID; Amount is unused (see Message below).
	MsgMarker MsgType = "MARKER"
)

// unusedAmount is the conventional Amount value for message types that
// carry no numeric payload (REFUSED, CONNECT, OK).
const unusedAmount = -1

// Message is the wire record exchanged between peers and reported to the
// collector. Amount is the monetary amount for CREDIT/DEBIT; for MARKER
// it is unused and the marker id instead travels in MarkerID, since the
// id is a string (typically the initiating bank's id) rather than an
// integer.
type Message struct {
	Type     MsgType `json:"type"`
	Amount   int     `json:"amount"`
	MarkerID string  `json:"marker_id,omitempty"`
}

// Credit builds a CREDIT message for amount.
func Credit(amount int) Message { return Message{Type: MsgCredit, Amount: amount} }

// Debit builds a DEBIT message for amount.
func Debit(amount int) Message { return Message{Type: MsgDebit, Amount: amount} }

// Refused builds a REFUSED message.
func Refused() Message { return Message{Type: MsgRefused, Amount: unusedAmount} }

// Connect builds a CONNECT handshake message.
func Connect() Message { return Message{Type: MsgConnect, Amount: unusedAmount} }

// OK builds an OK handshake reply.
func OK() Message { return Message{Type: MsgOK, Amount: unusedAmount} }

// Marker builds a MARKER message carrying markerID.
func Marker(markerID string) Message {
	return Message{Type: MsgMarker, Amount: unusedAmount, MarkerID: markerID}
}

// IsCredit reports whether m is a CREDIT message.
func (m Message) IsCredit() bool { return m.Type == MsgCredit }

// IsDebit reports whether m is a DEBIT message.
func (m Message) IsDebit() bool { return m.Type == MsgDebit }

// IsConnect reports whether m is a CONNECT message.
func (m Message) IsConnect() bool { return m.Type == MsgConnect }

// IsOK reports whether m is an OK message.
func (m Message) IsOK() bool { return m.Type == MsgOK }

// IsMarker reports whether m is a MARKER message.
func (m Message) IsMarker() bool { return m.Type == MsgMarker }

// IsRefused reports whether m is a REFUSED message.
func (m Message) IsRefused() bool { return m.Type == MsgRefused }

// String implements fmt.Stringer for log lines.
func (m Message) String() string {
	if m.Type == MsgMarker {
		return fmt.Sprintf("{type:MARKER marker_id:%s}", m.MarkerID)
	}
	return fmt.Sprintf("{type:%s amount:%d}", m.Type, m.Amount)
}

// Encode serializes m as a single JSON frame.
func Encode(m Message) ([]byte, error) {
	return json.Marshal(m)
}

// Decode parses a single JSON frame into a Message.
func Decode(b []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(b, &m); err != nil {
		return Message{}, fmt.Errorf("wire: decode message: %w", err)
	}
	return m, nil
}
