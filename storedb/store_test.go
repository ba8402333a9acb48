package storedb

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	m := NewMemory(100)

	require.NoError(t, m.Credit(30))
	bal, err := m.Balance()
	require.NoError(t, err)
	require.Equal(t, 130, bal)

	err = m.Debit(200)
	require.ErrorIs(t, err, ErrInsufficientFunds)
	bal, err = m.Balance()
	require.NoError(t, err)
	require.Equal(t, 130, bal)
}

func TestBoltStore(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "bank.db")

	b, err := OpenBolt(dbPath, 100)
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, b.Credit(30))
	bal, err := b.Balance()
	require.NoError(t, err)
	require.Equal(t, 130, bal)

	err = b.Debit(200)
	require.ErrorIs(t, err, ErrInsufficientFunds)
	bal, err = b.Balance()
	require.NoError(t, err)
	require.Equal(t, 130, bal)
}

func TestBoltStoreResumesBalanceAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "bank.db")

	b, err := OpenBolt(dbPath, 100)
	require.NoError(t, err)
	require.NoError(t, b.Credit(50))
	require.NoError(t, b.Close())

	b2, err := OpenBolt(dbPath, 100)
	require.NoError(t, err)
	defer b2.Close()

	bal, err := b2.Balance()
	require.NoError(t, err)
	require.Equal(t, 150, bal)
}
