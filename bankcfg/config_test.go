package bankcfg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFixture(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestLoadTopologyAndCollector(t *testing.T) {
	dir := t.TempDir()

	// Ring of three banks.
	writeFixture(t, dir, BankAddrsFile,
		"A,5001\nA,localhost:5002\n"+
			"B,5002\nB,localhost:5003\n"+
			"C,5003\nC,localhost:5001\n")
	writeFixture(t, dir, StateCollectorFile,
		"A,localhost:6000\nB,localhost:6000\nC,localhost:6000\n")

	cfg, err := Load(dir, "B")
	require.NoError(t, err)
	require.Equal(t, "B", cfg.BankID)
	require.Equal(t, []string{"5002"}, cfg.Topology.ListenPorts)
	require.Equal(t, []string{"localhost:5003"}, cfg.Topology.DialPeers)
	require.Equal(t, "localhost:6000", cfg.CollectorAddr)
}

func TestLoadMissingBankHasEmptyTopology(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, BankAddrsFile, "A,5001\nA,\n")
	writeFixture(t, dir, StateCollectorFile, "A,localhost:6000\nZ,localhost:6001\n")

	cfg, err := Load(dir, "Z")
	require.NoError(t, err)
	require.Empty(t, cfg.Topology.ListenPorts)
	require.Empty(t, cfg.Topology.DialPeers)
}

func TestLoadMissingFileIsFatal(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(dir, "A")
	require.Error(t, err)
}

func TestLoadMissingCollectorEntryIsFatal(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, BankAddrsFile, "A,5001\nA,\n")
	writeFixture(t, dir, StateCollectorFile, "B,localhost:6000\n")

	_, err := Load(dir, "A")
	require.Error(t, err)
}
