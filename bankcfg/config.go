// Package bankcfg loads a bank node's topology and collector address
// from the node's CSV configuration files, and parses
// the process's command-line flags.
package bankcfg

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	// BankAddrsFile lists, per bank id, its listen ports and its
	// dial-out peer addresses.
	BankAddrsFile = "bank-addrs.csv"

	// StateCollectorFile maps each bank id to its collector endpoint.
	StateCollectorFile = "state-collector.csv"

	// CollectorPortsFile lists the ports the state collector process
	// listens on, one per line.
	CollectorPortsFile = "collector.txt"
)

// Topology is one bank's slice of bank-addrs.csv: the ports it should
// listen on, and the "host:port" addresses of the peers it should dial
// out to.
type Topology struct {
	ListenPorts []string
	DialPeers   []string
}

// Config is everything a bank node needs to start, as loaded from the
// two CSV files in dir.
type Config struct {
	BankID          string
	Topology        Topology
	CollectorAddr   string
}

// Load reads bank-addrs.csv and state-collector.csv from dir and
// returns the configuration slice for bankID. A
// missing configuration file is fatal; a bank id absent from
// bank-addrs.csv is not an error, it simply has no listen ports or
// peers.
func Load(dir, bankID string) (*Config, error) {
	topologies, err := loadBankAddrs(joinDir(dir, BankAddrsFile))
	if err != nil {
		return nil, err
	}

	collectors, err := loadStateCollector(joinDir(dir, StateCollectorFile))
	if err != nil {
		return nil, err
	}

	collectorAddr, ok := collectors[bankID]
	if !ok {
		return nil, fmt.Errorf("bankcfg: no collector address configured for bank %q", bankID)
	}

	topo := topologies[bankID] // zero value (no ports/peers) if absent

	log.Infof("loaded configuration for %s: %d listen port(s), %d dial peer(s), collector %s",
		bankID, len(topo.ListenPorts), len(topo.DialPeers), collectorAddr)

	return &Config{
		BankID:        bankID,
		Topology:      topo,
		CollectorAddr: collectorAddr,
	}, nil
}

// loadBankAddrs parses bank-addrs.csv. The first line
// matching a bank id gives its listen ports ("id,port,port,..."); the
// second gives its dial-out peers ("id,addr,addr,...").
func loadBankAddrs(path string) (map[string]Topology, error) {
	records, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	out := make(map[string]Topology)
	seen := make(map[string]int) // bank id -> number of lines seen so far

	for _, fields := range records {
		if len(fields) == 0 {
			continue
		}
		id := fields[0]
		rest := fields[1:]

		switch seen[id] {
		case 0:
			t := out[id]
			t.ListenPorts = rest
			out[id] = t
		default:
			t := out[id]
			t.DialPeers = rest
			out[id] = t
		}
		seen[id]++
	}

	return out, nil
}

// loadStateCollector parses state-collector.csv: "bank_id,host:port"
// per line.
func loadStateCollector(path string) (map[string]string, error) {
	records, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	out := make(map[string]string, len(records))
	for _, fields := range records {
		if len(fields) < 2 {
			continue
		}
		out[fields[0]] = fields[1]
	}
	return out, nil
}

// LoadCollectorPorts reads collector.txt from dir: one listen port per
// line, blank lines ignored.
func LoadCollectorPorts(dir string) ([]string, error) {
	path := joinDir(dir, CollectorPortsFile)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("bankcfg: required configuration file missing: %w", err)
	}
	defer f.Close()

	var ports []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		ports = append(ports, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("bankcfg: parse %s: %w", path, err)
	}
	return ports, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("bankcfg: required configuration file missing: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // lines have a variable number of fields

	var out [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("bankcfg: parse %s: %w", path, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func joinDir(dir, file string) string {
	if dir == "" || dir == "." {
		return file
	}
	return dir + string(os.PathSeparator) + file
}
