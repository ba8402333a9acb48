package bankcfg

import (
	"github.com/jessevdk/go-flags"
)

// Options is bankd's command-line surface. The bank id is the one
// required positional argument; everything else is optional and
// defaults to a sensible cwd-relative value.
type Options struct {
	ConfigDir string `long:"config-dir" description:"directory containing bank-addrs.csv and state-collector.csv" default:"."`
	LogLevel  string `long:"log-level" description:"minimum level for log.txt" default:"info"`
	DBPath    string `long:"db-path" description:"path to the bbolt balance store file (default: <config-dir>/bank.db)"`
	Console   bool   `long:"console" description:"also log to stdout"`

	Positional struct {
		BankID string `positional-arg-name:"bank-id" required:"yes"`
	} `positional-args:"yes"`
}

// ParseArgs parses args (typically os.Args[1:]) into an Options value.
// A missing bank id is returned as an error after go-flags has printed
// its own usage/error output; the caller exits non-zero.
func ParseArgs(args []string) (*Options, error) {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.ParseArgs(args); err != nil {
		return nil, err
	}

	if opts.DBPath == "" {
		opts.DBPath = joinDir(opts.ConfigDir, "bank.db")
	}

	return &opts, nil
}

// CollectorOptions is statecollectord's command-line surface.
type CollectorOptions struct {
	ConfigDir string `long:"config-dir" description:"directory containing collector.txt" default:"."`
	LogLevel  string `long:"log-level" description:"minimum level for log.txt" default:"info"`
	Console   bool   `long:"console" description:"also log to stdout"`
}

// ParseCollectorArgs parses args into a CollectorOptions value.
func ParseCollectorArgs(args []string) (*CollectorOptions, error) {
	var opts CollectorOptions
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.ParseArgs(args); err != nil {
		return nil, err
	}
	return &opts, nil
}
