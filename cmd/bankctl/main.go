// Command bankctl follows a running bankd or statecollectord's log.txt
// live, the way `tail -f` would, reopening the file across log rotation.
package main

import (
	"fmt"
	"os"

	"github.com/hpcloud/tail"
	"github.com/jessevdk/go-flags"
)

type options struct {
	ConfigDir string `long:"config-dir" description:"directory containing log.txt" default:"."`

	Positional struct {
		LogFile string `positional-arg-name:"log-file" description:"log file to follow" default:"log.txt"`
	} `positional-args:"yes"`
}

func main() {
	var opts options
	if _, err := flags.Parse(&opts); err != nil {
		os.Exit(1)
	}

	path := opts.Positional.LogFile
	if path == "" {
		path = "log.txt"
	}
	if opts.ConfigDir != "." && opts.ConfigDir != "" {
		path = opts.ConfigDir + string(os.PathSeparator) + path
	}

	t, err := tail.TailFile(path, tail.Config{
		Follow:    true,
		ReOpen:    true,
		MustExist: false,
		Location:  &tail.SeekInfo{Whence: os.SEEK_END},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "bankctl: %v\n", err)
		os.Exit(1)
	}

	for line := range t.Lines {
		if line.Err != nil {
			fmt.Fprintf(os.Stderr, "bankctl: %v\n", line.Err)
			continue
		}
		fmt.Println(line.Text)
	}
}
