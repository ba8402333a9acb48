// Package collectorsink decodes the frames a bank's collector link sends
// over its raw (non-wire.Message) channel: a one-time Greeting when the
// link comes up, followed by zero or more snapshot Reports. A report
// frame is told apart from a greeting by the presence of the
// "channel_messages" key, since both are plain JSON objects on the same
// socket.
package collectorsink

import (
	"encoding/json"
	"fmt"

	"github.com/cajova-houba/bankd/wire"
)

// Frame is one decoded collector-link frame: exactly one of Report or
// Greeting is non-nil.
type Frame struct {
	Greeting *wire.Greeting
	Report   *wire.Report
}

// DecodeFrame sniffs b's JSON shape and decodes it as a Report or a
// Greeting.
func DecodeFrame(b []byte) (Frame, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(b, &probe); err != nil {
		return Frame{}, fmt.Errorf("collectorsink: decode frame: %w", err)
	}

	if _, isReport := probe["channel_messages"]; isReport {
		r, err := wire.DecodeReport(b)
		if err != nil {
			return Frame{}, err
		}
		return Frame{Report: &r}, nil
	}

	var g wire.Greeting
	if err := json.Unmarshal(b, &g); err != nil {
		return Frame{}, fmt.Errorf("collectorsink: decode greeting: %w", err)
	}
	return Frame{Greeting: &g}, nil
}
