package wire

import "encoding/json"

// Report is the record a bank sends to the state collector once a
// snapshot completes: its own recorded balance and every message that
// was in flight on each of its channels at the moment of the cut.
type Report struct {
	BankID          string               `json:"bank_id"`
	MarkerID        string               `json:"marker_id"`
	Status          int                  `json:"status"`
	ChannelMessages map[string][]Message `json:"channel_messages"`
}

// Greeting is the one-way "bank X connected" record sent to the
// collector when the collector link is first established. It reuses the
// CONNECT tag so a collector implemented purely in terms of Message can
// still recognize it, but carries the bank id where Message has none.
type Greeting struct {
	Type   MsgType `json:"type"`
	BankID string  `json:"bank_id"`
}

// NewGreeting builds the greeting record for bankID.
func NewGreeting(bankID string) Greeting {
	return Greeting{Type: MsgConnect, BankID: bankID}
}

// EncodeReport serializes r as a single JSON frame.
func EncodeReport(r Report) ([]byte, error) {
	return json.Marshal(r)
}

// DecodeReport parses a single JSON frame into a Report.
func DecodeReport(b []byte) (Report, error) {
	var r Report
	if err := json.Unmarshal(b, &r); err != nil {
		return Report{}, err
	}
	return r, nil
}

// EncodeGreeting serializes g as a single JSON frame.
func EncodeGreeting(g Greeting) ([]byte, error) {
	return json.Marshal(g)
}
