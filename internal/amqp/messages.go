package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

// SummarizeRequestMessage asks a worker to run the summary pipeline for
// one input worksheet and publish the result.
type SummarizeRequestMessage struct {
	Spreadsheet string    `json:"spreadsheet"`
	Worksheet   string    `json:"worksheet"`
	RequestedAt time.Time `json:"requested_at"`
}

func NewSummarizeRequestMessage(spreadsheet, worksheet string) *SummarizeRequestMessage {
	return &SummarizeRequestMessage{
		Spreadsheet: spreadsheet,
		Worksheet:   worksheet,
		RequestedAt: time.Now(),
	}
}

// Validate rejects messages that cannot be routed to a worksheet.
func (m *SummarizeRequestMessage) Validate() error {
	if m.Worksheet == "" {
		return errors.New("empty worksheet name")
	}
	return nil
}

// ToJSON converts the message to JSON bytes
func (m *SummarizeRequestMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// SummarizeRequestMessageFromJSON creates a message from JSON bytes
func SummarizeRequestMessageFromJSON(data []byte) (*SummarizeRequestMessage, error) {
	var msg SummarizeRequestMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
