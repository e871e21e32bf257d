package server

import (
	"encoding/json"
	"fmt"

	"github.com/muurk/tourguide/internal/tour"
)

// MessageType identifies a bridge message.
type MessageType string

const (
	TypeStepChanged MessageType = "step_changed"
	TypeFrame       MessageType = "frame"
	TypeCompleted   MessageType = "completed"
	TypeSkipped     MessageType = "skipped"
	TypeCleared     MessageType = "cleared"
	TypeIntent      MessageType = "intent"
)

// Message is the envelope for every frame sent over the bridge.
// Only the fields relevant to Type are set.
type Message struct {
	Type   MessageType `json:"type"`
	Index  *int        `json:"index,omitempty"`
	Step   *tour.Step  `json:"step,omitempty"`
	Total  int         `json:"total,omitempty"`
	Frame  *tour.Frame `json:"frame,omitempty"`
	Intent string      `json:"intent,omitempty"`
}

// StepChangedMessage builds a step_changed message.
func StepChangedMessage(index int, step tour.Step, total int) Message {
	return Message{Type: TypeStepChanged, Index: &index, Step: &step, Total: total}
}

// FrameMessage builds a frame message.
func FrameMessage(f tour.Frame) Message {
	return Message{Type: TypeFrame, Frame: &f}
}

// IntentMessage builds a client intent message.
func IntentMessage(intent string) Message {
	return Message{Type: TypeIntent, Intent: intent}
}

// Encode marshals the message for a text frame.
func (m Message) Encode() ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s message: %w", m.Type, err)
	}
	return data, nil
}

// ParseMessage decodes a text frame. A frame without a type is an error.
func ParseMessage(data []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return Message{}, fmt.Errorf("invalid message: %w", err)
	}
	if m.Type == "" {
		return Message{}, fmt.Errorf("invalid message: missing type")
	}
	return m, nil
}
