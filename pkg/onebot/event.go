// Package onebot implements the slice of the OneBot v11 protocol this bot
// speaks: the WebSocket event frames it receives from the gateway and the
// HTTP API it posts replies through.
package onebot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Message scopes carried in the message_type field.
const (
	ScopeGroup   = "group"
	ScopePrivate = "private"
)

// Segment types this bot understands. Any other type invalidates the frame.
const (
	SegmentText = "text"
	SegmentAt   = "at"
)

// Event is one inbound gateway frame. Meta events (heartbeats, lifecycle)
// carry no message_type and decode with an empty one; the gate denies them.
type Event struct {
	MessageType string    `json:"message_type"`
	GroupID     int64     `json:"group_id,omitempty"`
	UserID      int64     `json:"user_id"`
	Message     []Segment `json:"message"`
}

// Segment is one fragment of a structured message. Data stays raw until the
// translator knows the segment type.
type Segment struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type textData struct {
	Text string `json:"text"`
}

type atData struct {
	QQ MentionID `json:"qq"`
}

// MentionID is the target of an at segment. The gateway serializes it as a
// number, a numeric string, or the literal "all" for broadcast mentions.
type MentionID struct {
	All bool
	ID  int64
}

func (m *MentionID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("empty mention target")
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "all" {
			m.All = true
			return nil
		}
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("mention target %q: %w", s, err)
		}
		m.ID = id
		return nil
	}
	var id int64
	if err := json.Unmarshal(data, &id); err != nil {
		return fmt.Errorf("mention target: %w", err)
	}
	m.ID = id
	return nil
}

// DecodeEvent parses a raw gateway frame. A decode error means the frame is
// malformed and should be discarded.
func DecodeEvent(frame []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(frame, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}
