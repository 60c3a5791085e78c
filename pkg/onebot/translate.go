package onebot

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedSegment rejects frames containing segment types outside
// text and at.
var ErrUnsupportedSegment = errors.New("unsupported message segment")

// RawMessage is the normalized form of one gateway message: the sender, the
// flattened text, and every concretely mentioned user.
type RawMessage struct {
	Sender  int64
	Text    string
	Targets []int64
}

// Translate flattens an event's segments into a RawMessage. Text segments
// contribute their text verbatim; at segments contribute a single space so
// "@name command" stays tokenizable. Broadcast mentions never enter Targets;
// duplicate mentions collapse, keeping first-mention order.
func Translate(ev *Event) (RawMessage, error) {
	var (
		text    strings.Builder
		targets []int64
		seen    map[int64]struct{}
	)
	for i, seg := range ev.Message {
		switch seg.Type {
		case SegmentText:
			var data textData
			if err := json.Unmarshal(seg.Data, &data); err != nil {
				return RawMessage{}, fmt.Errorf("text segment %d: %w", i, err)
			}
			text.WriteString(data.Text)
		case SegmentAt:
			var data atData
			if err := json.Unmarshal(seg.Data, &data); err != nil {
				return RawMessage{}, fmt.Errorf("at segment %d: %w", i, err)
			}
			text.WriteByte(' ')
			if data.QQ.All {
				continue
			}
			if seen == nil {
				seen = make(map[int64]struct{})
			}
			if _, dup := seen[data.QQ.ID]; dup {
				continue
			}
			seen[data.QQ.ID] = struct{}{}
			targets = append(targets, data.QQ.ID)
		default:
			return RawMessage{}, fmt.Errorf("%w: %q", ErrUnsupportedSegment, seg.Type)
		}
	}
	return RawMessage{Sender: ev.UserID, Text: text.String(), Targets: targets}, nil
}
