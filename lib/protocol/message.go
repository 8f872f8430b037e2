package protocol

import "strings"

// SegmentType is the OneBot segment type name.
type SegmentType string

const (
	SegmentTypeText  SegmentType = "text"
	SegmentTypeAt    SegmentType = "at"
	SegmentTypeFace  SegmentType = "face"
	SegmentTypeImage SegmentType = "image"
	SegmentTypeReply SegmentType = "reply"
	SegmentTypePoke  SegmentType = "poke"
)

// Segment is one element of a message. Data keys follow OneBot v11 (text, qq, id, file).
type Segment struct {
	Type SegmentType
	Data map[string]any
}

// Message is an ordered list of segments.
type Message []Segment

// Text returns a text segment.
func Text(s string) Segment {
	return Segment{Type: SegmentTypeText, Data: map[string]any{"text": s}}
}

// At returns a mention segment for userID.
func At(userID string) Segment {
	return Segment{Type: SegmentTypeAt, Data: map[string]any{"qq": userID}}
}

// ReplyTo quotes the message with the given id.
func ReplyTo(messageID string) Segment {
	return Segment{Type: SegmentTypeReply, Data: map[string]any{"id": messageID}}
}

// Str returns Data[key] as a string, or "" when absent or not a string.
func (s Segment) Str(key string) string {
	v, _ := s.Data[key].(string)
	return v
}

// PlainText concatenates the text segments.
func (m Message) PlainText() string {
	var b strings.Builder
	for _, seg := range m {
		if seg.Type == SegmentTypeText {
			b.WriteString(seg.Str("text"))
		}
	}
	return b.String()
}

// Has reports whether any segment has type t.
func (m Message) Has(t SegmentType) bool {
	for _, seg := range m {
		if seg.Type == t {
			return true
		}
	}
	return false
}
