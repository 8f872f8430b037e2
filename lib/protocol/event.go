package protocol

import "time"

// EventKind separates chat messages from platform notices.
type EventKind int

const (
	EventMessage EventKind = iota + 1
	EventNotice
)

// NoticeKind names a notice event; only pokes are produced by the transport today.
type NoticeKind string

const NoticePoke NoticeKind = "poke"

// Event is what the transport delivers and what plugins may push back into the queue.
type Event struct {
	Kind   EventKind
	Notice NoticeKind
	Time   time.Time

	SelfID    string
	UserID    string
	GroupID   string // empty for private chats
	TargetID  string // notice target, e.g. the poked user
	MessageID string

	SenderNickname string
	Message        Message

	// ToMe is set when the event addresses the bot: @bot, nickname prefix, private chat, or a poke on the bot.
	ToMe bool
	// Injected marks events produced by plugins rather than the transport.
	Injected bool
}

// IsGroup reports whether the event happened in a group.
func (e *Event) IsGroup() bool {
	return e.GroupID != "" && e.GroupID != "0"
}
