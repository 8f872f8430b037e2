package protocol

import (
	"context"
	"strings"
)

// Context is what a handler sees for one event.
type Context interface {
	Event() *Event
	Host() *Host
	// Ctx is cancelled when the host stops.
	Ctx() context.Context

	PlainText() string
	// Args are the whitespace-split words after the command; nil for non-command matchers.
	Args() []string
	// ArgText is the raw text after the command, trimmed.
	ArgText() string

	UserID() string
	GroupID() string
	SelfID() string
	SenderNickname() string
	CommandPrefix() string
	IsSuperAdmin() bool

	Send(msg Message) error
	Reply(msg Message) error
	SendPlainMessage(text string) error
	SendPoke(userID string) error

	// BlockNext stops dispatch of this event to the remaining matchers.
	BlockNext()
}

type eventContext struct {
	ctx     context.Context
	host    *Host
	ev      *Event
	args    []string
	argText string
	blocked bool
}

func (c *eventContext) Event() *Event          { return c.ev }
func (c *eventContext) Host() *Host            { return c.host }
func (c *eventContext) Ctx() context.Context   { return c.ctx }
func (c *eventContext) Args() []string         { return c.args }
func (c *eventContext) ArgText() string        { return c.argText }
func (c *eventContext) UserID() string         { return c.ev.UserID }
func (c *eventContext) GroupID() string        { return c.ev.GroupID }
func (c *eventContext) SelfID() string         { return c.ev.SelfID }
func (c *eventContext) SenderNickname() string { return c.ev.SenderNickname }
func (c *eventContext) BlockNext()             { c.blocked = true }

func (c *eventContext) PlainText() string {
	return strings.TrimSpace(c.ev.Message.PlainText())
}

func (c *eventContext) CommandPrefix() string {
	if prefixes := c.host.Prefixes(); len(prefixes) > 0 {
		return prefixes[0]
	}
	return ""
}

func (c *eventContext) IsSuperAdmin() bool {
	return c.host.IsSuperAdmin(c.ev.UserID)
}

func (c *eventContext) target() Target {
	if c.ev.IsGroup() {
		return Target{GroupID: c.ev.GroupID, UserID: c.ev.UserID}
	}
	return Target{UserID: c.ev.UserID}
}

func (c *eventContext) sender() (Sender, error) {
	c.host.mu.RLock()
	s := c.host.sender
	c.host.mu.RUnlock()
	if s == nil {
		return nil, ErrNoSender
	}
	return s, nil
}

func (c *eventContext) Send(msg Message) error {
	s, err := c.sender()
	if err != nil {
		return err
	}
	return s.SendMessage(c.ctx, c.target(), msg)
}

// Reply quotes the triggering message when it has an id.
func (c *eventContext) Reply(msg Message) error {
	if c.ev.MessageID != "" {
		msg = append(Message{ReplyTo(c.ev.MessageID)}, msg...)
	}
	return c.Send(msg)
}

func (c *eventContext) SendPlainMessage(text string) error {
	return c.Send(Message{Text(text)})
}

func (c *eventContext) SendPoke(userID string) error {
	s, err := c.sender()
	if err != nil {
		return err
	}
	return s.SendPoke(c.ctx, c.target(), userID)
}
