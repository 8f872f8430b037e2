package whitelist

import (
	"context"
	"testing"

	"github.com/Hafuunano/Plugin-SuperPoke/lib/database/config"
	"github.com/Hafuunano/Plugin-SuperPoke/lib/protocol"
)

type countSender struct{ msgs int }

func (c *countSender) SendMessage(context.Context, protocol.Target, protocol.Message) error {
	c.msgs++
	return nil
}

func (c *countSender) SendPoke(context.Context, protocol.Target, string) error { return nil }

func TestHandler(t *testing.T) {
	dir := t.TempDir()
	if err := config.Save(dir, pluginName, &Config{GroupIDs: []string{"111"}}); err != nil {
		t.Fatal(err)
	}
	s := &countSender{}
	h := protocol.NewHost(protocol.WithSender(s))
	h.Use(Handler(dir))
	var seen []string
	h.WithMeta(nil).OnMessage().Func(func(ctx protocol.Context) { seen = append(seen, ctx.GroupID()) })
	h.WithMeta(nil).OnNotice(protocol.NoticePoke).Func(func(ctx protocol.Context) { seen = append(seen, "poke:"+ctx.GroupID()) })

	msg := func(group string, toMe bool) *protocol.Event {
		return &protocol.Event{Kind: protocol.EventMessage, UserID: "1", GroupID: group, ToMe: toMe,
			Message: protocol.Message{protocol.Text("hi")}}
	}
	h.Dispatch(context.Background(), msg("111", false))
	h.Dispatch(context.Background(), msg("", false))
	h.Dispatch(context.Background(), msg("222", false))
	h.Dispatch(context.Background(), msg("222", true))
	h.Dispatch(context.Background(), &protocol.Event{Kind: protocol.EventNotice, Notice: protocol.NoticePoke, GroupID: "333"})

	if len(seen) != 2 || seen[0] != "111" || seen[1] != "" {
		t.Errorf("seen = %v, want [111 \"\"]", seen)
	}
	if s.msgs != 1 {
		t.Errorf("refusals sent = %d, want 1", s.msgs)
	}
}

func TestHandlerCreatesDefaultConfig(t *testing.T) {
	dir := t.TempDir()
	h := protocol.NewHost()
	h.Use(Handler(dir))
	h.Dispatch(context.Background(), &protocol.Event{Kind: protocol.EventNotice, Notice: protocol.NoticePoke, GroupID: "1"})
	if !config.Exists(dir, pluginName) {
		t.Error("default whitelist config not created")
	}
}
