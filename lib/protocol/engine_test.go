package protocol

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Hafuunano/Plugin-SuperPoke/lib/types"
)

type sent struct {
	target Target
	text   string
	poke   string
}

type fakeSender struct {
	mu  sync.Mutex
	out []sent
}

func (f *fakeSender) SendMessage(_ context.Context, t Target, msg Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.out = append(f.out, sent{target: t, text: msg.PlainText()})
	return nil
}

func (f *fakeSender) SendPoke(_ context.Context, t Target, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.out = append(f.out, sent{target: t, poke: userID})
	return nil
}

type adminSet map[string]bool

func (a adminSet) IsAdmin(id string) bool { return a[id] }

func textEvent(userID, groupID, text string) *Event {
	return &Event{Kind: EventMessage, SelfID: "10000", UserID: userID, GroupID: groupID, Message: Message{Text(text)}}
}

func TestCommandMatchingAndArgs(t *testing.T) {
	s := &fakeSender{}
	h := NewHost(WithSender(s), WithPrefixes("/", "!"))
	p := h.WithMeta(types.NewPluginEngine("t-001", "t", "skill", true))
	var gotArgs []string
	var gotText string
	p.OnCommand("echo", "echo back").Func(func(ctx Context) {
		gotArgs = ctx.Args()
		gotText = ctx.ArgText()
	})

	tests := []struct {
		text string
		hit  bool
	}{
		{"/echo hi  there", true},
		{"!echo hi  there", true},
		{"echo hi", false},
		{"/echoes hi", false},
		{"/echo", true},
	}
	for _, tt := range tests {
		gotArgs, gotText = nil, "unset"
		h.Dispatch(context.Background(), textEvent("1", "2", tt.text))
		if hit := gotText != "unset"; hit != tt.hit {
			t.Errorf("%q: hit = %v, want %v", tt.text, hit, tt.hit)
		}
	}

	h.Dispatch(context.Background(), textEvent("1", "2", "/echo hi  there"))
	if len(gotArgs) != 2 || gotArgs[1] != "there" || gotText != "hi  there" {
		t.Errorf("args = %v, text = %q", gotArgs, gotText)
	}
}

func TestBareCommandWhenToMe(t *testing.T) {
	h := NewHost()
	called := false
	h.WithMeta(nil).OnCommand("ping", "").Func(func(Context) { called = true })
	ev := textEvent("1", "2", "ping")
	ev.ToMe = true
	h.Dispatch(context.Background(), ev)
	if !called {
		t.Error("bare command addressed to bot was not matched")
	}
}

func TestBlockNextStopsDispatch(t *testing.T) {
	h := NewHost()
	var order []string
	a := h.WithMeta(types.NewPluginEngine("a", "a", "skill", true))
	b := h.WithMeta(types.NewPluginEngine("b", "b", "skill", true))
	a.OnMessage().Func(func(ctx Context) { order = append(order, "a1") })
	a.OnMessage().Func(func(ctx Context) { order = append(order, "a2"); ctx.BlockNext() })
	b.OnMessage().Func(func(ctx Context) { order = append(order, "b") })
	h.Dispatch(context.Background(), textEvent("1", "", "x"))
	if len(order) != 2 || order[1] != "a2" {
		t.Errorf("order = %v, want [a1 a2]", order)
	}
}

func TestDisabledPluginSkipped(t *testing.T) {
	h := NewHost()
	called := false
	h.WithMeta(types.NewPluginEngine("off", "off", "skill", false)).OnMessage().Func(func(Context) { called = true })
	h.Dispatch(context.Background(), textEvent("1", "", "x"))
	if called {
		t.Error("disabled plugin was dispatched")
	}
}

func TestSuperAdminGate(t *testing.T) {
	h := NewHost(WithAdmins(adminSet{"42": true}))
	var who []string
	h.WithMeta(nil).OnMessage().IsOnlySuperAdmin().Func(func(ctx Context) { who = append(who, ctx.UserID()) })
	h.Dispatch(context.Background(), textEvent("7", "", "x"))
	h.Dispatch(context.Background(), textEvent("42", "", "x"))
	if len(who) != 1 || who[0] != "42" {
		t.Errorf("who = %v, want [42]", who)
	}
}

func TestNoticeToMe(t *testing.T) {
	h := NewHost()
	hits := 0
	h.WithMeta(nil).OnNotice(NoticePoke).IsOnlyToMe().Func(func(Context) { hits++ })
	h.Dispatch(context.Background(), &Event{Kind: EventNotice, Notice: NoticePoke, SelfID: "1", UserID: "2", TargetID: "3"})
	h.Dispatch(context.Background(), &Event{Kind: EventNotice, Notice: NoticePoke, SelfID: "1", UserID: "2", TargetID: "1"})
	if hits != 1 {
		t.Errorf("hits = %d, want 1", hits)
	}
}

func TestMiddlewareCanDrop(t *testing.T) {
	h := NewHost()
	called := false
	h.Use(func(ctx Context, next func()) {
		if ctx.GroupID() == "blocked" {
			return
		}
		next()
	})
	h.WithMeta(nil).OnMessage().Func(func(Context) { called = true })
	h.Dispatch(context.Background(), textEvent("1", "blocked", "x"))
	if called {
		t.Fatal("middleware did not drop event")
	}
	h.Dispatch(context.Background(), textEvent("1", "open", "x"))
	if !called {
		t.Fatal("middleware dropped allowed event")
	}
}

func TestHandlerPanicRecovered(t *testing.T) {
	h := NewHost()
	after := false
	h.WithMeta(nil).OnMessage().Func(func(Context) { panic("boom") })
	h.WithMeta(nil).OnMessage().Func(func(Context) { after = true })
	h.Dispatch(context.Background(), textEvent("1", "", "x"))
	if !after {
		t.Error("dispatch stopped after panic")
	}
}

func TestPushQueueFull(t *testing.T) {
	h := NewHost(WithQueueSize(1))
	if err := h.Push(textEvent("1", "", "a")); err != nil {
		t.Fatalf("first push: %v", err)
	}
	if err := h.Push(textEvent("1", "", "b")); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("second push err = %v, want ErrQueueFull", err)
	}
	h.Close()
	if err := h.Push(textEvent("1", "", "c")); !errors.Is(err, ErrClosed) {
		t.Fatalf("push after close err = %v, want ErrClosed", err)
	}
}

func TestRunDispatchesQueued(t *testing.T) {
	s := &fakeSender{}
	h := NewHost(WithSender(s))
	h.WithMeta(nil).OnCommand("ping", "").Func(func(ctx Context) { _ = ctx.SendPlainMessage("pong") })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.Run(ctx) }()
	if err := h.Push(textEvent("5", "6", "/ping")); err != nil {
		t.Fatalf("Push: %v", err)
	}
	deadline := time.After(2 * time.Second)
	for {
		s.mu.Lock()
		n := len(s.out)
		s.mu.Unlock()
		if n > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("queued event was not dispatched")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Run err = %v", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.out[0].text != "pong" || s.out[0].target.GroupID != "6" {
		t.Errorf("sent = %+v", s.out[0])
	}
}

func TestReplyQuotesAndPrivateTarget(t *testing.T) {
	s := &fakeSender{}
	h := NewHost(WithSender(s))
	h.WithMeta(nil).OnMessage().Func(func(ctx Context) {
		_ = ctx.Reply(Message{Text("ok")})
		_ = ctx.SendPoke(ctx.UserID())
	})
	ev := textEvent("9", "", "x")
	ev.MessageID = "m1"
	h.Dispatch(context.Background(), ev)
	if len(s.out) != 2 {
		t.Fatalf("sent %d, want 2", len(s.out))
	}
	if s.out[0].target.GroupID != "" || s.out[0].target.UserID != "9" {
		t.Errorf("target = %+v", s.out[0].target)
	}
	if s.out[1].poke != "9" {
		t.Errorf("poke = %q", s.out[1].poke)
	}
}

func TestNoSender(t *testing.T) {
	h := NewHost()
	var err error
	h.WithMeta(nil).OnMessage().Func(func(ctx Context) { err = ctx.SendPlainMessage("x") })
	h.Dispatch(context.Background(), textEvent("1", "", "x"))
	if !errors.Is(err, ErrNoSender) {
		t.Errorf("err = %v, want ErrNoSender", err)
	}
}

func TestPluginsAndCommands(t *testing.T) {
	h := NewHost()
	a := h.WithMeta(types.NewPluginEngine("a", "alpha", "skill", true).WithAuthor("me"))
	a.OnCommand("one", "first").Func(func(Context) {})
	a.OnMessage().Func(func(Context) {})
	h.WithMeta(nil).OnCommand("two", "second").Func(func(Context) {})

	plugins := h.Plugins()
	if len(plugins) != 2 || plugins[0].Meta.PluginName != "alpha" || len(plugins[0].Commands) != 1 {
		t.Fatalf("plugins = %+v", plugins)
	}
	if !h.HasCommand("two") || h.HasCommand("three") {
		t.Error("HasCommand mismatch")
	}
	cmds := h.Commands()
	if len(cmds) != 2 || cmds[1].Plugin != "anonymous" {
		t.Errorf("commands = %+v", cmds)
	}
}

func TestPriorityOrdersAcrossPlugins(t *testing.T) {
	h := NewHost()
	var order []string
	h.WithMeta(nil).OnMessage().Priority(10).Func(func(Context) { order = append(order, "late") })
	h.WithMeta(nil).OnMessage().Func(func(Context) { order = append(order, "first") })
	h.WithMeta(nil).OnMessage().Func(func(Context) { order = append(order, "second") })
	h.Dispatch(context.Background(), textEvent("1", "", "x"))
	if len(order) != 3 || order[0] != "first" || order[1] != "second" || order[2] != "late" {
		t.Errorf("order = %v", order)
	}
}

func TestDisabledPluginHiddenFromListings(t *testing.T) {
	h := NewHost()
	h.WithMeta(types.NewPluginEngine("off", "off", "skill", false)).OnCommand("gone", "").Func(func(Context) {})
	h.WithMeta(types.NewPluginEngine("on", "on", "skill", true)).OnCommand("here", "").Func(func(Context) {})
	if h.HasCommand("gone") {
		t.Error("HasCommand reports a command of a disabled plugin")
	}
	if !h.HasCommand("here") {
		t.Error("HasCommand misses an enabled plugin")
	}
	if plugins := h.Plugins(); len(plugins) != 1 || plugins[0].Meta.PluginName != "on" {
		t.Errorf("plugins = %+v", plugins)
	}
}

func TestShutdownHooksRunAfterRun(t *testing.T) {
	h := NewHost()
	var order []string
	a := h.WithMeta(nil)
	a.OnShutdown(func() { order = append(order, "a") })
	a.OnShutdown(func() { panic("boom") })
	h.WithMeta(nil).OnShutdown(func() { order = append(order, "b") })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := h.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run err = %v", err)
	}
	if len(order) != 2 || order[0] != "b" || order[1] != "a" {
		t.Errorf("order = %v, want [b a]", order)
	}
	if err := h.Push(textEvent("1", "", "x")); !errors.Is(err, ErrClosed) {
		t.Errorf("push after Run err = %v", err)
	}
}
