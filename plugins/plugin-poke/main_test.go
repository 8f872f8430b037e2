package pluginpoke

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Hafuunano/Plugin-SuperPoke/lib/protocol"
)

type recorder struct {
	mu    sync.Mutex
	texts []string
	pokes []string
}

func (r *recorder) SendMessage(_ context.Context, _ protocol.Target, msg protocol.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.texts = append(r.texts, msg.PlainText())
	return nil
}

func (r *recorder) SendPoke(_ context.Context, _ protocol.Target, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pokes = append(r.pokes, userID)
	return nil
}

func (r *recorder) counts() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.texts), len(r.pokes)
}

func TestBotNick(t *testing.T) {
	if got := botNick(nil); got != "咱" {
		t.Errorf("botNick(nil) = %q", got)
	}
	if got := botNick([]string{" ", "Lucy"}); got != "Lucy" {
		t.Errorf("botNick = %q", got)
	}
}

func TestPokeBack(t *testing.T) {
	r := &recorder{}
	h := protocol.NewHost(protocol.WithSender(r), protocol.WithNickNames("Lucy"))
	h.WithMeta(Meta).OnMessageReply().Func(Plugin)

	h.Dispatch(context.Background(), &protocol.Event{Kind: protocol.EventMessage, UserID: "7", ToMe: true,
		Message: protocol.Message{protocol.Text("戳我")}})
	h.Dispatch(context.Background(), &protocol.Event{Kind: protocol.EventMessage, UserID: "7", ToMe: true,
		Message: protocol.Message{protocol.Text("别的")}})

	deadline := time.Now().Add(3 * time.Second)
	for {
		texts, pokes := r.counts()
		if pokes == 1 {
			if texts != 1 {
				t.Errorf("texts = %d, want 1", texts)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("user was not poked back")
		}
		time.Sleep(20 * time.Millisecond)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if !strings.Contains(r.texts[0], "Lucy") {
		t.Errorf("reply %q does not use the nickname", r.texts[0])
	}
}

func TestUnclaimedPokeGetsReply(t *testing.T) {
	r := &recorder{}
	h := protocol.NewHost(protocol.WithSender(r))
	h.WithMeta(Meta).OnNotice(protocol.NoticePoke).IsOnlyToMe().Priority(fallbackPriority).Func(handlePoked)
	h.Dispatch(context.Background(), &protocol.Event{Kind: protocol.EventNotice, Notice: protocol.NoticePoke,
		SelfID: "1", UserID: "2", TargetID: "1"})
	if texts, _ := r.counts(); texts != 1 {
		t.Errorf("texts = %d, want 1", texts)
	}
}
