package protocol

import (
	"strings"
	"sync"

	"github.com/Hafuunano/Plugin-SuperPoke/lib/types"
)

// Plugin is the registration handle returned by Host.WithMeta.
type Plugin struct {
	host *Host
	meta *types.PluginMeta

	mu       sync.RWMutex
	matchers []*Matcher
}

// Meta returns the plugin metadata, possibly nil.
func (p *Plugin) Meta() *types.PluginMeta { return p.meta }

// Host returns the host the plugin is registered on.
func (p *Plugin) Host() *Host { return p.host }

// Name is the plugin name, or "anonymous" without metadata.
func (p *Plugin) Name() string {
	if p.meta == nil {
		return "anonymous"
	}
	return p.meta.PluginName
}

func (p *Plugin) enabled() bool { return p.meta == nil || p.meta.Enabled }

// OnShutdown registers fn to run after the host stops dispatching.
func (p *Plugin) OnShutdown(fn func()) {
	p.host.onShutdown(fn)
}

// OnMessage matches every chat message.
func (p *Plugin) OnMessage() *Matcher {
	return &Matcher{plugin: p, kind: EventMessage}
}

// OnMessageReply matches messages addressed to the bot (@bot, reply, nickname prefix, private chat).
func (p *Plugin) OnMessageReply() *Matcher {
	return &Matcher{plugin: p, kind: EventMessage, onlyToMe: true}
}

// OnCommand matches "<prefix>name [args...]". The command shows up in help listings with desc.
func (p *Plugin) OnCommand(name, desc string) *Matcher {
	return &Matcher{plugin: p, kind: EventMessage, command: name, desc: desc}
}

// OnNotice matches notices of the given kind.
func (p *Plugin) OnNotice(kind NoticeKind) *Matcher {
	return &Matcher{plugin: p, kind: EventNotice, notice: kind}
}

func (p *Plugin) add(m *Matcher) {
	p.mu.Lock()
	p.matchers = append(p.matchers, m)
	p.mu.Unlock()
}

func (p *Plugin) matcherList() []*Matcher {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]*Matcher(nil), p.matchers...)
}

func (p *Plugin) commands() []CommandInfo {
	var out []CommandInfo
	for _, m := range p.matcherList() {
		if m.command != "" {
			out = append(out, CommandInfo{Name: m.command, Desc: m.desc, Plugin: p.Name()})
		}
	}
	return out
}

// Matcher is a chainable rule set; Func registers it.
type Matcher struct {
	plugin         *Plugin
	kind           EventKind
	notice         NoticeKind
	command        string
	desc           string
	onlyToMe       bool
	onlySuperAdmin bool
	priority       int
	handler        Handler
}

// IsOnlyToMe restricts the matcher to events addressed to the bot.
func (m *Matcher) IsOnlyToMe() *Matcher {
	m.onlyToMe = true
	return m
}

// IsOnlySuperAdmin restricts the matcher to users on the admin list; others are skipped silently.
func (m *Matcher) IsOnlySuperAdmin() *Matcher {
	m.onlySuperAdmin = true
	return m
}

// Priority orders matchers across plugins: lower runs first, default 0, ties keep registration order.
func (m *Matcher) Priority(n int) *Matcher {
	m.priority = n
	return m
}

// Func sets the handler and registers the matcher on its plugin.
func (m *Matcher) Func(h Handler) {
	m.handler = h
	m.plugin.add(m)
}

// match returns the command args (split and raw) when the matcher applies to the event.
func (m *Matcher) match(h *Host, ec *eventContext) ([]string, string, bool) {
	ev := ec.ev
	if ev.Kind != m.kind {
		return nil, "", false
	}
	if m.kind == EventNotice && m.notice != "" && ev.Notice != m.notice {
		return nil, "", false
	}
	if m.onlyToMe && !ev.ToMe {
		return nil, "", false
	}
	if m.onlySuperAdmin && !h.IsSuperAdmin(ev.UserID) {
		return nil, "", false
	}
	if m.command == "" {
		return nil, "", true
	}
	return matchCommand(h, ev, m.command)
}

func matchCommand(h *Host, ev *Event, command string) ([]string, string, bool) {
	text := strings.TrimSpace(ev.Message.PlainText())
	rest, ok := h.StripPrefix(text)
	if !ok && !ev.ToMe && !hasEmptyPrefix(h.Prefixes()) {
		return nil, "", false
	}
	after, found := strings.CutPrefix(rest, command)
	if !found {
		return nil, "", false
	}
	if after != "" && !startsWithSpace(after) {
		return nil, "", false
	}
	argText := strings.TrimSpace(after)
	return strings.Fields(argText), argText, true
}

func hasEmptyPrefix(prefixes []string) bool {
	for _, p := range prefixes {
		if p == "" {
			return true
		}
	}
	return false
}

func startsWithSpace(s string) bool {
	switch s[0] {
	case ' ', '\t', '\n', '\r':
		return true
	}
	return strings.HasPrefix(s, "　")
}
