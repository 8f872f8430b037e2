// Package protocol is the plugin host: plugins register matchers on Engine from init(),
// the transport pushes events into the queue, and Run dispatches them one by one.
//
//	var Meta = types.NewPluginEngine("plugin-x-001", "plugin-x", "skill", true)
//	var p = protocol.Engine.WithMeta(Meta)
//
//	func init() { p.OnCommand("x", "does x").Func(handleX) }
package protocol

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/Hafuunano/Plugin-SuperPoke/lib/logger"
	"github.com/Hafuunano/Plugin-SuperPoke/lib/types"
)

var (
	ErrQueueFull = errors.New("protocol: event queue full")
	ErrClosed    = errors.New("protocol: host closed")
	ErrNoSender  = errors.New("protocol: no sender configured")
)

const defaultQueueSize = 128

// Handler handles one matched event.
type Handler func(ctx Context)

// Middleware runs before matchers; call next to continue, return without calling it to drop the event.
type Middleware func(ctx Context, next func())

// AdminChecker decides whether a user id is a super admin.
type AdminChecker interface {
	IsAdmin(userID string) bool
}

// Sender delivers outbound actions to the platform.
type Sender interface {
	SendMessage(ctx context.Context, target Target, msg Message) error
	SendPoke(ctx context.Context, target Target, userID string) error
}

// Target addresses a group, or a private chat when GroupID is empty.
type Target struct {
	GroupID string
	UserID  string
}

// Option configures a Host.
type Option func(*Host)

// WithPrefixes sets the command prefixes; an empty string allows bare commands.
func WithPrefixes(prefixes ...string) Option {
	return func(h *Host) {
		if len(prefixes) > 0 {
			h.prefixes = append([]string(nil), prefixes...)
		}
	}
}

func WithNickNames(names ...string) Option {
	return func(h *Host) { h.nicknames = append([]string(nil), names...) }
}

func WithAdmins(a AdminChecker) Option {
	return func(h *Host) { h.admins = a }
}

func WithSender(s Sender) Option {
	return func(h *Host) { h.sender = s }
}

// WithQueueSize replaces the event queue. Apply it before Run starts.
func WithQueueSize(n int) Option {
	return func(h *Host) {
		if n > 0 {
			h.queue = make(chan *Event, n)
		}
	}
}

// Host owns the plugin registry and the event queue.
type Host struct {
	mu          sync.RWMutex
	plugins     []*Plugin
	middlewares []Middleware
	shutdown    []func()
	prefixes    []string
	nicknames   []string
	admins      AdminChecker
	sender      Sender

	queue  chan *Event
	closed atomic.Bool
}

// Engine is the process-wide host that plugins register on from init().
var Engine = NewHost()

// NewHost returns a host with a "/" prefix and the default queue size.
func NewHost(opts ...Option) *Host {
	h := &Host{
		prefixes: []string{"/"},
		queue:    make(chan *Event, defaultQueueSize),
	}
	h.Configure(opts...)
	return h
}

// Configure applies options after construction; main uses it once settings are loaded.
func (h *Host) Configure(opts ...Option) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, o := range opts {
		o(h)
	}
}

// WithMeta registers a plugin. meta may be nil for plugins that stay out of help listings.
func (h *Host) WithMeta(meta *types.PluginMeta) *Plugin {
	p := &Plugin{host: h, meta: meta}
	h.mu.Lock()
	h.plugins = append(h.plugins, p)
	h.mu.Unlock()
	return p
}

// Use appends a middleware. Middlewares run in the order added.
func (h *Host) Use(mw Middleware) {
	h.mu.Lock()
	h.middlewares = append(h.middlewares, mw)
	h.mu.Unlock()
}

// Prefixes returns the command prefixes in priority order.
func (h *Host) Prefixes() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]string(nil), h.prefixes...)
}

// NickNames returns the configured bot nicknames.
func (h *Host) NickNames() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]string(nil), h.nicknames...)
}

// IsSuperAdmin reports whether userID is on the admin list.
func (h *Host) IsSuperAdmin(userID string) bool {
	h.mu.RLock()
	a := h.admins
	h.mu.RUnlock()
	return a != nil && userID != "" && a.IsAdmin(userID)
}

// Push enqueues ev without blocking.
func (h *Host) Push(ev *Event) error {
	if ev == nil {
		return errors.New("protocol: nil event")
	}
	if h.closed.Load() {
		return ErrClosed
	}
	h.mu.RLock()
	q := h.queue
	h.mu.RUnlock()
	select {
	case q <- ev:
		return nil
	default:
		return ErrQueueFull
	}
}

// Run dispatches queued events until ctx is done. Events still queued at that point are dropped,
// then the shutdown hooks run in reverse registration order.
func (h *Host) Run(ctx context.Context) error {
	h.mu.RLock()
	q := h.queue
	h.mu.RUnlock()
	log := logger.Get("host")
	log.Info().Int("plugins", len(h.snapshot())).Msg("host running")
	for {
		select {
		case <-ctx.Done():
			h.closed.Store(true)
			h.runShutdown()
			return ctx.Err()
		case ev := <-q:
			h.Dispatch(ctx, ev)
		}
	}
}

func (h *Host) onShutdown(fn func()) {
	h.mu.Lock()
	h.shutdown = append(h.shutdown, fn)
	h.mu.Unlock()
}

func (h *Host) runShutdown() {
	h.mu.Lock()
	hooks := h.shutdown
	h.shutdown = nil
	h.mu.Unlock()
	for i := len(hooks) - 1; i >= 0; i-- {
		h.safeCall("shutdown", hooks[i])
	}
}

// Close makes further Push calls fail with ErrClosed.
func (h *Host) Close() {
	h.closed.Store(true)
}

func (h *Host) snapshot() []*Plugin {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]*Plugin(nil), h.plugins...)
}

// Dispatch runs the middleware chain and then every matching handler ordered by priority,
// then registration order, stopping after a handler calls BlockNext.
func (h *Host) Dispatch(ctx context.Context, ev *Event) {
	if ev.Kind == EventNotice && ev.TargetID != "" && ev.TargetID == ev.SelfID {
		ev.ToMe = true
	}
	h.mu.RLock()
	mws := append([]Middleware(nil), h.middlewares...)
	h.mu.RUnlock()

	ec := &eventContext{ctx: ctx, host: h, ev: ev}
	var run func(i int)
	run = func(i int) {
		if i == len(mws) {
			h.runMatchers(ec)
			return
		}
		h.safeCall(fmt.Sprintf("middleware#%d", i), func() { mws[i](ec, func() { run(i + 1) }) })
	}
	run(0)
}

func (h *Host) runMatchers(ec *eventContext) {
	type bound struct {
		p *Plugin
		m *Matcher
	}
	var all []bound
	for _, p := range h.snapshot() {
		if !p.enabled() {
			continue
		}
		for _, m := range p.matcherList() {
			all = append(all, bound{p, m})
		}
	}
	slices.SortStableFunc(all, func(a, b bound) int { return cmp.Compare(a.m.priority, b.m.priority) })
	for _, b := range all {
		if ec.blocked {
			return
		}
		args, rest, ok := b.m.match(h, ec)
		if !ok {
			continue
		}
		ec.args, ec.argText = args, rest
		h.safeCall(b.p.Name(), func() { b.m.handler(ec) })
	}
}

func (h *Host) safeCall(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log := logger.Get("host")
			log.Error().Str("plugin", name).Interface("panic", r).Msg("handler panicked")
		}
	}()
	fn()
}

// PluginInfo is a read-only view of a registered plugin.
type PluginInfo struct {
	Meta     *types.PluginMeta
	Commands []CommandInfo
}

// CommandInfo describes a command matcher.
type CommandInfo struct {
	Name   string
	Desc   string
	Plugin string
}

// Plugins lists enabled plugins in registration order.
func (h *Host) Plugins() []PluginInfo {
	var out []PluginInfo
	for _, p := range h.snapshot() {
		if p.enabled() {
			out = append(out, PluginInfo{Meta: p.meta, Commands: p.commands()})
		}
	}
	return out
}

// Commands lists every command of the enabled plugins, including plugins without metadata.
func (h *Host) Commands() []CommandInfo {
	var out []CommandInfo
	for _, p := range h.snapshot() {
		if p.enabled() {
			out = append(out, p.commands()...)
		}
	}
	return out
}

// HasCommand reports whether any plugin registered the command name.
func (h *Host) HasCommand(name string) bool {
	for _, c := range h.Commands() {
		if c.Name == name {
			return true
		}
	}
	return false
}

// StripPrefix removes the first matching command prefix from text.
func (h *Host) StripPrefix(text string) (string, bool) {
	for _, prefix := range h.Prefixes() {
		if prefix == "" {
			continue
		}
		if rest, ok := strings.CutPrefix(text, prefix); ok {
			return rest, true
		}
	}
	return text, false
}
