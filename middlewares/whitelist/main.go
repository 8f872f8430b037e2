// Package whitelist provides a middleware that allows only groups listed in config.
// Config is read from data/config/whitelist/config.yaml; if missing, a default empty list is created and saved.
package whitelist

import (
	"os"
	"sync"

	"github.com/Hafuunano/Plugin-SuperPoke/lib/database/config"
	"github.com/Hafuunano/Plugin-SuperPoke/lib/logger"
	"github.com/Hafuunano/Plugin-SuperPoke/lib/protocol"
)

const pluginName = "whitelist"

// Config is the whitelist config file structure.
type Config struct {
	GroupIDs []string `yaml:"group_ids"`
}

type list struct {
	mu      sync.RWMutex
	dataDir string
	allowed map[string]struct{} // nil until first load
}

// load reads config from disk, creates default config if not exist, and refreshes the in-memory set.
func (l *list) load() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	var cfg Config
	if err := config.Read(l.dataDir, pluginName, &cfg); err != nil {
		return err
	}
	if !config.Exists(l.dataDir, pluginName) || cfg.GroupIDs == nil {
		cfg.GroupIDs = []string{}
		if err := config.Save(l.dataDir, pluginName, &cfg); err != nil {
			return err
		}
	}
	l.allowed = make(map[string]struct{}, len(cfg.GroupIDs))
	for _, id := range cfg.GroupIDs {
		if id != "" {
			l.allowed[id] = struct{}{}
		}
	}
	return nil
}

func (l *list) isAllowed(groupID string) bool {
	l.mu.RLock()
	loaded := l.allowed != nil
	l.mu.RUnlock()
	if !loaded {
		if err := l.load(); err != nil {
			log := logger.Get(pluginName)
			log.Error().Err(err).Msg("load whitelist")
			return false
		}
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.allowed[groupID]
	return ok
}

// Handler returns a middleware that continues only when the event's group is in the whitelist.
// Private events always pass. Notices from other groups are dropped silently; messages get a short refusal.
// dataDirRoot is the root data directory (e.g. "data"); if empty, DATA_DIR env or "data" is used.
func Handler(dataDirRoot string) protocol.Middleware {
	if dataDirRoot == "" {
		dataDirRoot = os.Getenv("DATA_DIR")
		if dataDirRoot == "" {
			dataDirRoot = "data"
		}
	}
	l := &list{dataDir: dataDirRoot}
	return func(ctx protocol.Context, next func()) {
		ev := ctx.Event()
		if !ev.IsGroup() {
			next()
			return
		}
		if l.isAllowed(ev.GroupID) {
			next()
			return
		}
		if ev.Kind == protocol.EventMessage && ev.ToMe && !ev.Injected {
			_ = ctx.SendPlainMessage("此群未在白名单中")
		}
	}
}
