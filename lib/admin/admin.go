// Package admin loads the super admin allow-list.
// The list lives at data/config/admin/config.yaml; if missing, a default empty list is created and saved.
package admin

import (
	"strings"

	"github.com/Hafuunano/Plugin-SuperPoke/lib/database/config"
)

const pluginName = "admin"

// Config is the admin config file structure.
type Config struct {
	UserIDs []string `yaml:"user_ids"`
}

// List is a read-only set of admin user ids.
type List struct {
	ids map[string]struct{}
}

// NewList builds a list from ids, ignoring blanks.
func NewList(ids ...string) *List {
	l := &List{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			l.ids[id] = struct{}{}
		}
	}
	return l
}

// Load reads the admin file under dataDir and merges extra (e.g. SUPER_ADMINS from env).
func Load(dataDir string, extra ...string) (*List, error) {
	var cfg Config
	if err := config.Read(dataDir, pluginName, &cfg); err != nil {
		return nil, err
	}
	if !config.Exists(dataDir, pluginName) || cfg.UserIDs == nil {
		cfg.UserIDs = []string{}
		if err := config.Save(dataDir, pluginName, &cfg); err != nil {
			return nil, err
		}
	}
	return NewList(append(cfg.UserIDs, extra...)...), nil
}

// IsAdmin implements protocol.AdminChecker.
func (l *List) IsAdmin(userID string) bool {
	if l == nil {
		return false
	}
	_, ok := l.ids[userID]
	return ok
}

func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.ids)
}
