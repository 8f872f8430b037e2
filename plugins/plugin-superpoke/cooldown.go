package pluginsuperpoke

import (
	"sync"
	"time"

	"github.com/FloatTech/ttl"
	skillcore "github.com/Hafuunano/Core-SkillAction/core"
)

const keyPrefixCooldown = "superpoke:cooldown:"

// kvStore is the part of the skill cache store the cooldown needs.
type kvStore interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// cooldown remembers the last poke of each user in each group.
// With a shared store the timestamps live there (RFC3339, like the other skill plugins);
// otherwise a ttl cache in this process holds them.
type cooldown struct {
	window time.Duration
	mem    *ttl.Cache[string, bool]
	now    func() time.Time

	storeOnce sync.Once
	openStore func() kvStore
	store     kvStore
}

func newCooldown(window time.Duration, openStore func() kvStore) *cooldown {
	if window <= 0 {
		return nil
	}
	return &cooldown{
		window:    window,
		mem:       ttl.NewCache[string, bool](window),
		now:       time.Now,
		openStore: openStore,
	}
}

// defaultSkillCache opens the shared skill cache; nil when the host has none.
func defaultSkillCache() kvStore {
	s := skillcore.DefaultCache()
	if s == nil {
		return nil
	}
	return s
}

func cooldownKey(groupID, userID string) string {
	return groupID + ":" + userID
}

// Allow reports whether key is outside its window and, if so, starts a new one.
// A nil cooldown always allows.
func (c *cooldown) Allow(key string) bool {
	if c == nil {
		return true
	}
	if s := c.shared(); s != nil {
		return c.allowShared(s, key)
	}
	if c.mem.Get(key) {
		return false
	}
	c.mem.Set(key, true)
	return true
}

func (c *cooldown) shared() kvStore {
	c.storeOnce.Do(func() {
		if c.openStore != nil {
			c.store = c.openStore()
		}
	})
	return c.store
}

func (c *cooldown) allowShared(s kvStore, key string) bool {
	now := c.now()
	k := keyPrefixCooldown + key
	if last, found, _ := s.Get(k); found && last != "" {
		if t, err := time.Parse(time.RFC3339Nano, last); err == nil && now.Sub(t) < c.window {
			return false
		}
	}
	_ = s.Set(k, now.Format(time.RFC3339Nano))
	return true
}
