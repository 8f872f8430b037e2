// Package settings reads process configuration from the environment (and an optional .env file).
package settings

import (
	"fmt"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Settings is the process configuration. Every field maps to one environment variable.
type Settings struct {
	DataDir string `env:"DATA_DIR" envDefault:"data"`

	WSURL       string `env:"ONEBOT_WS_URL" envDefault:"ws://127.0.0.1:3001"`
	AccessToken string `env:"ONEBOT_ACCESS_TOKEN"`
	// SendRate is outbound actions per second; burst is fixed at SendBurst.
	SendRate  float64 `env:"SEND_RATE" envDefault:"5"`
	SendBurst int     `env:"SEND_BURST" envDefault:"3"`

	CommandPrefixes []string `env:"COMMAND_PREFIXES" envDefault:"/" envSeparator:","`
	NickNames       []string `env:"NICK_NAMES" envSeparator:","`
	SuperAdmins     []string `env:"SUPER_ADMINS" envSeparator:","`
	QueueSize       int      `env:"EVENT_QUEUE_SIZE" envDefault:"128"`

	WhitelistEnabled bool `env:"WHITELIST_ENABLED" envDefault:"false"`

	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile     string `env:"LOG_FILE"`
	LogMaxSize  int    `env:"LOG_MAX_SIZE_MB" envDefault:"10"`
	LogMaxFiles int    `env:"LOG_MAX_FILES" envDefault:"3"`

	PokeCooldown time.Duration `env:"SUPERPOKE_COOLDOWN" envDefault:"3s"`
	HistoryDays  int           `env:"SUPERPOKE_HISTORY_DAYS" envDefault:"30"`
	HistoryDB    string        `env:"SUPERPOKE_DB_PATH"`
}

var (
	once   sync.Once
	cached *Settings
	err    error
)

// Load parses the environment once; later calls return the same result.
// A missing .env file is not an error.
func Load() (*Settings, error) {
	once.Do(func() {
		_ = godotenv.Load()
		cached, err = parse(env.Options{})
	})
	return cached, err
}

// Get is Load for callers that cannot handle an error; a parse failure yields defaults.
func Get() *Settings {
	s, err := Load()
	if err != nil || s == nil {
		s, _ = parse(env.Options{Environment: map[string]string{}})
	}
	return s
}

// FromMap parses settings from an explicit variable set instead of the process environment.
func FromMap(vars map[string]string) (*Settings, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (*Settings, error) {
	var s Settings
	if err := env.ParseWithOptions(&s, opts); err != nil {
		return nil, fmt.Errorf("settings parse: %w", err)
	}
	if s.QueueSize <= 0 {
		s.QueueSize = 128
	}
	if len(s.CommandPrefixes) == 0 {
		s.CommandPrefixes = []string{"/"}
	}
	return &s, nil
}
