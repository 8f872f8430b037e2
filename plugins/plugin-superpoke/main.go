// Package pluginsuperpoke: when the bot is poked, pick a command from a weighted list and
// feed it back into the host queue as if the poking user had typed it.
// Admins manage the list with "superpoke ..."; "allhelps" lists every plugin's commands.
package pluginsuperpoke

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Hafuunano/Plugin-SuperPoke/lib/database/config"
	"github.com/Hafuunano/Plugin-SuperPoke/lib/logger"
	"github.com/Hafuunano/Plugin-SuperPoke/lib/protocol"
	"github.com/Hafuunano/Plugin-SuperPoke/lib/settings"
	"github.com/Hafuunano/Plugin-SuperPoke/lib/types"
)

const (
	pluginName  = "plugin-superpoke"
	dataDirName = "superpoke"
	dataFile    = "superPokedata.yaml"
	historyFile = "history.db"
)

// Meta and registration (required: use WithMeta(Meta) then chain).
var Meta = types.NewPluginEngine("plugin-superpoke-001", pluginName, "skill", true).
	WithAuthor("waterfeet").
	WithVersion("1.1.0").
	WithDesc("超级戳一戳：戳一戳 bot 时随机触发一条已配置的指令。")
var p = protocol.Engine.WithMeta(Meta)

func init() {
	s := settings.Get()
	historyPath := s.HistoryDB
	if historyPath == "" {
		historyPath = config.DataPath(s.DataDir, dataDirName, historyFile)
	}
	newSuperPoke(options{
		dataPath:    config.DataPath(s.DataDir, dataDirName, dataFile),
		historyPath: historyPath,
		historyDays: s.HistoryDays,
		cooldown:    s.PokeCooldown,
		sharedCache: true,
	}).register(p)
}

type options struct {
	dataPath    string
	historyPath string // empty disables history
	historyDays int    // <= 0 disables pruning
	cooldown    time.Duration
	sharedCache bool // keep cooldowns in the skill cache store when the host provides one
	rng         *rand.Rand
}

type superPoke struct {
	opts     options
	list     *commandList
	picker   *picker
	cooldown *cooldown

	historyOnce sync.Once
	history     *historyStore
	pruner      *cron.Cron
	closeOnce   sync.Once
}

func newSuperPoke(o options) *superPoke {
	var openStore func() kvStore
	if o.sharedCache {
		openStore = defaultSkillCache
	}
	return &superPoke{
		opts:     o,
		list:     newCommandList(o.dataPath),
		picker:   newPicker(o.rng),
		cooldown: newCooldown(o.cooldown, openStore),
	}
}

func (sp *superPoke) register(p *protocol.Plugin) {
	p.OnCommand("superpoke", "超级戳一戳：管理戳一戳触发的指令，superpoke help 查看用法").Func(sp.handleCommand)
	p.OnCommand("allhelps", "查看本 bot 安装的所有插件的指令").Func(sp.handleAllHelps)
	p.OnCommand("pokestats", "查看本群戳一戳排行").Func(sp.handleStats)
	p.OnNotice(protocol.NoticePoke).IsOnlyToMe().Func(sp.handlePoke)
	p.OnShutdown(sp.close)
}

// historyStore opens the history DB and the daily prune job on first use; nil when disabled or broken.
func (sp *superPoke) historyStore() *historyStore {
	sp.historyOnce.Do(func() {
		if sp.opts.historyPath == "" {
			return
		}
		log := logger.Get(pluginName)
		h, err := openHistory(sp.opts.historyPath)
		if err != nil {
			log.Error().Err(err).Str("path", sp.opts.historyPath).Msg("open poke history")
			return
		}
		sp.history = h
		if sp.opts.historyDays <= 0 {
			return
		}
		c := cron.New(cron.WithLocation(time.UTC))
		days := sp.opts.historyDays
		if _, err := c.AddFunc("@daily", func() {
			n, err := h.Prune(time.Now().AddDate(0, 0, -days))
			plog := logger.Get(pluginName)
			if err != nil {
				plog.Error().Err(err).Msg("prune poke history")
				return
			}
			plog.Info().Int64("removed", n).Msg("poke history pruned")
		}); err != nil {
			log.Error().Err(err).Msg("schedule history prune")
			return
		}
		c.Start()
		sp.pruner = c
	})
	return sp.history
}

// close stops the prune job and releases the history DB. The host calls it once Run returns.
func (sp *superPoke) close() {
	sp.closeOnce.Do(func() {
		sp.historyOnce.Do(func() {})
		if sp.pruner != nil {
			<-sp.pruner.Stop().Done()
		}
		if sp.history != nil {
			if db, err := sp.history.db.DB(); err == nil {
				_ = db.Close()
			}
		}
	})
}
