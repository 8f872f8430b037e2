package pluginsuperpoke

import (
	"time"

	"github.com/Hafuunano/Plugin-SuperPoke/lib/logger"
	"github.com/Hafuunano/Plugin-SuperPoke/lib/protocol"
)

// handlePoke runs for pokes aimed at the bot. With an empty list the poke is left to other plugins.
func (sp *superPoke) handlePoke(ctx protocol.Context) {
	ev := ctx.Event()
	log := logger.Get(pluginName)
	if !sp.cooldown.Allow(cooldownKey(ev.GroupID, ev.UserID)) {
		log.Debug().Str("user", ev.UserID).Msg("poke ignored, cooling down")
		return
	}
	log.Info().Str("user", ev.UserID).Str("group", ev.GroupID).Msg("poke detected")

	entry, ok := sp.picker.Pick(sp.list.Entries())
	if !ok {
		sp.record(ev, "")
		return
	}
	injected := &protocol.Event{
		Kind:           protocol.EventMessage,
		Time:           time.Now(),
		SelfID:         ev.SelfID,
		UserID:         ev.UserID,
		GroupID:        ev.GroupID,
		SenderNickname: ev.SenderNickname,
		Message:        protocol.Message{protocol.Text(withPrefix(ctx.Host(), entry.Command))},
		ToMe:           true,
		Injected:       true,
	}
	if err := ctx.Host().Push(injected); err != nil {
		log.Warn().Err(err).Str("command", entry.Command).Msg("inject poke command")
	}
	sp.record(ev, entry.Command)
	ctx.BlockNext()
}

// withPrefix adds the first command prefix unless the command already carries one.
func withPrefix(h *protocol.Host, command string) string {
	if _, ok := h.StripPrefix(command); ok {
		return command
	}
	prefixes := h.Prefixes()
	if len(prefixes) == 0 {
		return command
	}
	return prefixes[0] + command
}

func (sp *superPoke) record(ev *protocol.Event, command string) {
	h := sp.historyStore()
	if h == nil {
		return
	}
	if err := h.Record(ev.UserID, ev.GroupID, command, time.Now()); err != nil {
		log := logger.Get(pluginName)
		log.Error().Err(err).Msg("record poke")
	}
}
