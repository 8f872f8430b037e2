// Package pluginpoke: when a user @s the bot with an empty message or "戳我"/"戳戳", reply with random text
// then poke the user back. It also answers pokes on the bot that no earlier plugin claimed.
package pluginpoke

import (
	"math/rand/v2"
	"strings"
	"time"

	"github.com/Hafuunano/Plugin-SuperPoke/lib/logger"
	"github.com/Hafuunano/Plugin-SuperPoke/lib/protocol"
	"github.com/Hafuunano/Plugin-SuperPoke/lib/types"
)

// Meta and registration (required: use WithMeta(Meta) then chain).
var Meta = types.NewPluginEngine("plugin-poke-001", "plugin-poke", "skill", true).
	WithVersion("1.0.0").
	WithDesc("@bot 发送「戳我」会被 bot 戳回来；没有配置超级戳一戳时，戳 bot 也会得到回应。")
var p = protocol.Engine.WithMeta(Meta)

// pokeBackDelay separates the text reply from the poke.
const pokeBackDelay = time.Second

// fallbackPriority runs after plugins at the default priority, so superpoke gets the poke first.
const fallbackPriority = 10

// triggerWords: only respond when plain text is empty or one of these.
var triggerWords = map[string]bool{
	"": true, "戳我": true, "戳戳": true,
}

func init() {
	p.OnMessageReply().Func(Plugin)
	p.OnNotice(protocol.NoticePoke).IsOnlyToMe().Priority(fallbackPriority).Func(handlePoked)
}

// botNick returns the first configured bot nickname, or "咱".
func botNick(nicknames []string) string {
	for _, n := range nicknames {
		if n = strings.TrimSpace(n); n != "" {
			return n
		}
	}
	return "咱"
}

func replyTexts(nick string) []string {
	return []string{
		"这里是" + nick + "(っ●ω●)っ",
		nick + "不在呢~",
		"哼！" + nick + "不想理你~",
	}
}

func randomReply(ctx protocol.Context) string {
	texts := replyTexts(botNick(ctx.Host().NickNames()))
	return texts[rand.IntN(len(texts))]
}

// Plugin runs only when the message is addressed to the bot.
func Plugin(ctx protocol.Context) {
	if ctx.Event().Injected || !triggerWords[ctx.PlainText()] {
		return
	}
	_ = ctx.SendPlainMessage(randomReply(ctx))
	userID := ctx.UserID()
	go func() {
		select {
		case <-time.After(pokeBackDelay):
		case <-ctx.Ctx().Done():
			return
		}
		if err := ctx.SendPoke(userID); err != nil {
			log := logger.Get("plugin-poke")
			log.Warn().Err(err).Str("user", userID).Msg("poke back")
		}
	}()
	ctx.BlockNext()
}

func handlePoked(ctx protocol.Context) {
	_ = ctx.SendPlainMessage(randomReply(ctx))
}
