// Package pluginhello: replies "Hello, {nick}!" to the hello command.
package pluginhello

import (
	"github.com/Hafuunano/Plugin-SuperPoke/lib/protocol"
	"github.com/Hafuunano/Plugin-SuperPoke/lib/types"
)

// Meta and registration (required: use WithMeta(Meta) then chain).
var Meta = types.NewPluginEngine("plugin-hello-001", "plugin-hello", "skill", true).
	WithVersion("1.0.0").
	WithDesc("打个招呼。")
var p = protocol.Engine.WithMeta(Meta)

func init() {
	p.OnCommand("hello", "向你问好").Func(Plugin)
}

func greeting(nick string) string {
	if nick == "" {
		nick = "user"
	}
	return "Hello, " + nick + "!"
}

// Plugin is the command entry. Pokes routed here by superpoke greet the poking user.
func Plugin(ctx protocol.Context) {
	_ = ctx.SendPlainMessage(greeting(ctx.SenderNickname()))
}
