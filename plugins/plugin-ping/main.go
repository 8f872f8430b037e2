// Package pluginping: replies "pong" to the ping command. WithMeta(nil) at init, so it stays out of allhelps.
package pluginping

import "github.com/Hafuunano/Plugin-SuperPoke/lib/protocol"

var p = protocol.Engine.WithMeta(nil)

func init() {
	p.OnCommand("ping", "回复 pong").Func(Plugin)
}

func Plugin(ctx protocol.Context) {
	_ = ctx.Reply(protocol.Message{protocol.Text("pong")})
}
