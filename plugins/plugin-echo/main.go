// Package pluginecho: echoes back the text after the echo command.
// Demonstrates multi-file layout (entry in main.go, logic in handler.go).
package pluginecho

import (
	"github.com/Hafuunano/Plugin-SuperPoke/lib/protocol"
	"github.com/Hafuunano/Plugin-SuperPoke/lib/types"
)

// Meta is this plugin's metadata; use Meta.PluginID, Meta.PluginName, etc. inside this package.
var Meta = types.NewPluginEngine("plugin-echo-001", "plugin-echo", "skill", true).
	WithVersion("1.0.0").
	WithDesc("复读机：把 echo 后面的内容原样发回来。")
var p = protocol.Engine.WithMeta(Meta)

func init() {
	p.OnCommand("echo", "echo <文本>，复读文本").Func(Plugin)
}

// Plugin is the command entry.
func Plugin(ctx protocol.Context) {
	handleEcho(ctx)
}
