package pluginecho

import (
	"github.com/Hafuunano/Plugin-SuperPoke/lib/protocol"
)

// emptyEcho is sent when nothing follows the command.
const emptyEcho = "(empty)"

// echoText returns what to send back for the text after the command.
func echoText(arg string) string {
	if arg == "" {
		return emptyEcho
	}
	return arg
}

// handleEcho replies with the rest of the message as plain text.
func handleEcho(ctx protocol.Context) {
	_ = ctx.Reply(protocol.Message{protocol.Text(echoText(ctx.ArgText()))})
}
