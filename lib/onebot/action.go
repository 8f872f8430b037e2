package onebot

import (
	"fmt"
	"strconv"

	"github.com/tidwall/sjson"

	"github.com/Hafuunano/Plugin-SuperPoke/lib/protocol"
)

// idValue sends numeric ids as numbers; some implementations reject quoted ids.
func idValue(id string) any {
	if n, err := strconv.ParseInt(id, 10, 64); err == nil {
		return n
	}
	return id
}

func newAction(action, echo string) ([]byte, error) {
	b, err := sjson.SetBytes([]byte(`{}`), "action", action)
	if err != nil {
		return nil, err
	}
	return sjson.SetBytes(b, "echo", echo)
}

// buildSendMessage returns a send_group_msg or send_private_msg action.
func buildSendMessage(t protocol.Target, msg protocol.Message, echo string) ([]byte, error) {
	action := "send_private_msg"
	if t.GroupID != "" {
		action = "send_group_msg"
	}
	b, err := newAction(action, echo)
	if err != nil {
		return nil, err
	}
	if t.GroupID != "" {
		b, err = sjson.SetBytes(b, "params.group_id", idValue(t.GroupID))
	} else {
		b, err = sjson.SetBytes(b, "params.user_id", idValue(t.UserID))
	}
	if err != nil {
		return nil, err
	}
	if b, err = sjson.SetRawBytes(b, "params.message", []byte(`[]`)); err != nil {
		return nil, err
	}
	for _, seg := range msg {
		data := seg.Data
		if data == nil {
			data = map[string]any{}
		}
		b, err = sjson.SetBytes(b, "params.message.-1", map[string]any{"type": string(seg.Type), "data": data})
		if err != nil {
			return nil, fmt.Errorf("onebot encode segment %s: %w", seg.Type, err)
		}
	}
	return b, nil
}

// buildPoke returns group_poke in groups and friend_poke in private chats.
func buildPoke(t protocol.Target, userID, echo string) ([]byte, error) {
	action := "friend_poke"
	if t.GroupID != "" {
		action = "group_poke"
	}
	b, err := newAction(action, echo)
	if err != nil {
		return nil, err
	}
	if t.GroupID != "" {
		if b, err = sjson.SetBytes(b, "params.group_id", idValue(t.GroupID)); err != nil {
			return nil, err
		}
	}
	return sjson.SetBytes(b, "params.user_id", idValue(userID))
}
