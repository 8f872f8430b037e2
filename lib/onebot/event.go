// Package onebot connects the host to a OneBot v11 implementation (NapCat, Lagrange, go-cqhttp)
// over a forward WebSocket.
package onebot

import (
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/Hafuunano/Plugin-SuperPoke/lib/protocol"
)

// ParseEvent converts one inbound frame into a host event. ok is false for frames the host
// does not handle: meta events, action responses, and notices other than pokes.
func ParseEvent(raw []byte, nicknames []string) (ev *protocol.Event, ok bool) {
	if !gjson.ValidBytes(raw) {
		return nil, false
	}
	r := gjson.ParseBytes(raw)
	switch r.Get("post_type").String() {
	case "message":
		return parseMessage(r, nicknames), true
	case "notice":
		return parseNotice(r)
	}
	return nil, false
}

func eventTime(r gjson.Result) time.Time {
	if ts := r.Get("time").Int(); ts > 0 {
		return time.Unix(ts, 0)
	}
	return time.Now()
}

func parseMessage(r gjson.Result, nicknames []string) *protocol.Event {
	ev := &protocol.Event{
		Kind:      protocol.EventMessage,
		Time:      eventTime(r),
		SelfID:    r.Get("self_id").String(),
		UserID:    r.Get("user_id").String(),
		MessageID: r.Get("message_id").String(),
	}
	ev.SenderNickname = r.Get("sender.card").String()
	if ev.SenderNickname == "" {
		ev.SenderNickname = r.Get("sender.nickname").String()
	}
	if r.Get("message_type").String() == "group" {
		ev.GroupID = r.Get("group_id").String()
	} else {
		ev.ToMe = true
	}

	msg := r.Get("message")
	if msg.Type == gjson.String {
		// string message format; CQ codes are left as text
		ev.Message = protocol.Message{protocol.Text(msg.String())}
	} else {
		ev.Message = parseSegments(msg)
	}

	var kept protocol.Message
	for _, seg := range ev.Message {
		if seg.Type == protocol.SegmentTypeAt && seg.Str("qq") == ev.SelfID {
			ev.ToMe = true
			continue
		}
		kept = append(kept, seg)
	}
	ev.Message = kept
	if stripNickname(ev.Message, nicknames) {
		ev.ToMe = true
	}
	return ev
}

func parseSegments(arr gjson.Result) protocol.Message {
	var out protocol.Message
	arr.ForEach(func(_, seg gjson.Result) bool {
		data := make(map[string]any)
		seg.Get("data").ForEach(func(k, v gjson.Result) bool {
			data[k.String()] = v.String()
			return true
		})
		out = append(out, protocol.Segment{Type: protocol.SegmentType(seg.Get("type").String()), Data: data})
		return true
	})
	return out
}

// stripNickname removes a leading bot nickname from the first text segment.
func stripNickname(msg protocol.Message, nicknames []string) bool {
	for i, seg := range msg {
		if seg.Type != protocol.SegmentTypeText {
			continue
		}
		text := strings.TrimLeft(seg.Str("text"), " ")
		if text == "" {
			continue
		}
		for _, nick := range nicknames {
			if nick == "" {
				continue
			}
			if rest, ok := strings.CutPrefix(text, nick); ok {
				msg[i] = protocol.Text(strings.TrimLeft(rest, " ,，"))
				return true
			}
		}
		return false
	}
	return false
}

func parseNotice(r gjson.Result) (*protocol.Event, bool) {
	if r.Get("notice_type").String() != "notify" || r.Get("sub_type").String() != "poke" {
		return nil, false
	}
	ev := &protocol.Event{
		Kind:     protocol.EventNotice,
		Notice:   protocol.NoticePoke,
		Time:     eventTime(r),
		SelfID:   r.Get("self_id").String(),
		UserID:   r.Get("user_id").String(),
		GroupID:  r.Get("group_id").String(),
		TargetID: r.Get("target_id").String(),
	}
	ev.ToMe = ev.TargetID != "" && ev.TargetID == ev.SelfID
	return ev, true
}
