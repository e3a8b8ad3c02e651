package signal

import (
	"context"
	"encoding/json"

	"github.com/dkeye/campfire/internal/app/orch"
	"github.com/dkeye/campfire/internal/core"
	"github.com/rs/zerolog/log"
)

const codeRateLimited = "rate_limited"

func (ctl *SignalWSController) handleChatMessage(
	ctx context.Context,
	sid core.SessionID,
	conn *WsSignalConn,
	env envelope,
	data []byte,
) {
	var p struct {
		RoomRef  string `json:"roomRef"`
		RoomID   string `json:"roomId"`
		Text     string `json:"text"`
		Message  string `json:"message"`
		Username string `json:"username"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad chatMessage payload")
		ctl.sendError(conn, "bad_payload")
		return
	}
	ack := ctl.ackFor(conn, env)

	if !ctl.allow(ctx, sid) {
		log.Debug().Str("module", "signal").Str("sid", string(sid)).Msg("chat rate limited")
		ack(orch.Ack{Error: codeRateLimited})
		return
	}

	ref, text := p.RoomRef, p.Text
	if ref == "" {
		ref = p.RoomID
	}
	if text == "" {
		text = p.Message
	}
	ctl.Orch.Dispatch(ctx, sid, orch.SendMessage{Ref: optionalRef(ref), Text: text, Username: p.Username}, ack)
}

// allow keys the limiter by the member's user id, or by connection before a join.
// Limiter failures let the message through.
func (ctl *SignalWSController) allow(ctx context.Context, sid core.SessionID) bool {
	if ctl.Limiter == nil {
		return true
	}
	key := string(sid)
	if m, ok := ctl.Orch.Registry.RoomOf(sid); ok {
		key = string(m.User.ID)
	}
	ok, err := ctl.Limiter.Allow(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("key", key).Msg("rate limiter unavailable")
		return true
	}
	return ok
}
