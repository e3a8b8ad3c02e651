package signal

import (
	"context"
	"encoding/json"

	"github.com/dkeye/campfire/internal/app"
	"github.com/dkeye/campfire/internal/app/orch"
	"github.com/dkeye/campfire/internal/core"
	"github.com/dkeye/campfire/internal/domain"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) handleCreateRoom(
	ctx context.Context,
	sid core.SessionID,
	conn *WsSignalConn,
	env envelope,
	data []byte,
) {
	var p struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad createRoom payload")
		ctl.sendError(conn, "bad_payload")
		return
	}
	ctl.Orch.Dispatch(ctx, sid, orch.CreateRoom{Name: p.Name}, ctl.ackFor(conn, env))
}

func (ctl *SignalWSController) handleJoin(
	ctx context.Context,
	sid core.SessionID,
	conn *WsSignalConn,
	env envelope,
	data []byte,
) {
	var p struct {
		Identifier string `json:"identifier"`
		RoomID     string `json:"roomId"`
		Username   string `json:"username"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad joinRoom payload")
		ctl.sendError(conn, "bad_payload")
		return
	}
	identifier := p.Identifier
	if identifier == "" {
		identifier = p.RoomID
	}
	ack := ctl.ackFor(conn, env)
	ref, err := domain.ParseRoomRef(identifier)
	if err != nil {
		ack(orch.Ack{Error: orch.ErrorCode(err)})
		return
	}

	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("ref", ref.String()).Msg("join")
	ctl.Orch.Dispatch(ctx, sid, orch.JoinRoom{Ref: ref, Username: p.Username}, func(a orch.Ack) {
		resp := newAckEvent(env, a)
		if a.OK {
			history := make([]app.MessageEvent, 0, len(a.History))
			for _, m := range a.History {
				history = append(history, app.NewMessageEvent(m))
			}
			resp.History = &history
		}
		ctl.sendJSON(conn, resp)
	})
}

// handleLeave leaves the current room; the connection stays open.
func (ctl *SignalWSController) handleLeave(
	ctx context.Context,
	sid core.SessionID,
	conn *WsSignalConn,
	env envelope,
	data []byte,
) {
	var p struct {
		RoomRef  string `json:"roomRef"`
		Username string `json:"username"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad leaveRoom payload")
		ctl.sendError(conn, "bad_payload")
		return
	}
	log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("leave")
	ctl.Orch.Dispatch(ctx, sid, orch.LeaveRoom{Ref: optionalRef(p.RoomRef), Username: p.Username}, ctl.ackFor(conn, env))
}

// optionalRef treats a blank reference as "the current room".
func optionalRef(raw string) domain.RoomRef {
	ref, err := domain.ParseRoomRef(raw)
	if err != nil {
		return nil
	}
	return ref
}
