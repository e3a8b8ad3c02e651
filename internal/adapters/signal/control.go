package signal

import (
	"github.com/dkeye/campfire/internal/app"
	"github.com/dkeye/campfire/internal/app/orch"
	"github.com/dkeye/campfire/internal/core"
	"github.com/dkeye/campfire/internal/domain"
)

type errorEvent struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// ackEvent answers the inbound event with the same id.
type ackEvent struct {
	Type     string              `json:"type"`
	ID       string              `json:"id,omitempty"`
	Event    string              `json:"event"`
	OK       bool                `json:"ok"`
	Error    string              `json:"error,omitempty"`
	RoomID   domain.RoomID       `json:"roomId,omitempty"`
	RoomName domain.RoomName     `json:"roomName,omitempty"`
	History  *[]app.MessageEvent `json:"history,omitempty"`
}

func newAckEvent(env envelope, a orch.Ack) ackEvent {
	return ackEvent{
		Type:     app.EventAck,
		ID:       env.ID,
		Event:    env.Type,
		OK:       a.OK,
		Error:    a.Error,
		RoomID:   a.RoomID,
		RoomName: a.RoomName,
	}
}

// ackFor builds the AckFunc for one inbound event. It only enqueues, so it
// is safe to call while the orchestrator holds a room lock.
func (ctl *SignalWSController) ackFor(c core.SignalConnection, env envelope) orch.AckFunc {
	return func(a orch.Ack) {
		ctl.sendJSON(c, newAckEvent(env, a))
	}
}

func (ctl *SignalWSController) handlePing(
	conn *WsSignalConn,
) {
	resp := struct {
		Type string `json:"type"`
	}{
		Type: app.EventPong,
	}
	ctl.sendJSON(conn, resp)
}
