package signal

import (
	"github.com/dkeye/campfire/internal/core"
	"github.com/dkeye/campfire/internal/domain"
)

func (ctl *SignalWSController) handleWhoAmI(
	sid core.SessionID,
	conn *WsSignalConn,
) {
	resp := struct {
		Type     string          `json:"type"`
		UserID   domain.UserID   `json:"userId,omitempty"`
		Username string          `json:"username,omitempty"`
		Room     domain.RoomID   `json:"roomId,omitempty"`
		RoomName domain.RoomName `json:"roomName,omitempty"`
	}{
		Type: "whoami",
	}
	if sess, ok := ctl.Orch.Registry.Session(sid); ok && sess.Meta() != nil {
		resp.UserID = sess.Meta().ID
		resp.Username = sess.Meta().Username
	}
	if m, ok := ctl.Orch.Registry.RoomOf(sid); ok {
		resp.UserID = m.User.ID
		resp.Username = m.User.Username
		resp.Room = m.Room.ID
		resp.RoomName = m.Room.Name
	}
	ctl.sendJSON(conn, resp)
}
