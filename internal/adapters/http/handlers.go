package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dkeye/campfire/internal/app"
	"github.com/dkeye/campfire/internal/app/orch"
	"github.com/dkeye/campfire/internal/core"
	"github.com/dkeye/campfire/internal/domain"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type handlers struct {
	orch     *orch.Orchestrator
	verifier TokenVerifier
	users    UserSearcher
}

func (h *handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "connections": h.orch.Registry.Count()})
}

func (h *handlers) login(c *gin.Context) {
	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": orch.CodeInvalidRequest})
		return
	}
	if h.verifier == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	user, err := h.verifier.Verify(req.Token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	sess := sessions.Default(c)
	sess.Set(sessionTokenKey, req.Token)
	if err := sess.Save(); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("save session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": orch.CodeInternal})
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *handlers) logout(c *gin.Context) {
	sess := sessions.Default(c)
	sess.Clear()
	if err := sess.Save(); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("clear session")
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) listRooms(c *gin.Context) {
	rooms, err := h.orch.ListRooms(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rooms)
}

func (h *handlers) createRoom(c *gin.Context) {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": orch.CodeInvalidRequest})
		return
	}
	room, err := h.orch.CreateRoom(c.Request.Context(), req.Name)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, core.RoomInfo{ID: room.ID, Name: room.Name})
}

func (h *handlers) getRoom(c *gin.Context) {
	ref, err := domain.ParseRoomRef(c.Param("ref"))
	if err != nil {
		h.fail(c, err)
		return
	}
	room, err := h.orch.Rooms.Resolve(c.Request.Context(), ref)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, core.RoomInfo{ID: room.ID, Name: room.Name, MemberCount: h.orch.Registry.CountIn(room.ID)})
}

func (h *handlers) roomMessages(c *gin.Context) {
	ref, err := domain.ParseRoomRef(c.Param("ref"))
	if err != nil {
		h.fail(c, err)
		return
	}
	var since uint64
	if s := c.Query("since"); s != "" {
		since, err = strconv.ParseUint(s, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": orch.CodeInvalidRequest})
			return
		}
	}
	room, msgs, err := h.orch.RoomHistory(c.Request.Context(), *CurrentUser(c), ref, since)
	if err != nil {
		h.fail(c, err)
		return
	}
	out := make([]app.MessageEvent, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, app.NewMessageEvent(m))
	}
	c.JSON(http.StatusOK, gin.H{"roomId": room.ID, "roomName": room.Name, "messages": out})
}

func (h *handlers) searchUsers(c *gin.Context) {
	users, err := h.users.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *handlers) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("module", "adapters.http").Str("path", c.FullPath()).Msg("request failed")
	}
	c.JSON(status, gin.H{"error": orch.ErrorCode(err)})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrRoomNotFound), errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrDenied):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
