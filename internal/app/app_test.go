package app

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/dkeye/campfire/internal/core"
	"github.com/dkeye/campfire/internal/domain"
	"github.com/stretchr/testify/require"
)

var errQueueFull = errors.New("queue full")

type fakeConn struct {
	mu     sync.Mutex
	frames []core.Frame
	full   bool
	closed bool
}

func (c *fakeConn) TrySend(f core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.full {
		return errQueueFull
	}
	c.frames = append(c.frames, f)
	return nil
}

func (c *fakeConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *fakeConn) events(t *testing.T) []map[string]any {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]map[string]any, 0, len(c.frames))
	for _, f := range c.frames {
		var m map[string]any
		require.NoError(t, json.Unmarshal(f, &m))
		out = append(out, m)
	}
	return out
}

func bindFake(reg *Registry, sid core.SessionID) *fakeConn {
	conn := &fakeConn{}
	reg.Bind(sid, core.NewMemberSession(nil, conn), nil)
	return conn
}

var (
	general = domain.Room{ID: "r-general", Name: "general"}
	random  = domain.Room{ID: "r-random", Name: "random"}
	alice   = domain.User{ID: "u-alice", Username: "alice"}
	bob     = domain.User{ID: "u-bob", Username: "bob"}
)
