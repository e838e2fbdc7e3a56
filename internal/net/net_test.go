package net

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mage-engine/mage/internal/config"
	"github.com/mage-engine/mage/internal/entity"
	"github.com/mage-engine/mage/internal/physics"
	"github.com/mage-engine/mage/internal/physics/protocol"
	"github.com/mage-engine/mage/internal/worker"
)

const riseModule = `
local mage = require("mage")
local bodies = {}
return {
  add_box = function(uuid, desc)
    bodies[uuid] = { x = 0, y = desc.mass, z = 0 }
  end,
  step = function(dt)
    for uuid, p in pairs(bodies) do
      p.y = p.y + 1
      mage.transform(uuid, p)
    end
  end,
}
`

func startHost(t *testing.T) (root string, cfg config.PhysicsConfig) {
	t.Helper()
	root = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "rise.lua"), []byte(riseModule), 0o644))

	h := NewHandler(worker.Options{StepRate: 5 * time.Millisecond, Root: root}, zap.NewNop())
	srv := httptest.NewServer(h)
	t.Cleanup(func() {
		srv.Close()
		h.Wait()
	})

	cfg = config.Defaults().Physics
	cfg.Enabled = true
	cfg.Transport = config.TransportWebsocket
	cfg.Address = "ws" + strings.TrimPrefix(srv.URL, "http")
	cfg.Path = "rise.lua"
	cfg.ReadyTimeout = 2 * time.Second
	return root, cfg
}

func TestRemoteContextDrivesEntity(t *testing.T) {
	_, cfg := startHost(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, err := Dial(ctx, cfg, zap.NewNop())
	require.NoError(t, err)

	crate := entity.NewCube("crate", 1)
	reg := physics.RegistryFunc(func(id string) (physics.Entity, bool) {
		if id == crate.UUID() {
			return crate, true
		}
		return nil, false
	})
	bridge, err := physics.NewBridge(cfg, conn, reg, nil, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, bridge.Init(ctx))

	bridge.Add(crate, physics.Box{Mass: 10}.Description())
	require.Eventually(t, func() bool {
		bridge.Dispatch(0)
		return crate.Position().Y() > 10
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, float32(0), crate.Position().X())

	bridge.Dispose()
	require.NoError(t, bridge.AwaitTerminated(ctx))
	assert.Equal(t, physics.StateDisposed, bridge.State())
	assert.ErrorIs(t, conn.Send(protocol.Terminate{}), ErrClosed)
}

func TestHostIgnoresMalformedFrames(t *testing.T) {
	_, cfg := startHost(t)

	ws, _, err := websocket.DefaultDialer.Dial(cfg.Address, nil)
	require.NoError(t, err)
	defer ws.Close()

	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte(`{"type":"WARP"}`)))
	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte(`not json`)))
	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte(`{"type":"LOAD","path":"rise.lua"}`)))

	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, payload, err := ws.ReadMessage()
	require.NoError(t, err)
	ev, err := protocol.DecodeEvent(payload)
	require.NoError(t, err)
	assert.Equal(t, protocol.Ready{}, ev)
}

func TestHostConfinesModulePath(t *testing.T) {
	_, cfg := startHost(t)
	cfg.Path = "../../rise.lua"
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, err := Dial(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	defer conn.Close()

	// confined to the root, so ../../rise.lua is still rise.lua
	require.NoError(t, conn.Send(protocol.Init{Path: cfg.Path}))
	select {
	case ev := <-conn.Events():
		assert.Equal(t, protocol.Ready{}, ev)
	case <-ctx.Done():
		t.Fatal("no ready")
	}
}

func TestDialFailure(t *testing.T) {
	cfg := config.Defaults().Physics
	cfg.Address = "ws://127.0.0.1:1/physics"
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := Dial(ctx, cfg, zap.NewNop())
	require.Error(t, err)
}

func TestConnCloseIsIdempotent(t *testing.T) {
	_, cfg := startHost(t)
	conn, err := Dial(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, conn.Close())
	assert.NoError(t, conn.Close())
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-conn.Events():
			return !ok
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
}
