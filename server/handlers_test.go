package server

import (
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/lguibr/overworld/area"
	"github.com/lguibr/overworld/assets"
	"github.com/lguibr/overworld/orchestrator"
	"github.com/lguibr/overworld/tiled"
	"github.com/lguibr/overworld/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recordingTransport is a fake orchestrator.Transport that remembers
// every datagram written to it, keyed by destination address.
type recordingTransport struct {
	mu   sync.Mutex
	sent map[string][][]byte
}

func newRecordingTransport() *recordingTransport {
	return &recordingTransport{sent: make(map[string][][]byte)}
}

func (t *recordingTransport) WriteTo(addr string, data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sent[addr] = append(t.sent[addr], data)
	return nil
}

func (t *recordingTransport) count(addr string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sent[addr])
}

// newTestServer builds a Server with its orchestrator wired to a
// recording fake transport, bypassing Listen's real socket bind, and a
// default area with no map data (join/position tests don't need one).
func newTestServer(t *testing.T) (*Server, *dispatcher, *recordingTransport) {
	t.Helper()
	s := New(FastConfig(), discardLogger())
	transport := newRecordingTransport()
	s.orch = orchestrator.New(transport)
	s.world.AddArea(area.New("area1", nil))
	s.world.SetDefaultAreaID("area1")
	d := &dispatcher{srv: s, sorters: make(map[string]*clientConn)}
	return s, d, transport
}

func TestHandlePreLoginAssignsPlayerIDAndSendsLogin(t *testing.T) {
	_, d, transport := newTestServer(t)
	conn := &clientConn{addr: "1.2.3.4:9"}
	d.sorters[conn.addr] = conn

	d.handlePreLogin(conn.addr, wire.ClientLogin{Username: "alice", Data: "hello"})

	assert.NotEmpty(t, conn.playerID)
	assert.Equal(t, "alice", conn.username)
	assert.Equal(t, 1, transport.count(conn.addr))
}

func TestHandleRequestJoinSpawnsActorInDefaultArea(t *testing.T) {
	s, d, _ := newTestServer(t)
	addr := "1.2.3.4:9"
	d.sorters[addr] = &clientConn{addr: addr, playerID: "player-1", username: "alice"}

	d.handleRequestJoin(addr, "player-1")

	actor, ok := s.world.Actor("player-1")
	require.True(t, ok)
	assert.Equal(t, "area1", actor.AreaID)
	assert.Equal(t, "alice", actor.Name)

	client, ok := s.world.Client("player-1")
	require.True(t, ok)
	assert.Equal(t, addr, client.Addr)
}

func TestHandlePositionBroadcastsActorMoveOnceReady(t *testing.T) {
	s, d, transport := newTestServer(t)
	addr := "1.2.3.4:9"
	d.sorters[addr] = &clientConn{addr: addr, playerID: "player-1", username: "alice"}
	s.orch.AddClient(addr, "player-1")
	d.handleRequestJoin(addr, "player-1")

	client, _ := s.world.Client("player-1")
	client.Ready = true

	d.handlePosition("player-1", wire.Position{X: 10, Y: 5, Z: 0})

	actor, _ := s.world.Actor("player-1")
	assert.Equal(t, 10.0, actor.X)
	assert.Equal(t, 5.0, actor.Y)
	assert.Equal(t, 1, transport.count(addr))
}

func TestHandlePositionIgnoredBeforeReady(t *testing.T) {
	s, d, transport := newTestServer(t)
	addr := "1.2.3.4:9"
	d.sorters[addr] = &clientConn{addr: addr, playerID: "player-1", username: "alice"}
	d.handleRequestJoin(addr, "player-1")

	sentBefore := transport.count(addr)
	d.handlePosition("player-1", wire.Position{X: 10, Y: 5, Z: 0})

	actor, _ := s.world.Actor("player-1")
	assert.NotEqual(t, 10.0, actor.X)
	assert.Equal(t, sentBefore, transport.count(addr))
}

func TestDisconnectClientRemovesActorAndDropsSorter(t *testing.T) {
	s, d, _ := newTestServer(t)
	addr := "1.2.3.4:9"
	d.sorters[addr] = &clientConn{addr: addr, playerID: "player-1", username: "alice"}
	d.handleRequestJoin(addr, "player-1")

	d.disconnectClient(addr, "test")

	_, ok := s.world.Actor("player-1")
	assert.False(t, ok)
	_, stillTracked := d.sorters[addr]
	assert.False(t, stillTracked)
}

const minimalMapXML = `<?xml version="1.0" encoding="UTF-8"?>
<map width="1" height="1" tilewidth="32" tileheight="16" nextlayerid="2" nextobjectid="1">
  <layer id="1" name="Ground">
    <data encoding="csv">1</data>
  </layer>
</map>`

func TestHandleRequestJoinStreamsUncachedRequiredAssets(t *testing.T) {
	s, d, transport := newTestServer(t)
	m, err := tiled.Parse(minimalMapXML)
	require.NoError(t, err)

	a := area.New("withmap", m)
	a.RequireAsset("/server/assets/tileset.tsx")
	s.store.Set("/server/assets/tileset.tsx", assets.Asset{Kind: assets.KindText, Bytes: []byte("<tileset/>")})
	s.world.AddArea(a)
	s.world.SetDefaultAreaID("withmap")

	addr := "1.2.3.4:9"
	d.sorters[addr] = &clientConn{addr: addr, playerID: "player-1", username: "alice"}
	s.orch.AddClient(addr, "player-1")
	d.handleRequestJoin(addr, "player-1")

	client, ok := s.world.Client("player-1")
	require.True(t, ok)
	assert.True(t, client.HasCachedAsset("/server/assets/tileset.tsx"))
	assert.Greater(t, transport.count(addr), 0)
}

func TestHandleAvatarChangeRejectsOversizedAnimationFrame(t *testing.T) {
	s, d, transport := newTestServer(t)
	addr := "1.2.3.4:9"
	d.sorters[addr] = &clientConn{addr: addr, playerID: "player-1", username: "alice"}
	d.handleRequestJoin(addr, "player-1")

	client, ok := s.world.Client("player-1")
	require.True(t, ok)
	client.AnimationBuffer = []byte(`frame x="0" y="0" w="32" h="512"`)

	sentBefore := transport.count(addr)
	d.handleAvatarChange("player-1", wire.AvatarChange{Name: "Hero"})

	actor, ok := s.world.Actor("player-1")
	require.True(t, ok)
	assert.Empty(t, actor.TexturePath)
	assert.Equal(t, sentBefore, transport.count(addr))
}

func TestHandleEmoteBroadcastsUnlessPluginPrevents(t *testing.T) {
	s, d, transport := newTestServer(t)
	addr := "1.2.3.4:9"
	d.sorters[addr] = &clientConn{addr: addr, playerID: "player-1", username: "alice"}
	s.orch.AddClient(addr, "player-1")
	d.handleRequestJoin(addr, "player-1")

	sentBefore := transport.count(addr)
	d.handleEmote("player-1", wire.ClientEmote{EmoteID: 3})

	assert.Greater(t, transport.count(addr), sentBefore)
}
