package server

import (
	"testing"

	"github.com/lguibr/overworld/area"
	"github.com/lguibr/overworld/assets"
	"github.com/lguibr/overworld/tiled"
	"github.com/lguibr/overworld/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteTransferMovesActorShipsDestinationAndCompletes(t *testing.T) {
	s, d, transport := newTestServer(t)
	m, err := tiled.Parse(minimalMapXML)
	require.NoError(t, err)

	dest := area.New("area-2", m)
	dest.RequireAsset("/server/assets/tileset.tsx")
	s.store.Set("/server/assets/tileset.tsx", assets.Asset{Kind: assets.KindText, Bytes: []byte("<tileset/>")})
	s.world.AddArea(dest)

	addr := "1.2.3.4:9"
	d.sorters[addr] = &clientConn{addr: addr, playerID: "player-1", username: "alice"}
	s.orch.AddClient(addr, "player-1")
	d.handleRequestJoin(addr, "player-1")

	require.NoError(t, s.world.RequestTransfer("player-1", "area-2", true, nil, nil, nil))
	d.executeTransfers()

	actor, ok := s.world.Actor("player-1")
	require.True(t, ok)
	assert.Equal(t, "area-2", actor.AreaID)

	client, ok := s.world.Client("player-1")
	require.True(t, ok)
	assert.True(t, client.Transferring)
	assert.True(t, client.HasCachedAsset("/server/assets/tileset.tsx"))
	assert.Contains(t, dest.ConnectedPlayers(), "player-1")

	assert.Greater(t, transport.count(addr), 0)
}

func TestExecuteTransferUnknownDestinationLeavesActorPut(t *testing.T) {
	s, d, _ := newTestServer(t)
	addr := "1.2.3.4:9"
	d.sorters[addr] = &clientConn{addr: addr, playerID: "player-1", username: "alice"}
	d.handleRequestJoin(addr, "player-1")

	d.executeTransfer(world.TransferRequest{ActorID: "player-1", DestinationAreaID: "nowhere"})

	actor, ok := s.world.Actor("player-1")
	require.True(t, ok)
	assert.Equal(t, "area1", actor.AreaID)

	client, ok := s.world.Client("player-1")
	require.True(t, ok)
	assert.False(t, client.Transferring)
}
