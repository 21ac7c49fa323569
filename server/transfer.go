package server

import (
	"github.com/lguibr/overworld/wire"
	"github.com/lguibr/overworld/world"
)

// executeTransfers drains every transfer a plugin queued this tick and
// carries each one out, grounded on spec §4.7's "transferring a player
// to another area" bullet: mark transferring, send warp-out, send
// area-unload, move the actor and its room membership, ship the
// destination's required assets and map, then broadcast the spawn and
// send warp-in.
func (d *dispatcher) executeTransfers() {
	for _, req := range d.srv.world.PendingTransfers() {
		d.executeTransfer(req)
	}
}

func (d *dispatcher) executeTransfer(req world.TransferRequest) {
	s := d.srv
	actor, ok := s.world.Actor(req.ActorID)
	if !ok {
		return
	}
	client, ok := s.world.Client(req.ActorID)
	if !ok {
		return
	}
	sourceAreaID := actor.AreaID

	client.Transferring = true
	s.orch.BroadcastToRoom(sourceAreaID, wire.Reliable, wire.ActorDisconnected{ID: req.ActorID, WarpOut: true})
	s.orch.Send(client.Addr, wire.Reliable, wire.TransferStart{})

	if _, err := s.world.TransferActor(req.ActorID, req.DestinationAreaID); err != nil {
		s.log.Error("transfer failed", "playerID", req.ActorID, "destination", req.DestinationAreaID, "err", err)
		client.Transferring = false
		return
	}
	actor.SetPosition(req.X, req.Y, req.Z)
	client.WarpIn = req.WarpIn
	client.WarpX, client.WarpY, client.WarpZ = req.X, req.Y, req.Z

	s.orch.LeaveRoom(client.Addr, sourceAreaID)
	s.orch.JoinRoom(client.Addr, req.DestinationAreaID)

	if dest, ok := s.world.Area(req.DestinationAreaID); ok && dest.Map() != nil {
		d.shipRequiredAssets(client.Addr, client, dest.RequiredAssets())
		s.orch.Send(client.Addr, wire.ReliableOrdered, wire.MapUpdate{Data: []byte(dest.Map().Render())})
	}

	s.orch.BroadcastToRoom(req.DestinationAreaID, wire.Reliable, actor.SpawnPacket(req.X, req.Y, req.Z, req.WarpIn))
	s.orch.Send(client.Addr, wire.Reliable, wire.TransferComplete{WarpIn: req.WarpIn})
}

// handleTransferredOut acknowledges the client's confirmation that it
// has finished unloading the area it transferred out of. Transferring
// is already set true by executeTransfer and cleared by handleReady
// once the client re-readies in the destination area — TransferredOut
// names no further state change in spec §4.7, it's a completion signal
// the server only needs to observe.
func (d *dispatcher) handleTransferredOut(playerID string) {
	s := d.srv
	if s.cfg.LogConnections {
		s.log.Debug("client confirmed transfer out", "playerID", playerID)
	}
}
