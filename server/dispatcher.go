package server

import (
	"runtime/debug"
	"time"

	"github.com/lguibr/overworld/actorsys"
	"github.com/lguibr/overworld/reliability"
	"github.com/lguibr/overworld/wire"
)

// tickMsg drives one clock tick (spec §5's 20Hz clock goroutine).
type tickMsg struct {
	deltaTime float64
}

// rawDatagramMsg is one UDP datagram as read off the socket, not yet
// framed or decoded — that happens on the dispatcher's own goroutine
// so the listener loop stays free of game state, per spec §5.
type rawDatagramMsg struct {
	addr string
	data []byte
}

// clientConn is the dispatcher's per-address bookkeeping: the
// reliability sorter every inbound datagram from this address passes
// through, and the logical player id once the handshake names one
// (nil/empty before Login completes), mirroring
// original_source/src/net/server.rs's packet_sorter_map + player_id_map
// pair.
type clientConn struct {
	addr     string
	sorter   *reliability.Sorter
	playerID string
	username string
}

// dispatcher is the single actor hosting every mutation of game state:
// world, orchestrator, plugins, and per-connection reliability.
type dispatcher struct {
	srv     *Server
	sorters map[string]*clientConn
}

func (d *dispatcher) Receive(ctx actorsys.Context) {
	defer func() {
		if r := recover(); r != nil {
			d.srv.log.Error("dispatcher panic recovered", "panic", r, "stack", string(debug.Stack()))
		}
	}()

	switch msg := ctx.Message().(type) {
	case actorsys.Started:
		d.srv.log.Info("dispatcher started")

	case tickMsg:
		d.handleTick(msg.deltaTime)

	case rawDatagramMsg:
		d.handleDatagram(msg.addr, msg.data)

	case actorsys.Stopping, actorsys.Stopped:
		// no per-connection cleanup owned here beyond what DropClient
		// already did as each client disconnected.
	}
}

func (d *dispatcher) handleTick(deltaTime float64) {
	s := d.srv
	s.plugins.Tick(s.world, deltaTime)
	d.executeTransfers()

	s.orch.ResendBackedUpPackets(s.cfg.ResendBudget)

	var kicked []string
	for addr, conn := range d.sorters {
		if time.Since(conn.sorter.LastMessageTime()) > s.cfg.MaxSilence {
			kicked = append(kicked, addr)
		}
	}
	for _, addr := range kicked {
		s.orch.Send(addr, wire.Unreliable, wire.Kick{Reason: "packet silence"})
		d.disconnectClient(addr, "packet silence")
	}

	for _, area := range s.world.DirtyAreas() {
		s.orch.BroadcastToRoom(area.ID(), wire.ReliableOrdered, wire.MapUpdate{Data: []byte(area.Map().Render())})
	}
}

func (d *dispatcher) handleDatagram(addr string, data []byte) {
	s := d.srv
	frame, ok := wire.DecodeFrame(data)
	if !ok {
		if s.cfg.LogPackets {
			s.log.Warn("dropping undersized datagram", "addr", addr)
		}
		return
	}

	conn, known := d.sorters[addr]
	if !known && (frame.Mode == wire.Reliable || frame.Mode == wire.ReliableOrdered) && frame.ID == 0 {
		conn = &clientConn{addr: addr, sorter: reliability.NewSorter()}
		d.sorters[addr] = conn
		if s.cfg.LogConnections {
			s.log.Info("connected", "addr", addr)
		}
	}

	if conn == nil {
		// Never-connected address sending a non-handshake frame: decode
		// and handle once, without reliability bookkeeping, matching
		// original_source/src/net/server.rs's net.handle_packet fallback.
		d.dispatchPacket(addr, "", wire.DecodeClientPacket(frame.Body))
		return
	}

	result := conn.sorter.Sort(frame)
	if result.AckRequired {
		s.orch.Send(addr, wire.Unreliable, wire.Ack{ReliabilityByte: uint8(result.AckMode), ID: result.AckID})
	}

	for _, body := range result.Bodies {
		d.dispatchPacket(addr, conn.playerID, wire.DecodeClientPacket(body))
	}
}

func (d *dispatcher) dispatchPacket(addr, playerID string, packet wire.ClientPacket) {
	s := d.srv
	if s.cfg.LogPackets {
		s.log.Debug("received packet", "addr", addr, "type", packet.Type())
	}

	if ack, ok := packet.(wire.ClientAck); ok {
		s.orch.Acknowledged(addr, wire.ReliabilityMode(ack.ReliabilityByte), ack.ID)
		return
	}

	if playerID == "" {
		d.handlePreLogin(addr, packet)
		return
	}
	d.handlePostLogin(addr, playerID, packet)
}
