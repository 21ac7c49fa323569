// Package orchestrator fans server packets out to connected peers: it
// owns one reliability.Shipper per peer, tracks room membership for
// broadcast, and brackets synchronized update windows that force
// ReliableOrdered delivery while a multi-packet update is in flight.
package orchestrator

import (
	"errors"

	"github.com/lguibr/overworld/reliability"
	"github.com/lguibr/overworld/wire"
)

// ErrSynchronizationUnderflow is returned by
// RequestDisableUpdateSynchronization when it is called more times
// than RequestUpdateSynchronization, rather than silently saturating
// at zero.
var ErrSynchronizationUnderflow = errors.New("orchestrator: disable update synchronization called without a matching request")

// Transport is the minimal egress a Orchestrator needs: fire-and-forget
// datagram delivery to an opaque peer address. The server package
// supplies the real UDP socket; tests supply a recording fake.
type Transport interface {
	WriteTo(addr string, data []byte) error
}

type peer struct {
	addr    string
	shipper *reliability.Shipper
}

// Orchestrator is the send-side packet fan-out for every connected
// peer, grounded on original_source/src/packets/management/packet_orchestrator.rs.
type Orchestrator struct {
	transport Transport

	clientByID   map[string]*peer
	peerByAddr   map[string]*peer
	roomsByAddr  map[string][]string
	peersByRoom  map[string][]*peer

	synchronizeUpdates  bool
	synchronizeRequests int
	syncLockedAddrs     map[string]bool
}

// New returns an Orchestrator that writes through transport.
func New(transport Transport) *Orchestrator {
	return &Orchestrator{
		transport:   transport,
		clientByID:  make(map[string]*peer),
		peerByAddr:  make(map[string]*peer),
		roomsByAddr: make(map[string][]string),
		peersByRoom: make(map[string][]*peer),
		syncLockedAddrs: make(map[string]bool),
	}
}

// AddClient registers a new connected peer by transport address and
// logical id.
func (o *Orchestrator) AddClient(addr, id string) {
	p := &peer{addr: addr, shipper: reliability.NewShipper()}
	o.clientByID[id] = p
	o.peerByAddr[addr] = p
	o.roomsByAddr[addr] = nil
}

// DropClient removes a peer, first leaving every room it had joined.
func (o *Orchestrator) DropClient(addr string) {
	for _, roomID := range append([]string(nil), o.roomsByAddr[addr]...) {
		o.LeaveRoom(addr, roomID)
	}
	delete(o.roomsByAddr, addr)
	delete(o.peerByAddr, addr)
	for id, p := range o.clientByID {
		if p.addr == addr {
			delete(o.clientByID, id)
		}
	}
}

// JoinRoom adds addr's peer to room_id, creating the room if needed.
// Joining a room already joined is a no-op.
func (o *Orchestrator) JoinRoom(addr, roomID string) {
	p, ok := o.peerByAddr[addr]
	if !ok {
		return
	}

	joined := o.roomsByAddr[addr]
	for _, id := range joined {
		if id == roomID {
			return
		}
	}

	o.peersByRoom[roomID] = append(o.peersByRoom[roomID], p)
	o.roomsByAddr[addr] = append(joined, roomID)
}

// LeaveRoom removes addr's peer from room_id, deleting the room if it
// becomes empty.
func (o *Orchestrator) LeaveRoom(addr, roomID string) {
	p, ok := o.peerByAddr[addr]
	if !ok {
		return
	}

	joined := o.roomsByAddr[addr]
	idx := -1
	for i, id := range joined {
		if id == roomID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	o.roomsByAddr[addr] = append(joined[:idx], joined[idx+1:]...)

	room, ok := o.peersByRoom[roomID]
	if !ok {
		return
	}
	for i, member := range room {
		if member == p {
			room = append(room[:i], room[i+1:]...)
			break
		}
	}
	if len(room) == 0 {
		delete(o.peersByRoom, roomID)
	} else {
		o.peersByRoom[roomID] = room
	}
}

// RequestUpdateSynchronization enters (or re-enters, incrementing a
// refcount) a synchronized update window: every packet sent to a peer
// during the window is forced to ReliableOrdered, and the first one is
// preceded by SynchronizeUpdates.
func (o *Orchestrator) RequestUpdateSynchronization() {
	o.synchronizeUpdates = true
	o.synchronizeRequests++
}

// RequestDisableUpdateSynchronization decrements the refcount; once it
// reaches zero, EndSynchronization is sent to every locked peer and the
// window closes. Calling it more times than
// RequestUpdateSynchronization returns ErrSynchronizationUnderflow
// instead of saturating silently.
func (o *Orchestrator) RequestDisableUpdateSynchronization() error {
	if o.synchronizeRequests == 0 {
		return ErrSynchronizationUnderflow
	}
	o.synchronizeRequests--
	if o.synchronizeRequests > 0 {
		return nil
	}

	body := wire.EndSynchronization{}.Encode()
	for addr := range o.syncLockedAddrs {
		if p, ok := o.peerByAddr[addr]; ok {
			o.writeRaw(p, wire.ReliableOrdered, body)
		}
	}
	o.syncLockedAddrs = make(map[string]bool)
	o.synchronizeUpdates = false
	return nil
}

func (o *Orchestrator) handleSynchronization(p *peer, mode wire.ReliabilityMode) wire.ReliabilityMode {
	if !o.synchronizeUpdates {
		return mode
	}
	if !o.syncLockedAddrs[p.addr] {
		o.syncLockedAddrs[p.addr] = true
		o.writeRaw(p, wire.ReliableOrdered, wire.SynchronizeUpdates{}.Encode())
	}
	return wire.ReliableOrdered
}

func (o *Orchestrator) writeRaw(p *peer, mode wire.ReliabilityMode, body []byte) {
	framed := p.shipper.Send(mode, body)
	_ = o.transport.WriteTo(p.addr, framed)
}

// Send delivers packet to one peer by its transport address.
func (o *Orchestrator) Send(addr string, mode wire.ReliabilityMode, packet wire.ServerPacket) {
	p, ok := o.peerByAddr[addr]
	if !ok {
		return
	}
	mode = o.handleSynchronization(p, mode)
	o.writeRaw(p, mode, packet.Encode())
}

// SendByID delivers packet to one peer by its logical client id.
func (o *Orchestrator) SendByID(id string, mode wire.ReliabilityMode, packet wire.ServerPacket) {
	p, ok := o.clientByID[id]
	if !ok {
		return
	}
	mode = o.handleSynchronization(p, mode)
	o.writeRaw(p, mode, packet.Encode())
}

// SendBytePackets delivers several pre-encoded bodies to one peer
// under the same reliability mode, in order.
func (o *Orchestrator) SendBytePackets(addr string, mode wire.ReliabilityMode, bodies [][]byte) {
	p, ok := o.peerByAddr[addr]
	if !ok {
		return
	}
	mode = o.handleSynchronization(p, mode)
	for _, body := range bodies {
		o.writeRaw(p, mode, body)
	}
}

// BroadcastToRoom delivers packet to every peer currently in roomID.
func (o *Orchestrator) BroadcastToRoom(roomID string, mode wire.ReliabilityMode, packet wire.ServerPacket) {
	room, ok := o.peersByRoom[roomID]
	if !ok {
		return
	}
	body := packet.Encode()
	for _, p := range room {
		m := o.handleSynchronization(p, mode)
		o.writeRaw(p, m, body)
	}
}

// Broadcast delivers packet to every connected peer.
func (o *Orchestrator) Broadcast(mode wire.ReliabilityMode, packet wire.ServerPacket) {
	body := packet.Encode()
	for _, p := range o.peerByAddr {
		m := o.handleSynchronization(p, mode)
		o.writeRaw(p, m, body)
	}
}

// Acknowledged tells the peer's Shipper that a reliable/reliable-ordered
// packet has been confirmed delivered.
func (o *Orchestrator) Acknowledged(addr string, mode wire.ReliabilityMode, id uint64) {
	if p, ok := o.peerByAddr[addr]; ok {
		p.shipper.Acknowledge(mode, id)
	}
}

// ResendBackedUpPackets retransmits every peer's due reliable packets,
// capping each peer's retransmit count for this tick at resendBudget
// (0 or less means unbounded); anything over budget stays backed up
// for the next tick. Intended to be called once per server tick.
func (o *Orchestrator) ResendBackedUpPackets(resendBudget int) {
	for _, p := range o.peerByAddr {
		for _, raw := range p.shipper.DueRetransmits(resendBudget) {
			_ = o.transport.WriteTo(p.addr, raw)
		}
	}
}

// RoomsOf returns the rooms addr's peer currently belongs to.
func (o *Orchestrator) RoomsOf(addr string) []string {
	return append([]string(nil), o.roomsByAddr[addr]...)
}

// HasPeer reports whether addr is a currently registered peer.
func (o *Orchestrator) HasPeer(addr string) bool {
	_, ok := o.peerByAddr[addr]
	return ok
}

// RoomExists reports whether roomID currently has any members.
func (o *Orchestrator) RoomExists(roomID string) bool {
	_, ok := o.peersByRoom[roomID]
	return ok
}
