// Package reliability implements the per-peer send and receive sides
// of the four-mode UDP reliability layer: a Shipper that frames
// outgoing packets and retransmits unacknowledged reliable ones, and a
// Sorter that reorders and dedupes incoming packets before they reach
// the dispatcher.
package reliability

import (
	"time"

	"github.com/lguibr/overworld/wire"
)

// RetryInterval is how long a reliable packet waits for an ack before
// Shipper resends it, matching original_source's 1/20s retry clock.
const RetryInterval = time.Second / 20

type backedUpPacket struct {
	id      uint64
	sentAt  time.Time
	encoded []byte
}

// Shipper frames outgoing packets for one peer according to their
// reliability mode and tracks reliable/reliable-ordered packets until
// they're acknowledged, resending them at RetryInterval.
type Shipper struct {
	nextUnreliableSequenced uint64
	nextReliable            uint64
	nextReliableOrdered     uint64
	backedUpReliable        []backedUpPacket
	backedUpReliableOrdered []backedUpPacket

	now func() time.Time
}

// NewShipper returns a Shipper with a fresh sequence state.
func NewShipper() *Shipper {
	return &Shipper{now: time.Now}
}

// Send frames body under the given mode, returning the bytes to write
// to the socket. Reliable and ReliableOrdered bodies are also retained
// for retransmission until Acknowledge is called with their id.
func (s *Shipper) Send(mode wire.ReliabilityMode, body []byte) []byte {
	switch mode {
	case wire.UnreliableSequenced:
		id := s.nextUnreliableSequenced
		s.nextUnreliableSequenced++
		return wire.EncodeFrame(mode, id, body)

	case wire.Reliable:
		id := s.nextReliable
		s.nextReliable++
		encoded := wire.EncodeFrame(mode, id, body)
		s.backedUpReliable = append(s.backedUpReliable, backedUpPacket{id: id, sentAt: s.now(), encoded: encoded})
		return encoded

	case wire.ReliableOrdered:
		id := s.nextReliableOrdered
		s.nextReliableOrdered++
		encoded := wire.EncodeFrame(mode, id, body)
		s.backedUpReliableOrdered = append(s.backedUpReliableOrdered, backedUpPacket{id: id, sentAt: s.now(), encoded: encoded})
		return encoded

	default: // Unreliable and anything unrecognized ship once, untracked
		return wire.EncodeFrame(wire.Unreliable, 0, body)
	}
}

// DueRetransmits returns the raw bytes of every backed-up reliable and
// reliable-ordered packet whose RetryInterval has elapsed, oldest
// first, capped at resendBudget packets total. A resendBudget of 0 or
// less means unbounded. Backlogs are append-ordered by creation time,
// so the first packet still within its interval means every later one
// is too; packets past the budget stay backed up and are retried on a
// later call instead of being dropped.
func (s *Shipper) DueRetransmits(resendBudget int) [][]byte {
	var due [][]byte
	now := s.now()

	collect := func(packets []backedUpPacket) {
		for _, p := range packets {
			if now.Sub(p.sentAt) < RetryInterval {
				return
			}
			if resendBudget > 0 && len(due) >= resendBudget {
				return
			}
			due = append(due, p.encoded)
		}
	}
	collect(s.backedUpReliable)
	collect(s.backedUpReliableOrdered)
	return due
}

// Acknowledge removes a backed-up packet from the retransmit queue
// once the peer has confirmed delivery via an Ack.
func (s *Shipper) Acknowledge(mode wire.ReliabilityMode, id uint64) {
	switch mode {
	case wire.Reliable:
		s.backedUpReliable = removeByID(s.backedUpReliable, id)
	case wire.ReliableOrdered:
		s.backedUpReliableOrdered = removeByID(s.backedUpReliableOrdered, id)
	}
}

// PendingCount reports how many reliable/reliable-ordered packets are
// still awaiting acknowledgment, for diagnostics and tests.
func (s *Shipper) PendingCount() int {
	return len(s.backedUpReliable) + len(s.backedUpReliableOrdered)
}

func removeByID(packets []backedUpPacket, id uint64) []backedUpPacket {
	for i, p := range packets {
		if p.id == id {
			return append(packets[:i:i], packets[i+1:]...)
		}
	}
	return packets
}
