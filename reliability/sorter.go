package reliability

import (
	"log/slog"
	"time"

	"github.com/lguibr/overworld/wire"
)

type backedUpOrdered struct {
	id   uint64
	body []byte
}

// Sorter reorders and dedupes incoming datagrams from one peer,
// tracking per-mode sequence state. Reliable and reliable-ordered
// frames need an ack sent back to the sender; Sort reports that via
// its AckRequired bool so the caller can build and ship the Ack
// itself (the Sorter has no socket of its own).
type Sorter struct {
	nextReliable        uint64
	nextUnreliableSeq   uint64
	nextReliableOrdered uint64
	missingReliable     []uint64
	backedUpOrdered     []backedUpOrdered
	lastMessageTime     time.Time

	now func() time.Time
}

// NewSorter returns a Sorter with fresh sequence state.
func NewSorter() *Sorter {
	s := &Sorter{now: time.Now}
	s.lastMessageTime = s.now()
	return s
}

// LastMessageTime reports when Sort last accepted a frame, for
// idle-timeout bookkeeping.
func (s *Sorter) LastMessageTime() time.Time {
	return s.lastMessageTime
}

// SortResult is what Sort produces for a single incoming frame.
type SortResult struct {
	// Bodies are the deliverable packet bodies, in the order the
	// dispatcher should process them. A Reliable or Unreliable frame
	// yields at most one. A ReliableOrdered frame can yield several at
	// once if it fills a gap that unblocks a backlog.
	Bodies [][]byte
	// AckRequired is true when the caller must send an Ack back to the
	// peer for this frame's mode and id.
	AckRequired bool
	AckMode     wire.ReliabilityMode
	AckID       uint64
}

// Sort classifies and, where necessary, reorders an incoming frame.
// It mirrors original_source's PacketSorter::sort_packet.
func (s *Sorter) Sort(frame wire.Frame) SortResult {
	s.lastMessageTime = s.now()

	switch frame.Mode {
	case wire.UnreliableSequenced:
		if frame.ID < s.nextUnreliableSeq {
			return SortResult{}
		}
		s.nextUnreliableSeq = frame.ID + 1
		return SortResult{Bodies: [][]byte{frame.Body}}

	case wire.Reliable:
		result := SortResult{AckRequired: true, AckMode: wire.Reliable, AckID: frame.ID}

		switch {
		case frame.ID == s.nextReliable:
			s.nextReliable++
			result.Bodies = [][]byte{frame.Body}
		case frame.ID > s.nextReliable:
			for missing := s.nextReliable; missing < frame.ID; missing++ {
				s.missingReliable = append(s.missingReliable, missing)
			}
			s.nextReliable = frame.ID + 1
			result.Bodies = [][]byte{frame.Body}
		default:
			if i := indexOfUint64(s.missingReliable, frame.ID); i >= 0 {
				s.missingReliable = append(s.missingReliable[:i], s.missingReliable[i+1:]...)
				result.Bodies = [][]byte{frame.Body}
			}
			// else: already handled, deliver nothing
		}
		return result

	case wire.ReliableOrdered:
		result := SortResult{AckRequired: true, AckMode: wire.ReliableOrdered, AckID: frame.ID}

		switch {
		case frame.ID == s.nextReliableOrdered:
			s.nextReliableOrdered++

			i := 0
			for _, backed := range s.backedUpOrdered {
				if backed.id != s.nextReliableOrdered {
					break
				}
				s.nextReliableOrdered++
				i++
			}

			ready := s.backedUpOrdered[:i]
			s.backedUpOrdered = s.backedUpOrdered[i:]

			result.Bodies = append(result.Bodies, frame.Body)
			for _, backed := range ready {
				result.Bodies = append(result.Bodies, backed.body)
			}

		case frame.ID > s.nextReliableOrdered:
			insertAt := len(s.backedUpOrdered)
			shouldInsert := true
			for i, backed := range s.backedUpOrdered {
				if backed.id == frame.ID {
					shouldInsert = false
					break
				}
				if backed.id > frame.ID {
					insertAt = i
					break
				}
			}
			if shouldInsert {
				s.backedUpOrdered = append(s.backedUpOrdered, backedUpOrdered{})
				copy(s.backedUpOrdered[insertAt+1:], s.backedUpOrdered[insertAt:])
				s.backedUpOrdered[insertAt] = backedUpOrdered{id: frame.ID, body: frame.Body}
			}
			// deliver nothing yet; held until the gap fills

		default:
			// already handled
		}
		return result

	case wire.ReliabilityMode(3):
		// Reserved mode: drop + log rather than deliver, per spec.md §9.
		slog.Warn("dropping reserved reliability mode 3 frame")
		return SortResult{}

	default: // Unreliable, or a genuinely unknown mode: pass through once
		return SortResult{Bodies: [][]byte{frame.Body}}
	}
}

func indexOfUint64(s []uint64, v uint64) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}
