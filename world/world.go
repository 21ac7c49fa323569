package world

import (
	"errors"

	"github.com/lguibr/overworld/area"
)

// ErrAreaNotFound is returned when an operation names an area that
// doesn't exist.
var ErrAreaNotFound = errors.New("world: area not found")

// ErrActorNotFound is returned when an operation names an actor that
// doesn't exist.
var ErrActorNotFound = errors.New("world: actor not found")

// World is the live game state: every area, every actor in it, and
// the connection record for every connected player. It has no
// knowledge of the network — callers (the server package) are
// responsible for turning the state changes it reports into
// orchestrator broadcasts, a cleaner split than original_source's Net,
// which called the UDP socket directly from inside state mutators.
type World struct {
	areas         map[string]*area.Area
	defaultAreaID string

	actors  map[string]*Actor
	clients map[string]*ClientRecord // keyed by actor id

	boards map[string]*Board
	shops  map[string]*ShopCatalog

	pendingTransfers []TransferRequest
}

// New returns an empty World with no areas yet registered.
func New() *World {
	return &World{
		areas:   make(map[string]*area.Area),
		actors:  make(map[string]*Actor),
		clients: make(map[string]*ClientRecord),
		boards:  make(map[string]*Board),
		shops:   make(map[string]*ShopCatalog),
	}
}

// AddArea registers a. The first area added becomes the default unless
// SetDefaultAreaID is called afterward.
func (w *World) AddArea(a *area.Area) {
	w.areas[a.ID()] = a
	if w.defaultAreaID == "" {
		w.defaultAreaID = a.ID()
	}
}

// SetDefaultAreaID overrides which area new players spawn into.
func (w *World) SetDefaultAreaID(id string) {
	w.defaultAreaID = id
}

// DefaultAreaID returns the area new players spawn into.
func (w *World) DefaultAreaID() string {
	return w.defaultAreaID
}

// Area returns the area registered under id.
func (w *World) Area(id string) (*area.Area, bool) {
	a, ok := w.areas[id]
	return a, ok
}

// Areas returns every registered area.
func (w *World) Areas() []*area.Area {
	out := make([]*area.Area, 0, len(w.areas))
	for _, a := range w.areas {
		out = append(out, a)
	}
	return out
}

// Actor returns the actor registered under id.
func (w *World) Actor(id string) (*Actor, bool) {
	a, ok := w.actors[id]
	return a, ok
}

// Actors returns every actor currently tracked, regardless of kind.
func (w *World) Actors() []*Actor {
	out := make([]*Actor, 0, len(w.actors))
	for _, a := range w.actors {
		out = append(out, a)
	}
	return out
}

// Client returns the connection record for the player actor id, if
// any (bots have no ClientRecord).
func (w *World) Client(actorID string) (*ClientRecord, bool) {
	c, ok := w.clients[actorID]
	return c, ok
}

// AddActor registers actor and adds it to its area's connected
// roster. client is non-nil only for KindPlayer.
func (w *World) AddActor(actor *Actor, client *ClientRecord) error {
	a, ok := w.areas[actor.AreaID]
	if !ok {
		return ErrAreaNotFound
	}

	w.actors[actor.ID] = actor
	if actor.Kind == KindPlayer {
		a.AddPlayer(actor.ID)
		if client != nil {
			w.clients[actor.ID] = client
		}
	} else {
		a.AddBot(actor.ID)
	}
	return nil
}

// RemoveActor drops actor from its area and from tracking entirely.
func (w *World) RemoveActor(id string) error {
	actor, ok := w.actors[id]
	if !ok {
		return ErrActorNotFound
	}

	if a, ok := w.areas[actor.AreaID]; ok {
		if actor.Kind == KindPlayer {
			a.RemovePlayer(id)
		} else {
			a.RemoveBot(id)
		}
	}

	delete(w.actors, id)
	delete(w.clients, id)
	return nil
}

// MoveActor updates an actor's position, returning the actor so the
// caller can broadcast the movement. Facing is not changed here: the
// caller derives it (wire.DirectionFromOffset) from the position delta
// and applies it with Actor.SetDirection.
func (w *World) MoveActor(id string, x, y, z float64) (*Actor, error) {
	actor, ok := w.actors[id]
	if !ok {
		return nil, ErrActorNotFound
	}
	actor.SetPosition(x, y, z)
	return actor, nil
}

// TransferActor moves actor to a different area, updating both areas'
// rosters. The actor's position is left to the caller to set via
// MoveActor once the destination's spawn point is known.
func (w *World) TransferActor(id, destinationAreaID string) (*Actor, error) {
	actor, ok := w.actors[id]
	if !ok {
		return nil, ErrActorNotFound
	}
	destination, ok := w.areas[destinationAreaID]
	if !ok {
		return nil, ErrAreaNotFound
	}

	if source, ok := w.areas[actor.AreaID]; ok {
		if actor.Kind == KindPlayer {
			source.RemovePlayer(id)
		} else {
			source.RemoveBot(id)
		}
	}

	actor.AreaID = destinationAreaID
	if actor.Kind == KindPlayer {
		destination.AddPlayer(id)
	} else {
		destination.AddBot(id)
	}
	return actor, nil
}

// DirtyAreas returns every area whose map has unsaved render changes,
// matching Net::broadcast_map_changes' dirty scan.
func (w *World) DirtyAreas() []*area.Area {
	var dirty []*area.Area
	for _, a := range w.areas {
		if a.Map() != nil && a.Map().IsDirty() {
			dirty = append(dirty, a)
		}
	}
	return dirty
}

// TransferRequest is one queued cross-area move: the actor to relocate,
// its destination, and the warp-in facts the caller sends once the
// move lands. X, Y, and Z are always concrete coordinates — RequestTransfer
// fills in the actor's current position for any axis the caller leaves
// unspecified, matching original_source's transfer_player taking
// optional x/y/z that default to the player's current position.
type TransferRequest struct {
	ActorID           string
	DestinationAreaID string
	WarpIn            bool
	X, Y, Z           float64
}

// RequestTransfer queues actorID to move to destinationAreaID, to be
// carried out by the caller (the server package, which alone can speak
// to the network) on the next drain of PendingTransfers. x, y, z
// default to the actor's current position when nil.
func (w *World) RequestTransfer(actorID, destinationAreaID string, warpIn bool, x, y, z *float64) error {
	actor, ok := w.actors[actorID]
	if !ok {
		return ErrActorNotFound
	}
	if _, ok := w.areas[destinationAreaID]; !ok {
		return ErrAreaNotFound
	}

	req := TransferRequest{
		ActorID:           actorID,
		DestinationAreaID: destinationAreaID,
		WarpIn:            warpIn,
		X:                 actor.X,
		Y:                 actor.Y,
		Z:                 actor.Z,
	}
	if x != nil {
		req.X = *x
	}
	if y != nil {
		req.Y = *y
	}
	if z != nil {
		req.Z = *z
	}
	w.pendingTransfers = append(w.pendingTransfers, req)
	return nil
}

// PendingTransfers drains and returns every transfer queued since the
// last call, mirroring DirtyAreas' per-tick drain shape.
func (w *World) PendingTransfers() []TransferRequest {
	out := w.pendingTransfers
	w.pendingTransfers = nil
	return out
}
