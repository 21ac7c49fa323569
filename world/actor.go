// Package world holds the live game state a running server mutates:
// actors (players and bots), their per-client connection records, and
// the widget ownership tracking that routes UI responses back to the
// plugin slot that opened them. Network delivery is the orchestrator
// package's job; World only tracks state and reports what changed.
package world

import (
	"time"

	"github.com/lguibr/overworld/wire"
)

// Kind distinguishes a player-controlled actor from a scripted bot.
type Kind uint8

const (
	KindPlayer Kind = iota
	KindBot
)

// Actor is one entity visible to clients in an area: a player or bot,
// grounded on original_source/src/net/actor.rs.
type Actor struct {
	ID            string
	Kind          Kind
	Name          string
	AreaID        string
	TexturePath   string
	AnimationPath string
	MugTexturePath   string
	MugAnimationPath string

	Direction wire.Direction
	X, Y, Z   float64

	LastMovementTime time.Time

	ScaleX, ScaleY float64
	Rotation       float64
	MinimapColor   [4]uint8
	CurrentAnim    string
	Solid          bool

	now func() time.Time
}

// NewActor returns a freshly spawned Actor at (x, y, z) with neutral
// scale and no facing.
func NewActor(id string, kind Kind, name, areaID string, x, y, z float64) *Actor {
	return &Actor{
		ID:      id,
		Kind:    kind,
		Name:    name,
		AreaID:  areaID,
		X:       x,
		Y:       y,
		Z:       z,
		ScaleX:  1,
		ScaleY:  1,
		Solid:   true,
		now:     time.Now,
	}
}

// SpawnPacket builds the ActorConnected packet describing this actor
// at (x, y, z), matching Actor::create_spawn_packet.
func (a *Actor) SpawnPacket(x, y, z float64, warpIn bool) wire.ActorConnected {
	return wire.ActorConnected{
		ID:            a.ID,
		Name:          a.Name,
		TexturePath:   a.TexturePath,
		AnimationPath: a.AnimationPath,
		Direction:     a.Direction,
		X:             x,
		Y:             y,
		Z:             z,
		WarpIn:        warpIn,
		Solid:         a.Solid,
		ScaleX:        a.ScaleX,
		ScaleY:        a.ScaleY,
		Rotation:      a.Rotation,
		MinimapColor:  a.MinimapColor,
		Animation:     a.CurrentAnim,
	}
}

// SetPosition updates the actor's position, clearing its current
// animation and refreshing LastMovementTime, but only if the position
// actually changed.
func (a *Actor) SetPosition(x, y, z float64) {
	if a.X == x && a.Y == y && a.Z == z {
		return
	}
	a.X, a.Y, a.Z = x, y, z
	a.CurrentAnim = ""
	a.LastMovementTime = a.clock()()
}

// SetDirection updates the actor's facing, refreshing
// LastMovementTime only if the facing actually changed.
func (a *Actor) SetDirection(direction wire.Direction) {
	if a.Direction == direction {
		return
	}
	a.Direction = direction
	a.LastMovementTime = a.clock()()
}

func (a *Actor) clock() func() time.Time {
	if a.now != nil {
		return a.now
	}
	return time.Now
}
