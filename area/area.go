// Package area tracks one map instance and the actors currently
// connected to it, grounded on original_source/src/net/area.rs.
package area

import "github.com/lguibr/overworld/tiled"

// Area is a single instance of a map, plus the asset paths it needs
// before a client can render it and a cache of who's currently in it.
type Area struct {
	id             string
	mapData        *tiled.Map
	requiredAssets []string

	connectedPlayers []string
	connectedBots    []string
}

// New wraps mapData under id.
func New(id string, mapData *tiled.Map) *Area {
	return &Area{id: id, mapData: mapData}
}

// ID returns the area's identifier.
func (a *Area) ID() string {
	return a.id
}

// Map returns the area's map model.
func (a *Area) Map() *tiled.Map {
	return a.mapData
}

// SetMap replaces the area's map model entirely (e.g. on a hot reload).
func (a *Area) SetMap(mapData *tiled.Map) {
	a.mapData = mapData
}

// RequireAsset records that clients entering this area need assetPath,
// deduping against assets already required.
func (a *Area) RequireAsset(assetPath string) {
	for _, existing := range a.requiredAssets {
		if existing == assetPath {
			return
		}
	}
	a.requiredAssets = append(a.requiredAssets, assetPath)
}

// RequiredAssets returns every asset path this area has required.
func (a *Area) RequiredAssets() []string {
	return a.requiredAssets
}

// ConnectedPlayers returns the ids of players currently in this area.
func (a *Area) ConnectedPlayers() []string {
	return a.connectedPlayers
}

// AddPlayer marks playerID as present in this area.
func (a *Area) AddPlayer(playerID string) {
	a.connectedPlayers = append(a.connectedPlayers, playerID)
}

// RemovePlayer marks playerID as no longer present, using a swap-remove
// since connected-player order carries no meaning.
func (a *Area) RemovePlayer(playerID string) {
	a.connectedPlayers = swapRemove(a.connectedPlayers, playerID)
}

// ConnectedBots returns the ids of bots currently in this area.
func (a *Area) ConnectedBots() []string {
	return a.connectedBots
}

// AddBot marks botID as present in this area.
func (a *Area) AddBot(botID string) {
	a.connectedBots = append(a.connectedBots, botID)
}

// RemoveBot marks botID as no longer present.
func (a *Area) RemoveBot(botID string) {
	a.connectedBots = swapRemove(a.connectedBots, botID)
}

func swapRemove(ids []string, id string) []string {
	for i, existing := range ids {
		if existing == id {
			last := len(ids) - 1
			ids[i] = ids[last]
			return ids[:last]
		}
	}
	return ids
}
