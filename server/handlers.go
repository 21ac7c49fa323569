package server

import (
	"fmt"

	"github.com/lguibr/overworld/assets"
	"github.com/lguibr/overworld/wire"
	"github.com/lguibr/overworld/world"
)

// Stream asset kinds a ClientAssetStream packet may carry, matching
// the two buffers ClientRecord accumulates before an AvatarChange
// commits them (see handleAssetStream, handleAvatarChange).
const (
	streamAssetTexture uint8 = iota
	streamAssetAnimation
)

// handlePreLogin answers the handful of packet types a client may send
// before naming a player id, grounded on
// original_source/src/net/server.rs's pre-login match arm.
func (d *dispatcher) handlePreLogin(addr string, packet wire.ClientPacket) {
	s := d.srv
	switch p := packet.(type) {
	case wire.Ping:
		s.orch.Send(addr, wire.Unreliable, wire.Pong{})

	case wire.ClientLogin:
		playerID := s.newPlayerID()
		if conn, ok := d.sorters[addr]; ok {
			conn.playerID = playerID
			conn.username = p.Username
		}
		s.orch.AddClient(addr, playerID)
		s.orch.Send(addr, wire.Reliable, wire.Login{ID: playerID})
		s.plugins.DispatchPlayerRequest(s.world, playerID, p.Data)

	case wire.ServerMessage:
		s.plugins.DispatchServerMessage(s.world, addr, []byte(p.Message))

	default:
		if s.cfg.LogPackets {
			s.log.Warn("pre-login packet ignored", "addr", addr, "type", packet.Type())
		}
	}
}

// handlePostLogin routes every packet a named client may send once
// ClientLogin has assigned it a player id, grounded on
// original_source/src/net/server.rs's post-login match arm.
func (d *dispatcher) handlePostLogin(addr, playerID string, packet wire.ClientPacket) {
	s := d.srv
	switch p := packet.(type) {
	case wire.Ping:
		s.orch.Send(addr, wire.Unreliable, wire.Pong{})

	case wire.RequestJoin:
		d.handleRequestJoin(addr, playerID)

	case wire.Logout:
		d.disconnectClient(addr, "leaving")

	case wire.Position:
		d.handlePosition(playerID, p)

	case wire.Ready:
		d.handleReady(playerID)

	case wire.TransferredOut:
		d.handleTransferredOut(playerID)

	case wire.CustomWarp:
		s.plugins.DispatchCustomWarp(s.world, playerID, p.TileObjectID)

	case wire.AvatarChange:
		d.handleAvatarChange(playerID, p)

	case wire.ClientEmote:
		d.handleEmote(playerID, p)

	case wire.ObjectInteraction:
		s.plugins.DispatchObjectInteraction(s.world, playerID, p.TileObjectID, p.ButtonPress)

	case wire.ActorInteraction:
		s.plugins.DispatchActorInteraction(s.world, playerID, p.ActorID, p.ButtonPress)

	case wire.TileInteraction:
		s.plugins.DispatchTileInteraction(s.world, playerID, p.X, p.Y, p.Z, p.ButtonPress)

	case wire.TextBoxResponse:
		s.plugins.DispatchTextboxResponse(s.world, playerID, p.Response)

	case wire.PromptResponse:
		s.plugins.DispatchPromptResponse(s.world, playerID, p.Message)

	case wire.BoardOpen:
		s.plugins.DispatchBoardOpen(s.world, playerID)

	case wire.BoardClose:
		s.plugins.DispatchBoardClose(s.world, playerID)

	case wire.PostRequest:
		s.plugins.DispatchPostRequest(s.world, playerID)

	case wire.PostSelection:
		s.plugins.DispatchPostSelection(s.world, playerID, p.PostID)
		s.orch.Send(addr, wire.Reliable, wire.PostSelectionAck{})

	case wire.ClientShopClose:
		s.plugins.DispatchShopClose(s.world, playerID)

	case wire.ShopPurchase:
		s.plugins.DispatchShopPurchase(s.world, playerID, p.ItemName)

	case wire.BattleResults:
		s.plugins.DispatchBattleResults(s.world, playerID, world.BattleStats{
			Won:     p.Won,
			Health:  p.Health,
			Score:   p.Score,
			Time:    p.Time,
			Ran:     p.Ran,
			Emotion: p.Emotion,
		})

	case wire.AssetFound:
		d.handleAssetFound(playerID, p)

	case wire.ClientAssetStream:
		d.handleAssetStream(playerID, p)

	case wire.ServerMessage:
		s.plugins.DispatchServerMessage(s.world, addr, []byte(p.Message))

	default:
		if s.cfg.LogPackets {
			s.log.Warn("post-login packet ignored", "playerID", playerID, "type", packet.Type())
		}
	}
}

// handleRequestJoin spawns the player's actor into the default area at
// its spawn point and primes the client with the assets and map it
// needs to render, grounded on original_source/src/net/server.rs's
// RequestJoin arm (net.spawn_client / net.connect_client).
func (d *dispatcher) handleRequestJoin(addr, playerID string) {
	s := d.srv
	areaID := s.world.DefaultAreaID()
	a, ok := s.world.Area(areaID)
	if !ok {
		s.log.Error("join failed: no default area", "playerID", playerID)
		return
	}

	var x, y, z float64
	direction := wire.DirectionUpRight
	if a.Map() != nil {
		x, y, z = a.Map().SpawnX, a.Map().SpawnY, a.Map().SpawnZ
		direction = a.Map().SpawnDirection
	}

	username := playerID
	if conn, ok := d.sorters[addr]; ok && conn.username != "" {
		username = conn.username
	}

	actor := world.NewActor(playerID, world.KindPlayer, username, areaID, x, y, z)
	actor.SetDirection(direction)
	client := world.NewClientRecord(addr, playerID, x, y, z)
	if err := s.world.AddActor(actor, client); err != nil {
		s.log.Error("join failed", "playerID", playerID, "err", err)
		return
	}

	s.plugins.DispatchPlayerConnect(s.world, playerID)
	s.orch.JoinRoom(addr, areaID)

	if a.Map() == nil {
		return
	}
	d.shipRequiredAssets(addr, client, a.RequiredAssets())
	s.orch.Send(addr, wire.ReliableOrdered, wire.MapUpdate{Data: []byte(a.Map().Render())})
}

// shipRequiredAssets flattens the dependency chain of every path in
// paths and, for each asset the client doesn't already have cached,
// streams its bytes via AssetStreamStart/AssetStream; assets already
// streamed to this client earlier are merely Preload-announced, per
// spec §4.4's dependency flattening and §4.7's "ship the destination
// map + required assets (after dependency flattening)".
func (d *dispatcher) shipRequiredAssets(addr string, client *world.ClientRecord, paths []string) {
	s := d.srv
	seen := make(map[string]bool)
	for _, path := range paths {
		for _, dep := range s.store.FlattenedDependencyChain(path) {
			if seen[dep] {
				continue
			}
			seen[dep] = true
			d.shipAsset(addr, client, dep)
		}
	}
}

// shipAsset sends one asset's content to addr, chunked to respect the
// server's configured payload limit, grounded on spec §6's "lossy
// chunk packer" and assets.ChunkAssetBytes.
func (d *dispatcher) shipAsset(addr string, client *world.ClientRecord, path string) {
	s := d.srv
	asset, ok := s.store.Get(path)
	if !ok {
		return
	}
	if client.HasCachedAsset(path) {
		s.orch.Send(addr, wire.Reliable, wire.Preload{AssetPath: path})
		return
	}

	s.orch.Send(addr, wire.Reliable, wire.AssetStreamStart{
		Name: path,
		Hash: fmt.Sprint(asset.LastModified),
		Type: uint8(asset.Kind),
		Size: uint64(len(asset.Bytes)),
	})
	for _, chunk := range assets.ChunkAssetBytes(path, asset.Bytes, s.cfg.MaxPayloadSize) {
		s.orch.Send(addr, wire.Reliable, wire.AssetStream{DataChunk: chunk})
	}
	client.MarkAssetCached(path)
}

// handleReady marks a client ready to receive gameplay updates and
// fires the join-vs-transfer plugin callback, mirroring
// original_source's distinct "first join" and "area transfer" events.
func (d *dispatcher) handleReady(playerID string) {
	s := d.srv
	client, ok := s.world.Client(playerID)
	if !ok {
		return
	}
	client.Ready = true

	if client.Transferring {
		client.Transferring = false
		s.plugins.DispatchPlayerTransfer(s.world, playerID)
		return
	}
	s.plugins.DispatchPlayerJoin(s.world, playerID)
}

func (d *dispatcher) handlePosition(playerID string, p wire.Position) {
	s := d.srv
	client, ok := s.world.Client(playerID)
	if !ok || !client.Ready {
		return
	}

	actor, ok := s.world.Actor(playerID)
	if !ok {
		return
	}
	if actor.X == p.X && actor.Y == p.Y && actor.Z == p.Z {
		return
	}

	direction := wire.DirectionFromOffset(p.X-actor.X, p.Y-actor.Y)
	s.plugins.DispatchPlayerMove(s.world, playerID, p.X, p.Y, p.Z)
	if _, err := s.world.MoveActor(playerID, p.X, p.Y, p.Z); err != nil {
		return
	}
	actor.SetDirection(direction)

	s.orch.BroadcastToRoom(actor.AreaID, wire.Unreliable, wire.ActorMove{
		ID: playerID, X: p.X, Y: p.Y, Z: p.Z, Direction: direction,
	})
}

// handleAvatarChange commits whatever texture/animation bytes the
// client has streamed so far (handleAssetStream) as a pair of
// player-owned assets, then lets plugins veto the default avatar
// update before applying it, grounded on
// original_source/src/net/server.rs's AvatarChange arm
// (net.store_player_assets / net.set_player_avatar).
func (d *dispatcher) handleAvatarChange(playerID string, p wire.AvatarChange) {
	s := d.srv
	client, ok := s.world.Client(playerID)
	if !ok {
		return
	}
	actor, ok := s.world.Actor(playerID)
	if !ok {
		return
	}

	if len(client.TextureBuffer) > s.cfg.PlayerAssetLimit || len(client.AnimationBuffer) > s.cfg.PlayerAssetLimit {
		s.log.Warn("avatar change rejected: asset exceeds byte limit", "playerID", playerID)
		return
	}
	if dim := longestAnimationFrameDimension(client.AnimationBuffer); dim > s.cfg.AvatarDimensionLimit {
		s.log.Warn("avatar change rejected: animation frame exceeds dimension cap",
			"playerID", playerID, "dimension", dim, "limit", s.cfg.AvatarDimensionLimit)
		return
	}

	texturePath := fmt.Sprintf("players/%s/texture", playerID)
	animationPath := fmt.Sprintf("players/%s/animation", playerID)
	s.store.Set(texturePath, assets.Asset{Kind: assets.KindTexture, Bytes: client.TextureBuffer, Cachable: false})
	s.store.Set(animationPath, assets.Asset{Kind: assets.KindData, Bytes: client.AnimationBuffer, Cachable: false})

	// name/element/maxHealth are left empty/zero: this server doesn't
	// track a PlayerData-equivalent stat block yet (see DESIGN.md).
	if s.plugins.DispatchPlayerAvatarChange(s.world, playerID, texturePath, animationPath, p.Name, "", 0) {
		return
	}

	actor.TexturePath = texturePath
	actor.AnimationPath = animationPath
	s.orch.BroadcastToRoom(actor.AreaID, wire.Reliable, wire.ActorSetAvatar{
		ID: playerID, TexturePath: texturePath, AnimationPath: animationPath,
	})
}

func (d *dispatcher) handleEmote(playerID string, p wire.ClientEmote) {
	s := d.srv
	if s.plugins.DispatchPlayerEmote(s.world, playerID, p.EmoteID) {
		return
	}
	actor, ok := s.world.Actor(playerID)
	if !ok {
		return
	}
	s.orch.BroadcastToRoom(actor.AreaID, wire.Unreliable, wire.ActorEmote{ID: playerID, EmoteID: p.EmoteID})
}

// handleAssetFound tells the client to drop its cached copy when the
// hash it reports no longer matches the catalog. assets.Store tracks a
// LastModified generation counter rather than a content hash today, so
// this compares that counter's decimal string against the client's
// hash instead of a true digest; see DESIGN.md.
func (d *dispatcher) handleAssetFound(playerID string, p wire.AssetFound) {
	s := d.srv
	if asset, ok := s.store.Get(p.Path); ok && fmt.Sprint(asset.LastModified) == p.Hash {
		return
	}
	client, ok := s.world.Client(playerID)
	if !ok {
		return
	}
	s.orch.Send(client.Addr, wire.Reliable, wire.RemoveAsset{Path: p.Path})
}

// handleAssetStream accumulates a streamed avatar asset's chunks and
// kicks a client that exceeds the configured per-player budget,
// grounded on original_source's avatar upload size guard.
func (d *dispatcher) handleAssetStream(playerID string, p wire.ClientAssetStream) {
	s := d.srv
	client, ok := s.world.Client(playerID)
	if !ok {
		return
	}

	switch p.AssetType {
	case streamAssetAnimation:
		client.AnimationBuffer = append(client.AnimationBuffer, p.DataChunk...)
	default:
		client.TextureBuffer = append(client.TextureBuffer, p.DataChunk...)
	}

	if len(client.TextureBuffer)+len(client.AnimationBuffer) > s.cfg.PlayerAssetLimit {
		d.kickForOversizedAvatar(playerID)
	}
}

func (d *dispatcher) kickForOversizedAvatar(playerID string) {
	s := d.srv
	client, ok := s.world.Client(playerID)
	if !ok {
		return
	}
	s.orch.Send(client.Addr, wire.Reliable, wire.Kick{Reason: "avatar asset too large"})
	d.disconnectClient(client.Addr, "oversized avatar asset")
}

// disconnectClient tears down everything the dispatcher and world
// track for addr: the room-visible disconnect, the plugin callback,
// the actor and client record, the orchestrator's room membership, and
// the reliability sorter, grounded on
// original_source/src/net/server.rs's disconnect_client.
func (d *dispatcher) disconnectClient(addr, reason string) {
	s := d.srv
	conn, ok := d.sorters[addr]
	if !ok {
		return
	}

	if conn.playerID != "" {
		if actor, ok := s.world.Actor(conn.playerID); ok {
			s.orch.BroadcastToRoom(actor.AreaID, wire.Reliable, wire.ActorDisconnected{ID: conn.playerID, WarpOut: true})
		}
		s.plugins.DispatchPlayerDisconnect(s.world, conn.playerID)
		_ = s.world.RemoveActor(conn.playerID)
	}
	s.orch.DropClient(addr)
	delete(d.sorters, addr)

	if s.cfg.LogConnections {
		s.log.Info("disconnected", "addr", addr, "reason", reason)
	}
}
