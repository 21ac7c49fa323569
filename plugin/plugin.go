// Package plugin defines the callback surface a server extension
// implements and the dispatch wrapper that fans events out to every
// registered extension in order, grounded on
// original_source/src/plugins/plugin_interface.rs.
package plugin

import "github.com/lguibr/overworld/world"

// SlotHandle identifies which registered plugin a call is being
// attributed to. It is passed explicitly into every plugin callback,
// instead of the original's
// Net::set_active_plugin/thread-local "currently active plugin" index
// — see SPEC_FULL.md §3.8 and §9 for why attribution is made explicit
// here rather than implicit.
type SlotHandle int

// Interface is the callback surface one server extension implements.
// Every method mirrors a handle_*/tick/init method from
// original_source/src/plugins/plugin_interface.rs, renamed to Go
// idiom. w is the live game state; slot is this plugin's own handle,
// which an implementation passes as the owner to a client's
// WidgetTracker (TrackTextbox, TrackBoard, TrackShop, TrackBattle) when
// it issues a widget. Wrapper records no ownership itself; it only reads
// it back (PopTextbox, OpenBoard, ...) to route responses.
type Interface interface {
	Init(w *world.World, slot SlotHandle)
	Tick(w *world.World, slot SlotHandle, deltaTime float64)

	HandleAuthorization(w *world.World, slot SlotHandle, identity, host string, port uint16, data []byte)
	HandlePlayerRequest(w *world.World, slot SlotHandle, playerID, data string)
	HandlePlayerConnect(w *world.World, slot SlotHandle, playerID string)
	HandlePlayerJoin(w *world.World, slot SlotHandle, playerID string)
	HandlePlayerTransfer(w *world.World, slot SlotHandle, playerID string)
	HandlePlayerDisconnect(w *world.World, slot SlotHandle, playerID string)
	HandlePlayerMove(w *world.World, slot SlotHandle, playerID string, x, y, z float64)

	// HandlePlayerAvatarChange returns true to veto the default avatar
	// update, matching the original's prevent_default boolean return.
	HandlePlayerAvatarChange(w *world.World, slot SlotHandle, playerID, texturePath, animationPath, name, element string, maxHealth uint32) bool
	// HandlePlayerEmote returns true to veto the default emote broadcast.
	HandlePlayerEmote(w *world.World, slot SlotHandle, playerID string, emoteID uint8) bool

	HandleCustomWarp(w *world.World, slot SlotHandle, playerID string, tileObjectID uint32)
	HandleObjectInteraction(w *world.World, slot SlotHandle, playerID string, tileObjectID uint32, button uint8)
	HandleActorInteraction(w *world.World, slot SlotHandle, playerID, actorID string, button uint8)
	HandleTileInteraction(w *world.World, slot SlotHandle, playerID string, x, y, z float64, button uint8)

	HandleTextboxResponse(w *world.World, slot SlotHandle, playerID string, response uint8)
	HandlePromptResponse(w *world.World, slot SlotHandle, playerID, response string)
	HandleBoardOpen(w *world.World, slot SlotHandle, playerID string)
	HandleBoardClose(w *world.World, slot SlotHandle, playerID string)
	HandlePostRequest(w *world.World, slot SlotHandle, playerID string)
	HandlePostSelection(w *world.World, slot SlotHandle, playerID, postID string)
	HandleShopClose(w *world.World, slot SlotHandle, playerID string)
	HandleShopPurchase(w *world.World, slot SlotHandle, playerID, itemName string)
	HandleBattleResults(w *world.World, slot SlotHandle, playerID string, stats world.BattleStats)

	HandleServerMessage(w *world.World, slot SlotHandle, socketAddress string, data []byte)
}
