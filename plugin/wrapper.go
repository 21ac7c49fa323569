package plugin

import (
	"log/slog"

	"github.com/lguibr/overworld/world"
)

// Wrapper holds an ordered list of registered plugins and fans events
// out to them, grounded on original_source/src/net/plugin_wrapper.rs'
// PluginWrapper. Unlike the original, which tracks "the currently
// active plugin" on Net via set_active_plugin, Wrapper passes each
// plugin's SlotHandle into the call directly (see plugin.go).
type Wrapper struct {
	slots  []Interface
	logger *slog.Logger
}

// NewWrapper returns an empty Wrapper. logger is used to report a
// panicking plugin slot; a nil logger falls back to slog.Default().
func NewWrapper(logger *slog.Logger) *Wrapper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Wrapper{logger: logger}
}

// Register appends iface as the next plugin slot and returns its
// handle.
func (w *Wrapper) Register(iface Interface) SlotHandle {
	w.slots = append(w.slots, iface)
	return SlotHandle(len(w.slots) - 1)
}

// dispatchAll invokes call for every registered slot in order. A
// panicking slot is recovered, logged, and skipped — the remaining
// slots still run (SPEC_FULL.md §3.8, "Plugin callback failure").
func (w *Wrapper) dispatchAll(event string, call func(Interface, SlotHandle)) {
	for i, iface := range w.slots {
		w.guarded(event, SlotHandle(i), func() { call(iface, SlotHandle(i)) })
	}
}

func (w *Wrapper) guarded(event string, slot SlotHandle, call func()) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("plugin callback panicked", "event", event, "slot", int(slot), "panic", r)
		}
	}()
	call()
}

func (w *Wrapper) Init(wo *world.World) {
	w.dispatchAll("init", func(p Interface, s SlotHandle) { p.Init(wo, s) })
}

func (w *Wrapper) Tick(wo *world.World, deltaTime float64) {
	w.dispatchAll("tick", func(p Interface, s SlotHandle) { p.Tick(wo, s, deltaTime) })
}

func (w *Wrapper) DispatchAuthorization(wo *world.World, identity, host string, port uint16, data []byte) {
	w.dispatchAll("authorization", func(p Interface, s SlotHandle) {
		p.HandleAuthorization(wo, s, identity, host, port, data)
	})
}

func (w *Wrapper) DispatchPlayerRequest(wo *world.World, playerID, data string) {
	w.dispatchAll("player_request", func(p Interface, s SlotHandle) {
		p.HandlePlayerRequest(wo, s, playerID, data)
	})
}

func (w *Wrapper) DispatchPlayerConnect(wo *world.World, playerID string) {
	w.dispatchAll("player_connect", func(p Interface, s SlotHandle) { p.HandlePlayerConnect(wo, s, playerID) })
}

func (w *Wrapper) DispatchPlayerJoin(wo *world.World, playerID string) {
	w.dispatchAll("player_join", func(p Interface, s SlotHandle) { p.HandlePlayerJoin(wo, s, playerID) })
}

func (w *Wrapper) DispatchPlayerTransfer(wo *world.World, playerID string) {
	w.dispatchAll("player_transfer", func(p Interface, s SlotHandle) { p.HandlePlayerTransfer(wo, s, playerID) })
}

func (w *Wrapper) DispatchPlayerDisconnect(wo *world.World, playerID string) {
	w.dispatchAll("player_disconnect", func(p Interface, s SlotHandle) { p.HandlePlayerDisconnect(wo, s, playerID) })
}

func (w *Wrapper) DispatchPlayerMove(wo *world.World, playerID string, x, y, z float64) {
	w.dispatchAll("player_move", func(p Interface, s SlotHandle) { p.HandlePlayerMove(wo, s, playerID, x, y, z) })
}

// DispatchPlayerAvatarChange reports whether any plugin vetoed the
// default avatar update (logical OR across every slot, matching the
// original's `prevent_default |= ...`).
func (w *Wrapper) DispatchPlayerAvatarChange(wo *world.World, playerID, texturePath, animationPath, name, element string, maxHealth uint32) bool {
	preventDefault := false
	w.dispatchAll("player_avatar_change", func(p Interface, s SlotHandle) {
		if p.HandlePlayerAvatarChange(wo, s, playerID, texturePath, animationPath, name, element, maxHealth) {
			preventDefault = true
		}
	})
	return preventDefault
}

// DispatchPlayerEmote reports whether any plugin vetoed the default
// emote broadcast.
func (w *Wrapper) DispatchPlayerEmote(wo *world.World, playerID string, emoteID uint8) bool {
	preventDefault := false
	w.dispatchAll("player_emote", func(p Interface, s SlotHandle) {
		if p.HandlePlayerEmote(wo, s, playerID, emoteID) {
			preventDefault = true
		}
	})
	return preventDefault
}

func (w *Wrapper) DispatchCustomWarp(wo *world.World, playerID string, tileObjectID uint32) {
	w.dispatchAll("custom_warp", func(p Interface, s SlotHandle) { p.HandleCustomWarp(wo, s, playerID, tileObjectID) })
}

func (w *Wrapper) DispatchObjectInteraction(wo *world.World, playerID string, tileObjectID uint32, button uint8) {
	w.dispatchAll("object_interaction", func(p Interface, s SlotHandle) {
		p.HandleObjectInteraction(wo, s, playerID, tileObjectID, button)
	})
}

func (w *Wrapper) DispatchActorInteraction(wo *world.World, playerID, actorID string, button uint8) {
	w.dispatchAll("actor_interaction", func(p Interface, s SlotHandle) {
		p.HandleActorInteraction(wo, s, playerID, actorID, button)
	})
}

func (w *Wrapper) DispatchTileInteraction(wo *world.World, playerID string, x, y, z float64, button uint8) {
	w.dispatchAll("tile_interaction", func(p Interface, s SlotHandle) {
		p.HandleTileInteraction(wo, s, playerID, x, y, z, button)
	})
}

func (w *Wrapper) DispatchServerMessage(wo *world.World, socketAddress string, data []byte) {
	w.dispatchAll("server_message", func(p Interface, s SlotHandle) {
		p.HandleServerMessage(wo, s, socketAddress, data)
	})
}

// dispatchToOwner invokes call against whichever single slot owns the
// widget identified by owner/ok, matching original_source's
// `if let Some(i) = ... { self.wrap_call(i, ...) }` pattern — an
// unowned widget response is silently dropped.
func (w *Wrapper) dispatchToOwner(event string, owner int, ok bool, call func(Interface, SlotHandle)) {
	if !ok || owner < 0 || owner >= len(w.slots) {
		return
	}
	slot := SlotHandle(owner)
	w.guarded(event, slot, func() { call(w.slots[slot], slot) })
}

// DispatchTextboxResponse routes a textbox response to the slot that
// opened it, dequeuing that slot from the client's textbox FIFO.
func (w *Wrapper) DispatchTextboxResponse(wo *world.World, playerID string, response uint8) {
	client, ok := wo.Client(playerID)
	if !ok {
		return
	}
	owner, found := client.Widgets.PopTextbox()
	w.dispatchToOwner("textbox_response", owner, found, func(p Interface, s SlotHandle) {
		p.HandleTextboxResponse(wo, s, playerID, response)
	})
}

// DispatchPromptResponse routes a prompt response the same way a
// textbox response is routed — original_source's handle_prompt_response
// also pops the textbox queue rather than a separate prompt queue, and
// this mirrors that.
func (w *Wrapper) DispatchPromptResponse(wo *world.World, playerID, response string) {
	client, ok := wo.Client(playerID)
	if !ok {
		return
	}
	owner, found := client.Widgets.PopTextbox()
	w.dispatchToOwner("prompt_response", owner, found, func(p Interface, s SlotHandle) {
		p.HandlePromptResponse(wo, s, playerID, response)
	})
}

// DispatchBoardOpen promotes the client's oldest pending board to
// active, then notifies the slot that now owns it.
func (w *Wrapper) DispatchBoardOpen(wo *world.World, playerID string) {
	client, ok := wo.Client(playerID)
	if !ok {
		return
	}
	client.Widgets.OpenBoard()
	owner, found := client.Widgets.CurrentBoard()
	w.dispatchToOwner("board_open", owner, found, func(p Interface, s SlotHandle) {
		p.HandleBoardOpen(wo, s, playerID)
	})
}

// DispatchBoardClose closes the client's innermost active board,
// notifying the slot that owned it.
func (w *Wrapper) DispatchBoardClose(wo *world.World, playerID string) {
	client, ok := wo.Client(playerID)
	if !ok {
		return
	}
	owner, found := client.Widgets.CloseBoard()
	w.dispatchToOwner("board_close", owner, found, func(p Interface, s SlotHandle) {
		p.HandleBoardClose(wo, s, playerID)
	})
}

func (w *Wrapper) DispatchPostRequest(wo *world.World, playerID string) {
	client, ok := wo.Client(playerID)
	if !ok {
		return
	}
	owner, found := client.Widgets.CurrentBoard()
	w.dispatchToOwner("post_request", owner, found, func(p Interface, s SlotHandle) {
		p.HandlePostRequest(wo, s, playerID)
	})
}

func (w *Wrapper) DispatchPostSelection(wo *world.World, playerID, postID string) {
	client, ok := wo.Client(playerID)
	if !ok {
		return
	}
	owner, found := client.Widgets.CurrentBoard()
	w.dispatchToOwner("post_selection", owner, found, func(p Interface, s SlotHandle) {
		p.HandlePostSelection(wo, s, playerID, postID)
	})
}

func (w *Wrapper) DispatchShopClose(wo *world.World, playerID string) {
	client, ok := wo.Client(playerID)
	if !ok {
		return
	}
	owner, found := client.Widgets.CloseShop()
	w.dispatchToOwner("shop_close", owner, found, func(p Interface, s SlotHandle) {
		p.HandleShopClose(wo, s, playerID)
	})
}

func (w *Wrapper) DispatchShopPurchase(wo *world.World, playerID, itemName string) {
	client, ok := wo.Client(playerID)
	if !ok {
		return
	}
	owner, found := client.Widgets.CurrentShop()
	w.dispatchToOwner("shop_purchase", owner, found, func(p Interface, s SlotHandle) {
		p.HandleShopPurchase(wo, s, playerID, itemName)
	})
}

// DispatchBattleResults routes a battle result to the slot that
// queued it, dequeuing the client's battle FIFO.
func (w *Wrapper) DispatchBattleResults(wo *world.World, playerID string, stats world.BattleStats) {
	client, ok := wo.Client(playerID)
	if !ok {
		return
	}
	owner, found := client.Widgets.PopBattle()
	w.dispatchToOwner("battle_results", owner, found, func(p Interface, s SlotHandle) {
		p.HandleBattleResults(wo, s, playerID, stats)
	})
}
