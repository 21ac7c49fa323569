package world

import "github.com/lguibr/overworld/wire"

// Board is the live content behind one bulletin board object, keyed by
// the same reference string BbsOpen/BbsPostsPrepend/.../BbsClose use
// on the wire. original_source narrates the open/close lifecycle
// (widget_tracker.rs) but not board content management, so these
// mutators are a supplemented feature grounded on the Lua widget_api
// BBS calls referenced in original_source's plugin surface (see
// SPEC_FULL.md §4).
type Board struct {
	Reference string
	Name      string
	Color     [3]uint8
	Posts     []wire.BBSPost
	HasMore   bool
}

// ShopCatalog is the live item list behind one shop object, backing
// ShopOpen/ShopPurchase (supplemented from original_source/src/net/
// shop_item.rs, SPEC_FULL.md §4).
type ShopCatalog struct {
	Reference string
	Mug       string
	Items     []wire.ShopItem
}

// BattleStats is the outcome of a plugin-driven battle, mirroring the
// client's BattleResults packet one-to-one so plugin callbacks receive
// a stable type instead of the raw wire struct.
type BattleStats struct {
	Won      bool
	Health   int32
	Score    uint32
	Time     float64
	Ran      bool
	Emotion  uint8
}

// Board returns the board registered under reference.
func (w *World) Board(reference string) (*Board, bool) {
	b, ok := w.boards[reference]
	return b, ok
}

// EnsureBoard returns the board under reference, creating an empty one
// named name if it doesn't exist yet.
func (w *World) EnsureBoard(reference, name string, color [3]uint8) *Board {
	if w.boards == nil {
		w.boards = make(map[string]*Board)
	}
	b, ok := w.boards[reference]
	if !ok {
		b = &Board{Reference: reference, Name: name, Color: color}
		w.boards[reference] = b
	}
	return b
}

// BBSPrependPosts inserts posts at the front of reference's post list.
func (w *World) BBSPrependPosts(reference string, posts []wire.BBSPost) {
	b, ok := w.boards[reference]
	if !ok {
		return
	}
	b.Posts = append(append([]wire.BBSPost{}, posts...), b.Posts...)
}

// BBSAppendPosts appends posts to the end of reference's post list.
func (w *World) BBSAppendPosts(reference string, posts []wire.BBSPost) {
	b, ok := w.boards[reference]
	if !ok {
		return
	}
	b.Posts = append(b.Posts, posts...)
}

// BBSRemovePost removes the post with postID from reference's list, if
// present.
func (w *World) BBSRemovePost(reference, postID string) {
	b, ok := w.boards[reference]
	if !ok {
		return
	}
	for i, post := range b.Posts {
		if post.ID == postID {
			b.Posts = append(b.Posts[:i], b.Posts[i+1:]...)
			return
		}
	}
}

// Shop returns the shop catalog registered under reference.
func (w *World) Shop(reference string) (*ShopCatalog, bool) {
	s, ok := w.shops[reference]
	return s, ok
}

// SetShop registers or replaces the catalog served under reference.
func (w *World) SetShop(reference string, catalog *ShopCatalog) {
	if w.shops == nil {
		w.shops = make(map[string]*ShopCatalog)
	}
	w.shops[reference] = catalog
}
