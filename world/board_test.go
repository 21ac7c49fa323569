package world

import (
	"testing"

	"github.com/lguibr/overworld/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoardPrependAppendRemove(t *testing.T) {
	w := New()
	w.EnsureBoard("board-1", "Town Notices", [3]uint8{0, 128, 255})

	w.BBSAppendPosts("board-1", []wire.BBSPost{{ID: "p1", Title: "Hello", Author: "alice"}})
	w.BBSPrependPosts("board-1", []wire.BBSPost{{ID: "p0", Title: "Pinned", Author: "admin"}})

	b, ok := w.Board("board-1")
	require.True(t, ok)
	require.Len(t, b.Posts, 2)
	assert.Equal(t, "p0", b.Posts[0].ID)
	assert.Equal(t, "p1", b.Posts[1].ID)

	w.BBSRemovePost("board-1", "p0")
	b, _ = w.Board("board-1")
	require.Len(t, b.Posts, 1)
	assert.Equal(t, "p1", b.Posts[0].ID)
}

func TestBoardMutatorsOnUnknownReferenceAreNoops(t *testing.T) {
	w := New()
	assert.NotPanics(t, func() {
		w.BBSAppendPosts("missing", []wire.BBSPost{{ID: "p1"}})
		w.BBSPrependPosts("missing", []wire.BBSPost{{ID: "p1"}})
		w.BBSRemovePost("missing", "p1")
	})
	_, ok := w.Board("missing")
	assert.False(t, ok)
}

func TestShopCatalogSetAndGet(t *testing.T) {
	w := New()
	_, ok := w.Shop("shop-1")
	assert.False(t, ok)

	w.SetShop("shop-1", &ShopCatalog{
		Reference: "shop-1",
		Mug:       "/server/shopkeeper.png",
		Items: []wire.ShopItem{
			{Name: "Potion", Price: 10, Description: "Restores health"},
		},
	})

	got, ok := w.Shop("shop-1")
	require.True(t, ok)
	assert.Equal(t, "/server/shopkeeper.png", got.Mug)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Potion", got.Items[0].Name)
}
