package area

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequireAssetDedupes(t *testing.T) {
	a := New("area-1", nil)
	a.RequireAsset("/server/tiles.png")
	a.RequireAsset("/server/tiles.png")
	a.RequireAsset("/server/other.png")
	assert.Equal(t, []string{"/server/tiles.png", "/server/other.png"}, a.RequiredAssets())
}

func TestAddRemovePlayer(t *testing.T) {
	a := New("area-1", nil)
	a.AddPlayer("p1")
	a.AddPlayer("p2")
	a.AddPlayer("p3")

	a.RemovePlayer("p2")
	assert.ElementsMatch(t, []string{"p1", "p3"}, a.ConnectedPlayers())

	a.RemovePlayer("missing")
	assert.ElementsMatch(t, []string{"p1", "p3"}, a.ConnectedPlayers())
}

func TestAddRemoveBot(t *testing.T) {
	a := New("area-1", nil)
	a.AddBot("b1")
	a.RemoveBot("b1")
	assert.Empty(t, a.ConnectedBots())
}
