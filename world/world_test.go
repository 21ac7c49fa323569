package world

import (
	"testing"
	"time"

	"github.com/lguibr/overworld/area"
	"github.com/lguibr/overworld/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActorSetPositionOnlyTouchesClockOnChange(t *testing.T) {
	a := NewActor("a1", KindPlayer, "Hero", "area-1", 1, 2, 0)
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return fixed }

	a.SetPosition(1, 2, 0)
	assert.True(t, a.LastMovementTime.IsZero())

	a.SetPosition(5, 6, 0)
	assert.Equal(t, fixed, a.LastMovementTime)
	assert.Equal(t, "", a.CurrentAnim)
}

func TestActorSetDirectionOnlyTouchesClockOnChange(t *testing.T) {
	a := NewActor("a1", KindPlayer, "Hero", "area-1", 0, 0, 0)
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return fixed }

	a.SetDirection(wire.DirectionNone)
	assert.True(t, a.LastMovementTime.IsZero())

	a.SetDirection(wire.DirectionDown)
	assert.Equal(t, fixed, a.LastMovementTime)
}

func TestActorSpawnPacketReflectsCurrentFields(t *testing.T) {
	a := NewActor("a1", KindPlayer, "Hero", "area-1", 0, 0, 0)
	a.TexturePath = "/server/hero.png"
	a.AnimationPath = "/server/hero.anim"
	a.MinimapColor = [4]uint8{255, 0, 0, 255}

	packet := a.SpawnPacket(3, 4, 0, true)
	assert.Equal(t, "a1", packet.ID)
	assert.Equal(t, "Hero", packet.Name)
	assert.Equal(t, "/server/hero.png", packet.TexturePath)
	assert.True(t, packet.WarpIn)
	assert.Equal(t, [4]uint8{255, 0, 0, 255}, packet.MinimapColor)
}

func TestWidgetTrackerTextboxIsFIFO(t *testing.T) {
	tr := NewWidgetTracker[int]()
	assert.True(t, tr.IsEmpty())

	tr.TrackTextbox(1)
	tr.TrackTextbox(2)
	assert.False(t, tr.IsEmpty())

	owner, ok := tr.PopTextbox()
	require.True(t, ok)
	assert.Equal(t, 1, owner)

	owner, ok = tr.PopTextbox()
	require.True(t, ok)
	assert.Equal(t, 2, owner)

	_, ok = tr.PopTextbox()
	assert.False(t, ok)
}

func TestWidgetTrackerBoardsNest(t *testing.T) {
	tr := NewWidgetTracker[int]()
	tr.TrackBoard(1)
	tr.TrackBoard(2)

	tr.OpenBoard()
	current, ok := tr.CurrentBoard()
	require.True(t, ok)
	assert.Equal(t, 1, current)

	tr.OpenBoard()
	current, ok = tr.CurrentBoard()
	require.True(t, ok)
	assert.Equal(t, 2, current)
	assert.Equal(t, 2, tr.BoardCount())

	closed, ok := tr.CloseBoard()
	require.True(t, ok)
	assert.Equal(t, 2, closed)

	current, ok = tr.CurrentBoard()
	require.True(t, ok)
	assert.Equal(t, 1, current)

	_, ok = tr.CloseBoard()
	require.True(t, ok)
	_, ok = tr.CurrentBoard()
	assert.False(t, ok)
}

func TestWidgetTrackerShopIsSingleSlot(t *testing.T) {
	tr := NewWidgetTracker[int]()
	_, ok := tr.CurrentShop()
	assert.False(t, ok)

	tr.TrackShop(7)
	owner, ok := tr.CurrentShop()
	require.True(t, ok)
	assert.Equal(t, 7, owner)

	tr.TrackShop(9)
	owner, ok = tr.CurrentShop()
	require.True(t, ok)
	assert.Equal(t, 9, owner)

	tr.CloseShop()
	_, ok = tr.CurrentShop()
	assert.False(t, ok)
}

func TestWidgetTrackerBattleIsFIFO(t *testing.T) {
	tr := NewWidgetTracker[int]()
	tr.TrackBattle(1)
	tr.TrackBattle(2)

	owner, ok := tr.PopBattle()
	require.True(t, ok)
	assert.Equal(t, 1, owner)

	owner, ok = tr.PopBattle()
	require.True(t, ok)
	assert.Equal(t, 2, owner)
}

func TestClientRecordMessageSlotsAreLIFO(t *testing.T) {
	c := NewClientRecord("127.0.0.1:9000", "a1", 0, 0, 0)
	assert.False(t, c.IsInWidget())

	c.TrackMessage(1)
	c.TrackMessage(2)
	assert.True(t, c.IsInWidget())

	slot, ok := c.PopMessage()
	require.True(t, ok)
	assert.Equal(t, 2, slot)

	slot, ok = c.PopMessage()
	require.True(t, ok)
	assert.Equal(t, 1, slot)

	assert.False(t, c.IsInWidget())
}

func TestClientRecordCachedAssets(t *testing.T) {
	c := NewClientRecord("127.0.0.1:9000", "a1", 0, 0, 0)
	assert.False(t, c.HasCachedAsset("/server/tiles.png"))

	c.MarkAssetCached("/server/tiles.png")
	assert.True(t, c.HasCachedAsset("/server/tiles.png"))
}

func newTestWorld() (*World, *area.Area) {
	w := New()
	a := area.New("area-1", nil)
	w.AddArea(a)
	return w, a
}

func TestWorldAddActorRejectsUnknownArea(t *testing.T) {
	w := New()
	actor := NewActor("p1", KindPlayer, "Hero", "nowhere", 0, 0, 0)
	err := w.AddActor(actor, nil)
	assert.ErrorIs(t, err, ErrAreaNotFound)
}

func TestWorldAddActorTracksPlayerAndClient(t *testing.T) {
	w, a := newTestWorld()
	actor := NewActor("p1", KindPlayer, "Hero", "area-1", 0, 0, 0)
	client := NewClientRecord("127.0.0.1:9000", "p1", 0, 0, 0)

	require.NoError(t, w.AddActor(actor, client))

	assert.Contains(t, a.ConnectedPlayers(), "p1")
	got, ok := w.Actor("p1")
	require.True(t, ok)
	assert.Same(t, actor, got)

	gotClient, ok := w.Client("p1")
	require.True(t, ok)
	assert.Same(t, client, gotClient)
}

func TestWorldAddActorTracksBotWithoutClient(t *testing.T) {
	w, a := newTestWorld()
	bot := NewActor("b1", KindBot, "Slime", "area-1", 0, 0, 0)

	require.NoError(t, w.AddActor(bot, nil))

	assert.Contains(t, a.ConnectedBots(), "b1")
	_, ok := w.Client("b1")
	assert.False(t, ok)
}

func TestWorldRemoveActorClearsAreaAndClient(t *testing.T) {
	w, a := newTestWorld()
	actor := NewActor("p1", KindPlayer, "Hero", "area-1", 0, 0, 0)
	client := NewClientRecord("127.0.0.1:9000", "p1", 0, 0, 0)
	require.NoError(t, w.AddActor(actor, client))

	require.NoError(t, w.RemoveActor("p1"))

	assert.NotContains(t, a.ConnectedPlayers(), "p1")
	_, ok := w.Actor("p1")
	assert.False(t, ok)
	_, ok = w.Client("p1")
	assert.False(t, ok)
}

func TestWorldRemoveActorUnknownReturnsError(t *testing.T) {
	w, _ := newTestWorld()
	err := w.RemoveActor("missing")
	assert.ErrorIs(t, err, ErrActorNotFound)
}

func TestWorldMoveActorUpdatesPosition(t *testing.T) {
	w, _ := newTestWorld()
	actor := NewActor("p1", KindPlayer, "Hero", "area-1", 0, 0, 0)
	require.NoError(t, w.AddActor(actor, nil))

	moved, err := w.MoveActor("p1", 10, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 10.0, moved.X)
	assert.Equal(t, 20.0, moved.Y)

	_, err = w.MoveActor("missing", 0, 0, 0)
	assert.ErrorIs(t, err, ErrActorNotFound)
}

func TestWorldTransferActorMovesRosters(t *testing.T) {
	w, source := newTestWorld()
	destination := area.New("area-2", nil)
	w.AddArea(destination)

	actor := NewActor("p1", KindPlayer, "Hero", "area-1", 0, 0, 0)
	require.NoError(t, w.AddActor(actor, nil))

	moved, err := w.TransferActor("p1", "area-2")
	require.NoError(t, err)
	assert.Equal(t, "area-2", moved.AreaID)
	assert.NotContains(t, source.ConnectedPlayers(), "p1")
	assert.Contains(t, destination.ConnectedPlayers(), "p1")
}

func TestWorldTransferActorUnknownDestination(t *testing.T) {
	w, _ := newTestWorld()
	actor := NewActor("p1", KindPlayer, "Hero", "area-1", 0, 0, 0)
	require.NoError(t, w.AddActor(actor, nil))

	_, err := w.TransferActor("p1", "nowhere")
	assert.ErrorIs(t, err, ErrAreaNotFound)
}

func TestWorldRequestTransferDefaultsCoordinatesToCurrentPosition(t *testing.T) {
	w, _ := newTestWorld()
	w.AddArea(area.New("area-2", nil))
	actor := NewActor("p1", KindPlayer, "Hero", "area-1", 3, 4, 1)
	require.NoError(t, w.AddActor(actor, nil))

	require.NoError(t, w.RequestTransfer("p1", "area-2", true, nil, nil, nil))

	pending := w.PendingTransfers()
	require.Len(t, pending, 1)
	assert.Equal(t, TransferRequest{ActorID: "p1", DestinationAreaID: "area-2", WarpIn: true, X: 3, Y: 4, Z: 1}, pending[0])

	assert.Empty(t, w.PendingTransfers())
}

func TestWorldRequestTransferHonorsExplicitCoordinates(t *testing.T) {
	w, _ := newTestWorld()
	w.AddArea(area.New("area-2", nil))
	actor := NewActor("p1", KindPlayer, "Hero", "area-1", 3, 4, 1)
	require.NoError(t, w.AddActor(actor, nil))

	x, z := 9.0, 2.0
	require.NoError(t, w.RequestTransfer("p1", "area-2", false, &x, nil, &z))

	pending := w.PendingTransfers()
	require.Len(t, pending, 1)
	assert.Equal(t, 9.0, pending[0].X)
	assert.Equal(t, 4.0, pending[0].Y)
	assert.Equal(t, 2.0, pending[0].Z)
	assert.False(t, pending[0].WarpIn)
}

func TestWorldRequestTransferUnknownActorOrArea(t *testing.T) {
	w, _ := newTestWorld()
	actor := NewActor("p1", KindPlayer, "Hero", "area-1", 0, 0, 0)
	require.NoError(t, w.AddActor(actor, nil))

	assert.ErrorIs(t, w.RequestTransfer("missing", "area-1", true, nil, nil, nil), ErrActorNotFound)
	assert.ErrorIs(t, w.RequestTransfer("p1", "nowhere", true, nil, nil, nil), ErrAreaNotFound)
	assert.Empty(t, w.PendingTransfers())
}

func TestWorldDefaultAreaIDTracksFirstAdded(t *testing.T) {
	w := New()
	assert.Equal(t, "", w.DefaultAreaID())

	w.AddArea(area.New("area-1", nil))
	assert.Equal(t, "area-1", w.DefaultAreaID())

	w.AddArea(area.New("area-2", nil))
	assert.Equal(t, "area-1", w.DefaultAreaID())

	w.SetDefaultAreaID("area-2")
	assert.Equal(t, "area-2", w.DefaultAreaID())
}

func TestWorldDirtyAreasSkipsAreasWithNoMap(t *testing.T) {
	w, _ := newTestWorld()
	assert.Empty(t, w.DirtyAreas())
}
