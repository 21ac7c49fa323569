package world

// ClientRecord is the server-side connection state for one connected
// player: their transport address, warp/ready/transfer flags, asset
// cache bookkeeping, and the stack of plugin slots awaiting a widget
// response. Grounded on original_source/src/net/client.rs.
type ClientRecord struct {
	Addr   string
	ActorID string

	WarpIn         bool
	WarpX, WarpY, WarpZ float64
	Ready          bool
	Transferring   bool

	CachedAssets map[string]bool

	TextureBuffer   []byte
	AnimationBuffer []byte

	messageSlots []int
	Widgets      *WidgetTracker[int]
}

// NewClientRecord returns a ClientRecord for a just-connected player
// spawning at (x, y, z).
func NewClientRecord(addr, actorID string, x, y, z float64) *ClientRecord {
	return &ClientRecord{
		Addr:         addr,
		ActorID:      actorID,
		WarpIn:       true,
		WarpX:        x,
		WarpY:        y,
		WarpZ:        z,
		CachedAssets: make(map[string]bool),
		Widgets:      NewWidgetTracker[int](),
	}
}

// IsInWidget reports whether this client is currently waiting on a
// widget response from a plugin.
func (c *ClientRecord) IsInWidget() bool {
	return len(c.messageSlots) > 0
}

// TrackMessage records which plugin slot is awaiting this client's
// next widget response.
func (c *ClientRecord) TrackMessage(slot int) {
	c.messageSlots = append(c.messageSlots, slot)
}

// PopMessage removes and returns the most recently tracked slot (LIFO,
// matching Client::pop_message's pop_back — the most recent prompt a
// client was shown is the one its response answers).
func (c *ClientRecord) PopMessage() (int, bool) {
	if len(c.messageSlots) == 0 {
		return 0, false
	}
	last := len(c.messageSlots) - 1
	slot := c.messageSlots[last]
	c.messageSlots = c.messageSlots[:last]
	return slot, true
}

// HasCachedAsset reports whether assetPath is already known to be
// cached on this client, so the server can skip re-sending it.
func (c *ClientRecord) HasCachedAsset(assetPath string) bool {
	return c.CachedAssets[assetPath]
}

// MarkAssetCached records that assetPath has been delivered to this
// client.
func (c *ClientRecord) MarkAssetCached(assetPath string) {
	c.CachedAssets[assetPath] = true
}
