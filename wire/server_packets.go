package wire

// ServerPacketType tags every packet the server may send to a client.
type ServerPacketType uint16

const (
	ServerPacketPong ServerPacketType = iota
	ServerPacketAck
	ServerPacketLogin
	ServerPacketTransferStart
	ServerPacketTransferComplete
	ServerPacketTransferServer
	ServerPacketKick
	ServerPacketRemoveAsset
	ServerPacketAssetStreamStart
	ServerPacketAssetStream
	ServerPacketPreload
	ServerPacketMapUpdate
	ServerPacketActorConnected
	ServerPacketActorDisconnected
	ServerPacketActorMove
	ServerPacketActorSetAvatar
	ServerPacketActorEmote
	ServerPacketActorAnimate
	ServerPacketPropertyAnimation
	ServerPacketMessage
	ServerPacketQuestion
	ServerPacketQuiz
	ServerPacketPrompt
	ServerPacketBbsOpen
	ServerPacketBbsPostsPrepend
	ServerPacketBbsPostsAppend
	ServerPacketBbsPostsRemove
	ServerPacketBbsClose
	ServerPacketShopOpen
	ServerPacketShopClose
	ServerPacketPostSelectionAck
	ServerPacketSynchronizeUpdates
	ServerPacketEndSynchronization
)

// ServerPacket is any packet the server can send. Encode returns the
// full wire body (type tag + payload), ready to hand to a
// reliability.Shipper.
type ServerPacket interface {
	Encode() []byte
}

func tagged(t ServerPacketType) *Writer {
	w := NewWriter()
	w.WriteU16(uint16(t))
	return w
}

// Pong advertises the protocol handshake parameters (spec §6).
type Pong struct {
	VersionID        string
	VersionIteration uint64
	MaxPayloadSize   uint16
}

func (p Pong) Encode() []byte {
	w := tagged(ServerPacketPong)
	w.WriteString(p.VersionID)
	w.WriteU64(p.VersionIteration)
	w.WriteU16(p.MaxPayloadSize)
	return w.Bytes()
}

// Ack acknowledges a reliable/reliable-ordered packet.
type Ack struct {
	ReliabilityByte uint8
	ID              uint64
}

func (p Ack) Encode() []byte {
	w := tagged(ServerPacketAck)
	w.WriteU8(p.ReliabilityByte)
	w.WriteU64(p.ID)
	return w.Bytes()
}

// Login answers a client's Login attempt.
type Login struct {
	ID    string
	Error uint16
}

func (p Login) Encode() []byte {
	w := tagged(ServerPacketLogin)
	w.WriteString(p.ID)
	w.WriteU16(p.Error)
	return w.Bytes()
}

type TransferStart struct{}

func (p TransferStart) Encode() []byte { return tagged(ServerPacketTransferStart).Bytes() }

type TransferComplete struct {
	WarpIn bool
}

func (p TransferComplete) Encode() []byte {
	w := tagged(ServerPacketTransferComplete)
	w.WriteU8(boolByte(p.WarpIn))
	return w.Bytes()
}

type TransferServer struct {
	Address string
	Data    string
	WarpOut bool
}

func (p TransferServer) Encode() []byte {
	w := tagged(ServerPacketTransferServer)
	w.WriteString(p.Address)
	w.WriteString(p.Data)
	w.WriteU8(boolByte(p.WarpOut))
	return w.Bytes()
}

// Kick disconnects a client with a human-readable reason.
type Kick struct {
	Reason string
}

func (p Kick) Encode() []byte {
	w := tagged(ServerPacketKick)
	w.WriteString(p.Reason)
	return w.Bytes()
}

type RemoveAsset struct {
	Path string
}

func (p RemoveAsset) Encode() []byte {
	w := tagged(ServerPacketRemoveAsset)
	w.WriteString(p.Path)
	return w.Bytes()
}

// AssetStreamStart begins an asset transfer; Type mirrors the
// assets.Kind tag on the wire.
type AssetStreamStart struct {
	Name string
	Hash string
	Type uint8
	Size uint64
}

func (p AssetStreamStart) Encode() []byte {
	w := tagged(ServerPacketAssetStreamStart)
	w.WriteString(p.Name)
	w.WriteString(p.Hash)
	w.WriteU8(p.Type)
	w.WriteU64(p.Size)
	return w.Bytes()
}

type AssetStream struct {
	DataChunk []byte
}

func (p AssetStream) Encode() []byte {
	w := tagged(ServerPacketAssetStream)
	w.WriteU32(uint32(len(p.DataChunk)))
	w.WriteBytes(p.DataChunk)
	return w.Bytes()
}

type Preload struct {
	AssetPath string
}

func (p Preload) Encode() []byte {
	w := tagged(ServerPacketPreload)
	w.WriteString(p.AssetPath)
	return w.Bytes()
}

type MapUpdate struct {
	Data []byte
}

func (p MapUpdate) Encode() []byte {
	w := tagged(ServerPacketMapUpdate)
	w.WriteU32(uint32(len(p.Data)))
	w.WriteBytes(p.Data)
	return w.Bytes()
}

// ActorConnected is the full spawn snapshot sent for every actor a
// client can see (spec §3 Actor, §6).
type ActorConnected struct {
	ID             string
	Name           string
	TexturePath    string
	AnimationPath  string
	Direction      Direction
	X, Y, Z        float64
	WarpIn         bool
	Solid          bool
	ScaleX, ScaleY float64
	Rotation       float64
	MinimapColor   [4]uint8
	Animation      string
}

func (p ActorConnected) Encode() []byte {
	w := tagged(ServerPacketActorConnected)
	w.WriteString(p.ID)
	w.WriteString(p.Name)
	w.WriteString(p.TexturePath)
	w.WriteString(p.AnimationPath)
	w.WriteU8(uint8(p.Direction))
	w.WriteF64(p.X)
	w.WriteF64(p.Y)
	w.WriteF64(p.Z)
	w.WriteU8(boolByte(p.WarpIn))
	w.WriteU8(boolByte(p.Solid))
	w.WriteF64(p.ScaleX)
	w.WriteF64(p.ScaleY)
	w.WriteF64(p.Rotation)
	for _, c := range p.MinimapColor {
		w.WriteU8(c)
	}
	w.WriteString(p.Animation)
	return w.Bytes()
}

type ActorDisconnected struct {
	ID      string
	WarpOut bool
}

func (p ActorDisconnected) Encode() []byte {
	w := tagged(ServerPacketActorDisconnected)
	w.WriteString(p.ID)
	w.WriteU8(boolByte(p.WarpOut))
	return w.Bytes()
}

type ActorMove struct {
	ID        string
	X, Y, Z   float64
	Direction Direction
}

func (p ActorMove) Encode() []byte {
	w := tagged(ServerPacketActorMove)
	w.WriteString(p.ID)
	w.WriteF64(p.X)
	w.WriteF64(p.Y)
	w.WriteF64(p.Z)
	w.WriteU8(uint8(p.Direction))
	return w.Bytes()
}

type ActorSetAvatar struct {
	ID            string
	TexturePath   string
	AnimationPath string
}

func (p ActorSetAvatar) Encode() []byte {
	w := tagged(ServerPacketActorSetAvatar)
	w.WriteString(p.ID)
	w.WriteString(p.TexturePath)
	w.WriteString(p.AnimationPath)
	return w.Bytes()
}

type ActorEmote struct {
	ID        string
	EmoteID   uint8
	UseCustom bool
}

func (p ActorEmote) Encode() []byte {
	w := tagged(ServerPacketActorEmote)
	w.WriteString(p.ID)
	w.WriteU8(p.EmoteID)
	w.WriteU8(boolByte(p.UseCustom))
	return w.Bytes()
}

type ActorAnimate struct {
	ID   string
	Name string
	Loop bool
}

func (p ActorAnimate) Encode() []byte {
	w := tagged(ServerPacketActorAnimate)
	w.WriteString(p.ID)
	w.WriteString(p.Name)
	w.WriteU8(boolByte(p.Loop))
	return w.Bytes()
}

// PropertyAnimation drives a scripted keyframe animation on an actor
// or map element (spec §6); Keyframes is pre-encoded by the caller
// since its schema is plugin-defined.
type PropertyAnimation struct {
	ID        string
	Keyframes []byte
}

func (p PropertyAnimation) Encode() []byte {
	w := tagged(ServerPacketPropertyAnimation)
	w.WriteString(p.ID)
	w.WriteU32(uint32(len(p.Keyframes)))
	w.WriteBytes(p.Keyframes)
	return w.Bytes()
}

// Message opens a textbox widget.
type Message struct {
	Texture   string
	Animation string
	MugTex    string
	MugAnim   string
	Text      string
}

func (p Message) Encode() []byte {
	w := tagged(ServerPacketMessage)
	w.WriteString(p.Texture)
	w.WriteString(p.Animation)
	w.WriteString(p.MugTex)
	w.WriteString(p.MugAnim)
	w.WriteString(p.Text)
	return w.Bytes()
}

type Question struct {
	Message
}

func (p Question) Encode() []byte {
	w := tagged(ServerPacketQuestion)
	w.WriteString(p.Texture)
	w.WriteString(p.Animation)
	w.WriteString(p.MugTex)
	w.WriteString(p.MugAnim)
	w.WriteString(p.Text)
	return w.Bytes()
}

type Quiz struct {
	Message
	OptionA, OptionB, OptionC string
}

func (p Quiz) Encode() []byte {
	w := tagged(ServerPacketQuiz)
	w.WriteString(p.Texture)
	w.WriteString(p.Animation)
	w.WriteString(p.MugTex)
	w.WriteString(p.MugAnim)
	w.WriteString(p.Text)
	w.WriteString(p.OptionA)
	w.WriteString(p.OptionB)
	w.WriteString(p.OptionC)
	return w.Bytes()
}

type Prompt struct {
	Character string
	Default   string
}

func (p Prompt) Encode() []byte {
	w := tagged(ServerPacketPrompt)
	w.WriteString(p.Character)
	w.WriteString(p.Default)
	return w.Bytes()
}

// BBSPost is one entry in a bulletin board's post list.
type BBSPost struct {
	ID, Title, Author string
}

func encodeBBSPosts(w *Writer, posts []BBSPost) {
	w.WriteU16(uint16(len(posts)))
	for _, post := range posts {
		w.WriteString(post.ID)
		w.WriteString(post.Title)
		w.WriteString(post.Author)
	}
}

type BbsOpen struct {
	Name     string
	Color    [3]uint8
	Posts    []BBSPost
	HasMore  bool
}

func (p BbsOpen) Encode() []byte {
	w := tagged(ServerPacketBbsOpen)
	w.WriteString(p.Name)
	for _, c := range p.Color {
		w.WriteU8(c)
	}
	encodeBBSPosts(w, p.Posts)
	w.WriteU8(boolByte(p.HasMore))
	return w.Bytes()
}

type BbsPostsPrepend struct {
	Reference string
	Posts     []BBSPost
}

func (p BbsPostsPrepend) Encode() []byte {
	w := tagged(ServerPacketBbsPostsPrepend)
	w.WriteString(p.Reference)
	encodeBBSPosts(w, p.Posts)
	return w.Bytes()
}

type BbsPostsAppend struct {
	Reference string
	Posts     []BBSPost
}

func (p BbsPostsAppend) Encode() []byte {
	w := tagged(ServerPacketBbsPostsAppend)
	w.WriteString(p.Reference)
	encodeBBSPosts(w, p.Posts)
	return w.Bytes()
}

type BbsPostsRemove struct {
	Reference string
	PostID    string
}

func (p BbsPostsRemove) Encode() []byte {
	w := tagged(ServerPacketBbsPostsRemove)
	w.WriteString(p.Reference)
	w.WriteString(p.PostID)
	return w.Bytes()
}

type BbsClose struct{}

func (p BbsClose) Encode() []byte { return tagged(ServerPacketBbsClose).Bytes() }

// ShopItem is one catalog entry served by ShopOpen (supplemented from
// original_source/src/net/shop_item.rs, see SPEC_FULL.md §4).
type ShopItem struct {
	Name        string
	Price       uint32
	Description string
}

type ShopOpen struct {
	Mug   string
	Items []ShopItem
}

func (p ShopOpen) Encode() []byte {
	w := tagged(ServerPacketShopOpen)
	w.WriteString(p.Mug)
	w.WriteU16(uint16(len(p.Items)))
	for _, item := range p.Items {
		w.WriteString(item.Name)
		w.WriteU32(item.Price)
		w.WriteString(item.Description)
	}
	return w.Bytes()
}

type ShopClose struct{}

func (p ShopClose) Encode() []byte { return tagged(ServerPacketShopClose).Bytes() }

type PostSelectionAck struct{}

func (p PostSelectionAck) Encode() []byte { return tagged(ServerPacketPostSelectionAck).Bytes() }

// SynchronizeUpdates / EndSynchronization bracket a synchronized
// update window (spec §4.3).
type SynchronizeUpdates struct{}

func (p SynchronizeUpdates) Encode() []byte { return tagged(ServerPacketSynchronizeUpdates).Bytes() }

type EndSynchronization struct{}

func (p EndSynchronization) Encode() []byte { return tagged(ServerPacketEndSynchronization).Bytes() }

func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
