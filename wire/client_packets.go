package wire

// ClientPacketType tags every packet a client may send to the server.
type ClientPacketType uint16

const (
	ClientPacketPing ClientPacketType = iota
	ClientPacketAck
	ClientPacketLogin
	ClientPacketLogout
	ClientPacketRequestJoin
	ClientPacketReady
	ClientPacketTransferredOut
	ClientPacketPosition
	ClientPacketAvatarChange
	ClientPacketAssetStream
	ClientPacketAssetFound
	ClientPacketEmote
	ClientPacketCustomWarp
	ClientPacketObjectInteraction
	ClientPacketActorInteraction
	ClientPacketTileInteraction
	ClientPacketTextBoxResponse
	ClientPacketPromptResponse
	ClientPacketBoardOpen
	ClientPacketBoardClose
	ClientPacketPostRequest
	ClientPacketPostSelection
	ClientPacketShopPurchase
	ClientPacketShopClose
	ClientPacketBattleResults
	ClientPacketServerMessage
	ClientPacketUnknown ClientPacketType = 0xFFFF
)

// ClientPacket is any packet the server can receive from a client.
type ClientPacket interface {
	Type() ClientPacketType
}

// UnknownPacket is the total-decode sentinel: any datagram whose type
// tag the server doesn't recognize, or whose body it can't parse,
// decodes to this instead of failing (spec §7 — decoding never
// errors).
type UnknownPacket struct {
	RawType ClientPacketType
	Body    []byte
}

func (UnknownPacket) Type() ClientPacketType { return ClientPacketUnknown }

type Ping struct{}

func (Ping) Type() ClientPacketType { return ClientPacketPing }

// ClientAck acknowledges a server-sent reliable packet.
type ClientAck struct {
	ReliabilityByte uint8
	ID              uint64
}

func (ClientAck) Type() ClientPacketType { return ClientPacketAck }

type ClientLogin struct {
	Username string
	Password string
	Data     string
}

func (ClientLogin) Type() ClientPacketType { return ClientPacketLogin }

type Logout struct{}

func (Logout) Type() ClientPacketType { return ClientPacketLogout }

type RequestJoin struct{}

func (RequestJoin) Type() ClientPacketType { return ClientPacketRequestJoin }

type Ready struct {
	Time float64
}

func (Ready) Type() ClientPacketType { return ClientPacketReady }

type TransferredOut struct{}

func (TransferredOut) Type() ClientPacketType { return ClientPacketTransferredOut }

type Position struct {
	X, Y, Z float64
}

func (Position) Type() ClientPacketType { return ClientPacketPosition }

type AvatarChange struct {
	Name string
}

func (AvatarChange) Type() ClientPacketType { return ClientPacketAvatarChange }

type ClientAssetStream struct {
	AssetType uint8
	DataChunk []byte
}

func (ClientAssetStream) Type() ClientPacketType { return ClientPacketAssetStream }

type AssetFound struct {
	Path string
	Hash string
}

func (AssetFound) Type() ClientPacketType { return ClientPacketAssetFound }

type ClientEmote struct {
	EmoteID uint8
}

func (ClientEmote) Type() ClientPacketType { return ClientPacketEmote }

type CustomWarp struct {
	TileObjectID uint32
}

func (CustomWarp) Type() ClientPacketType { return ClientPacketCustomWarp }

type ObjectInteraction struct {
	TileObjectID uint32
	ButtonPress  uint8
}

func (ObjectInteraction) Type() ClientPacketType { return ClientPacketObjectInteraction }

type ActorInteraction struct {
	ActorID     string
	ButtonPress uint8
}

func (ActorInteraction) Type() ClientPacketType { return ClientPacketActorInteraction }

type TileInteraction struct {
	X, Y, Z     float64
	ButtonPress uint8
}

func (TileInteraction) Type() ClientPacketType { return ClientPacketTileInteraction }

type TextBoxResponse struct {
	Response uint8
}

func (TextBoxResponse) Type() ClientPacketType { return ClientPacketTextBoxResponse }

type PromptResponse struct {
	Message string
}

func (PromptResponse) Type() ClientPacketType { return ClientPacketPromptResponse }

type BoardOpen struct{}

func (BoardOpen) Type() ClientPacketType { return ClientPacketBoardOpen }

type BoardClose struct{}

func (BoardClose) Type() ClientPacketType { return ClientPacketBoardClose }

type PostRequest struct{}

func (PostRequest) Type() ClientPacketType { return ClientPacketPostRequest }

type PostSelection struct {
	PostID string
}

func (PostSelection) Type() ClientPacketType { return ClientPacketPostSelection }

// ShopPurchase asks to buy a catalog item by name (supplemented
// feature, see SPEC_FULL.md §4).
type ShopPurchase struct {
	ItemName string
}

func (ShopPurchase) Type() ClientPacketType { return ClientPacketShopPurchase }

type ClientShopClose struct{}

func (ClientShopClose) Type() ClientPacketType { return ClientPacketShopClose }

// BattleResults reports the outcome of a plugin-driven battle
// (supplemented feature, see SPEC_FULL.md §4).
type BattleResults struct {
	Won    bool
	Health int32
	Score  uint32
	Time   float64
	Ran    bool
	Emotion uint8
}

func (BattleResults) Type() ClientPacketType { return ClientPacketBattleResults }

type ServerMessage struct {
	Message string
}

func (ServerMessage) Type() ClientPacketType { return ClientPacketServerMessage }

// DecodeClientPacket parses a datagram body (after reliability
// framing has been stripped) into a ClientPacket. It never fails:
// an unrecognized type tag, or a body too short for its type,
// decodes to UnknownPacket so a malformed or adversarial client
// cannot crash the dispatcher (spec §7).
func DecodeClientPacket(body []byte) ClientPacket {
	c := NewCursor(body)
	rawTag, ok := c.ReadU16()
	if !ok {
		return UnknownPacket{RawType: ClientPacketUnknown, Body: body}
	}
	tag := ClientPacketType(rawTag)
	rest := body[len(body)-c.Remaining():]

	switch tag {
	case ClientPacketPing:
		return Ping{}
	case ClientPacketAck:
		rc := NewCursor(rest)
		relByte, ok1 := rc.ReadU8()
		id, ok2 := rc.ReadU64()
		if !ok1 || !ok2 {
			break
		}
		return ClientAck{ReliabilityByte: relByte, ID: id}
	case ClientPacketLogin:
		rc := NewCursor(rest)
		username, ok1 := rc.ReadString()
		password, ok2 := rc.ReadString()
		data, ok3 := rc.ReadString()
		if !ok1 || !ok2 || !ok3 {
			break
		}
		return ClientLogin{Username: username, Password: password, Data: data}
	case ClientPacketLogout:
		return Logout{}
	case ClientPacketRequestJoin:
		return RequestJoin{}
	case ClientPacketReady:
		rc := NewCursor(rest)
		t, ok1 := rc.ReadF64()
		if !ok1 {
			break
		}
		return Ready{Time: t}
	case ClientPacketTransferredOut:
		return TransferredOut{}
	case ClientPacketPosition:
		rc := NewCursor(rest)
		x, ok1 := rc.ReadF64()
		y, ok2 := rc.ReadF64()
		z, ok3 := rc.ReadF64()
		if !ok1 || !ok2 || !ok3 {
			break
		}
		return Position{X: x, Y: y, Z: z}
	case ClientPacketAvatarChange:
		rc := NewCursor(rest)
		name, ok1 := rc.ReadString()
		if !ok1 {
			break
		}
		return AvatarChange{Name: name}
	case ClientPacketAssetStream:
		rc := NewCursor(rest)
		assetType, ok1 := rc.ReadU8()
		length, ok2 := rc.ReadU32()
		if !ok1 || !ok2 || rc.Remaining() < int(length) {
			break
		}
		chunk := rest[len(rest)-rc.Remaining() : len(rest)-rc.Remaining()+int(length)]
		return ClientAssetStream{AssetType: assetType, DataChunk: chunk}
	case ClientPacketAssetFound:
		rc := NewCursor(rest)
		path, ok1 := rc.ReadString()
		hash, ok2 := rc.ReadString()
		if !ok1 || !ok2 {
			break
		}
		return AssetFound{Path: path, Hash: hash}
	case ClientPacketEmote:
		rc := NewCursor(rest)
		id, ok1 := rc.ReadU8()
		if !ok1 {
			break
		}
		return ClientEmote{EmoteID: id}
	case ClientPacketCustomWarp:
		rc := NewCursor(rest)
		id, ok1 := rc.ReadU32()
		if !ok1 {
			break
		}
		return CustomWarp{TileObjectID: id}
	case ClientPacketObjectInteraction:
		rc := NewCursor(rest)
		id, ok1 := rc.ReadU32()
		btn, ok2 := rc.ReadU8()
		if !ok1 || !ok2 {
			break
		}
		return ObjectInteraction{TileObjectID: id, ButtonPress: btn}
	case ClientPacketActorInteraction:
		rc := NewCursor(rest)
		id, ok1 := rc.ReadString()
		btn, ok2 := rc.ReadU8()
		if !ok1 || !ok2 {
			break
		}
		return ActorInteraction{ActorID: id, ButtonPress: btn}
	case ClientPacketTileInteraction:
		rc := NewCursor(rest)
		x, ok1 := rc.ReadF64()
		y, ok2 := rc.ReadF64()
		z, ok3 := rc.ReadF64()
		btn, ok4 := rc.ReadU8()
		if !ok1 || !ok2 || !ok3 || !ok4 {
			break
		}
		return TileInteraction{X: x, Y: y, Z: z, ButtonPress: btn}
	case ClientPacketTextBoxResponse:
		rc := NewCursor(rest)
		resp, ok1 := rc.ReadU8()
		if !ok1 {
			break
		}
		return TextBoxResponse{Response: resp}
	case ClientPacketPromptResponse:
		rc := NewCursor(rest)
		msg, ok1 := rc.ReadString()
		if !ok1 {
			break
		}
		return PromptResponse{Message: msg}
	case ClientPacketBoardOpen:
		return BoardOpen{}
	case ClientPacketBoardClose:
		return BoardClose{}
	case ClientPacketPostRequest:
		return PostRequest{}
	case ClientPacketPostSelection:
		rc := NewCursor(rest)
		id, ok1 := rc.ReadString()
		if !ok1 {
			break
		}
		return PostSelection{PostID: id}
	case ClientPacketShopPurchase:
		rc := NewCursor(rest)
		name, ok1 := rc.ReadString()
		if !ok1 {
			break
		}
		return ShopPurchase{ItemName: name}
	case ClientPacketShopClose:
		return ClientShopClose{}
	case ClientPacketBattleResults:
		rc := NewCursor(rest)
		won, ok1 := rc.ReadU8()
		health, ok2 := rc.ReadU32()
		score, ok3 := rc.ReadU32()
		t, ok4 := rc.ReadF64()
		ran, ok5 := rc.ReadU8()
		emotion, ok6 := rc.ReadU8()
		if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 || !ok6 {
			break
		}
		return BattleResults{
			Won:     won != 0,
			Health:  int32(health),
			Score:   score,
			Time:    t,
			Ran:     ran != 0,
			Emotion: emotion,
		}
	case ClientPacketServerMessage:
		rc := NewCursor(rest)
		msg, ok1 := rc.ReadString()
		if !ok1 {
			break
		}
		return ServerMessage{Message: msg}
	}

	return UnknownPacket{RawType: tag, Body: rest}
}
