package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestCursorWriterRoundTripIntegers(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		u8 := rapid.Uint8().Draw(t, "u8")
		u16 := rapid.Uint16().Draw(t, "u16")
		u32 := rapid.Uint32().Draw(t, "u32")
		u64 := rapid.Uint64().Draw(t, "u64")
		f64 := rapid.Float64().Draw(t, "f64")
		s := rapid.StringN(0, 32, -1).Draw(t, "s")

		w := NewWriter()
		w.WriteU8(u8)
		w.WriteU16(u16)
		w.WriteU32(u32)
		w.WriteU64(u64)
		w.WriteF64(f64)
		w.WriteString(s)

		c := NewCursor(w.Bytes())
		gotU8, ok := c.ReadU8()
		require.True(t, ok)
		assert.Equal(t, u8, gotU8)

		gotU16, ok := c.ReadU16()
		require.True(t, ok)
		assert.Equal(t, u16, gotU16)

		gotU32, ok := c.ReadU32()
		require.True(t, ok)
		assert.Equal(t, u32, gotU32)

		gotU64, ok := c.ReadU64()
		require.True(t, ok)
		assert.Equal(t, u64, gotU64)

		gotF64, ok := c.ReadF64()
		require.True(t, ok)
		if f64 == f64 { // skip NaN, which never equals itself
			assert.Equal(t, f64, gotF64)
		}

		gotS, ok := c.ReadString()
		require.True(t, ok)
		assert.Equal(t, s, gotS)

		assert.Equal(t, 0, c.Remaining())
	})
}

func TestCursorReadPastEndFails(t *testing.T) {
	c := NewCursor([]byte{1, 2})
	_, ok := c.ReadU32()
	assert.False(t, ok)
	assert.Equal(t, 0, c.Remaining())
}

func TestFrameRoundTrip(t *testing.T) {
	cases := []struct {
		mode ReliabilityMode
		id   uint64
		body []byte
	}{
		{Unreliable, 0, []byte("hello")},
		{UnreliableSequenced, 42, []byte("world")},
		{Reliable, 7, []byte{}},
		{ReliableOrdered, 1 << 40, []byte{0xFF, 0x00}},
	}

	for _, tc := range cases {
		raw := EncodeFrame(tc.mode, tc.id, tc.body)
		frame, ok := DecodeFrame(raw)
		require.True(t, ok)
		assert.Equal(t, tc.mode, frame.Mode)
		if tc.mode.HasID() {
			assert.Equal(t, tc.id, frame.ID)
		}
		assert.Equal(t, tc.body, frame.Body)
	}
}

func TestDecodeFrameTooShortFails(t *testing.T) {
	_, ok := DecodeFrame(nil)
	assert.False(t, ok)
}

func TestDecodeClientPacketKnownTypes(t *testing.T) {
	assert.Equal(t, Ping{}, DecodeClientPacket(tagged16(uint16(ClientPacketPing))))

	login := ClientLogin{Username: "ada", Password: "lovelace", Data: ""}
	w := NewWriter()
	w.WriteU16(uint16(ClientPacketLogin))
	w.WriteString(login.Username)
	w.WriteString(login.Password)
	w.WriteString(login.Data)
	assert.Equal(t, login, DecodeClientPacket(w.Bytes()))

	pos := Position{X: 1.5, Y: -2.5, Z: 0}
	w2 := NewWriter()
	w2.WriteU16(uint16(ClientPacketPosition))
	w2.WriteF64(pos.X)
	w2.WriteF64(pos.Y)
	w2.WriteF64(pos.Z)
	assert.Equal(t, pos, DecodeClientPacket(w2.Bytes()))
}

func TestDecodeClientPacketNeverFails(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		body := rapid.SliceOfN(rapid.Byte(), 0, 64).Draw(t, "body")
		assert.NotPanics(t, func() {
			DecodeClientPacket(body)
		})
	})
}

func TestDecodeClientPacketUnknownType(t *testing.T) {
	w := NewWriter()
	w.WriteU16(0xBEEF)
	w.WriteString("garbage")
	pkt := DecodeClientPacket(w.Bytes())
	unknown, ok := pkt.(UnknownPacket)
	require.True(t, ok)
	assert.Equal(t, ClientPacketType(0xBEEF), unknown.RawType)
}

func TestDecodeClientPacketTruncatedBodyFallsBackToUnknown(t *testing.T) {
	w := NewWriter()
	w.WriteU16(uint16(ClientPacketPosition))
	w.WriteF64(1.0) // only one of three required floats
	pkt := DecodeClientPacket(w.Bytes())
	_, ok := pkt.(UnknownPacket)
	assert.True(t, ok)
}

func tagged16(tag uint16) []byte {
	w := NewWriter()
	w.WriteU16(tag)
	return w.Bytes()
}

func TestServerPacketsEncodeWithTypeTag(t *testing.T) {
	raw := Pong{VersionID: "overworld-1", VersionIteration: 3, MaxPayloadSize: 1400}.Encode()
	c := NewCursor(raw)
	tag, ok := c.ReadU16()
	require.True(t, ok)
	assert.Equal(t, uint16(ServerPacketPong), tag)

	kick := Kick{Reason: "banned"}.Encode()
	c2 := NewCursor(kick)
	tag2, ok := c2.ReadU16()
	require.True(t, ok)
	assert.Equal(t, uint16(ServerPacketKick), tag2)
	reason, ok := c2.ReadString()
	require.True(t, ok)
	assert.Equal(t, "banned", reason)
}
