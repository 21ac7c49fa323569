package assets

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChunkable struct {
	name string
	data []byte
}

func (f fakeChunkable) ChunkName() string  { return f.name }
func (f fakeChunkable) ChunkBytes() []byte { return f.data }

func TestChunkPackBinPacksItemsUnderCap(t *testing.T) {
	items := []Chunkable{
		fakeChunkable{"a", []byte("1234")},
		fakeChunkable{"b", []byte("5678")},
		fakeChunkable{"c", []byte("9")},
	}
	chunks := ChunkPack(items, 8)
	require.Len(t, chunks, 2)
	assert.Equal(t, []byte("12345678"), chunks[0])
	assert.Equal(t, []byte("9"), chunks[1])
}

func TestChunkPackDropsOversizedItem(t *testing.T) {
	items := []Chunkable{
		fakeChunkable{"small", []byte("ok")},
		fakeChunkable{"huge", bytes.Repeat([]byte("x"), 100)},
		fakeChunkable{"small2", []byte("fine")},
	}
	chunks := ChunkPack(items, 10)
	var all []byte
	for _, c := range chunks {
		all = append(all, c...)
	}
	assert.Equal(t, []byte("okfine"), all)
}

func TestChunkAssetBytesRoundTripsUnderCap(t *testing.T) {
	payload := bytes.Repeat([]byte("overworld"), 50)
	chunks := ChunkAssetBytes("players/p1/texture", payload, 32)

	var reassembled []byte
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), 32)
		reassembled = append(reassembled, c...)
	}
	assert.Equal(t, payload, reassembled)
}

func TestChunkAssetBytesSmallPayloadIsSingleChunk(t *testing.T) {
	chunks := ChunkAssetBytes("small", []byte("hi"), 1024)
	require.Len(t, chunks, 1)
	assert.Equal(t, []byte("hi"), chunks[0])
}
