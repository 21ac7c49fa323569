package assets

import "log/slog"

// Chunkable is one item ChunkPack can place into a size-bounded chunk:
// a named byte payload, grounded on spec's "max chunk size and a
// per-item sizer" description of the lossy chunk packer.
type Chunkable interface {
	ChunkName() string
	ChunkBytes() []byte
}

// namedBytes is the concrete Chunkable used when splitting one asset's
// payload into wire-sized fragments (see ChunkAssetBytes).
type namedBytes struct {
	name string
	data []byte
}

func (n namedBytes) ChunkName() string  { return n.name }
func (n namedBytes) ChunkBytes() []byte { return n.data }

// ChunkPack greedily bin-packs items, in input order, into byte slices
// each at or below maxSize. An item whose own bytes already exceed
// maxSize can never fit any chunk and is dropped, with a warning
// logged naming it. A maxSize of 0 or less means no cap: every item is
// packed into a single chunk.
func ChunkPack(items []Chunkable, maxSize int) [][]byte {
	var chunks [][]byte
	var current []byte

	for _, item := range items {
		b := item.ChunkBytes()
		if maxSize > 0 && len(b) > maxSize {
			slog.Warn("dropping oversized item from chunk pack", "name", item.ChunkName(), "size", len(b), "maxSize", maxSize)
			continue
		}
		if maxSize > 0 && len(current) > 0 && len(current)+len(b) > maxSize {
			chunks = append(chunks, current)
			current = nil
		}
		current = append(current, b...)
	}
	if len(current) > 0 {
		chunks = append(chunks, current)
	}
	return chunks
}

// ChunkAssetBytes splits one asset's payload into network-sized
// fragments suitable for a sequence of AssetStream frames, grounded on
// spec's "assets exceeding payload size are split at the application
// layer". It windows data into pieces well under maxSize and runs them
// through ChunkPack so adjoining small fragments are rebundled up to
// the cap, rather than shipped one tiny datagram at a time.
func ChunkAssetBytes(name string, data []byte, maxSize int) [][]byte {
	if maxSize <= 0 || len(data) <= maxSize {
		if len(data) == 0 {
			return nil
		}
		return [][]byte{data}
	}

	windowSize := maxSize / 4
	if windowSize < 1 {
		windowSize = maxSize
	}

	var items []Chunkable
	for offset := 0; offset < len(data); offset += windowSize {
		end := offset + windowSize
		if end > len(data) {
			end = len(data)
		}
		items = append(items, namedBytes{name: name, data: data[offset:end]})
	}
	return ChunkPack(items, maxSize)
}
