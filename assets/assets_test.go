package assets

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressTextRoundTrips(t *testing.T) {
	compressed, err := CompressText("hello overworld")
	require.NoError(t, err)
	decompressed, err := DecompressText(compressed)
	require.NoError(t, err)
	assert.Equal(t, "hello overworld", decompressed)
}

func TestLoadFromMemoryClassifiesByExtension(t *testing.T) {
	tex := LoadFromMemory("/server/foo.png", []byte{0x89, 'P', 'N', 'G'})
	assert.Equal(t, KindTexture, tex.Kind)

	audio := LoadFromMemory("/server/foo.ogg", []byte("oggdata"))
	assert.Equal(t, KindAudio, audio.Kind)

	text := LoadFromMemory("/server/foo.txt", []byte("plain text"))
	assert.Equal(t, KindCompressedText, text.Kind)
	decompressed, err := DecompressText(text.Bytes)
	require.NoError(t, err)
	assert.Equal(t, "plain text", decompressed)
}

func TestLoadFromMemoryTsxDependencies(t *testing.T) {
	tsx := `<?xml version="1.0"?>
<tileset name="test">
  <image source="/server/tiles.png"/>
  <tile id="0" class="Conveyor">
    <properties>
      <property name="Sound Effect" value="/server/sfx/belt.ogg"/>
    </properties>
  </tile>
</tileset>`

	asset := LoadFromMemory("/server/tiles.tsx", []byte(tsx))
	require.Len(t, asset.Dependencies, 2)
	assert.Equal(t, AssetPath("/server/tiles.png"), asset.Dependencies[0])
	assert.Equal(t, AssetPath("/server/sfx/belt.ogg"), asset.Dependencies[1])
}

func TestLoadFromMemoryZipManifestDependencies(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("manifest.json")
	require.NoError(t, err)
	_, err = w.Write([]byte(`{"id":"pkg.example","name":"Example","category":"card","requires":[{"id":"pkg.library","category":"library"}]}`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	asset := LoadFromMemory("/server/packages/example.zip", buf.Bytes())
	require.Len(t, asset.AlternateNames, 1)
	ref, ok := asset.AlternateNames[0].(PackageRef)
	require.True(t, ok)
	assert.Equal(t, "pkg.example", ref.ID)
	assert.Equal(t, CategoryCard, ref.Category)

	require.Len(t, asset.Dependencies, 1)
	dep, ok := asset.Dependencies[0].(PackageRef)
	require.True(t, ok)
	assert.Equal(t, "pkg.library", dep.ID)
}

func TestStoreSetGetRemove(t *testing.T) {
	s := NewStore()
	s.Set("/server/a.txt", Asset{Kind: KindText, Bytes: []byte("a")})

	a, ok := s.Get("/server/a.txt")
	require.True(t, ok)
	assert.Equal(t, KindText, a.Kind)

	s.Remove("/server/a.txt")
	_, ok = s.Get("/server/a.txt")
	assert.False(t, ok)
}

func TestStoreRemoveDoesNotClobberOverwrittenPackageIndex(t *testing.T) {
	s := NewStore()
	ref := PackageRef{ID: "pkg.x"}
	s.Set("/server/first.zip", Asset{AlternateNames: []AssetID{ref}})
	s.Set("/server/second.zip", Asset{AlternateNames: []AssetID{ref}}) // overwrites package index

	s.Remove("/server/first.zip")

	resolved, ok := s.resolveDependencyPath(ref)
	assert.True(t, ok)
	assert.Equal(t, "/server/second.zip", resolved)
}

func TestFlattenedDependencyChainIsPostOrderAndDeduped(t *testing.T) {
	s := NewStore()
	s.Set("/server/leaf.txt", Asset{})
	s.Set("/server/mid.txt", Asset{Dependencies: []AssetID{AssetPath("/server/leaf.txt")}})
	s.Set("/server/root.txt", Asset{
		Dependencies: []AssetID{
			AssetPath("/server/mid.txt"),
			AssetPath("/server/leaf.txt"), // shared dependency, must not duplicate
		},
	})

	chain := s.FlattenedDependencyChain("/server/root.txt")
	assert.Equal(t, []string{"/server/leaf.txt", "/server/mid.txt", "/server/root.txt"}, chain)
}

func TestFlattenedDependencyChainResolvesPackageRefs(t *testing.T) {
	s := NewStore()
	s.Set("/server/lib.zip", Asset{AlternateNames: []AssetID{PackageRef{ID: "pkg.lib"}}})
	s.Set("/server/card.zip", Asset{
		AlternateNames: []AssetID{PackageRef{ID: "pkg.card"}},
		Dependencies:   []AssetID{PackageRef{ID: "pkg.lib"}},
	})

	chain := s.FlattenedDependencyChain("/server/card.zip")
	assert.Equal(t, []string{"/server/lib.zip", "/server/card.zip"}, chain)
}

func TestFlattenedDependencyChainOfUnknownAssetIsEmpty(t *testing.T) {
	s := NewStore()
	assert.Empty(t, s.FlattenedDependencyChain("/server/missing.txt"))
}
