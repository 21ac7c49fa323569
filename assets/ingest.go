package assets

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/beevik/etree"
)

// LoadFromMemory classifies data by path's extension, resolves its
// dependencies, and compresses text payloads, matching
// original_source's Asset::load_from_memory minus filesystem access
// (last_modified is left to the caller, who knows the real clock or
// mtime).
func LoadFromMemory(assetPath string, data []byte) Asset {
	asset := Asset{
		Cachable:    true,
		CacheToDisk: true,
	}

	switch strings.ToLower(path.Ext(assetPath)) {
	case ".png", ".bmp":
		asset.Kind = KindTexture
		asset.Bytes = data
	case ".flac", ".mp3", ".wav", ".mid", ".midi", ".ogg":
		asset.Kind = KindAudio
		asset.Bytes = data
	case ".zip":
		asset.Kind = KindData
		asset.Bytes = data
		resolveZipDependencies(&asset, data)
	case ".tsx":
		asset.Kind = KindText
		asset.Bytes = data
		resolveTsxDependencies(&asset, data)
	default:
		asset.Kind = KindText
		asset.Bytes = data
	}

	if asset.Kind == KindText {
		if compressed, err := CompressText(string(asset.Bytes)); err == nil {
			asset.Kind = KindCompressedText
			asset.Bytes = compressed
		}
	}

	return asset
}

// resolveTsxDependencies scans a Tiled tileset XML document for image
// sources and Conveyor/Ice "Sound Effect" tile properties that point
// back into the server's own asset tree, matching
// original_source's resolve_tsx_dependencies.
func resolveTsxDependencies(asset *Asset, data []byte) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return
	}
	root := doc.Root()
	if root == nil {
		return
	}

	for _, child := range root.ChildElements() {
		switch child.Tag {
		case "image":
			if source := child.SelectAttrValue("source", ""); strings.HasPrefix(source, "/server/") {
				asset.Dependencies = append(asset.Dependencies, AssetPath(source))
			}
		case "tile":
			resolveTileSoundDependency(asset, child)
		}
	}
}

func resolveTileSoundDependency(asset *Asset, tile *etree.Element) {
	class := tile.SelectAttrValue("class", tile.SelectAttrValue("type", ""))
	if class != "Conveyor" && class != "Ice" {
		return
	}

	properties := tile.SelectElement("properties")
	if properties == nil {
		return
	}

	for _, prop := range properties.ChildElements() {
		if prop.SelectAttrValue("name", "") != "Sound Effect" {
			continue
		}
		if value := prop.SelectAttrValue("value", ""); strings.HasPrefix(value, "/server/") {
			asset.Dependencies = append(asset.Dependencies, AssetPath(value))
		}
	}
}

// packageManifest is the declarative replacement for entry.lua package
// metadata (see DESIGN.md): a zip bundle declares its package identity
// and requirements directly as manifest.json instead of through a
// sandboxed script.
type packageManifest struct {
	ID       string              `json:"id"`
	Name     string              `json:"name"`
	Category string              `json:"category"`
	Requires []packageManifestRef `json:"requires"`
}

type packageManifestRef struct {
	ID       string `json:"id"`
	Category string `json:"category"`
}

func resolveZipDependencies(asset *Asset, data []byte) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return
	}

	f, err := reader.Open("manifest.json")
	if err != nil {
		slog.Warn("package has no manifest.json; registering without metadata", "err", err)
		return
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		slog.Warn("unreadable package manifest; registering without metadata", "err", err)
		return
	}

	var manifest packageManifest
	if err := json.Unmarshal(raw, &manifest); err != nil {
		slog.Warn("invalid package manifest; registering without metadata", "err", err)
		return
	}
	if manifest.ID == "" {
		return
	}

	selfRef := PackageRef{Name: manifest.Name, ID: manifest.ID, Category: categoryFromString(manifest.Category)}
	asset.AlternateNames = append([]AssetID{selfRef}, asset.AlternateNames...)

	for _, req := range manifest.Requires {
		asset.Dependencies = append(asset.Dependencies, PackageRef{
			ID:       req.ID,
			Category: categoryFromString(req.Category),
		})
	}
}

func categoryFromString(s string) PackageCategory {
	switch s {
	case "card":
		return CategoryCard
	case "encounter":
		return CategoryEncounter
	case "character":
		return CategoryCharacter
	case "library":
		return CategoryLibrary
	case "player":
		return CategoryPlayer
	default:
		return CategoryBlocks
	}
}
