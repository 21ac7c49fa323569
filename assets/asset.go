// Package assets implements the content-addressed asset catalog:
// asset kinds, package/dependency identity, compression, and the
// dependency-chain flattening that drives what gets shipped to a
// joining client before its map update.
package assets

import (
	"bytes"

	"github.com/klauspost/compress/flate"
)

// Kind is the payload shape of an Asset, mirroring original_source's
// AssetData enum.
type Kind uint8

const (
	KindText Kind = iota
	KindCompressedText
	KindTexture
	KindAudio
	KindData
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindCompressedText:
		return "compressed-text"
	case KindTexture:
		return "texture"
	case KindAudio:
		return "audio"
	case KindData:
		return "data"
	default:
		return "unknown"
	}
}

// PackageCategory classifies a package-shaped asset (a zip bundle
// declaring a card, character, encounter, etc).
type PackageCategory uint8

const (
	CategoryBlocks PackageCategory = iota
	CategoryCard
	CategoryEncounter
	CategoryCharacter
	CategoryLibrary
	CategoryPlayer
)

// AssetID names either a literal store path or a package by its
// declared id, matching original_source's AssetID enum. Exactly one
// implementation exists per variant; callers type-switch on it.
type AssetID interface {
	isAssetID()
}

// AssetPath references another asset directly by its store path.
type AssetPath string

func (AssetPath) isAssetID() {}

// PackageRef references a package-shaped asset by its declared id,
// resolved indirectly through Store's package-path index.
type PackageRef struct {
	Name     string
	ID       string
	Category PackageCategory
}

func (PackageRef) isAssetID() {}

// Asset is one entry in the store: its payload, the alternate names
// (package identities) it can be found under, the other assets it
// depends on, and delivery hints for clients.
type Asset struct {
	Kind           Kind
	Bytes          []byte
	AlternateNames []AssetID
	Dependencies   []AssetID
	LastModified   uint64
	Cachable       bool
	CacheToDisk    bool
}

// Len reports the payload size in bytes.
func (a Asset) Len() int {
	return len(a.Bytes)
}

// PackageInfo returns the first PackageRef among the asset's alternate
// names, if any.
func (a Asset) PackageInfo() (PackageRef, bool) {
	for _, alt := range a.AlternateNames {
		if ref, ok := alt.(PackageRef); ok {
			return ref, true
		}
	}
	return PackageRef{}, false
}

// CompressText deflates text, matching original_source's
// AssetData::compress_text (zlib there; raw deflate here, without a
// zlib wrapper).
func CompressText(text string) ([]byte, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.BestSpeed)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write([]byte(text)); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecompressText is the inverse of CompressText, used by tests and by
// any tooling that needs to inspect a CompressedText asset's source.
func DecompressText(compressed []byte) (string, error) {
	r := flate.NewReader(bytes.NewReader(compressed))
	defer r.Close()
	var out bytes.Buffer
	if _, err := out.ReadFrom(r); err != nil {
		return "", err
	}
	return out.String(), nil
}
