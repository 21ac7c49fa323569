package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLongestAnimationFrameDimensionFindsLargestSingleAxis(t *testing.T) {
	data := []byte(`animation state="IDLE"
  frame x="0" y="0" w="32" h="64"
  frame x="32" y="0" w="48" h="16"
animation state="WALK"
  frame x="0" y="64" w="20" h="20"
`)
	assert.Equal(t, uint32(64), longestAnimationFrameDimension(data))
}

func TestLongestAnimationFrameDimensionIgnoresNonFrameLines(t *testing.T) {
	data := []byte(`animation state="IDLE" w="9999" h="9999"
  frame x="0" y="0" w="10" h="12"
`)
	assert.Equal(t, uint32(12), longestAnimationFrameDimension(data))
}

func TestLongestAnimationFrameDimensionEmptyDataIsZero(t *testing.T) {
	assert.Equal(t, uint32(0), longestAnimationFrameDimension(nil))
}

func TestAnimationAttrUintParsesNegativeAsAbsolute(t *testing.T) {
	v, ok := animationAttrUint(`frame x="-5" w="-32" h="16"`, "w")
	assert.True(t, ok)
	assert.Equal(t, uint32(32), v)
}

func TestAnimationAttrUintMissingKeyReturnsFalse(t *testing.T) {
	_, ok := animationAttrUint(`frame x="0" y="0"`, "w")
	assert.False(t, ok)
}
