package process

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSignature(t *testing.T) {
	aob, err := ParseSignature("48 89 5C 24 ?? 48 8B FA")
	require.NoError(t, err)

	assert.Equal(t, []byte{0x48, 0x89, 0x5C, 0x24, 0x00, 0x48, 0x8B, 0xFA}, aob.Pattern)
	assert.Equal(t, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x00, 0xFF, 0xFF, 0xFF}, aob.Mask)
	assert.True(t, aob.IsValid())
}

func TestParseSignatureSingleWildcard(t *testing.T) {
	aob, err := ParseSignature("FF ? C3")
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFF, 0x00, 0xFF}, aob.Mask)
}

func TestParseSignatureRejectsGarbage(t *testing.T) {
	_, err := ParseSignature("48 ZZ")
	assert.Error(t, err)

	_, err = ParseSignature("")
	assert.Error(t, err)

	_, err = ParseSignature("   ")
	assert.Error(t, err)
}

func TestNewAOBMasked(t *testing.T) {
	aob, err := NewAOBMasked([]byte{0x11, 0x22, 0x33}, "x?x")
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFF, 0x00, 0xFF}, aob.Mask)

	_, err = NewAOBMasked([]byte{0x11}, "xx")
	assert.Error(t, err)

	_, err = NewAOBMasked([]byte{0x11}, "a")
	assert.Error(t, err)
}

func TestNewAOB(t *testing.T) {
	aob, err := NewAOB([]byte{1, 2}, []byte{0xFF, 0x00})
	require.NoError(t, err)
	assert.True(t, aob.IsValid())

	_, err = NewAOB([]byte{1, 2}, []byte{0xFF})
	assert.Error(t, err)

	assert.False(t, AOB{}.IsValid())
}
