package rec

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func u32s(vals ...uint32) []byte {
	b := make([]byte, 0, 4*len(vals))
	for _, v := range vals {
		b = binary.LittleEndian.AppendUint32(b, v)
	}
	return b
}

func TestDecodeHeader_Modern(t *testing.T) {
	tests := []struct {
		name     string
		link     uint32
		internal uint32
		wantErr  error
	}{
		{"linked", 5, NoInternalLevel, nil},
		{"linked with level", 5, 3, ErrInconsistentHeader},
		{"internal level", 0, 42, nil},
		{"internal level at bound", 0, MaxInternalLevel, nil},
		{"internal level above bound", 0, MaxInternalLevel + 1, ErrInconsistentHeader},
		{"unlinked sentinel", 0, NoInternalLevel, ErrInconsistentHeader},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, n, err := DecodeHeader(u32s(ModernVersion, tt.link, tt.internal))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, h)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, modernHeaderSize, n)
			assert.Equal(t, ModernHeader{LinkNumber: tt.link, InternalNum: tt.internal}, h)
			assert.Equal(t, ModernVersion, h.Version())
			assert.Equal(t, tt.link, h.Link())
			assert.Equal(t, tt.internal, h.Level())
		})
	}
}

func TestDecodeHeader_ModernTruncatedNeverFallsBack(t *testing.T) {
	for _, buf := range [][]byte{
		u32s(ModernVersion),
		append(u32s(ModernVersion), 1, 0),
		u32s(ModernVersion, 0),
		append(u32s(ModernVersion, 0), 7),
	} {
		h, _, err := DecodeHeader(buf)
		assert.ErrorIs(t, err, ErrTruncatedInput, "len %d", len(buf))
		assert.Nil(t, h)
	}
}

func TestDecodeHeader_Legacy(t *testing.T) {
	h, n, err := DecodeHeader(u32s(11, 0xDEADBEEF))
	require.NoError(t, err)
	assert.Equal(t, legacyHeaderSize, n)
	assert.Equal(t, LegacyHeader{InternalLevel: 81}, h)
	assert.Equal(t, LegacyVersion, h.Version())
	assert.Equal(t, uint32(0), h.Link())
	assert.Equal(t, uint32(81), h.Level())
}

func TestDecodeHeader_LegacyInvalidLevel(t *testing.T) {
	_, _, err := DecodeHeader(u32s(24))
	assert.ErrorIs(t, err, ErrInvalidLevelId)

	_, _, err = DecodeHeader(u32s(121))
	assert.ErrorIs(t, err, ErrInvalidLevelId)
}

func TestDecodeHeader_Empty(t *testing.T) {
	_, _, err := DecodeHeader([]byte{1, 0})
	assert.ErrorIs(t, err, ErrTruncatedInput)
}

func TestEncodeHeader(t *testing.T) {
	b, err := EncodeHeader(ModernHeader{LinkNumber: 5, InternalNum: NoInternalLevel})
	require.NoError(t, err)
	assert.Equal(t, u32s(120, 5, NoInternalLevel), b)

	b, err = EncodeHeader(ModernHeader{InternalNum: 12})
	require.NoError(t, err)
	assert.Equal(t, u32s(120, 0, 12), b)

	b, err = EncodeHeader(LegacyHeader{InternalLevel: 81})
	require.NoError(t, err)
	assert.Equal(t, u32s(11), b)

	b, err = EncodeHeader(LegacyHeader{InternalLevel: 5})
	require.NoError(t, err)
	assert.Equal(t, u32s(5), b)
}

func TestEncodeHeader_Invalid(t *testing.T) {
	_, err := EncodeHeader(ModernHeader{LinkNumber: 5, InternalNum: 3})
	assert.ErrorIs(t, err, ErrInconsistentHeader)

	_, err = EncodeHeader(ModernHeader{InternalNum: 91})
	assert.ErrorIs(t, err, ErrInconsistentHeader)

	_, err = EncodeHeader(LegacyHeader{InternalLevel: 60})
	assert.ErrorIs(t, err, ErrInvalidLevelId)

	_, err = EncodeHeader(nil)
	assert.ErrorIs(t, err, ErrInconsistentHeader)
}

func TestHeaderRoundTrip(t *testing.T) {
	headers := []Header{
		ModernHeader{LinkNumber: 1, InternalNum: NoInternalLevel},
		ModernHeader{LinkNumber: 0, InternalNum: 0},
		ModernHeader{LinkNumber: 0, InternalNum: 90},
	}
	for raw := uint32(0); raw < LegacyLevelCount; raw++ {
		canonical, err := CanonicalLevel(raw)
		require.NoError(t, err)
		headers = append(headers, LegacyHeader{InternalLevel: canonical})
	}

	for _, h := range headers {
		b, err := EncodeHeader(h)
		require.NoError(t, err)
		got, n, err := DecodeHeader(b)
		require.NoError(t, err)
		assert.Equal(t, len(b), n)
		assert.Equal(t, h, got)
	}
}
