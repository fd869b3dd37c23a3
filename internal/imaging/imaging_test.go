package imaging

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// solidImage builds a valid descriptor filled with one color.
func solidImage(width, height int32, hasAlpha bool, r, g, b byte) ImageData {
	channels := int32(3)
	if hasAlpha {
		channels = 4
	}
	rowstride := width * channels
	data := make([]byte, rowstride*height)
	for y := int32(0); y < height; y++ {
		for x := int32(0); x < width; x++ {
			off := y*rowstride + x*channels
			data[off+0] = r
			data[off+1] = g
			data[off+2] = b
			if hasAlpha {
				data[off+3] = 0xff
			}
		}
	}
	return ImageData{
		Width:         width,
		Height:        height,
		Rowstride:     rowstride,
		HasAlpha:      hasAlpha,
		BitsPerSample: 8,
		Channels:      channels,
		Data:          data,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ImageData)
		wantErr bool
	}{
		{
			name:   "valid rgb",
			mutate: func(*ImageData) {},
		},
		{
			name:    "zero width",
			mutate:  func(d *ImageData) { d.Width = 0 },
			wantErr: true,
		},
		{
			name:    "negative height",
			mutate:  func(d *ImageData) { d.Height = -1 },
			wantErr: true,
		},
		{
			name:    "unsupported bits per sample",
			mutate:  func(d *ImageData) { d.BitsPerSample = 16 },
			wantErr: true,
		},
		{
			name:    "channel count contradicts alpha flag",
			mutate:  func(d *ImageData) { d.HasAlpha = true },
			wantErr: true,
		},
		{
			name:    "rowstride too small",
			mutate:  func(d *ImageData) { d.Rowstride = d.Width*d.Channels - 1 },
			wantErr: true,
		},
		{
			name:    "truncated data",
			mutate:  func(d *ImageData) { d.Data = d.Data[:len(d.Data)-1] },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := solidImage(4, 4, false, 0xff, 0, 0)
			tt.mutate(&d)
			err := d.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidImage)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEncodePNG(t *testing.T) {
	d := solidImage(4, 4, false, 0x10, 0x20, 0x30)

	data, err := EncodePNG(d)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 4, img.Bounds().Dx())
	assert.Equal(t, 4, img.Bounds().Dy())

	r, g, b, a := img.At(0, 0).RGBA()
	assert.Equal(t, uint32(0x10), r>>8)
	assert.Equal(t, uint32(0x20), g>>8)
	assert.Equal(t, uint32(0x30), b>>8)
	assert.Equal(t, uint32(0xff), a>>8)
}

func TestEncodePNGWithAlpha(t *testing.T) {
	d := solidImage(2, 2, true, 0xaa, 0xbb, 0xcc)
	d.Data[3] = 0x80 // first pixel half-transparent

	data, err := EncodePNG(d)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	_, _, _, a := img.At(0, 0).RGBA()
	assert.Equal(t, uint32(0x80), a>>8)
}

func TestEncodePNGRespectsRowstridePadding(t *testing.T) {
	d := solidImage(2, 2, false, 0x01, 0x02, 0x03)

	// Re-pack with 4 bytes of padding per row.
	padded := ImageData{
		Width:         2,
		Height:        2,
		Rowstride:     2*3 + 4,
		HasAlpha:      false,
		BitsPerSample: 8,
		Channels:      3,
		Data:          make([]byte, (2*3+4)*2),
	}
	for y := 0; y < 2; y++ {
		copy(padded.Data[y*int(padded.Rowstride):], d.Data[y*int(d.Rowstride):(y+1)*int(d.Rowstride)])
	}

	data, err := EncodePNG(padded)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	r, g, b, _ := img.At(1, 1).RGBA()
	assert.Equal(t, uint32(0x01), r>>8)
	assert.Equal(t, uint32(0x02), g>>8)
	assert.Equal(t, uint32(0x03), b>>8)
}

func TestEncodePNGDownscalesOversized(t *testing.T) {
	d := solidImage(MaxIconSize*2, MaxIconSize, false, 0x40, 0x40, 0x40)

	data, err := EncodePNG(d)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.LessOrEqual(t, img.Bounds().Dx(), MaxIconSize)
	assert.LessOrEqual(t, img.Bounds().Dy(), MaxIconSize)
}

func TestEncodePNGRejectsInvalid(t *testing.T) {
	d := solidImage(4, 4, false, 0, 0, 0)
	d.BitsPerSample = 1

	_, err := EncodePNG(d)
	assert.ErrorIs(t, err, ErrInvalidImage)
}
