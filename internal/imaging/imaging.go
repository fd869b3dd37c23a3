// Package imaging materializes raw notification image hints into encoded
// icon files.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"

	"github.com/nfnt/resize"
)

// MaxIconSize is the pixel cap applied to either dimension before encoding.
// Raw image-data hints can be arbitrarily large; anything bigger than this
// is downscaled.
const MaxIconSize = 128

// ErrInvalidImage indicates the raw pixel descriptor is structurally
// unusable: bad dimensions, wrong sample format, or truncated data.
var ErrInvalidImage = errors.New("invalid image data")

// ImageData is the raw pixel descriptor carried by the freedesktop
// image-data hint: width, height, rowstride, has_alpha, bits_per_sample,
// channels, data.
type ImageData struct {
	Width         int32
	Height        int32
	Rowstride     int32
	HasAlpha      bool
	BitsPerSample int32
	Channels      int32
	Data          []byte
}

// Validate checks the descriptor's internal consistency.
func (d ImageData) Validate() error {
	if d.Width <= 0 || d.Height <= 0 {
		return fmt.Errorf("%w: dimensions %dx%d", ErrInvalidImage, d.Width, d.Height)
	}
	if d.BitsPerSample != 8 {
		return fmt.Errorf("%w: bits_per_sample %d (only 8 supported)", ErrInvalidImage, d.BitsPerSample)
	}
	wantChannels := int32(3)
	if d.HasAlpha {
		wantChannels = 4
	}
	if d.Channels != wantChannels {
		return fmt.Errorf("%w: %d channels with has_alpha=%v", ErrInvalidImage, d.Channels, d.HasAlpha)
	}
	if d.Rowstride < d.Width*d.Channels {
		return fmt.Errorf("%w: rowstride %d for width %d", ErrInvalidImage, d.Rowstride, d.Width)
	}
	need := int(d.Rowstride)*(int(d.Height)-1) + int(d.Width)*int(d.Channels)
	if len(d.Data) < need {
		return fmt.Errorf("%w: %d bytes, need %d", ErrInvalidImage, len(d.Data), need)
	}
	return nil
}

// EncodePNG converts the raw pixel descriptor into PNG bytes, downscaling
// to MaxIconSize if needed.
func EncodePNG(d ImageData) ([]byte, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	img := image.NewNRGBA(image.Rect(0, 0, int(d.Width), int(d.Height)))
	for y := 0; y < int(d.Height); y++ {
		row := d.Data[y*int(d.Rowstride):]
		for x := 0; x < int(d.Width); x++ {
			px := row[x*int(d.Channels):]
			off := img.PixOffset(x, y)
			img.Pix[off+0] = px[0]
			img.Pix[off+1] = px[1]
			img.Pix[off+2] = px[2]
			if d.HasAlpha {
				img.Pix[off+3] = px[3]
			} else {
				img.Pix[off+3] = 0xff
			}
		}
	}

	var out image.Image = img
	if d.Width > MaxIconSize || d.Height > MaxIconSize {
		out = resize.Thumbnail(MaxIconSize, MaxIconSize, img, resize.Bilinear)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
