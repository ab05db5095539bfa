package clipboard

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// MaxImageSize is the largest pasted image accepted as an attachment.
const MaxImageSize = 8 << 20

// MaxImageDimension bounds the width and height of a pasted image.
const MaxImageDimension = 10000

// PastedImageName is the filename a pasted image is uploaded under.
const PastedImageName = "clipboard.png"

// ImageData represents clipboard image data
type ImageData struct {
	Data      []byte // PNG encoded image data
	MediaType string // always "image/png"; images are re-encoded
	Width     int
	Height    int
}

// Validate checks that the image can be uploaded.
func (img *ImageData) Validate() error {
	if len(img.Data) > MaxImageSize {
		return fmt.Errorf("image too large: %s (max %s)",
			humanize.IBytes(uint64(len(img.Data))), humanize.IBytes(MaxImageSize))
	}
	if img.Width > MaxImageDimension || img.Height > MaxImageDimension {
		return fmt.Errorf("image dimensions too large: %dx%d (max %dx%d)",
			img.Width, img.Height, MaxImageDimension, MaxImageDimension)
	}
	return nil
}

// Size returns the human-readable size of the image.
func (img *ImageData) Size() string {
	return humanize.IBytes(uint64(len(img.Data)))
}
