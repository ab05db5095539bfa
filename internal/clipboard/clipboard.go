// Package clipboard copies transcript text and reads pasted images.
package clipboard

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"sync"

	"golang.design/x/clipboard"

	"github.com/zhubert/messly/internal/logger"
)

var (
	initOnce sync.Once
	initErr  error
)

// Init initializes the system clipboard. It is safe to call more than once.
func Init() error {
	initOnce.Do(func() {
		if err := clipboard.Init(); err != nil {
			logger.WithComponent("clipboard").Warn("failed to initialize", "error", err)
			initErr = fmt.Errorf("failed to initialize clipboard: %w", err)
			return
		}
		logger.WithComponent("clipboard").Debug("initialized")
	})
	return initErr
}

// ReadImage reads an image from the clipboard. It returns nil, nil when the
// clipboard holds no image.
func ReadImage() (*ImageData, error) {
	if err := Init(); err != nil {
		return nil, err
	}
	raw := clipboard.Read(clipboard.FmtImage)
	if len(raw) == 0 {
		return nil, nil
	}
	return DecodeImage(raw)
}

// DecodeImage decodes raw image bytes and re-encodes them as PNG.
func DecodeImage(raw []byte) (*ImageData, error) {
	log := logger.WithComponent("clipboard")

	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		log.Warn("failed to decode image", "error", err)
		return nil, fmt.Errorf("failed to decode clipboard image: %w", err)
	}
	bounds := img.Bounds()

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image as PNG: %w", err)
	}
	log.Debug("image decoded", "width", bounds.Dx(), "height", bounds.Dy(), "format", format, "bytes", buf.Len())

	return &ImageData{
		Data:      buf.Bytes(),
		MediaType: "image/png",
		Width:     bounds.Dx(),
		Height:    bounds.Dy(),
	}, nil
}

// WriteText copies text to the clipboard.
func WriteText(text string) error {
	if err := Init(); err != nil {
		return err
	}
	clipboard.Write(clipboard.FmtText, []byte(text))
	logger.WithComponent("clipboard").Debug("wrote text", "bytes", len(text))
	return nil
}
