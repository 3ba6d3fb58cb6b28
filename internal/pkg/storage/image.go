package storage

import (
	"bytes"
	"fmt"
	"io"

	"github.com/disintegration/imaging"
)

// ThumbnailSize bounds both edges of generated thumbnails.
const ThumbnailSize = 320

// ImageProcessor derives gallery thumbnails.
type ImageProcessor struct {
	maxEdge int
	quality int
}

func NewImageProcessor() *ImageProcessor {
	return &ImageProcessor{maxEdge: ThumbnailSize, quality: 80}
}

// Thumbnail decodes content, honoring EXIF orientation, and returns a JPEG
// that fits within the processor's bounding box. Images already smaller are
// re-encoded without upscaling.
func (p *ImageProcessor) Thumbnail(content io.Reader) (*bytes.Buffer, error) {
	img, err := imaging.Decode(content, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	b := img.Bounds()
	if b.Dx() > p.maxEdge || b.Dy() > p.maxEdge {
		img = imaging.Fit(img, p.maxEdge, p.maxEdge, imaging.Lanczos)
	}

	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, img, imaging.JPEG, imaging.JPEGQuality(p.quality)); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf, nil
}
