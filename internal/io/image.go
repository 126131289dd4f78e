package ioutils

import (
	"bytes"
	"context"
	"image"
	_ "image/gif" // GIF decoder registration
	"image/jpeg"
	_ "image/png" // PNG decoder registration
	"net/http"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // WebP decoder registration, used by YouTube thumbnails
)

// ImageOptions selects the processing applied by Prepare.
type ImageOptions struct {
	// Resize shrinks images larger than MaxSize on either side.
	Resize  bool
	MaxSize int

	// ConvertToJPEG re-encodes every image as JPEG.
	ConvertToJPEG bool
}

// ImageService provides image processing operations for cover art.
//
// Example usage:
//
//	svc := NewImageService()
//
//	// Resize to max 500x500 and convert to JPEG
//	jpeg, err := svc.Prepare(ctx, thumbnail, ImageOptions{Resize: true, MaxSize: 500, ConvertToJPEG: true})
type ImageService struct{}

// NewImageService creates a new ImageService.
func NewImageService() *ImageService {
	return &ImageService{}
}

// Prepare applies opts to data. Formats the players cannot show, such as
// WebP, are converted to JPEG regardless of opts.
func (s *ImageService) Prepare(ctx context.Context, data []byte, opts ImageOptions) ([]byte, error) {
	if opts.Resize && opts.MaxSize > 0 {
		return s.ResizeImage(ctx, data, opts.MaxSize, opts.MaxSize)
	}
	if opts.ConvertToJPEG || !embeddable(data) {
		return s.ConvertToJPEG(ctx, data)
	}
	return data, nil
}

// ResizeImage resizes an image to fit within the specified maximum dimensions
// and returns it JPEG encoded.
//
// The aspect ratio is preserved and images are never enlarged. The
// Catmull-Rom algorithm is used for high-quality resizing.
//
// Example:
//
//	// Resize to fit within 1000x1000, maintaining aspect ratio
//	resized, err := svc.ResizeImage(ctx, imageData, 1000, 1000)
//	// A 1500x1000 image becomes 1000x666
//	// A 800x600 image remains 800x600 (but re-encoded)
func (s *ImageService) ResizeImage(ctx context.Context, data []byte, maxWidth, maxHeight int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	width, height := fit(bounds.Dx(), bounds.Dy(), maxWidth, maxHeight)
	if width == bounds.Dx() && height == bounds.Dy() {
		return encodeJPEG(img)
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return encodeJPEG(dst)
}

// ConvertToJPEG converts an image to JPEG format with 90% quality.
func (s *ImageService) ConvertToJPEG(ctx context.Context, data []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return encodeJPEG(img)
}

// Extension returns ".jpg" or ".png" for image data, defaulting to ".jpg".
func Extension(data []byte) string {
	if http.DetectContentType(data) == "image/png" {
		return ".png"
	}
	return ".jpg"
}

// fit scales width x height down to the bounding box, keeping the ratio.
func fit(width, height, maxWidth, maxHeight int) (int, int) {
	if width <= maxWidth && height <= maxHeight {
		return width, height
	}
	ratio := float64(width) / float64(height)
	if float64(maxWidth)/float64(maxHeight) > ratio {
		// Height is the limiting factor
		return max(1, int(float64(maxHeight)*ratio)), maxHeight
	}
	// Width is the limiting factor
	return maxWidth, max(1, int(float64(maxWidth)/ratio))
}

func embeddable(data []byte) bool {
	switch http.DetectContentType(data) {
	case "image/jpeg", "image/png":
		return true
	}
	return false
}

func encodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
