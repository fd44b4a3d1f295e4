// Package vision defines the image-description collaborator contract and
// the normalization step that converts arbitrary caller-supplied images to
// baseline JPEG before they reach the model.
package vision

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"

	// Registered decoders for the formats viewers actually send.
	_ "image/gif"
	_ "image/png"
)

// jpegQuality balances payload size against the detail the vision models
// need for scene description.
const jpegQuality = 85

// Describer is the interface that wraps the Describe method.
type Describer interface {
	// Describe returns a textual description of a normalized JPEG image.
	Describe(ctx context.Context, jpegData []byte) (string, error)
}

// DescribeFunc is an adapter to allow the use of ordinary functions as
// Describers.
type DescribeFunc func(ctx context.Context, jpegData []byte) (string, error)

// Describe calls the underlying function.
func (f DescribeFunc) Describe(ctx context.Context, jpegData []byte) (string, error) {
	return f(ctx, jpegData)
}

// Normalize decodes raw image bytes (PNG, JPEG, or GIF) and re-encodes them
// as baseline JPEG. Undecodable input is a failure.
func Normalize(raw []byte) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("vision: decode image: %w", err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("vision: encode %s as jpeg: %w", format, err)
	}
	return buf.Bytes(), nil
}
