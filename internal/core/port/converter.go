package port

import (
	"context"
	"whalegen/internal/core/domain"
)

type ImageConverter interface {
	// Pixelate normalizes the source image onto the canvas and applies the block quantization, returning the result
	// encoded in the source's format.
	Pixelate(ctx context.Context, src domain.SourceImage) (domain.PixelatedImage, error)
}
