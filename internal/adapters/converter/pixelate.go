package converter

import (
	"context"
	"fmt"
	"image"
	"whalegen/internal/core/domain"

	"github.com/rs/zerolog/log"
	"golang.org/x/image/draw"
)

// Pixelator normalizes images onto a fixed canvas and quantizes them into square blocks.
type Pixelator struct {
	canvas    image.Point
	blockSize int
}

func NewPixelator(width, height, blockSize int) (*Pixelator, error) {
	canvas := image.Pt(width, height)
	if _, _, err := PixelatedSize(canvas, blockSize); err != nil {
		return nil, err
	}

	return &Pixelator{canvas: canvas, blockSize: blockSize}, nil
}

func (p *Pixelator) Pixelate(ctx context.Context, src domain.SourceImage) (domain.PixelatedImage, error) {
	if err := ctx.Err(); err != nil {
		return domain.PixelatedImage{}, err
	}

	img, err := decode(src.Data, src.Format)
	if err != nil {
		return domain.PixelatedImage{}, err
	}

	log.Debug().
		Int("index", src.Index).
		Str("format", string(src.Format)).
		Int("srcWidth", img.Bounds().Dx()).
		Int("srcHeight", img.Bounds().Dy()).
		Msg("pixelating image")

	out, err := Pixelate(img, p.canvas, p.blockSize)
	if err != nil {
		return domain.PixelatedImage{}, err
	}

	data, err := encode(out, src.Format)
	if err != nil {
		return domain.PixelatedImage{}, err
	}

	return domain.PixelatedImage{
		Index:  src.Index,
		Data:   data,
		Format: src.Format,
		Width:  out.Bounds().Dx(),
		Height: out.Bounds().Dy(),
	}, nil
}

// PixelatedSize returns the intermediate downsample size and the final output size for a canvas and block size.
// The output is truncated to a whole number of blocks on each axis, so it only matches the canvas when the block
// size divides both dimensions.
func PixelatedSize(canvas image.Point, blockSize int) (down, out image.Point, err error) {
	if canvas.X <= 0 || canvas.Y <= 0 {
		return down, out, fmt.Errorf("%w: canvas must be positive, got %dx%d", domain.ErrTransform, canvas.X, canvas.Y)
	}

	if blockSize <= 0 || blockSize > min(canvas.X, canvas.Y) {
		return down, out, fmt.Errorf("%w: %d must be within 1..%d", domain.ErrUnsupportedBlockSize, blockSize,
			min(canvas.X, canvas.Y))
	}

	down = image.Pt(canvas.X/blockSize, canvas.Y/blockSize)
	out = down.Mul(blockSize)

	return down, out, nil
}

// Pixelate resamples src onto the canvas, then shrinks and regrows it with nearest-neighbor sampling so that every
// blockSize x blockSize cell carries a single color. src is not modified.
func Pixelate(src image.Image, canvas image.Point, blockSize int) (*image.RGBA, error) {
	down, out, err := PixelatedSize(canvas, blockSize)
	if err != nil {
		return nil, err
	}

	normalized := image.NewRGBA(image.Rectangle{Max: canvas})
	if src.Bounds().Size() == canvas {
		draw.Copy(normalized, image.Point{}, src, src.Bounds(), draw.Src, nil)
	} else {
		draw.CatmullRom.Scale(normalized, normalized.Bounds(), src, src.Bounds(), draw.Src, nil)
	}

	small := image.NewRGBA(image.Rectangle{Max: down})
	draw.NearestNeighbor.Scale(small, small.Bounds(), normalized, normalized.Bounds(), draw.Src, nil)

	result := image.NewRGBA(image.Rectangle{Max: out})
	draw.NearestNeighbor.Scale(result, result.Bounds(), small, small.Bounds(), draw.Src, nil)

	return result, nil
}
