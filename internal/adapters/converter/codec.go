package converter

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"whalegen/internal/core/domain"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
)

const jpegQuality = 95

// gifOptions maps every pixel to its nearest palette colour. Dithering would break up uniform blocks.
var gifOptions = &gif.Options{NumColors: 256, Drawer: draw.Src}

// decode reads data strictly as the given format; a mismatching tag is a decode error.
func decode(data []byte, format domain.Format) (image.Image, error) {
	r := bytes.NewReader(data)

	var img image.Image
	var err error
	switch format {
	case domain.PNG:
		img, err = png.Decode(r)
	case domain.JPEG:
		img, err = jpeg.Decode(r)
	case domain.GIF:
		img, err = gif.Decode(r)
	case domain.BMP:
		img, err = bmp.Decode(r)
	case domain.TIFF:
		img, err = tiff.Decode(r)
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, format)
	}

	if err != nil {
		return nil, fmt.Errorf("%w: error decoding %s: %w", domain.ErrDecode, format, err)
	}

	return img, nil
}

func encode(img image.Image, format domain.Format) ([]byte, error) {
	buf := new(bytes.Buffer)

	var err error
	switch format {
	case domain.PNG:
		err = png.Encode(buf, img)
	case domain.JPEG:
		err = jpeg.Encode(buf, img, &jpeg.Options{Quality: jpegQuality})
	case domain.GIF:
		err = gif.Encode(buf, img, gifOptions)
	case domain.BMP:
		err = bmp.Encode(buf, img)
	case domain.TIFF:
		err = tiff.Encode(buf, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, format)
	}

	if err != nil {
		return nil, fmt.Errorf("error encoding %s: %w", format, err)
	}

	return buf.Bytes(), nil
}
