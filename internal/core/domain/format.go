package domain

import (
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Format is the container format of an image, carried alongside its bytes.
type Format string

const (
	PNG  Format = "png"
	JPEG Format = "jpg"
	GIF  Format = "gif"
	BMP  Format = "bmp"
	TIFF Format = "tiff"
)

var formatMIMEs = map[Format]string{
	PNG:  "image/png",
	JPEG: "image/jpeg",
	GIF:  "image/gif",
	BMP:  "image/bmp",
	TIFF: "image/tiff",
}

// Extension returns the file extension used for artifacts of this format, without a leading dot.
func (f Format) Extension() string {
	return string(f)
}

func (f Format) MIME() string {
	return formatMIMEs[f]
}

func (f Format) Valid() bool {
	_, ok := formatMIMEs[f]
	return ok
}

// ParseFormat validates a format name. Common aliases such as "jpeg" and "tif" are accepted.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(name, ".")) {
	case "png":
		return PNG, nil
	case "jpg", "jpeg":
		return JPEG, nil
	case "gif":
		return GIF, nil
	case "bmp":
		return BMP, nil
	case "tif", "tiff":
		return TIFF, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
}

// DetectFormat sniffs the container format from the content itself.
func DetectFormat(data []byte) (Format, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty input", ErrDecode)
	}

	mt := mimetype.Detect(data)
	for format, mime := range formatMIMEs {
		if mt.Is(mime) {
			return format, nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, mt.String())
}
