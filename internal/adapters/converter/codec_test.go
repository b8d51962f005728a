package converter

import (
	"image"
	"testing"
	"whalegen/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodecPreservesFormat(t *testing.T) {
	formats := []domain.Format{domain.PNG, domain.JPEG, domain.GIF, domain.BMP, domain.TIFF}

	for _, format := range formats {
		t.Run(string(format), func(t *testing.T) {
			data, err := encode(gradient(24, 18), format)
			require.NoError(t, err)

			detected, err := domain.DetectFormat(data)
			require.NoError(t, err)
			assert.Equal(t, format, detected)

			img, err := decode(data, format)
			require.NoError(t, err)
			assert.Equal(t, image.Pt(24, 18), img.Bounds().Size())
		})
	}
}

func TestEncodeUnsupported(t *testing.T) {
	_, err := encode(gradient(2, 2), "webp")
	require.ErrorIs(t, err, domain.ErrUnsupportedFormat)
}
