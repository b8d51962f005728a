package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLayout(t *testing.T) {
	assert.Equal(t, "src/0.png", SourcePath(0, PNG))
	assert.Equal(t, "src/14.jpg", SourcePath(14, JPEG))
	assert.Equal(t, "img/whale0.png", ImagePath(0, PNG))
	assert.Equal(t, "img/whale14.tiff", ImagePath(14, TIFF))
	assert.Equal(t, "md/0", DescriptorPath(0))
	assert.Equal(t, "md/14", DescriptorPath(14))
	assert.Equal(t, "whale3.bmp", ImageObjectKey(3, BMP))
	assert.Equal(t, "3", DescriptorObjectKey(3))
}

func TestItemError(t *testing.T) {
	cause := errors.New("connection reset")
	err := &ItemError{Index: 2, URL: "https://example.org/a.png", State: Fetching, Err: cause}

	assert.Equal(t, "item 2 failed while fetching: connection reset", err.Error())
	assert.ErrorIs(t, err, cause)

	var target *ItemError
	assert.True(t, errors.As(error(err), &target))
	assert.Equal(t, Fetching, target.State)
}

func TestItemStatusUploadFailed(t *testing.T) {
	assert.False(t, ItemStatus{State: Done, ImageUploaded: true, DescriptorUploaded: true}.UploadFailed())
	assert.True(t, ItemStatus{State: Done, ImageUploaded: true}.UploadFailed())
	assert.False(t, ItemStatus{State: Failed}.UploadFailed())
}
