package domain

import (
	"fmt"
	"path"
	"strconv"
)

const (
	SourceDir   = "src"
	ImageDir    = "img"
	MetadataDir = "md"
)

func SourcePath(index int, format Format) string {
	return path.Join(SourceDir, fmt.Sprintf("%d.%s", index, format.Extension()))
}

func ImagePath(index int, format Format) string {
	return path.Join(ImageDir, ImageObjectKey(index, format))
}

func DescriptorPath(index int) string {
	return path.Join(MetadataDir, DescriptorObjectKey(index))
}

// ImageObjectKey is the name the pixelated image is stored under in the image bucket.
func ImageObjectKey(index int, format Format) string {
	return fmt.Sprintf("whale%d.%s", index, format.Extension())
}

func DescriptorObjectKey(index int) string {
	return strconv.Itoa(index)
}
