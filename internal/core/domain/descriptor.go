package domain

import (
	"fmt"
	"strings"
)

const (
	descriptorName        = "WhaleCoin #%d"
	descriptorDescription = "A one of a kind WhaleCoin programmatically generated by WhaleGoddess."
)

// Descriptor is the metadata record paired with a pixelated image through its sequence index.
type Descriptor struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Image       string         `json:"image"`
	Attributes  map[string]any `json:"attributes"`
}

// NewDescriptor builds the descriptor for the artifact at index.
func NewDescriptor(index int, imageURI string) Descriptor {
	return Descriptor{
		Name:        fmt.Sprintf(descriptorName, index),
		Description: descriptorDescription,
		Image:       imageURI,
		Attributes:  map[string]any{"luck": 1},
	}
}

// ImageURI returns the public location of the pixelated image for index.
func ImageURI(base string, index int, format Format) string {
	return strings.TrimSuffix(base, "/") + "/" + ImageObjectKey(index, format)
}
