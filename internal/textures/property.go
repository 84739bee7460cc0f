package textures

import (
	"errors"
	"fmt"
	"strings"
)

const PropertyName = "textures"

// Property is a textures property of a game profile. The shape is the same
// as the items of the "properties" array in Mojang's profile response.
type Property struct {
	Name string `json:"name"`
	// Value contains base64 encoded textures payload
	Value string `json:"value"`
	// Signature contains base64 encoded signature over the Value.
	// It's empty for payloads that weren't issued by an authority
	Signature string `json:"signature,omitempty"`
}

func (p *Property) IsSigned() bool {
	return p.Signature != ""
}

type TextureType string

const (
	Skin   TextureType = "SKIN"
	Cape   TextureType = "CAPE"
	Elytra TextureType = "ELYTRA"
)

var textureTypes = []TextureType{Skin, Cape, Elytra}

var UnknownTextureType = errors.New("unknown texture type")

func ParseTextureType(value string) (TextureType, error) {
	candidate := TextureType(strings.ToUpper(strings.TrimSpace(value)))
	if !candidate.IsValid() {
		return "", fmt.Errorf("%w: %q", UnknownTextureType, value)
	}

	return candidate, nil
}

func (t TextureType) IsValid() bool {
	for _, known := range textureTypes {
		if t == known {
			return true
		}
	}

	return false
}
