package textures

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

var EmptyTextureUrl = errors.New("texture url must not be empty")

// ApplyTexture puts the texture with the passed type into the payload of the existing property
// and returns a new unsigned property. The existing property is left untouched.
//
// The url of an already present texture is replaced, and its metadata is always dropped:
// the resulting entry has metadata only when it's passed explicitly. All other textures
// and top level members of the payload are kept as is.
func ApplyTexture(existing *Property, textureType TextureType, url string, metadata map[string]any) (*Property, error) {
	if !textureType.IsValid() {
		return nil, fmt.Errorf("%w: %q", UnknownTextureType, textureType)
	}

	if url == "" {
		return nil, EmptyTextureUrl
	}

	payload := []byte(emptyPayload)
	if existing != nil {
		decoded, err := DecodePayload(existing)
		if err != nil {
			slog.Warn("Unable to decode the existing textures property, starting from the empty payload", slog.Any("error", err))
		} else {
			payload = decoded
		}
	}

	payload, err := setTexture(payload, textureType, url, metadata)
	if err != nil {
		return nil, fmt.Errorf("unable to update textures payload: %w", err)
	}

	return &Property{
		Name:  PropertyName,
		Value: EncodePayload(payload),
	}, nil
}

func setTexture(payload []byte, textureType TextureType, url string, metadata map[string]any) ([]byte, error) {
	path := texturePath(textureType)

	var err error
	if gjson.GetBytes(payload, path).IsObject() {
		payload, err = sjson.DeleteBytes(payload, path+".url")
		if err != nil {
			return nil, err
		}

		payload, err = sjson.SetBytes(payload, path+".url", url)
		if err != nil {
			return nil, err
		}

		payload, err = sjson.DeleteBytes(payload, path+".metadata")
		if err != nil {
			return nil, err
		}
	} else {
		payload, err = sjson.SetRawBytes(payload, path, []byte("{}"))
		if err != nil {
			return nil, err
		}

		payload, err = sjson.SetBytes(payload, path+".url", url)
		if err != nil {
			return nil, err
		}
	}

	if metadata != nil {
		payload, err = sjson.SetBytes(payload, path+".metadata", metadata)
		if err != nil {
			return nil, err
		}
	}

	return payload, nil
}
