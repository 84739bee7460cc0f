package textures

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"

	"github.com/tidwall/gjson"
)

const emptyPayload = `{"textures":{}}`

var NoProperty = errors.New("there is no textures property")

var MetadataNotAnObject = errors.New("metadata must be a JSON object")

// DecodeError is returned when the property value can't be interpreted as a textures payload
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return "unable to decode textures payload: " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// DecodePayload returns JSON document stored in the property value.
// The document is guaranteed to be an object with the "textures" object member.
func DecodePayload(property *Property) ([]byte, error) {
	if property == nil {
		return nil, &DecodeError{NoProperty}
	}

	// Authorities emit padded values, but be tolerant to the stripped padding
	payload, err := base64.RawStdEncoding.DecodeString(strings.TrimRight(property.Value, "="))
	if err != nil {
		return nil, &DecodeError{err}
	}

	if !gjson.ValidBytes(payload) || !gjson.ParseBytes(payload).IsObject() {
		return nil, &DecodeError{errors.New("payload is not a JSON object")}
	}

	if !gjson.GetBytes(payload, "textures").IsObject() {
		return nil, &DecodeError{errors.New("payload has no textures object")}
	}

	return payload, nil
}

func EncodePayload(payload []byte) string {
	return base64.StdEncoding.EncodeToString(payload)
}

// TextureUrl returns the url of the texture with the passed type or an empty string
// when the property has no such texture or can't be decoded
func TextureUrl(property *Property, textureType TextureType) string {
	payload, err := DecodePayload(property)
	if err != nil {
		return ""
	}

	return gjson.GetBytes(payload, texturePath(textureType)+".url").String()
}

// TextureMetadata returns metadata of the texture with the passed type.
// The result is nil when there is no metadata.
func TextureMetadata(property *Property, textureType TextureType) map[string]any {
	payload, err := DecodePayload(property)
	if err != nil {
		return nil
	}

	metadata := gjson.GetBytes(payload, texturePath(textureType)+".metadata")
	if !metadata.IsObject() {
		return nil
	}

	result, err := ParseMetadata(metadata.Raw)
	if err != nil {
		return nil
	}

	return result
}

// ParseMetadata decodes the texture metadata JSON object. Numbers are kept as json.Number,
// so they are written back exactly as they were passed
func ParseMetadata(raw string) (map[string]any, error) {
	if !gjson.Valid(raw) || !gjson.Parse(raw).IsObject() {
		return nil, MetadataNotAnObject
	}

	decoder := json.NewDecoder(strings.NewReader(raw))
	decoder.UseNumber()

	var result map[string]any
	err := decoder.Decode(&result)
	if err != nil {
		return nil, err
	}

	return result, nil
}

func texturePath(textureType TextureType) string {
	return "textures." + string(textureType)
}
