package textures

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodePayload(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		payload, err := DecodePayload(propertyWithPayload(`{"textures":{}}`))
		require.NoError(t, err)
		require.JSONEq(t, `{"textures":{}}`, string(payload))
	})

	t.Run("nil property", func(t *testing.T) {
		payload, err := DecodePayload(nil)
		require.Nil(t, payload)
		require.ErrorIs(t, err, NoProperty)

		var decodeErr *DecodeError
		require.ErrorAs(t, err, &decodeErr)
	})

	t.Run("invalid", func(t *testing.T) {
		payload, err := DecodePayload(propertyWithPayload(`{"textures":`))
		require.Nil(t, payload)
		require.ErrorContains(t, err, "unable to decode textures payload")
	})
}

func TestTextureUrlAndMetadata(t *testing.T) {
	property := propertyWithPayload(`{"textures":{"SKIN":{"url":"http://x/skin.png","metadata":{"model":"slim"}},"CAPE":{"url":"http://x/cape.png"}}}`)

	require.Equal(t, "http://x/skin.png", TextureUrl(property, Skin))
	require.Equal(t, "http://x/cape.png", TextureUrl(property, Cape))
	require.Empty(t, TextureUrl(property, Elytra))
	require.Empty(t, TextureUrl(nil, Skin))

	require.Equal(t, map[string]any{"model": "slim"}, TextureMetadata(property, Skin))
	require.Nil(t, TextureMetadata(property, Cape))

	numeric := propertyWithPayload(`{"textures":{"SKIN":{"url":"http://x/skin.png","metadata":{"n":12345678901234567890}}}}`)
	require.Equal(t, map[string]any{"n": json.Number("12345678901234567890")}, TextureMetadata(numeric, Skin))
}

func TestParseMetadata(t *testing.T) {
	t.Run("object", func(t *testing.T) {
		metadata, err := ParseMetadata(`{"model":"slim","n":12345678901234567890,"nested":{"f":0.1}}`)
		require.NoError(t, err)
		require.Equal(t, map[string]any{
			"model":  "slim",
			"n":      json.Number("12345678901234567890"),
			"nested": map[string]any{"f": json.Number("0.1")},
		}, metadata)
	})

	for name, raw := range map[string]string{
		"string": `"slim"`,
		"array":  `["model"]`,
		"null":   `null`,
		"broken": `{"model":`,
		"empty":  ``,
	} {
		t.Run(name, func(t *testing.T) {
			metadata, err := ParseMetadata(raw)
			require.ErrorIs(t, err, MetadataNotAnObject)
			require.Nil(t, metadata)
		})
	}
}

func TestParseTextureType(t *testing.T) {
	for input, expected := range map[string]TextureType{
		"SKIN":     Skin,
		"cape":     Cape,
		" Elytra ": Elytra,
	} {
		result, err := ParseTextureType(input)
		require.NoError(t, err)
		require.Equal(t, expected, result)
	}

	_, err := ParseTextureType("hat")
	require.ErrorIs(t, err, UnknownTextureType)
}
