package cmd

import (
	"encoding/base64"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/h2non/gock"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"ely.by/tailor/internal/skins"
)

const mineSkinTextureUrl = "http://textures.minecraft.net/texture/a1b2c3"

func mineSkinReply(payload string) string {
	return `{
		"uuid": "a1b2c3",
		"data": {
			"uuid": "cbb9ac3f0bd246378f07cfd0ff2a1b1c",
			"texture": {
				"value": "` + base64.StdEncoding.EncodeToString([]byte(payload)) + `",
				"signature": "c2lnbmF0dXJl",
				"url": "` + mineSkinTextureUrl + `"
			}
		}
	}`
}

var slimSkinPayload = `{"textures":{"SKIN":{"url":"` + mineSkinTextureUrl + `","metadata":{"model":"slim"}}}}`

func writePropertyFile(t *testing.T, payload string) string {
	path := filepath.Join(t.TempDir(), "property.json")
	value := base64.StdEncoding.EncodeToString([]byte(payload))
	require.NoError(t, os.WriteFile(path, []byte(`{"name":"textures","value":"`+value+`","signature":"b2xk"}`), 0o644))

	return path
}

func TestFetchCmd(t *testing.T) {
	t.Cleanup(gock.Off)

	t.Run("url prints the signed property", func(t *testing.T) {
		defer gock.Off()
		gock.New("https://api.mineskin.org").
			Get("/generate/url").
			MatchParam("url", `^https://example\.com/skin\.png$`).
			MatchParam("model", "^slim$").
			Reply(200).
			BodyString(mineSkinReply(slimSkinPayload))

		output, err := executeCommand(t, "", "fetch", "url", "https://example.com/skin.png", "--slim")
		require.NoError(t, err)
		require.True(t, gock.IsDone())
		require.Equal(t, "textures", gjson.Get(output, "name").String())
		require.Equal(t, base64.StdEncoding.EncodeToString([]byte(slimSkinPayload)), gjson.Get(output, "value").String())
		require.Equal(t, "c2lnbmF0dXJl", gjson.Get(output, "signature").String())
	})

	t.Run("apply-to merges the acquired skin into the property", func(t *testing.T) {
		defer gock.Off()
		gock.New("https://api.mineskin.org").
			Get("/generate/url").
			Reply(200).
			BodyString(mineSkinReply(slimSkinPayload))

		path := writePropertyFile(t, `{"textures":{"CAPE":{"url":"http://x/cape.png"},"SKIN":{"url":"http://x/old.png"}}}`)

		output, err := executeCommand(t, "", "fetch", "url", "https://example.com/skin.png", "--slim", "--apply-to", path)
		require.NoError(t, err)
		require.JSONEq(t, `{
			"textures": {
				"CAPE": {"url": "http://x/cape.png"},
				"SKIN": {"url": "`+mineSkinTextureUrl+`", "metadata": {"model": "slim"}}
			}
		}`, decodePropertyValue(t, output))
	})

	t.Run("apply-to reads the property from stdin", func(t *testing.T) {
		defer gock.Off()
		gock.New("https://api.mojang.com").
			Get("/users/profiles/minecraft/Notch").
			Reply(204)
		gock.New("http://skinsystem.ely.by").
			Get("/textures/signed/Notch.png").
			MatchParam("proxy", "true").
			Reply(200).
			BodyString(`{"id":"069a79f444e94726a5befca90e38aaf5","name":"Notch","properties":[{"name":"textures","value":"` +
				base64.StdEncoding.EncodeToString([]byte(`{"textures":{"SKIN":{"url":"http://ely.by/skin.png"}}}`)) +
				`","signature":"c2lnbmF0dXJl"}]}`)

		value := base64.StdEncoding.EncodeToString([]byte(`{"textures":{"CAPE":{"url":"http://x/cape.png"}}}`))
		output, err := executeCommand(
			t,
			`{"name":"textures","value":"`+value+`"}`,
			"fetch", "player", "Notch", "--apply-to", "-",
		)
		require.NoError(t, err)
		require.True(t, gock.IsDone())
		require.JSONEq(t, `{
			"textures": {
				"CAPE": {"url": "http://x/cape.png"},
				"SKIN": {"url": "http://ely.by/skin.png"}
			}
		}`, decodePropertyValue(t, output))
	})

	t.Run("file uploads the skin", func(t *testing.T) {
		defer gock.Off()
		gock.New("https://api.mineskin.org").
			Post("/generate/upload").
			MatchParam("model", "^steve$").
			Reply(200).
			BodyString(mineSkinReply(`{"textures":{"SKIN":{"url":"` + mineSkinTextureUrl + `"}}}`))

		path := filepath.Join(t.TempDir(), "skin.png")
		file, err := os.Create(path)
		require.NoError(t, err)
		require.NoError(t, png.Encode(file, image.NewNRGBA(image.Rect(0, 0, 64, 64))))
		require.NoError(t, file.Close())

		output, err := executeCommand(t, "", "fetch", "file", path)
		require.NoError(t, err)
		require.True(t, gock.IsDone())
		require.Equal(t, "c2lnbmF0dXJl", gjson.Get(output, "signature").String())
	})

	t.Run("acquisition failure", func(t *testing.T) {
		defer gock.Off()
		gock.New("https://api.mineskin.org").
			Get("/generate/url").
			Reply(400).
			JSON(map[string]any{
				"errorCode": "invalid_image",
				"error":     "Failed to find image from url",
			})

		path := writePropertyFile(t, `{"textures":{"CAPE":{"url":"http://x/cape.png"}}}`)

		output, err := executeCommand(t, "", "fetch", "url", "https://example.com/missing.png", "--apply-to", path)
		var rejectedErr *skins.UpstreamRejectedError
		require.ErrorAs(t, err, &rejectedErr)
		require.Equal(t, skins.EndpointMineSkinUrl, rejectedErr.Endpoint)
		require.Empty(t, output)
	})

	t.Run("invalid image isn't uploaded", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "skin.png")
		require.NoError(t, os.WriteFile(path, []byte("not a png"), 0o644))

		output, err := executeCommand(t, "", "fetch", "file", path)
		require.ErrorIs(t, err, skins.InvalidFormat)
		require.Empty(t, output)
	})
}
