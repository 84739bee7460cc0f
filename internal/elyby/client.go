package elyby

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

func NewSkinsystemApi(http *http.Client, userAgent string, baseUrl string) *SkinsystemApi {
	if baseUrl == "" {
		baseUrl = "http://skinsystem.ely.by"
	}

	return &SkinsystemApi{
		http:      http,
		userAgent: userAgent,
		baseUrl:   strings.TrimRight(baseUrl, "/"),
	}
}

// SkinsystemApi talks to the ely.by skins system, which serves textures for both
// ely.by accounts and (in the proxy mode) Mojang accounts
type SkinsystemApi struct {
	http      *http.Client
	userAgent string
	baseUrl   string
}

// SignedTextures returns the raw profile reply with the signed textures property.
// The reply is empty when the skins system has nothing for the username
func (c *SkinsystemApi) SignedTextures(ctx context.Context, username string) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/textures/signed/%s.png?proxy=true", c.baseUrl, url.PathEscape(username))
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	request.Header.Set("User-Agent", c.userAgent)
	request.Header.Set("Cache-Control", "no-cache")

	response, err := c.http.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	if response.StatusCode == http.StatusNoContent {
		return nil, nil
	}

	if response.StatusCode != http.StatusOK {
		return nil, &ResponseError{Status: response.StatusCode}
	}

	return io.ReadAll(response.Body)
}

// ResponseError is returned for any reply with a status other than 200 or 204
type ResponseError struct {
	Status int
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("skinsystem responded with %d status", e.Status)
}

func (e *ResponseError) StatusCode() int {
	return e.Status
}
