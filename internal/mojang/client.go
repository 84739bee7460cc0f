package mojang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

func NewMojangApi(
	http *http.Client,
	userAgent string,
	profilesUrl string,
	sessionUrl string,
) *MojangApi {
	if profilesUrl == "" {
		profilesUrl = "https://api.mojang.com/users/profiles/minecraft/"
	}

	if sessionUrl == "" {
		sessionUrl = "https://sessionserver.mojang.com/session/minecraft/profile/"
	}

	if !strings.HasSuffix(profilesUrl, "/") {
		profilesUrl += "/"
	}

	if !strings.HasSuffix(sessionUrl, "/") {
		sessionUrl += "/"
	}

	return &MojangApi{
		http,
		userAgent,
		profilesUrl,
		sessionUrl,
	}
}

type MojangApi struct {
	http        *http.Client
	userAgent   string
	profilesUrl string
	sessionUrl  string
}

// Exchanges username to its uuid. The result is nil when Mojang doesn't know the username.
// See https://wiki.vg/Mojang_API#Username_to_UUID
func (c *MojangApi) UsernameToUuid(ctx context.Context, username string) (*ProfileInfo, error) {
	request, err := c.newRequest(ctx, c.profilesUrl+url.PathEscape(username))
	if err != nil {
		return nil, err
	}

	response, err := c.http.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	if response.StatusCode == http.StatusNoContent || response.StatusCode == http.StatusNotFound {
		return nil, nil
	}

	if response.StatusCode != http.StatusOK {
		return nil, errorFromResponse(response)
	}

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, err
	}

	var result *ProfileInfo
	// A reply without an id is the same as a missing profile
	if json.Unmarshal(body, &result) != nil || result == nil || result.Id == "" {
		return nil, nil
	}

	return result, nil
}

// Obtains the raw profile reply, which contains textures property for the provided uuid.
// Returns an empty reply when the profile has no textures.
// See https://wiki.vg/Mojang_API#UUID_to_Profile_and_Skin.2FCape
func (c *MojangApi) UuidToTextures(ctx context.Context, uuid string, signed bool) ([]byte, error) {
	normalizedUuid := strings.ReplaceAll(uuid, "-", "")
	url := c.sessionUrl + normalizedUuid
	if signed {
		url += "?unsigned=false"
	}

	request, err := c.newRequest(ctx, url)
	if err != nil {
		return nil, err
	}

	response, err := c.http.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	if response.StatusCode == http.StatusNoContent {
		return nil, nil
	}

	if response.StatusCode != http.StatusOK {
		return nil, errorFromResponse(response)
	}

	return io.ReadAll(response.Body)
}

func (c *MojangApi) newRequest(ctx context.Context, url string) (*http.Request, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	request.Header.Set("User-Agent", c.userAgent)
	request.Header.Set("Cache-Control", "no-cache")

	return request, nil
}

type ProfileInfo struct {
	Id       string `json:"id"`
	Name     string `json:"name"`
	IsLegacy bool   `json:"legacy,omitempty"`
	IsDemo   bool   `json:"demo,omitempty"`
}

func errorFromResponse(response *http.Response) error {
	switch {
	case response.StatusCode == 400:
		type errorResponse struct {
			Error   string `json:"error"`
			Message string `json:"errorMessage"`
		}

		var decodedError *errorResponse
		body, _ := io.ReadAll(response.Body)
		_ = json.Unmarshal(body, &decodedError)
		if decodedError == nil {
			decodedError = &errorResponse{}
		}

		return &BadRequestError{ErrorType: decodedError.Error, Message: decodedError.Message}
	case response.StatusCode == 403:
		return &ForbiddenError{}
	case response.StatusCode == 429:
		return &TooManyRequestsError{}
	case response.StatusCode >= 500:
		return &ServerError{Status: response.StatusCode}
	}

	return &UnexpectedResponseError{Status: response.StatusCode}
}

// When passed request params are invalid, Mojang returns 400 Bad Request error
type BadRequestError struct {
	ErrorType string
	Message   string
}

func (e *BadRequestError) Error() string {
	return fmt.Sprintf("400 %s: %s", e.ErrorType, e.Message)
}

func (*BadRequestError) StatusCode() int {
	return 400
}

// When Mojang decides you're such a bad guy, this error appears (even if the request has no authorization)
type ForbiddenError struct {
}

func (*ForbiddenError) Error() string {
	return "403: Forbidden"
}

func (*ForbiddenError) StatusCode() int {
	return 403
}

// When you exceed the set limit of requests, this error will be returned
type TooManyRequestsError struct {
}

func (*TooManyRequestsError) Error() string {
	return "429: Too Many Requests"
}

func (*TooManyRequestsError) StatusCode() int {
	return 429
}

// ServerError happens when Mojang's API returns any response with 50* status
type ServerError struct {
	Status int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, "Server error")
}

func (e *ServerError) StatusCode() int {
	return e.Status
}

type UnexpectedResponseError struct {
	Status int
}

func (e *UnexpectedResponseError) Error() string {
	return fmt.Sprintf("unexpected response status code: %d", e.Status)
}

func (e *UnexpectedResponseError) StatusCode() int {
	return e.Status
}
