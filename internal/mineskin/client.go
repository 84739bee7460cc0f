package mineskin

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

const (
	ModelSlim    = "slim"
	ModelClassic = "steve"
)

func NewMineSkinApi(http *http.Client, userAgent string, baseUrl string, apiKey string) *MineSkinApi {
	if baseUrl == "" {
		baseUrl = "https://api.mineskin.org"
	}

	return &MineSkinApi{
		http:      http,
		userAgent: userAgent,
		baseUrl:   strings.TrimRight(baseUrl, "/"),
		apiKey:    apiKey,
	}
}

// MineSkinApi generates textures signed by Mojang through the MineSkin service.
// Both methods return the raw reply, leaving its interpretation to the caller.
// See https://docs.mineskin.org
type MineSkinApi struct {
	http      *http.Client
	userAgent string
	baseUrl   string
	apiKey    string
}

func (c *MineSkinApi) GenerateFromUpload(ctx context.Context, filename string, data []byte, slim bool) ([]byte, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	err := writer.SetBoundary(uuid.NewString())
	if err != nil {
		return nil, err
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	header.Set("Content-Type", "image/png")
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, err
	}

	_, err = part.Write(data)
	if err != nil {
		return nil, err
	}

	err = writer.Close()
	if err != nil {
		return nil, err
	}

	request, err := c.newRequest(ctx, http.MethodPost, c.endpoint("/generate/upload", queryParam{"model", model(slim)}), body)
	if err != nil {
		return nil, err
	}

	request.Header.Set("Content-Type", writer.FormDataContentType())

	return c.do(request)
}

func (c *MineSkinApi) GenerateFromUrl(ctx context.Context, skinUrl string, slim bool) ([]byte, error) {
	query := []queryParam{
		{"url", skinUrl},
		{"model", model(slim)},
	}

	request, err := c.newRequest(ctx, http.MethodGet, c.endpoint("/generate/url", query...), nil)
	if err != nil {
		return nil, err
	}

	return c.do(request)
}

type queryParam struct {
	name  string
	value string
}

// url.Values sorts the keys, so the query is built by hand to send "v2" first
// and the rest of the parameters in the passed order
func (c *MineSkinApi) endpoint(path string, params ...queryParam) string {
	var query strings.Builder
	query.WriteString("v2=true")
	for _, param := range params {
		query.WriteByte('&')
		query.WriteString(url.QueryEscape(param.name))
		query.WriteByte('=')
		query.WriteString(url.QueryEscape(param.value))
	}

	return c.baseUrl + path + "?" + query.String()
}

func (c *MineSkinApi) newRequest(ctx context.Context, method string, url string, body io.Reader) (*http.Request, error) {
	request, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}

	request.Header.Set("User-Agent", c.userAgent)
	request.Header.Set("Cache-Control", "no-cache")
	if c.apiKey != "" {
		request.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	return request, nil
}

func (c *MineSkinApi) do(request *http.Request) ([]byte, error) {
	response, err := c.http.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, err
	}

	if response.StatusCode != http.StatusOK {
		return nil, &ResponseError{
			Status:  response.StatusCode,
			Message: gjson.GetBytes(body, "error").String(),
		}
	}

	return body, nil
}

func model(slim bool) string {
	if slim {
		return ModelSlim
	}

	return ModelClassic
}

// ResponseError is returned for any reply with a status other than 200.
// Message holds the error description from the reply when MineSkin provides it
type ResponseError struct {
	Status  int
	Message string
}

func (e *ResponseError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("mineskin responded with %d status", e.Status)
	}

	return fmt.Sprintf("mineskin responded with %d status: %s", e.Status, e.Message)
}

func (e *ResponseError) StatusCode() int {
	return e.Status
}
