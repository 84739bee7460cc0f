package http

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"ely.by/tailor/internal/skins"
	"ely.by/tailor/internal/textures"
)

var signedProperty = &textures.Property{
	Name:      "textures",
	Value:     "eyJ0ZXh0dXJlcyI6e319",
	Signature: "c2lnbmF0dXJl",
}

const signedPropertyJson = `{
	"name": "textures",
	"value": "eyJ0ZXh0dXJlcyI6e319",
	"signature": "c2lnbmF0dXJl"
}`

type SkinsAcquirerMock struct {
	mock.Mock
}

func (m *SkinsAcquirerMock) AcquireFromImage(ctx context.Context, filename string, data []byte, useSlim bool) (*textures.Property, error) {
	args := m.Called(ctx, filename, data, useSlim)
	result, _ := args.Get(0).(*textures.Property)

	return result, args.Error(1)
}

func (m *SkinsAcquirerMock) AcquireFromUrl(ctx context.Context, url string, useSlim bool) (*textures.Property, error) {
	args := m.Called(ctx, url, useSlim)
	result, _ := args.Get(0).(*textures.Property)

	return result, args.Error(1)
}

func (m *SkinsAcquirerMock) AcquireFromPlayerName(ctx context.Context, username string) (*textures.Property, error) {
	args := m.Called(ctx, username)
	result, _ := args.Get(0).(*textures.Property)

	return result, args.Error(1)
}

type SkinsApiTestSuite struct {
	suite.Suite

	App *SkinsApi

	Acquirer *SkinsAcquirerMock
}

func (t *SkinsApiTestSuite) SetupSubTest() {
	t.Acquirer = &SkinsAcquirerMock{}

	var err error
	t.App, err = NewSkinsApi(t.Acquirer)
	t.Require().NoError(err)
}

func (t *SkinsApiTestSuite) TearDownSubTest() {
	t.Acquirer.AssertExpectations(t.T())
}

func (t *SkinsApiTestSuite) TestUpload() {
	t.Run("successfully upload skin", func() {
		t.Acquirer.On("AcquireFromImage", mock.Anything, "char.png", []byte("png content"), true).Once().Return(signedProperty, nil)

		req := newUploadRequest(t.T(), "http://tailor/upload?model=slim", "file", "char.png", []byte("png content"))
		w := httptest.NewRecorder()

		t.App.Handler().ServeHTTP(w, req)
		result := w.Result()

		t.Equal(http.StatusOK, result.StatusCode)
		t.Equal("application/json", result.Header.Get("Content-Type"))
		body, _ := io.ReadAll(result.Body)
		t.JSONEq(signedPropertyJson, string(body))
	})

	t.Run("classic model by default", func() {
		t.Acquirer.On("AcquireFromImage", mock.Anything, "char.png", mock.Anything, false).Once().Return(signedProperty, nil)

		req := newUploadRequest(t.T(), "http://tailor/upload", "file", "char.png", []byte("png content"))
		w := httptest.NewRecorder()

		t.App.Handler().ServeHTTP(w, req)

		t.Equal(http.StatusOK, w.Result().StatusCode)
	})

	t.Run("missing file", func() {
		req := newUploadRequest(t.T(), "http://tailor/upload", "image", "char.png", []byte("png content"))
		w := httptest.NewRecorder()

		t.App.Handler().ServeHTTP(w, req)
		result := w.Result()

		t.Equal(http.StatusBadRequest, result.StatusCode)
		body, _ := io.ReadAll(result.Body)
		t.JSONEq(`{
			"errors": {
				"file": ["file is a required field"]
			}
		}`, string(body))
	})

	t.Run("not a multipart body", func() {
		req := httptest.NewRequest("POST", "http://tailor/upload", strings.NewReader("file=abc"))
		req.Header.Add("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()

		t.App.Handler().ServeHTTP(w, req)

		t.Equal(http.StatusBadRequest, w.Result().StatusCode)
	})

	t.Run("invalid model", func() {
		req := newUploadRequest(t.T(), "http://tailor/upload?model=alex", "file", "char.png", []byte("png content"))
		w := httptest.NewRecorder()

		t.App.Handler().ServeHTTP(w, req)
		result := w.Result()

		t.Equal(http.StatusBadRequest, result.StatusCode)
		body, _ := io.ReadAll(result.Body)
		t.JSONEq(`{
			"errors": {
				"model": ["model must be one of [slim steve classic default]"]
			}
		}`, string(body))
	})

	t.Run("invalid image", func() {
		t.Acquirer.On("AcquireFromImage", mock.Anything, "char.png", mock.Anything, false).Once().Return(nil, &skins.InvalidDimensionsError{Width: 128, Height: 128})

		req := newUploadRequest(t.T(), "http://tailor/upload", "file", "char.png", []byte("png content"))
		w := httptest.NewRecorder()

		t.App.Handler().ServeHTTP(w, req)
		result := w.Result()

		t.Equal(http.StatusBadRequest, result.StatusCode)
		body, _ := io.ReadAll(result.Body)
		t.JSONEq(`{
			"errors": {
				"file": ["image dimensions are not 64x64 or 64x32, the actual format is 128x128"]
			}
		}`, string(body))
	})
}

func (t *SkinsApiTestSuite) TestUrl() {
	t.Run("successfully generate from url", func() {
		t.Acquirer.On("AcquireFromUrl", mock.Anything, "https://example.com/skin.png", true).Once().Return(signedProperty, nil)

		req := newFormRequest("POST", "http://tailor/url", url.Values{
			"url":   {"https://example.com/skin.png"},
			"model": {"slim"},
		})
		w := httptest.NewRecorder()

		t.App.Handler().ServeHTTP(w, req)
		result := w.Result()

		t.Equal(http.StatusOK, result.StatusCode)
		body, _ := io.ReadAll(result.Body)
		t.JSONEq(signedPropertyJson, string(body))
	})

	t.Run("receive validation errors", func() {
		req := newFormRequest("POST", "http://tailor/url", url.Values{
			"url": {"not a url"},
		})
		w := httptest.NewRecorder()

		t.App.Handler().ServeHTTP(w, req)
		result := w.Result()

		t.Equal(http.StatusBadRequest, result.StatusCode)
		body, _ := io.ReadAll(result.Body)
		t.JSONEq(`{
			"errors": {
				"url": ["url must be a valid URL"]
			}
		}`, string(body))
	})

	t.Run("upstream rejection", func() {
		t.Acquirer.On("AcquireFromUrl", mock.Anything, "https://example.com/skin.png", false).Once().Return(nil, &skins.UpstreamRejectedError{
			Endpoint: skins.EndpointMineSkinUrl,
			Err:      skins.ErrorBearingReply,
		})

		req := newFormRequest("POST", "http://tailor/url", url.Values{
			"url": {"https://example.com/skin.png"},
		})
		w := httptest.NewRecorder()

		t.App.Handler().ServeHTTP(w, req)
		result := w.Result()

		t.Equal(http.StatusBadGateway, result.StatusCode)
		body, _ := io.ReadAll(result.Body)
		t.JSONEq(`{
			"error": "mineskin.url: the reply contains an error"
		}`, string(body))
	})
}

func (t *SkinsApiTestSuite) TestPlayer() {
	t.Run("successfully acquire player skin", func() {
		t.Acquirer.On("AcquireFromPlayerName", mock.Anything, "ErickSkrauch").Once().Return(signedProperty, nil)

		req := httptest.NewRequest("GET", "http://tailor/player/ErickSkrauch", nil)
		w := httptest.NewRecorder()

		t.App.Handler().ServeHTTP(w, req)
		result := w.Result()

		t.Equal(http.StatusOK, result.StatusCode)
		body, _ := io.ReadAll(result.Body)
		t.JSONEq(signedPropertyJson, string(body))
	})

	t.Run("invalid username", func() {
		req := httptest.NewRequest("GET", "http://tailor/player/"+strings.Repeat("a", 22), nil)
		w := httptest.NewRecorder()

		t.App.Handler().ServeHTTP(w, req)
		result := w.Result()

		t.Equal(http.StatusBadRequest, result.StatusCode)
		body, _ := io.ReadAll(result.Body)
		t.JSONEq(`{
			"errors": {
				"username": ["username must be a maximum of 21 in length"]
			}
		}`, string(body))
	})

	t.Run("transport failure", func() {
		t.Acquirer.On("AcquireFromPlayerName", mock.Anything, "Notch").Once().Return(nil, &skins.TransportError{
			Endpoint: skins.EndpointMojangUuid,
			Err:      context.DeadlineExceeded,
		})

		req := httptest.NewRequest("GET", "http://tailor/player/Notch", nil)
		w := httptest.NewRecorder()

		t.App.Handler().ServeHTTP(w, req)

		t.Equal(http.StatusGatewayTimeout, w.Result().StatusCode)
	})

	t.Run("concurrent requests share the acquisition", func() {
		release := make(chan time.Time)
		t.Acquirer.On("AcquireFromPlayerName", mock.Anything, "Notch").Once().WaitUntil(release).Return(signedProperty, nil)

		handler := t.App.Handler()
		results := make([]int, 2)
		var wg sync.WaitGroup
		for i, username := range []string{"Notch", "notch"} {
			wg.Add(1)
			go func(i int, username string) {
				defer wg.Done()
				w := httptest.NewRecorder()
				handler.ServeHTTP(w, httptest.NewRequest("GET", "http://tailor/player/"+username, nil))
				results[i] = w.Result().StatusCode
			}(i, username)

			// Let the first request start the flight before the second one joins it
			if i == 0 {
				time.Sleep(50 * time.Millisecond)
			}
		}

		time.Sleep(50 * time.Millisecond)
		close(release)
		wg.Wait()

		t.Equal([]int{http.StatusOK, http.StatusOK}, results)
	})
}

func TestSkinsApi(t *testing.T) {
	suite.Run(t, new(SkinsApiTestSuite))
}

func newUploadRequest(t *testing.T, target string, field string, filename string, content []byte) *http.Request {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		t.Fatal(err)
	}

	_, _ = part.Write(content)
	_ = writer.Close()

	req := httptest.NewRequest("POST", target, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return req
}

func newFormRequest(method string, target string, values url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(values.Encode()))
	req.Header.Add("Content-Type", "application/x-www-form-urlencoded")

	return req
}
