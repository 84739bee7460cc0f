package http

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/brunomvsouza/singleflight"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/multierr"

	"ely.by/tailor/internal/otel"
	"ely.by/tailor/internal/textures"
)

// Real skins are a few kilobytes, so there is no reason to accept more
const maxUploadSize = 1 << 20

type SkinsAcquirer interface {
	AcquireFromImage(ctx context.Context, filename string, data []byte, useSlim bool) (*textures.Property, error)
	AcquireFromUrl(ctx context.Context, url string, useSlim bool) (*textures.Property, error)
	AcquireFromPlayerName(ctx context.Context, username string) (*textures.Property, error)
}

type urlForm struct {
	Url   string
	Model string
}

type uploadForm struct {
	Model string
}

type playerForm struct {
	Username string
}

func NewSkinsApi(acquirer SkinsAcquirer) (*SkinsApi, error) {
	metrics, err := newSkinsApiMetrics(otel.GetMeter())
	if err != nil {
		return nil, err
	}

	return &SkinsApi{
		SkinsAcquirer: acquirer,
		validator:     createFormsValidator(),
		metrics:       metrics,
	}, nil
}

type SkinsApi struct {
	SkinsAcquirer

	validator *validator.Validate
	metrics   *skinsApiMetrics
	// Concurrent requests for the same player share one acquisition, nothing is kept after it completes
	group singleflight.Group[string, *textures.Property]
}

func (s *SkinsApi) Handler() *mux.Router {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/upload", s.uploadHandler).Methods(http.MethodPost)
	router.HandleFunc("/url", s.urlHandler).Methods(http.MethodPost)
	router.HandleFunc("/player/{username}", s.playerHandler).Methods(http.MethodGet)

	return router
}

func (s *SkinsApi) uploadHandler(resp http.ResponseWriter, req *http.Request) {
	s.metrics.Request.Add(req.Context(), 1, metric.WithAttributes(attribute.String("source", "upload")))

	req.Body = http.MaxBytesReader(resp, req.Body, maxUploadSize)
	err := req.ParseMultipartForm(maxUploadSize)
	if err != nil {
		apiBadRequest(resp, map[string][]string{
			"body": {"The body of the request must be a multipart form no larger than 1 MB"},
		})
		return
	}

	form := &uploadForm{Model: req.Form.Get("model")}
	if !validateForm(s.validator, resp, form) {
		return
	}

	file, header, err := req.FormFile("file")
	if err != nil {
		apiBadRequest(resp, map[string][]string{
			"file": {"file is a required field"},
		})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		apiServerError(resp, req, err)
		return
	}

	property, err := s.AcquireFromImage(req.Context(), header.Filename, data, isSlimModel(form.Model))
	if err != nil {
		apiAcquisitionError(resp, req, "file", err)
		return
	}

	apiJson(resp, property)
}

func (s *SkinsApi) urlHandler(resp http.ResponseWriter, req *http.Request) {
	s.metrics.Request.Add(req.Context(), 1, metric.WithAttributes(attribute.String("source", "url")))

	err := req.ParseForm()
	if err != nil {
		apiBadRequest(resp, map[string][]string{
			"body": {"The body of the request must be a valid url-encoded string"},
		})
		return
	}

	form := &urlForm{
		Url:   req.Form.Get("url"),
		Model: req.Form.Get("model"),
	}
	if !validateForm(s.validator, resp, form) {
		return
	}

	property, err := s.AcquireFromUrl(req.Context(), form.Url, isSlimModel(form.Model))
	if err != nil {
		apiAcquisitionError(resp, req, "url", err)
		return
	}

	apiJson(resp, property)
}

func (s *SkinsApi) playerHandler(resp http.ResponseWriter, req *http.Request) {
	s.metrics.Request.Add(req.Context(), 1, metric.WithAttributes(attribute.String("source", "player")))

	form := &playerForm{Username: mux.Vars(req)["username"]}
	if !validateForm(s.validator, resp, form) {
		return
	}

	// The flight must outlive the request that has started it, since other requests may wait for it
	ctx := context.WithoutCancel(req.Context())
	property, err, shared := s.group.Do(strings.ToLower(form.Username), func() (*textures.Property, error) {
		return s.AcquireFromPlayerName(ctx, form.Username)
	})
	if shared {
		s.metrics.Shared.Add(req.Context(), 1)
	}

	if err != nil {
		apiAcquisitionError(resp, req, "username", err)
		return
	}

	apiJson(resp, property)
}

func newSkinsApiMetrics(meter metric.Meter) (*skinsApiMetrics, error) {
	m := &skinsApiMetrics{}
	var errors, err error

	m.Request, err = meter.Int64Counter("tailor.app.skins.request", metric.WithUnit("{request}"))
	errors = multierr.Append(errors, err)

	m.Shared, err = meter.Int64Counter(
		"tailor.app.skins.player.shared",
		metric.WithDescription("Number of player requests served by an already running acquisition"),
		metric.WithUnit("{request}"),
	)
	errors = multierr.Append(errors, err)

	return m, errors
}

type skinsApiMetrics struct {
	Request metric.Int64Counter
	Shared  metric.Int64Counter
}
