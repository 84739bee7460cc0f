package http

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/multierr"

	"ely.by/tailor/internal/otel"
	"ely.by/tailor/internal/textures"
)

type ApplyTextureFunc func(existing *textures.Property, textureType textures.TextureType, url string, metadata map[string]any) (*textures.Property, error)

type texturesForm struct {
	Type     string
	Url      string
	Metadata string
	Value    string
}

func NewTexturesApi(applyTexture ApplyTextureFunc) (*TexturesApi, error) {
	metrics, err := newTexturesApiMetrics(otel.GetMeter())
	if err != nil {
		return nil, err
	}

	return &TexturesApi{
		applyTexture: applyTexture,
		validator:    createFormsValidator(),
		metrics:      metrics,
	}, nil
}

type TexturesApi struct {
	applyTexture ApplyTextureFunc
	validator    *validator.Validate
	metrics      *texturesApiMetrics
}

func (t *TexturesApi) Handler() *mux.Router {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/", t.applyTextureHandler).Methods(http.MethodPost)

	return router
}

func (t *TexturesApi) applyTextureHandler(resp http.ResponseWriter, req *http.Request) {
	err := req.ParseForm()
	if err != nil {
		apiBadRequest(resp, map[string][]string{
			"body": {"The body of the request must be a valid url-encoded string"},
		})
		return
	}

	form := &texturesForm{
		Type:     req.Form.Get("type"),
		Url:      req.Form.Get("url"),
		Metadata: req.Form.Get("metadata"),
		Value:    req.Form.Get("value"),
	}
	if !validateForm(t.validator, resp, form) {
		return
	}

	// Validator has already checked the type
	textureType, _ := textures.ParseTextureType(form.Type)
	var metadata map[string]any
	if form.Metadata != "" {
		metadata, err = textures.ParseMetadata(form.Metadata)
		if err != nil {
			apiBadRequest(resp, map[string][]string{
				"metadata": {err.Error()},
			})
			return
		}
	}

	var existing *textures.Property
	if form.Value != "" {
		existing = &textures.Property{Name: textures.PropertyName, Value: form.Value}
	}

	t.metrics.Request.Add(req.Context(), 1, metric.WithAttributes(
		attribute.String("type", string(textureType)),
		attribute.Bool("merge", existing != nil),
	))

	property, err := t.applyTexture(existing, textureType, form.Url, metadata)
	if err != nil {
		apiServerError(resp, req, err)
		return
	}

	apiJson(resp, property)
}

func newTexturesApiMetrics(meter metric.Meter) (*texturesApiMetrics, error) {
	m := &texturesApiMetrics{}
	var errors, err error

	m.Request, err = meter.Int64Counter(
		"tailor.app.textures.apply.request",
		metric.WithDescription("Number of textures properties built through the API"),
		metric.WithUnit("{request}"),
	)
	errors = multierr.Append(errors, err)

	return m, errors
}

type texturesApiMetrics struct {
	Request metric.Int64Counter
}
