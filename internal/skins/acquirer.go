package skins

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/multierr"

	"ely.by/tailor/internal/mojang"
	"ely.by/tailor/internal/otel"
	"ely.by/tailor/internal/textures"
)

const (
	pngSignatureFirstByte = 0x89

	skinWidth        = 64
	skinHeight       = 64
	legacySkinHeight = 32

	// Limit for the reply text attached to the logs
	maxLoggedReplyLength = 512
)

const (
	EndpointMineSkinUpload = "mineskin.upload"
	EndpointMineSkinUrl    = "mineskin.url"
	EndpointMojangUuid     = "mojang.uuid"
	EndpointMojangProfile  = "mojang.profile"
	EndpointElybyProxy     = "elyby.proxy"
)

const (
	sourceFile   = "file"
	sourceUrl    = "url"
	sourcePlayer = "player"
)

type MineSkinApi interface {
	GenerateFromUpload(ctx context.Context, filename string, data []byte, slim bool) ([]byte, error)
	GenerateFromUrl(ctx context.Context, url string, slim bool) ([]byte, error)
}

type MojangApi interface {
	UsernameToUuid(ctx context.Context, username string) (*mojang.ProfileInfo, error)
	UuidToTextures(ctx context.Context, uuid string, signed bool) ([]byte, error)
}

type ProxyApi interface {
	SignedTextures(ctx context.Context, username string) ([]byte, error)
}

func NewAcquirer(mineSkin MineSkinApi, mojangApi MojangApi, proxy ProxyApi) (*Acquirer, error) {
	metrics, err := newAcquirerMetrics(otel.GetMeter())
	if err != nil {
		return nil, err
	}

	return &Acquirer{
		MineSkinApi: mineSkin,
		MojangApi:   mojangApi,
		ProxyApi:    proxy,
		metrics:     metrics,
	}, nil
}

// Acquirer turns a skin source (a local file, a remote url or a player name) into
// the textures property signed by one of the upstream authorities.
// It keeps no state between calls, so it's safe to use it concurrently.
type Acquirer struct {
	MineSkinApi
	MojangApi
	ProxyApi

	metrics *acquirerMetrics
}

func (a *Acquirer) AcquireFromFile(ctx context.Context, path string, useSlim bool) (*textures.Property, error) {
	ctx, span := otel.GetTracer().Start(ctx, "skins.AcquireFromFile")
	defer span.End()

	a.metrics.Requests.Add(ctx, 1, sourceAttr(sourceFile))
	slog.Debug("Fetching skin from file", slog.String("path", path))

	data, err := readSkinFile(path)
	if err != nil {
		return nil, a.fail(ctx, span, sourceFile, err, nil)
	}

	return a.acquireFromImage(ctx, span, sourceFile, filepath.Base(path), data, useSlim)
}

// AcquireFromImage does the same as AcquireFromFile, but for a file which content is already read
func (a *Acquirer) AcquireFromImage(ctx context.Context, filename string, data []byte, useSlim bool) (*textures.Property, error) {
	ctx, span := otel.GetTracer().Start(ctx, "skins.AcquireFromImage")
	defer span.End()

	a.metrics.Requests.Add(ctx, 1, sourceAttr(sourceFile))

	return a.acquireFromImage(ctx, span, sourceFile, filename, data, useSlim)
}

func (a *Acquirer) acquireFromImage(
	ctx context.Context,
	span trace.Span,
	source string,
	filename string,
	data []byte,
	useSlim bool,
) (*textures.Property, error) {
	err := validateSkin(data)
	if err != nil {
		return nil, a.fail(ctx, span, source, err, nil)
	}

	slog.Debug("Uploading skin to MineSkin", slog.String("filename", filename), slog.Bool("slim", useSlim))
	reply, err := a.MineSkinApi.GenerateFromUpload(ctx, filename, data, useSlim)
	if err != nil {
		return nil, a.fail(ctx, span, source, classifyUpstreamError(EndpointMineSkinUpload, err), nil)
	}

	return a.parseReply(ctx, span, source, EndpointMineSkinUpload, reply)
}

func (a *Acquirer) AcquireFromUrl(ctx context.Context, url string, useSlim bool) (*textures.Property, error) {
	ctx, span := otel.GetTracer().Start(ctx, "skins.AcquireFromUrl")
	defer span.End()

	a.metrics.Requests.Add(ctx, 1, sourceAttr(sourceUrl))
	slog.Debug("Fetching skin from URL", slog.String("url", url), slog.Bool("slim", useSlim))

	reply, err := a.MineSkinApi.GenerateFromUrl(ctx, url, useSlim)
	if err != nil {
		return nil, a.fail(ctx, span, sourceUrl, classifyUpstreamError(EndpointMineSkinUrl, err), nil)
	}

	return a.parseReply(ctx, span, sourceUrl, EndpointMineSkinUrl, reply)
}

// AcquireFromPlayerName prefers the signed textures from Mojang. When Mojang knows nothing
// about the username (e.g. it's an offline or ely.by account), the ely.by proxy is used.
func (a *Acquirer) AcquireFromPlayerName(ctx context.Context, username string) (*textures.Property, error) {
	ctx, span := otel.GetTracer().Start(ctx, "skins.AcquireFromPlayerName")
	defer span.End()

	a.metrics.Requests.Add(ctx, 1, sourceAttr(sourcePlayer))
	slog.Debug("Fetching Mojang skin of player", slog.String("username", username))

	profile, err := a.MojangApi.UsernameToUuid(ctx, username)
	if err != nil {
		var statusErr statusError
		if !errors.As(err, &statusErr) {
			return nil, a.fail(ctx, span, sourcePlayer, &TransportError{Endpoint: EndpointMojangUuid, Err: err}, nil)
		}

		// Any unsuccessful reply means there is no id for the username
		slog.Debug("Mojang has rejected the uuid lookup", slog.String("username", username), slog.Any("error", err))
		profile = nil
	}

	var endpoint string
	var reply []byte
	if profile == nil {
		slog.Debug("Mojang skin not found, trying via proxy", slog.String("username", username))
		a.metrics.Fallbacks.Add(ctx, 1)
		span.AddEvent("fallback to proxy")

		endpoint = EndpointElybyProxy
		reply, err = a.ProxyApi.SignedTextures(ctx, username)
	} else {
		slog.Debug("Mojang skin found", slog.String("username", username), slog.String("uuid", profile.Id))

		endpoint = EndpointMojangProfile
		reply, err = a.MojangApi.UuidToTextures(ctx, profile.Id, true)
	}

	if err != nil {
		return nil, a.fail(ctx, span, sourcePlayer, classifyUpstreamError(endpoint, err), nil)
	}

	return a.parseReply(ctx, span, sourcePlayer, endpoint, reply)
}

func (a *Acquirer) parseReply(
	ctx context.Context,
	span trace.Span,
	source string,
	endpoint string,
	reply []byte,
) (*textures.Property, error) {
	property, err := ParseReply(reply)
	if err != nil {
		return nil, a.fail(ctx, span, source, &UpstreamRejectedError{
			Endpoint: endpoint,
			Reply:    string(reply),
			Err:      err,
		}, reply)
	}

	a.metrics.Acquired.Add(ctx, 1, sourceAttr(source))

	return property, nil
}

func (a *Acquirer) fail(ctx context.Context, span trace.Span, source string, err error, reply []byte) error {
	attrs := []any{
		slog.String("source", source),
		slog.Any("error", err),
	}

	var dimensionsErr *InvalidDimensionsError
	if errors.As(err, &dimensionsErr) {
		attrs = append(attrs, slog.Int("width", dimensionsErr.Width), slog.Int("height", dimensionsErr.Height))
	}

	var upstreamErr *UpstreamRejectedError
	if errors.As(err, &upstreamErr) {
		attrs = append(attrs, slog.String("endpoint", upstreamErr.Endpoint))
	}

	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		attrs = append(attrs, slog.String("endpoint", transportErr.Endpoint))
	}

	if len(reply) > 0 {
		attrs = append(attrs, slog.String("reply", truncate(string(reply), maxLoggedReplyLength)))
	}

	slog.Error("Unable to acquire skin", attrs...)

	otel.FailSpan(span, err)

	a.metrics.Failed.Add(ctx, 1, metric.WithAttributes(
		attribute.String("source", source),
		attribute.String("reason", failureReason(err)),
	))

	return err
}

func readSkinFile(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &TransportError{Endpoint: path, Err: err}
	}
	defer file.Close()

	leadingByte := make([]byte, 1)
	_, err = io.ReadFull(file, leadingByte)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: the file is empty", InvalidFormat)
		}

		return nil, &TransportError{Endpoint: path, Err: err}
	}

	if leadingByte[0] != pngSignatureFirstByte {
		return nil, fmt.Errorf("%w: unexpected leading byte %d", InvalidFormat, leadingByte[0])
	}

	rest, err := io.ReadAll(file)
	if err != nil {
		return nil, &TransportError{Endpoint: path, Err: err}
	}

	return append(leadingByte, rest...), nil
}

func validateSkin(data []byte) error {
	if len(data) == 0 || data[0] != pngSignatureFirstByte {
		return InvalidFormat
	}

	image, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %w", InvalidFormat, err)
	}

	width, height := image.Bounds().Dx(), image.Bounds().Dy()
	if width != skinWidth || (height != skinHeight && height != legacySkinHeight) {
		return &InvalidDimensionsError{Width: width, Height: height}
	}

	return nil
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, InvalidFormat):
		return "invalid_format"
	case errors.Is(err, InvalidDimensions):
		return "invalid_dimensions"
	case errors.Is(err, TransportFailure):
		return "transport"
	case errors.Is(err, UpstreamRejected):
		return "upstream_rejected"
	default:
		return "unknown"
	}
}

func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}

	return s[:length] + "..."
}

func sourceAttr(source string) metric.AddOption {
	return metric.WithAttributes(attribute.String("source", source))
}

func newAcquirerMetrics(meter metric.Meter) (*acquirerMetrics, error) {
	m := &acquirerMetrics{}
	var errors, err error

	m.Requests, err = meter.Int64Counter(
		"tailor.skins.acquire.request",
		metric.WithDescription("Number of skin acquisition attempts"),
		metric.WithUnit("{request}"),
	)
	errors = multierr.Append(errors, err)

	m.Acquired, err = meter.Int64Counter(
		"tailor.skins.acquire.success",
		metric.WithDescription("Number of signed textures properties obtained from the upstreams"),
		metric.WithUnit("{property}"),
	)
	errors = multierr.Append(errors, err)

	m.Failed, err = meter.Int64Counter(
		"tailor.skins.acquire.failure",
		metric.WithDescription("Number of failed skin acquisitions"),
		metric.WithUnit("{request}"),
	)
	errors = multierr.Append(errors, err)

	m.Fallbacks, err = meter.Int64Counter(
		"tailor.skins.acquire.fallback",
		metric.WithDescription("Number of player name lookups served by the proxy"),
		metric.WithUnit("{request}"),
	)
	errors = multierr.Append(errors, err)

	return m, errors
}

type acquirerMetrics struct {
	Requests  metric.Int64Counter
	Acquired  metric.Int64Counter
	Failed    metric.Int64Counter
	Fallbacks metric.Int64Counter
}
