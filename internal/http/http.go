package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/trace"

	"ely.by/tailor/internal/otel"
	"ely.by/tailor/internal/security"
	"ely.by/tailor/internal/skins"
)

func StartServer(ctx context.Context, server *http.Server) {
	srvErr := make(chan error, 1)
	go func() {
		slog.Info("Starting the server", slog.String("addr", server.Addr))
		srvErr <- server.ListenAndServe()
		close(srvErr)
	}()

	select {
	case err := <-srvErr:
		slog.Error("Error in the server", slog.Any("error", err))
	case <-ctx.Done():
		slog.Info("Got stop signal, starting graceful shutdown", slog.Any("cause", context.Cause(ctx)))

		stopCtx, cancelFunc := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancelFunc()

		_ = server.Shutdown(stopCtx)

		slog.Info("Graceful shutdown succeed, exiting")
	}
}

type Authenticator interface {
	Authenticate(req *http.Request, scope security.Scope) error
}

func NewAuthenticationMiddleware(authenticator Authenticator, scope security.Scope) mux.MiddlewareFunc {
	return func(handler http.Handler) http.Handler {
		return http.HandlerFunc(func(resp http.ResponseWriter, req *http.Request) {
			err := authenticator.Authenticate(req, scope)
			if err != nil {
				apiForbidden(resp, err.Error())
				return
			}

			handler.ServeHTTP(resp, req)
		})
	}
}

func NotFoundHandler(response http.ResponseWriter, _ *http.Request) {
	data, _ := json.Marshal(map[string]string{
		"status":  "404",
		"message": "Not Found",
	})

	response.Header().Set("Content-Type", "application/json")
	response.WriteHeader(http.StatusNotFound)
	_, _ = response.Write(data)
}

func apiJson(resp http.ResponseWriter, data any) {
	result, err := json.Marshal(data)
	if err != nil {
		panic(err)
	}

	resp.Header().Set("Content-Type", "application/json")
	resp.WriteHeader(http.StatusOK)
	_, _ = resp.Write(result)
}

func apiBadRequest(resp http.ResponseWriter, errorsPerField map[string][]string) {
	resp.Header().Set("Content-Type", "application/json")
	resp.WriteHeader(http.StatusBadRequest)
	result, _ := json.Marshal(map[string]any{
		"errors": errorsPerField,
	})
	_, _ = resp.Write(result)
}

var internalServerError = []byte("Internal server error")

func apiServerError(resp http.ResponseWriter, req *http.Request, err error) {
	otel.FailSpan(trace.SpanFromContext(req.Context()), err)

	slog.Error("Unable to handle the request", slog.String("path", req.URL.Path), slog.Any("error", err))

	resp.Header().Set("Content-Type", "text/plain")
	resp.WriteHeader(http.StatusInternalServerError)
	_, _ = resp.Write(internalServerError)
}

func apiForbidden(resp http.ResponseWriter, reason string) {
	resp.Header().Set("Content-Type", "application/json")
	resp.WriteHeader(http.StatusForbidden)
	result, _ := json.Marshal(map[string]any{
		"error": reason,
	})
	_, _ = resp.Write(result)
}

// apiAcquisitionError responds according to the kind of the skin acquisition failure.
// Invalid images are the client's fault, the rest belongs to the upstreams
func apiAcquisitionError(resp http.ResponseWriter, req *http.Request, field string, err error) {
	switch {
	case errors.Is(err, skins.InvalidFormat), errors.Is(err, skins.InvalidDimensions):
		apiBadRequest(resp, map[string][]string{
			field: {err.Error()},
		})
	case errors.Is(err, skins.UpstreamRejected):
		apiUpstreamError(resp, http.StatusBadGateway, err)
	case errors.Is(err, skins.TransportFailure):
		apiUpstreamError(resp, http.StatusGatewayTimeout, err)
	default:
		apiServerError(resp, req, err)
	}
}

func apiUpstreamError(resp http.ResponseWriter, status int, err error) {
	resp.Header().Set("Content-Type", "application/json")
	resp.WriteHeader(status)
	result, _ := json.Marshal(map[string]any{
		"error": err.Error(),
	})
	_, _ = resp.Write(result)
}
