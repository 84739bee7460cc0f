package di

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/defval/di"
	"github.com/getsentry/raven-go"
	"github.com/spf13/viper"
)

var serverDiOptions = di.Options(
	di.Provide(newServer),
)

type serverParams struct {
	di.Inject

	Config  *viper.Viper  `di:""`
	Handler http.Handler  `di:""`
	Sentry  *raven.Client `di:"" optional:"true"`
}

func newServer(params serverParams) *http.Server {
	params.Config.SetDefault("server.host", "")
	params.Config.SetDefault("server.port", 80)
	// A player lookup may take up to 2 sequential upstream calls
	params.Config.SetDefault("server.write_timeout", 30*time.Second)

	var handler http.Handler
	if params.Sentry != nil {
		// raven.Recoverer uses DefaultClient and nothing can be done about it.
		// The Sentry service replaces DefaultClient with the configured instance
		handler = raven.Recoverer(params.Handler)
	} else {
		// Without a panic handler Mux just resets the connection
		handler = http.HandlerFunc(func(response http.ResponseWriter, request *http.Request) {
			defer func() {
				if recovered := recover(); recovered != nil {
					slog.Error(
						"Panic during the request handling",
						slog.String("path", request.URL.Path),
						slog.Any("panic", recovered),
						slog.String("stack", string(debug.Stack())),
					)
					response.WriteHeader(http.StatusInternalServerError)
				}
			}()

			params.Handler.ServeHTTP(response, request)
		})
	}

	address := fmt.Sprintf("%s:%d", params.Config.GetString("server.host"), params.Config.GetInt("server.port"))
	server := &http.Server{
		Addr:           address,
		ReadTimeout:    5 * time.Second,
		WriteTimeout:   params.Config.GetDuration("server.write_timeout"),
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16,
		Handler:        handler,
	}

	return server
}
