package di

import (
	"net/http"
	"strings"

	"github.com/defval/di"
	"github.com/etherlabsio/healthcheck/v2"
	"github.com/gorilla/mux"

	. "ely.by/tailor/internal/http"
	"ely.by/tailor/internal/security"
	"ely.by/tailor/internal/textures"
)

var handlersDiOptions = di.Options(
	di.Provide(newHandlerFactory, di.As(new(http.Handler))),
	di.Provide(newSkinsHandler, di.WithName("skins")),
	di.Provide(newTexturesHandler, di.WithName("textures")),
)

func newHandlerFactory(container *di.Container, authenticator Authenticator) (*mux.Router, error) {
	router := mux.NewRouter().StrictSlash(true)
	router.NotFoundHandler = http.HandlerFunc(NotFoundHandler)

	var skinsRouter *mux.Router
	if err := container.Resolve(&skinsRouter, di.Name("skins")); err != nil {
		return nil, err
	}

	skinsRouter.Use(NewAuthenticationMiddleware(authenticator, security.SkinsScope))
	mount(router, "/skins", skinsRouter)

	var texturesRouter *mux.Router
	if err := container.Resolve(&texturesRouter, di.Name("textures")); err != nil {
		return nil, err
	}

	texturesRouter.Use(NewAuthenticationMiddleware(authenticator, security.TexturesScope))
	mount(router, "/textures", texturesRouter)

	// Resolve health checkers last, because all the services required by the application
	// must first be initialized and each of them can publish its own checkers
	var checkersOptions []healthcheck.Option
	var healthCheckers []*namedHealthChecker
	if has, _ := container.Has(&healthCheckers); has {
		if err := container.Resolve(&healthCheckers); err != nil {
			return nil, err
		}

		for _, checker := range healthCheckers {
			checkersOptions = append(checkersOptions, healthcheck.WithChecker(checker.Name, checker.Checker))
		}
	}

	router.Handle("/healthcheck", healthcheck.Handler(checkersOptions...)).Methods(http.MethodGet)

	return router, nil
}

func newSkinsHandler(acquirer SkinsAcquirer) (*mux.Router, error) {
	api, err := NewSkinsApi(acquirer)
	if err != nil {
		return nil, err
	}

	return api.Handler(), nil
}

func newTexturesHandler() (*mux.Router, error) {
	api, err := NewTexturesApi(textures.ApplyTexture)
	if err != nil {
		return nil, err
	}

	return api.Handler(), nil
}

// mount serves the handler under the path prefix. The prefix itself (e.g. "POST /textures")
// reaches the handler as its root path, otherwise mux would redirect the empty path to "/"
func mount(router *mux.Router, path string, handler http.Handler) {
	prefix := strings.TrimSuffix(path, "/")
	router.PathPrefix(prefix).Handler(
		http.StripPrefix(prefix, http.HandlerFunc(func(resp http.ResponseWriter, req *http.Request) {
			if req.URL.Path == "" {
				req.URL.Path = "/"
				req.URL.RawPath = ""
			}

			handler.ServeHTTP(resp, req)
		})),
	)
}

type namedHealthChecker struct {
	Name    string
	Checker healthcheck.Checker
}
