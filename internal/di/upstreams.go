package di

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/defval/di"
	"github.com/spf13/viper"

	"ely.by/tailor/internal/elyby"
	"ely.by/tailor/internal/health"
	"ely.by/tailor/internal/mineskin"
	"ely.by/tailor/internal/mojang"
	"ely.by/tailor/internal/skins"
)

var upstreamsDiOptions = di.Options(
	di.Provide(newMineSkinApi, di.As(new(skins.MineSkinApi))),
	di.Provide(newMojangApi, di.As(new(skins.MojangApi))),
	di.Provide(newSkinsystemApi, di.As(new(skins.ProxyApi))),
)

func newMineSkinApi(container *di.Container, config *viper.Viper, httpClient *http.Client) (*mineskin.MineSkinApi, error) {
	config.SetDefault("mineskin.url", "https://api.mineskin.org")

	baseUrl, err := parseUrlOption(config, "mineskin.url")
	if err != nil {
		return nil, err
	}

	err = provideUpstreamChecker(container, config, httpClient, "mineskin", baseUrl)
	if err != nil {
		return nil, err
	}

	return mineskin.NewMineSkinApi(
		httpClient,
		userAgent(config),
		baseUrl,
		config.GetString("mineskin.api_key"),
	), nil
}

func newMojangApi(container *di.Container, config *viper.Viper, httpClient *http.Client) (*mojang.MojangApi, error) {
	config.SetDefault("mojang.profiles_url", "https://api.mojang.com/users/profiles/minecraft/")
	config.SetDefault("mojang.session_url", "https://sessionserver.mojang.com/session/minecraft/profile/")

	profilesUrl, err := parseUrlOption(config, "mojang.profiles_url")
	if err != nil {
		return nil, err
	}

	sessionUrl, err := parseUrlOption(config, "mojang.session_url")
	if err != nil {
		return nil, err
	}

	err = provideUpstreamChecker(container, config, httpClient, "mojang", sessionUrl)
	if err != nil {
		return nil, err
	}

	return mojang.NewMojangApi(httpClient, userAgent(config), profilesUrl, sessionUrl), nil
}

func newSkinsystemApi(container *di.Container, config *viper.Viper, httpClient *http.Client) (*elyby.SkinsystemApi, error) {
	config.SetDefault("elyby.skinsystem_url", "http://skinsystem.ely.by")

	baseUrl, err := parseUrlOption(config, "elyby.skinsystem_url")
	if err != nil {
		return nil, err
	}

	err = provideUpstreamChecker(container, config, httpClient, "elyby", baseUrl)
	if err != nil {
		return nil, err
	}

	return elyby.NewSkinsystemApi(httpClient, userAgent(config), baseUrl), nil
}

func parseUrlOption(config *viper.Viper, key string) (string, error) {
	value := config.GetString(key)
	if _, err := url.ParseRequestURI(value); err != nil {
		return "", fmt.Errorf("%s must be a valid URL: %w", key, err)
	}

	return value, nil
}

// Upstream checkers are disabled by default, since every healthcheck request would reach the upstreams
func provideUpstreamChecker(
	container *di.Container,
	config *viper.Viper,
	httpClient *http.Client,
	name string,
	url string,
) error {
	config.SetDefault("healthcheck.upstreams", false)
	if !config.GetBool("healthcheck.upstreams") {
		return nil
	}

	return container.Provide(func() *namedHealthChecker {
		return &namedHealthChecker{
			Name:    name,
			Checker: health.UpstreamChecker(httpClient, url),
		}
	})
}
