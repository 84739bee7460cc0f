package di

import (
	"net/http"
	"time"

	"github.com/defval/di"
	"github.com/spf13/viper"

	"ely.by/tailor/internal/version"
)

var httpClientDiOptions = di.Options(
	di.Provide(newHttpClient),
)

// The same client is shared by all upstreams. There are no retries, so the timeout
// is the upper bound for a single upstream call
func newHttpClient(config *viper.Viper) *http.Client {
	config.SetDefault("http.timeout", 10*time.Second)

	return &http.Client{
		Timeout: config.GetDuration("http.timeout"),
	}
}

func userAgent(config *viper.Viper) string {
	config.SetDefault("http.user_agent", "tailor/"+version.Version())

	return config.GetString("http.user_agent")
}
