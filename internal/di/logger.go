package di

import (
	"github.com/defval/di"
	"github.com/getsentry/raven-go"
	"github.com/spf13/viper"

	"ely.by/tailor/internal/version"
)

var loggerDiOptions = di.Options(
	di.Provide(newSentry),
)

func newSentry(config *viper.Viper) (*raven.Client, error) {
	sentryAddr := config.GetString("sentry.dsn")
	if sentryAddr == "" {
		return nil, nil
	}

	config.SetDefault("sentry.environment", "production")

	ravenClient, err := raven.New(sentryAddr)
	if err != nil {
		return nil, err
	}

	ravenClient.SetEnvironment(config.GetString("sentry.environment"))
	ravenClient.SetDefaultLoggerName("tailor")
	ravenClient.SetRelease(version.Version())

	raven.DefaultClient = ravenClient

	return ravenClient, nil
}
