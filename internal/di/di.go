package di

import "github.com/defval/di"

func New() (*di.Container, error) {
	return di.New(
		configDiOptions,
		contextDiOptions,
		handlersDiOptions,
		httpClientDiOptions,
		loggerDiOptions,
		securityDiOptions,
		serverDiOptions,
		skinsDiOptions,
		upstreamsDiOptions,
	)
}
