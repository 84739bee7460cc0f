package di

import (
	"github.com/defval/di"

	"ely.by/tailor/internal/http"
	"ely.by/tailor/internal/skins"
)

var skinsDiOptions = di.Options(
	di.Provide(newAcquirer, di.As(new(http.SkinsAcquirer))),
)

func newAcquirer(
	mineSkin skins.MineSkinApi,
	mojangApi skins.MojangApi,
	proxy skins.ProxyApi,
) (*skins.Acquirer, error) {
	return skins.NewAcquirer(mineSkin, mojangApi, proxy)
}
