package di

import (
	"errors"

	"github.com/defval/di"
	"github.com/spf13/viper"

	"ely.by/tailor/internal/http"
	"ely.by/tailor/internal/security"
)

var securityDiOptions = di.Options(
	di.Provide(newAuthenticator, di.As(new(http.Authenticator))),
)

func newAuthenticator(config *viper.Viper) (*security.Jwt, error) {
	key := config.GetString("tailor.secret")
	if key == "" {
		return nil, errors.New("tailor.secret must be set in order to use authenticator")
	}

	return security.NewJwt([]byte(key)), nil
}
