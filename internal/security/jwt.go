package security

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"ely.by/tailor/internal/version"
)

var now = time.Now
var signingMethod = jwt.SigningMethodHS256

const issuer = "tailor"

type Scope string

const (
	// SkinsScope allows to acquire signed textures from the upstreams
	SkinsScope Scope = "skins"
	// TexturesScope allows to build unsigned textures properties
	TexturesScope Scope = "textures"
)

var validScopes = []Scope{
	SkinsScope,
	TexturesScope,
}

func ParseScope(value string) (Scope, error) {
	scope := Scope(strings.ToLower(strings.TrimSpace(value)))
	if !slices.Contains(validScopes, scope) {
		return "", fmt.Errorf("unknown scope %s", value)
	}

	return scope, nil
}

type claims struct {
	jwt.RegisteredClaims
	Scopes []Scope `json:"scopes"`
}

func NewJwt(key []byte) *Jwt {
	return &Jwt{
		Key: key,
	}
}

type Jwt struct {
	Key []byte
}

// NewToken issues a token with the passed scopes. The token never expires when ttl is 0
func (t *Jwt) NewToken(ttl time.Duration, scopes ...Scope) (string, error) {
	if len(scopes) == 0 {
		return "", errors.New("you must specify at least one scope")
	}

	for _, scope := range scopes {
		if !slices.Contains(validScopes, scope) {
			return "", fmt.Errorf("unknown scope %s", scope)
		}
	}

	issuedAt := now()
	registeredClaims := jwt.RegisteredClaims{
		Issuer:   issuer,
		IssuedAt: jwt.NewNumericDate(issuedAt),
	}
	if ttl > 0 {
		registeredClaims.ExpiresAt = jwt.NewNumericDate(issuedAt.Add(ttl))
	}

	token := jwt.NewWithClaims(signingMethod, &claims{registeredClaims, scopes})
	token.Header["v"] = version.MajorVersion

	return token.SignedString(t.Key)
}

var MissingAuthenticationError = errors.New("authentication value not provided")
var InvalidTokenError = errors.New("passed authentication value is invalid")
var MissingScopeError = errors.New("the token doesn't have the scope to perform the action")

func (t *Jwt) Authenticate(req *http.Request, scope Scope) error {
	bearerToken := req.Header.Get("Authorization")
	if bearerToken == "" {
		return MissingAuthenticationError
	}

	if !strings.HasPrefix(strings.ToLower(bearerToken), "bearer ") {
		return InvalidTokenError
	}

	tokenStr := bearerToken[7:] // trim "bearer " part
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (interface{}, error) {
			return t.Key, nil
		},
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(now),
	)
	if err != nil {
		return errors.Join(InvalidTokenError, err)
	}

	if _, vHeaderExists := token.Header["v"]; !vHeaderExists {
		return errors.Join(InvalidTokenError, errors.New("missing v header"))
	}

	if !slices.Contains(token.Claims.(*claims).Scopes, scope) {
		return MissingScopeError
	}

	return nil
}
