package secret

import (
	"context"
	"encoding/base64"
	"errors"
	"os"
	"strings"
)

// EnvSource reads secrets from environment variables. Values that decode as
// standard base64 are returned decoded, anything else verbatim.
type EnvSource struct {
	prefix string
}

var ErrSecretNotFound = errors.New("secret_not_found")

var _ Source = (*EnvSource)(nil)

func NewEnvSource() *EnvSource { return &EnvSource{} }

// NewPrefixedEnvSource looks names up as PREFIX_NAME.
func NewPrefixedEnvSource(prefix string) *EnvSource {
	return &EnvSource{prefix: strings.ToUpper(strings.TrimSuffix(prefix, "_"))}
}

func (s *EnvSource) Get(_ context.Context, name string) (Secret, error) {
	if s.prefix != "" {
		name = s.prefix + "_" + name
	}

	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return nil, ErrSecretNotFound
	}

	b, err := base64.StdEncoding.DecodeString(v)
	if err != nil {
		return []byte(v), nil
	}

	return b, nil
}
