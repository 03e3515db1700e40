// Package secret resolves sensitive configuration values, such as the webhook
// URL, from the environment, a file or Google Secret Manager.
package secret

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

type (
	Secret = []byte

	Source interface {
		Get(context.Context, string) (Secret, error)
	}
)

var ErrUnknownSource = errors.New("unknown secret source")

// String fetches name from s and trims surrounding whitespace.
func String(ctx context.Context, s Source, name string) (string, error) {
	v, err := s.Get(ctx, name)
	if err != nil {
		return "", fmt.Errorf("failed to get secret %q: %w", name, err)
	}

	return strings.TrimSpace(string(v)), nil
}
