// Package session keeps the informational per-session correlation token sent
// with every outbound submission. It carries no security weight.
package session

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type (
	Generator func(time.Time) string

	Token struct {
		mu       sync.RWMutex
		value    string
		generate Generator
	}
)

const (
	prefix    = "session_"
	randomLen = 9
)

// NewToken creates a holder with a fresh token. A nil generator uses Generate.
func NewToken(generate Generator, now time.Time) *Token {
	if generate == nil {
		generate = Generate
	}

	return &Token{value: generate(now), generate: generate}
}

// Generate returns a token shaped session_<random>_<unix ms>.
func Generate(now time.Time) string {
	r := strings.ReplaceAll(uuid.NewString(), "-", "")

	return prefix + r[:randomLen] + "_" + strconv.FormatInt(now.UnixMilli(), 10)
}

func (t *Token) Current() string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.value
}

// Rotate replaces the token and returns the new value.
func (t *Token) Rotate(now time.Time) string {
	v := t.generate(now)

	t.mu.Lock()
	t.value = v
	t.mu.Unlock()

	return v
}
