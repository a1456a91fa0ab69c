// Package credentials resolves the bearer token used for remote appointment
// mutations.
package credentials

import (
	"context"
	"strings"

	domain "github.com/BruksfildServices01/agenda-engine/internal/domain/appointment"
)

type tokenKey struct{}

// WithToken stores the caller's bearer token on ctx.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func FromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey{}).(string)
	if !ok || strings.TrimSpace(token) == "" {
		return "", false
	}
	return token, true
}

// Request uses the token of the request being served.
type Request struct{}

func (Request) AuthToken(ctx context.Context) (string, bool) {
	return FromContext(ctx)
}

// Static always answers with the same token. An empty token means none.
type Static string

func (s Static) AuthToken(context.Context) (string, bool) {
	if strings.TrimSpace(string(s)) == "" {
		return "", false
	}
	return string(s), true
}

// Chain asks each provider in turn and returns the first token found.
type Chain []domain.CredentialProvider

func (c Chain) AuthToken(ctx context.Context) (string, bool) {
	for _, p := range c {
		if p == nil {
			continue
		}
		if token, ok := p.AuthToken(ctx); ok {
			return token, true
		}
	}
	return "", false
}

var (
	_ domain.CredentialProvider = Request{}
	_ domain.CredentialProvider = Static("")
	_ domain.CredentialProvider = Chain(nil)
)
