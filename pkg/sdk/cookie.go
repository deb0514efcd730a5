package sdk

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// CookieSource supplies the Cookie header value for outgoing requests, for
// example "hangeul_session=<token>".
type CookieSource interface {
	Cookie(ctx context.Context) (string, error)
}

// CookieFunc adapts a function to CookieSource.
type CookieFunc func(ctx context.Context) (string, error)

func (f CookieFunc) Cookie(ctx context.Context) (string, error) {
	return f(ctx)
}

// StaticCookie is a fixed cookie value.
type StaticCookie string

func (c StaticCookie) Cookie(context.Context) (string, error) {
	if c == "" {
		return "", ErrNoCookie
	}
	return string(c), nil
}

// FileCookieStore keeps the cookie in a file readable only by its owner.
// It stands in for the platform keychain on desktop builds and in the CLI.
type FileCookieStore struct {
	Path string
}

func (s FileCookieStore) Cookie(context.Context) (string, error) {
	raw, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoCookie
		}
		return "", fmt.Errorf("sdk: read cookie file: %w", err)
	}
	value := strings.TrimSpace(string(raw))
	if value == "" {
		return "", ErrNoCookie
	}
	return value, nil
}

// Save replaces the stored cookie.
func (s FileCookieStore) Save(value string) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o700); err != nil {
		return fmt.Errorf("sdk: create cookie dir: %w", err)
	}
	if err := os.WriteFile(s.Path, []byte(strings.TrimSpace(value)+"\n"), 0o600); err != nil {
		return fmt.Errorf("sdk: write cookie file: %w", err)
	}
	return nil
}
