package render

import (
	"fmt"
	"net/http"

	"github.com/go-rod/rod/lib/proto"
)

// cookieParams turns a Cookie header value into cookies scoped to origin
func cookieParams(header, origin string) ([]*proto.NetworkCookieParam, error) {
	cookies, err := http.ParseCookie(header)
	if err != nil {
		return nil, fmt.Errorf("invalid session cookies: %w", err)
	}

	params := make([]*proto.NetworkCookieParam, 0, len(cookies))
	for _, c := range cookies {
		params = append(params, &proto.NetworkCookieParam{
			Name:   c.Name,
			Value:  c.Value,
			URL:    origin,
			Path:   "/",
			Secure: true,
		})
	}
	return params, nil
}
