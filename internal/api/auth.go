package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/zhubert/messly/internal/errors"
	"github.com/zhubert/messly/internal/session"
)

// Login exchanges form-encoded credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	const op errors.Op = "api.Login"

	form := url.Values{
		"email":    {email},
		"password": {password},
	}
	var out LoginResult
	err := c.do(ctx, op, call{
		method:      http.MethodPost,
		path:        apiPrefix + "/login",
		body:        strings.NewReader(form.Encode()),
		contentType: "application/x-www-form-urlencoded",
	}, &out)
	if err != nil {
		return nil, err
	}
	if out.AccessToken == "" {
		return nil, errors.E(op, errors.KindProtocol, "login response has no token")
	}
	return &out, nil
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, email, username, password string) error {
	const op errors.Op = "api.Register"

	body, ct, err := jsonBody(map[string]string{
		"email":    email,
		"username": username,
		"password": password,
	})
	if err != nil {
		return errors.E(op, errors.KindInvalid, err)
	}
	return c.do(ctx, op, call{
		method:      http.MethodPost,
		path:        apiPrefix + "/register",
		body:        body,
		contentType: ct,
	}, nil)
}

// Me validates the token and returns the identity behind it.
func (c *Client) Me(ctx context.Context, s *session.Session) (*Me, error) {
	const op errors.Op = "api.Me"

	token, err := requireToken(op, s)
	if err != nil {
		return nil, err
	}
	var out Me
	if err := c.do(ctx, op, call{method: http.MethodGet, path: apiPrefix + "/me", token: token}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout invalidates the session server-side.
func (c *Client) Logout(ctx context.Context, s *session.Session) error {
	const op errors.Op = "api.Logout"

	token, err := requireToken(op, s)
	if err != nil {
		return err
	}
	return c.do(ctx, op, call{method: http.MethodPost, path: apiPrefix + "/logout", token: token}, nil)
}
