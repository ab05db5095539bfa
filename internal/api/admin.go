package api

import (
	"context"
	"net/http"

	"github.com/zhubert/messly/internal/errors"
	"github.com/zhubert/messly/internal/session"
)

// Statistics returns the admin dashboard totals.
func (c *Client) Statistics(ctx context.Context, s *session.Session) (*Stats, error) {
	const op errors.Op = "api.Statistics"

	token, err := requireToken(op, s)
	if err != nil {
		return nil, err
	}
	var out Stats
	if err := c.do(ctx, op, call{method: http.MethodGet, path: apiPrefix + "/admin-panel/statistics/", token: token}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AdminUsers lists every account.
func (c *Client) AdminUsers(ctx context.Context, s *session.Session) ([]AdminUser, error) {
	const op errors.Op = "api.AdminUsers"

	token, err := requireToken(op, s)
	if err != nil {
		return nil, err
	}
	var out []AdminUser
	err = c.do(ctx, op, call{method: http.MethodGet, path: apiPrefix + "/admin-panel/users/", token: token}, &out)
	return out, err
}

// AdminChats lists every chat.
func (c *Client) AdminChats(ctx context.Context, s *session.Session) ([]AdminChat, error) {
	const op errors.Op = "api.AdminChats"

	token, err := requireToken(op, s)
	if err != nil {
		return nil, err
	}
	var out []AdminChat
	err = c.do(ctx, op, call{method: http.MethodGet, path: apiPrefix + "/admin-panel/chats/", token: token}, &out)
	return out, err
}

// AdminMessages lists every message.
func (c *Client) AdminMessages(ctx context.Context, s *session.Session) ([]AdminMessage, error) {
	const op errors.Op = "api.AdminMessages"

	token, err := requireToken(op, s)
	if err != nil {
		return nil, err
	}
	var out []AdminMessage
	err = c.do(ctx, op, call{method: http.MethodGet, path: apiPrefix + "/admin-panel/messages/", token: token}, &out)
	return out, err
}
