package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/zhubert/messly/internal/errors"
	"github.com/zhubert/messly/internal/session"
)

// SearchUsers returns up to ten users whose name contains query.
func (c *Client) SearchUsers(ctx context.Context, s *session.Session, query string) ([]UserSummary, error) {
	const op errors.Op = "api.SearchUsers"

	token, err := requireToken(op, s)
	if err != nil {
		return nil, err
	}
	var out []UserSummary
	err = c.do(ctx, op, call{
		method: http.MethodGet, path: apiPrefix + "/users/search",
		query: url.Values{"username": {query}}, token: token,
	}, &out)
	return out, err
}

// Profile fetches a user's public card.
func (c *Client) Profile(ctx context.Context, s *session.Session, username string) (*Profile, error) {
	const op errors.Op = "api.Profile"

	token, err := requireToken(op, s)
	if err != nil {
		return nil, err
	}
	var out Profile
	err = c.do(ctx, op, call{
		method: http.MethodGet, path: apiPrefix + "/users/profile",
		query: url.Values{"username": {username}}, token: token,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateUsername renames the current user and returns the stored name.
func (c *Client) UpdateUsername(ctx context.Context, s *session.Session, username string) (string, error) {
	const op errors.Op = "api.UpdateUsername"

	token, err := requireToken(op, s)
	if err != nil {
		return "", err
	}
	body, ct, err := jsonBody(map[string]string{"username": username})
	if err != nil {
		return "", errors.E(op, errors.KindInvalid, err)
	}
	var out struct {
		Username string `json:"username"`
	}
	err = c.do(ctx, op, call{
		method: http.MethodPut, path: apiPrefix + "/profile/update_username",
		body: body, contentType: ct, token: token,
	}, &out)
	if err == nil && out.Username == "" {
		out.Username = username
	}
	return out.Username, err
}

// UpdateDescription replaces the current user's description.
func (c *Client) UpdateDescription(ctx context.Context, s *session.Session, description string) (string, error) {
	const op errors.Op = "api.UpdateDescription"

	token, err := requireToken(op, s)
	if err != nil {
		return "", err
	}
	body, ct, err := jsonBody(map[string]string{"description": description})
	if err != nil {
		return "", errors.E(op, errors.KindInvalid, err)
	}
	var out struct {
		Description string `json:"description"`
	}
	err = c.do(ctx, op, call{
		method: http.MethodPut, path: apiPrefix + "/profile/update_description",
		body: body, contentType: ct, token: token,
	}, &out)
	return out.Description, err
}

// UploadAvatar replaces the current user's picture and returns the new reference.
func (c *Client) UploadAvatar(ctx context.Context, s *session.Session, filename string, r io.Reader) (string, error) {
	const op errors.Op = "api.UploadAvatar"

	token, err := requireToken(op, s)
	if err != nil {
		return "", err
	}
	body, ct, err := fileBody("file", filename, r)
	if err != nil {
		return "", errors.E(op, errors.KindIO, err)
	}
	var out struct {
		ProfilePicture string `json:"profile_picture"`
	}
	err = c.do(ctx, op, call{
		method: http.MethodPost, path: apiPrefix + "/users/upload-avatar/",
		body: body, contentType: ct, token: token,
	}, &out)
	return out.ProfilePicture, err
}

// UpdateUser edits another user's account. Site admin only.
func (c *Client) UpdateUser(ctx context.Context, s *session.Session, userID int, upd UserUpdate) (*AdminUser, error) {
	const op errors.Op = "api.UpdateUser"

	token, err := requireToken(op, s)
	if err != nil {
		return nil, err
	}
	body, ct, err := jsonBody(upd)
	if err != nil {
		return nil, errors.E(op, errors.KindInvalid, err)
	}
	var out struct {
		User AdminUser `json:"user"`
	}
	err = c.do(ctx, op, call{
		method: http.MethodPut, path: fmt.Sprintf("%s/users/%d/update/", apiPrefix, userID), route: "/api/users/{id}/update/",
		body: body, contentType: ct, token: token,
	}, &out)
	if err != nil {
		return nil, err
	}
	if out.User.ID == 0 {
		out.User = AdminUser{ID: userID, Username: upd.Username, Email: upd.Email, Role: upd.Role}
	}
	return &out.User, nil
}

// DeleteUser removes an account. Site admin only.
func (c *Client) DeleteUser(ctx context.Context, s *session.Session, userID int) error {
	const op errors.Op = "api.DeleteUser"

	token, err := requireToken(op, s)
	if err != nil {
		return err
	}
	return c.do(ctx, op, call{
		method: http.MethodDelete, path: fmt.Sprintf("%s/users/%d/", apiPrefix, userID), route: "/api/users/{id}/", token: token,
	}, nil)
}
