package api

import (
	"context"
	"io"
	"net/http"

	"github.com/zhubert/messly/internal/errors"
	"github.com/zhubert/messly/internal/session"
)

// Chats lists the current user's personal and group chats.
func (c *Client) Chats(ctx context.Context, s *session.Session) (*ChatList, error) {
	const op errors.Op = "api.Chats"

	token, err := requireToken(op, s)
	if err != nil {
		return nil, err
	}
	var out ChatList
	if err := c.do(ctx, op, call{method: http.MethodGet, path: apiPrefix + "/chats/", token: token}, &out); err != nil {
		return nil, err
	}
	out.stampKinds()
	return &out, nil
}

// CreateGroup creates a named group chat with the current user as its admin.
func (c *Client) CreateGroup(ctx context.Context, s *session.Session, name string) (*Chat, error) {
	const op errors.Op = "api.CreateGroup"

	token, err := requireToken(op, s)
	if err != nil {
		return nil, err
	}
	body, ct, err := jsonBody(map[string]string{"name": name})
	if err != nil {
		return nil, errors.E(op, errors.KindInvalid, err)
	}
	var out Chat
	err = c.do(ctx, op, call{
		method: http.MethodPost, path: apiPrefix + "/chats/create",
		body: body, contentType: ct, token: token,
	}, &out)
	if err != nil {
		return nil, err
	}
	out.Kind = KindGroup
	return &out, nil
}

// CreatePersonal opens (or returns the existing) personal chat with username.
func (c *Client) CreatePersonal(ctx context.Context, s *session.Session, username string) (*Chat, error) {
	const op errors.Op = "api.CreatePersonal"

	token, err := requireToken(op, s)
	if err != nil {
		return nil, err
	}
	body, ct, err := jsonBody(map[string]string{"username": username})
	if err != nil {
		return nil, errors.E(op, errors.KindInvalid, err)
	}
	var out Chat
	err = c.do(ctx, op, call{
		method: http.MethodPost, path: apiPrefix + "/chats/create_personal",
		body: body, contentType: ct, token: token,
	}, &out)
	if err != nil {
		return nil, err
	}
	out.Kind = KindPersonal
	return &out, nil
}

// ChatInfo fetches one chat with its photo and member ids.
func (c *Client) ChatInfo(ctx context.Context, s *session.Session, chatID int) (*ChatInfo, error) {
	const op errors.Op = "api.ChatInfo"

	token, err := requireToken(op, s)
	if err != nil {
		return nil, err
	}
	var out ChatInfo
	err = c.do(ctx, op, call{
		method: http.MethodGet, path: chatPath(chatID, ""), route: "/api/chats/{id}", token: token,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Members lists the members of a chat with their online status.
func (c *Client) Members(ctx context.Context, s *session.Session, chatID int) ([]Member, error) {
	const op errors.Op = "api.Members"

	token, err := requireToken(op, s)
	if err != nil {
		return nil, err
	}
	var out []Member
	err = c.do(ctx, op, call{
		method: http.MethodGet, path: chatPath(chatID, "/members/"), route: "/api/chats/{id}/members/", token: token,
	}, &out)
	return out, err
}

// Role returns the current user's role in a chat ("admin" or "member").
func (c *Client) Role(ctx context.Context, s *session.Session, chatID int) (string, error) {
	const op errors.Op = "api.Role"

	token, err := requireToken(op, s)
	if err != nil {
		return "", err
	}
	var out struct {
		Role string `json:"role"`
	}
	err = c.do(ctx, op, call{
		method: http.MethodGet, path: chatPath(chatID, "/role"), route: "/api/chats/{id}/role", token: token,
	}, &out)
	return out.Role, err
}

// IsMember reports whether the current user still belongs to the chat.
func (c *Client) IsMember(ctx context.Context, s *session.Session, chatID int) (bool, error) {
	const op errors.Op = "api.IsMember"

	token, err := requireToken(op, s)
	if err != nil {
		return false, err
	}
	var out struct {
		IsMember bool `json:"is_member"`
	}
	err = c.do(ctx, op, call{
		method: http.MethodGet, path: chatPath(chatID, "/is_member"), route: "/api/chats/{id}/is_member", token: token,
	}, &out)
	return out.IsMember, err
}

// AddMember adds username to a group chat. Admin only.
func (c *Client) AddMember(ctx context.Context, s *session.Session, chatID int, username string) error {
	return c.memberChange(ctx, "api.AddMember", s, http.MethodPost, chatID, "/add_member", username)
}

// RemoveMember removes username from a group chat. Admin only.
func (c *Client) RemoveMember(ctx context.Context, s *session.Session, chatID int, username string) error {
	return c.memberChange(ctx, "api.RemoveMember", s, http.MethodDelete, chatID, "/remove_member", username)
}

func (c *Client) memberChange(ctx context.Context, op errors.Op, s *session.Session, method string, chatID int, suffix, username string) error {
	token, err := requireToken(op, s)
	if err != nil {
		return err
	}
	body, ct, err := jsonBody(map[string]string{"username": username})
	if err != nil {
		return errors.E(op, errors.KindInvalid, err)
	}
	return c.do(ctx, op, call{
		method: method, path: chatPath(chatID, suffix), route: "/api/chats/{id}" + suffix,
		body: body, contentType: ct, token: token,
	}, nil)
}

// RenameChat renames a group chat and returns the stored name.
func (c *Client) RenameChat(ctx context.Context, s *session.Session, chatID int, name string) (string, error) {
	const op errors.Op = "api.RenameChat"

	token, err := requireToken(op, s)
	if err != nil {
		return "", err
	}
	body, ct, err := jsonBody(map[string]string{"new_name": name})
	if err != nil {
		return "", errors.E(op, errors.KindInvalid, err)
	}
	var out struct {
		Name string `json:"name"`
	}
	err = c.do(ctx, op, call{
		method: http.MethodPut, path: chatPath(chatID, "/update-name/"), route: "/api/chats/{id}/update-name/",
		body: body, contentType: ct, token: token,
	}, &out)
	return out.Name, err
}

// DeleteChat deletes a chat with all of its messages. Admin only.
func (c *Client) DeleteChat(ctx context.Context, s *session.Session, chatID int) error {
	const op errors.Op = "api.DeleteChat"

	token, err := requireToken(op, s)
	if err != nil {
		return err
	}
	return c.do(ctx, op, call{
		method: http.MethodDelete, path: chatPath(chatID, ""), route: "/api/chats/{id}", token: token,
	}, nil)
}

// LeaveChat removes the current user from a chat. Chat admins cannot leave.
func (c *Client) LeaveChat(ctx context.Context, s *session.Session, chatID int) error {
	const op errors.Op = "api.LeaveChat"

	token, err := requireToken(op, s)
	if err != nil {
		return err
	}
	return c.do(ctx, op, call{
		method: http.MethodDelete, path: chatPath(chatID, "/leave"), route: "/api/chats/{id}/leave", token: token,
	}, nil)
}

// UploadChatPhoto replaces a group photo and returns the new reference.
func (c *Client) UploadChatPhoto(ctx context.Context, s *session.Session, chatID int, filename string, r io.Reader) (string, error) {
	const op errors.Op = "api.UploadChatPhoto"

	token, err := requireToken(op, s)
	if err != nil {
		return "", err
	}
	body, ct, err := fileBody("file", filename, r)
	if err != nil {
		return "", errors.E(op, errors.KindIO, err)
	}
	var out struct {
		Photo string `json:"photo"`
	}
	err = c.do(ctx, op, call{
		method: http.MethodPost, path: chatPath(chatID, "/upload-photo/"), route: "/api/chats/{id}/upload-photo/",
		body: body, contentType: ct, token: token,
	}, &out)
	return out.Photo, err
}
