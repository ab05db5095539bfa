package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/zhubert/messly/internal/errors"
	"github.com/zhubert/messly/internal/session"
)

// Messages fetches a chat's history, oldest first.
func (c *Client) Messages(ctx context.Context, s *session.Session, chatID int) ([]Message, error) {
	const op errors.Op = "api.Messages"

	token, err := requireToken(op, s)
	if err != nil {
		return nil, err
	}
	var out []Message
	err = c.do(ctx, op, call{
		method: http.MethodGet, path: chatPath(chatID, "/messages/"), route: "/api/chats/{id}/messages/", token: token,
	}, &out)
	return out, err
}

// UploadFile stores an attachment for a chat. The returned reference is then
// pushed over the live channel; nothing is added to the transcript here.
func (c *Client) UploadFile(ctx context.Context, s *session.Session, chatID int, filename string, r io.Reader) (*Upload, error) {
	const op errors.Op = "api.UploadFile"

	token, err := requireToken(op, s)
	if err != nil {
		return nil, err
	}
	body, ct, err := fileBody("file", filename, r)
	if err != nil {
		return nil, errors.E(op, errors.KindIO, err)
	}
	var out Upload
	err = c.do(ctx, op, call{
		method: http.MethodPost, path: chatPath(chatID, "/upload-file/"), route: "/api/chats/{id}/upload-file/",
		body: body, contentType: ct, token: token,
	}, &out)
	if err != nil {
		return nil, err
	}
	if out.FileURL == "" {
		return nil, errors.E(op, errors.KindProtocol, "upload response has no file_url")
	}
	return &out, nil
}

// DeleteMessage deletes one message. The removal reaches the transcript as a
// message_deleted live event.
func (c *Client) DeleteMessage(ctx context.Context, s *session.Session, messageID int) error {
	const op errors.Op = "api.DeleteMessage"

	token, err := requireToken(op, s)
	if err != nil {
		return err
	}
	return c.do(ctx, op, call{
		method: http.MethodDelete,
		path:   fmt.Sprintf("%s/delete-message/%d", chatPrefix, messageID),
		route:  "/ws/delete-message/{id}",
		query:  url.Values{"token": {token}},
		token:  token,
	}, nil)
}

// ClearHistory deletes every message of a chat. Chat admin only.
func (c *Client) ClearHistory(ctx context.Context, s *session.Session, chatID int) error {
	const op errors.Op = "api.ClearHistory"

	token, err := requireToken(op, s)
	if err != nil {
		return err
	}
	return c.do(ctx, op, call{
		method: http.MethodDelete,
		path:   fmt.Sprintf("%s/clear-chat-history/%d", chatPrefix, chatID),
		route:  "/ws/clear-chat-history/{id}",
		query:  url.Values{"token": {token}},
		token:  token,
	}, nil)
}

// ToggleReaction adds or removes the user's reaction on a message. When the
// backend answers with the updated list it is returned; otherwise the list is
// nil and the change arrives as a reaction_update live event.
func (c *Client) ToggleReaction(ctx context.Context, s *session.Session, messageID int, reaction string) ([]Reaction, error) {
	const op errors.Op = "api.ToggleReaction"

	token, err := requireToken(op, s)
	if err != nil {
		return nil, err
	}
	body, ct, err := jsonBody(map[string]any{"message_id": messageID, "reaction_name": reaction})
	if err != nil {
		return nil, errors.E(op, errors.KindInvalid, err)
	}
	var raw json.RawMessage
	err = c.do(ctx, op, call{
		method: http.MethodPost, path: chatPrefix + "/add-reaction",
		query: url.Values{"token": {token}},
		body:  body, contentType: ct, token: token,
	}, &raw)
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, nil
	}
	var out []Reaction
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return nil, errors.E(op, errors.KindProtocol, "unexpected reaction list", err)
	}
	if out == nil {
		out = []Reaction{}
	}
	return out, nil
}
