// Package api is the REST client for the messly backend.
//
// The backend is two services behind one base URL: the main service under
// /api (auth, chats, profiles, admin) and the chat service under /ws
// (message deletion, history clearing, reactions and the live channel).
// Every authenticated call takes the caller's *session.Session explicitly;
// a missing token fails fast with a KindAuth error without touching the
// network.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zhubert/messly/internal/errors"
	"github.com/zhubert/messly/internal/logger"
	"github.com/zhubert/messly/internal/metrics"
	"github.com/zhubert/messly/internal/session"
)

const (
	apiPrefix  = "/api"
	chatPrefix = "/ws"

	// DefaultTimeout bounds every REST call. Uploads get the same budget.
	DefaultTimeout = 30 * time.Second

	maxResponseBytes = 16 << 20
)

// Client talks to one backend.
type Client struct {
	base *url.URL
	http *http.Client
	log  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.http = h
	}
}

// New returns a client for baseURL, e.g. "http://localhost:8000".
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Host == "" {
		return nil, errors.ConfigInvalid(fmt.Sprintf("server url %q is not a valid URL", baseURL))
	}
	c := &Client{
		base: u,
		http: &http.Client{Timeout: DefaultTimeout},
		log:  logger.WithComponent("api"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// LiveURL returns the websocket target for one chat's live channel.
func (c *Client) LiveURL(chatID int, token string) string {
	u := *c.base
	if u.Scheme == "https" {
		u.Scheme = "wss"
	} else {
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(c.base.Path, "/") + fmt.Sprintf("%s/chat/%d", chatPrefix, chatID)
	u.RawQuery = url.Values{"token": {token}}.Encode()
	return u.String()
}

// AssetURL resolves a backend file reference such as "static/files/x.png".
func (c *Client) AssetURL(ref string) string {
	if ref == "" {
		return ""
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	return c.base.String() + apiPrefix + "/" + strings.TrimLeft(ref, "/")
}

// call describes one REST request.
type call struct {
	method      string
	path        string // includes the service prefix
	route       string // path template used as the metrics label
	query       url.Values
	body        io.Reader
	contentType string
	token       string
}

func requireToken(op errors.Op, s *session.Session) (string, error) {
	if !s.Valid() {
		return "", errors.Unauthorized(op, "not logged in")
	}
	return s.Token, nil
}

func jsonBody(v any) (io.Reader, string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, "", err
	}
	return bytes.NewReader(data), "application/json", nil
}

// fileBody builds a single-part multipart body. The part carries the content
// type guessed from filename because the backend checks it for images.
func fileBody(field, filename string, r io.Reader) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename)))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filepath.Base(filename)))
	h.Set("Content-Type", contentType)

	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

// do issues the request and decodes a 2xx JSON body into out (which may be nil).
func (c *Client) do(ctx context.Context, op errors.Op, cl call, out any) error {
	u := *c.base
	u.Path = strings.TrimRight(c.base.Path, "/") + cl.path
	if cl.query != nil {
		u.RawQuery = cl.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, u.String(), cl.body)
	if err != nil {
		return errors.E(op, errors.KindInvalid, err)
	}

	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("Accept", "application/json")
	if cl.contentType != "" {
		req.Header.Set("Content-Type", cl.contentType)
	}
	if cl.token != "" {
		req.Header.Set("Authorization", "Bearer "+cl.token)
	}

	route := cl.route
	if route == "" {
		route = cl.path
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.ObserveRequest(cl.method, route, 0, time.Since(start))
		c.log.Warn("request failed", "op", op, "route", route, "requestID", requestID, "error", err)
		return errors.NetworkFailed(op, err)
	}
	defer resp.Body.Close()

	metrics.ObserveRequest(cl.method, route, resp.StatusCode, time.Since(start))
	c.log.Debug("request done", "op", op, "method", cl.method, "route", route,
		"status", resp.StatusCode, "requestID", requestID, "elapsed", time.Since(start))

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return errors.NetworkFailed(op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail := decodeDetail(data)
		if resp.StatusCode == http.StatusUnauthorized {
			return errors.Unauthorized(op, detail)
		}
		return errors.RequestFailed(op, resp.StatusCode, detail)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.E(op, errors.KindProtocol, "unexpected response body", err)
	}
	return nil
}

// decodeDetail extracts {"detail": ...} from an error body. Validation errors
// carry a list of {msg} objects; the first message is used.
func decodeDetail(data []byte) string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(data, &body); err != nil || len(body.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(body.Detail, &s); err == nil {
		return s
	}

	var list []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(body.Detail, &list); err == nil && len(list) > 0 {
		return list[0].Msg
	}
	return ""
}

func chatPath(chatID int, suffix string) string {
	return fmt.Sprintf("%s/chats/%d%s", apiPrefix, chatID, suffix)
}
