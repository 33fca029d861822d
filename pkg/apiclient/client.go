package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrymomot/speakerhub/pkg/logger"
	"github.com/dmitrymomot/speakerhub/pkg/session"
	"github.com/dmitrymomot/speakerhub/pkg/tokenrefresh"
)

const (
	defaultTimeout = 15 * time.Second
	maxBodySize    = 4 << 20
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the transport. Its Timeout is the only request timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the timeout of the default transport.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithLogger sets the logger for the client and its refresh coordinator.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRefreshThreshold sets how close to expiry a token is refreshed before
// it is sent. Zero disables proactive refresh.
func WithRefreshThreshold(d time.Duration) Option {
	return func(c *Client) {
		c.threshold = d
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// Client issues every backend call. It attaches the current access token and
// resolves authorization failures with a single coordinated refresh.
type Client struct {
	http      *http.Client
	sess      *session.Session
	coord     *tokenrefresh.Coordinator
	logger    *slog.Logger
	baseURL   string
	userAgent string
	timeout   time.Duration
	threshold time.Duration
}

// New creates a client for the gateway at baseURL, reading and refreshing
// tokens in sess.
func New(baseURL string, sess *session.Session, opts ...Option) *Client {
	c := &Client{
		sess:      sess,
		logger:    logger.NewNope(),
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: "speakerctl",
		timeout:   defaultTimeout,
		threshold: tokenrefresh.DefaultThreshold,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: c.timeout}
	}
	c.coord = tokenrefresh.New(sess, c.refresh,
		tokenrefresh.WithLogger(c.logger),
		tokenrefresh.WithThreshold(c.threshold),
	)
	return c
}

// Coordinator returns the refresh coordinator so callers can register
// expiry hooks.
func (c *Client) Coordinator() *tokenrefresh.Coordinator {
	return c.coord
}

// Request describes one backend call.
type Request struct {
	Query  url.Values
	Body   any
	Method string
	Path   string
	// Public requests carry no token and are never retried.
	Public bool
}

// Do sends req and decodes a 2xx JSON body into out (if non-nil).
//
// A 401 on a protected request triggers one coordinated refresh and one
// retry with the new token. A second 401 tears the session down. Every
// other failure is returned unchanged.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	body, err := encodeBody(req.Body)
	if err != nil {
		return err
	}

	if req.Public {
		res, err := c.send(ctx, req, body, "")
		return c.finish(res, err, out)
	}

	token, err := c.currentToken(ctx)
	if err != nil {
		return err
	}

	res, err := c.send(ctx, req, body, token)
	if err != nil || res.status != http.StatusUnauthorized {
		return c.finish(res, err, out)
	}

	c.logger.DebugContext(ctx, "access token rejected, refreshing",
		slog.String("method", req.Method), slog.String("path", req.Path))

	cred, err := c.coord.Refresh(ctx, token)
	if err != nil {
		return err
	}

	res, err = c.send(ctx, req, body, cred.AccessToken)
	if err == nil && res.status == http.StatusUnauthorized {
		return c.coord.Expire(ctx, res.err())
	}
	return c.finish(res, err, out)
}

func (c *Client) currentToken(ctx context.Context) (string, error) {
	if c.threshold <= 0 {
		cred, _ := c.sess.Credential()
		return cred.AccessToken, nil
	}
	cred, err := c.coord.EnsureFresh(ctx)
	if errors.Is(err, tokenrefresh.ErrNoCredential) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return cred.AccessToken, nil
}

// refresh is the RefreshFunc of the coordinator.
func (c *Client) refresh(ctx context.Context, refreshToken string) (session.Credential, error) {
	var out TokenResponse
	err := c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/auth/refresh",
		Body:   map[string]string{"refresh_token": refreshToken},
		Public: true,
	}, &out)
	if err != nil {
		return session.Credential{}, err
	}
	return out.Credential(), nil
}

type response struct {
	body   []byte
	status int
}

func (r response) err() error {
	var eb errorBody
	if len(r.body) > 0 {
		_ = json.Unmarshal(r.body, &eb)
	}
	return &ResponseError{
		kind:       classify(r.status, eb.Code),
		Detail:     eb.Detail,
		Code:       eb.Code,
		StatusCode: r.status,
	}
}

func (c *Client) finish(res response, err error, out any) error {
	if err != nil {
		return err
	}
	if res.status < 200 || res.status > 299 {
		return res.err()
	}
	if out == nil || len(res.body) == 0 {
		return nil
	}
	if err := json.Unmarshal(res.body, out); err != nil {
		return errors.Join(ErrValidation, fmt.Errorf("decode response: %w", err))
	}
	if err := check(out); err != nil {
		return errors.Join(ErrValidation, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, req Request, body []byte, token string) (response, error) {
	u := c.baseURL + req.Path
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}

	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}

	hr, err := http.NewRequestWithContext(ctx, req.Method, u, rd)
	if err != nil {
		return response{}, fmt.Errorf("apiclient: build request: %w", err)
	}
	hr.Header.Set("Accept", "application/json")
	if body != nil {
		hr.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		hr.Header.Set("User-Agent", c.userAgent)
	}
	if token != "" {
		hr.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(hr)
	if err != nil {
		return response{}, errors.Join(ErrTransientNetwork, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return response{}, errors.Join(ErrTransientNetwork, err)
	}
	return response{status: resp.StatusCode, body: data}, nil
}

func encodeBody(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("apiclient: encode request: %w", err)
	}
	return data, nil
}
