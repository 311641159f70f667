// Package client issues requests to the TokoKita backend and maps every
// outcome onto the apperr taxonomy. It never retries and never touches the
// session beyond reading the credential.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/suteetoe/tokokita/internal/model"
	"github.com/suteetoe/tokokita/pkg/apperr"
	"github.com/suteetoe/tokokita/pkg/jwtutil"
	"github.com/suteetoe/tokokita/pkg/logger"
	metrics "github.com/suteetoe/tokokita/prometheus"
	"go.uber.org/zap"
)

// CredentialSource supplies the current credential
type CredentialSource interface {
	Get() (model.Credential, bool)
}

// Client represents a client for the storefront backend
type Client struct {
	baseURL    string
	creds      CredentialSource
	httpClient *http.Client
	logger     *zap.Logger
	metrics    *metrics.Metrics
	now        func() time.Time
}

// Option configures a Client
type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.httpClient
		hc.Timeout = d
		c.httpClient = &hc
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// New creates a new client instance for baseURL (e.g. http://host/api)
func New(baseURL string, creds CredentialSource, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		creds:      creds,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     zap.NewNop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type requestOptions struct {
	noAuth bool
	query  url.Values
	route  string
}

// RequestOption tunes a single call
type RequestOption func(*requestOptions)

// WithoutAuth sends the request without a bearer token
func WithoutAuth() RequestOption {
	return func(o *requestOptions) { o.noAuth = true }
}

func WithQuery(q url.Values) RequestOption {
	return func(o *requestOptions) { o.query = q }
}

// WithRoute sets the low-cardinality route label used for metrics
func WithRoute(name string) RequestOption {
	return func(o *requestOptions) { o.route = name }
}

// Do sends a JSON request and returns the raw JSON body of a 2xx response.
// An empty body is returned as null.
func (c *Client) Do(ctx context.Context, method, path string, body interface{}, opts ...RequestOption) (json.RawMessage, error) {
	var reader io.Reader
	contentType := ""
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, apperr.Validation(fmt.Sprintf("cannot encode request: %v", err))
		}
		reader = bytes.NewReader(buf)
		contentType = "application/json"
	}

	data, _, err := c.send(ctx, method, path, reader, contentType, opts)
	if err != nil {
		return nil, err
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return json.RawMessage("null"), nil
	}
	if !json.Valid(data) {
		return nil, apperr.MalformedResponse(errors.New("response body is not valid JSON"))
	}
	return json.RawMessage(data), nil
}

// DoJSON is Do followed by decoding into out
func (c *Client) DoJSON(ctx context.Context, method, path string, body, out interface{}, opts ...RequestOption) error {
	raw, err := c.Do(ctx, method, path, body, opts...)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return apperr.MalformedResponse(err)
	}
	return nil
}

// DoRaw returns the undecoded body of a 2xx response with its content type
func (c *Client) DoRaw(ctx context.Context, method, path string, opts ...RequestOption) ([]byte, string, error) {
	return c.send(ctx, method, path, nil, "", opts)
}

// Upload sends a multipart form with one file part
func (c *Client) Upload(ctx context.Context, path string, fields map[string]string, fileField, fileName string, content []byte, opts ...RequestOption) (json.RawMessage, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, apperr.Validation(fmt.Sprintf("cannot encode form: %v", err))
		}
	}
	part, err := w.CreateFormFile(fileField, fileName)
	if err != nil {
		return nil, apperr.Validation(fmt.Sprintf("cannot encode form: %v", err))
	}
	if _, err := part.Write(content); err != nil {
		return nil, apperr.Validation(fmt.Sprintf("cannot encode form: %v", err))
	}
	if err := w.Close(); err != nil {
		return nil, apperr.Validation(fmt.Sprintf("cannot encode form: %v", err))
	}

	data, _, err := c.send(ctx, http.MethodPost, path, &buf, w.FormDataContentType(), opts)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return json.RawMessage("null"), nil
	}
	if !json.Valid(data) {
		return nil, apperr.MalformedResponse(errors.New("response body is not valid JSON"))
	}
	return json.RawMessage(data), nil
}

func (c *Client) send(ctx context.Context, method, path string, body io.Reader, contentType string, opts []RequestOption) ([]byte, string, error) {
	o := requestOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	route := o.route
	if route == "" {
		route = path
	}

	var token string
	if !o.noAuth {
		cred, ok := c.creds.Get()
		if !ok {
			return nil, "", apperr.Unauthenticated("not logged in")
		}
		if jwtutil.Expired(cred.Token, c.now()) {
			return nil, "", apperr.Unauthenticated("token expired")
		}
		token = cred.Token
	}

	target := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(o.query) > 0 {
		target += "?" + o.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, "", apperr.Validation(fmt.Sprintf("invalid request: %v", err))
	}

	requestID := uuid.New().String()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	log := logger.FromContext(ctx, c.logger).With(
		zap.String("method", method),
		zap.String("route", route),
		zap.String("request_id", requestID),
	)
	track := c.metrics.TrackAPICall(method, route)
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		track(start, "network_error")
		log.Warn("API request failed", zap.Error(err))
		return nil, "", apperr.NetworkUnavailable(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		track(start, "network_error")
		log.Warn("Failed to read API response", zap.Error(err))
		return nil, "", apperr.NetworkUnavailable(err)
	}

	status := strconv.Itoa(resp.StatusCode)
	track(start, status)
	log.Debug("API request",
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return data, resp.Header.Get("Content-Type"), nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, "", apperr.Unauthenticated(serverMessage(data, resp.StatusCode))
	default:
		rejected := apperr.ServerRejected(resp.StatusCode, serverMessage(data, resp.StatusCode))
		rejected.Fields = fieldErrors(data)
		log.Info("API request rejected",
			zap.Int("status", resp.StatusCode),
			zap.String("message", rejected.Message),
		)
		return nil, "", rejected
	}
}

type errorBody struct {
	Message string              `json:"message"`
	Error   string              `json:"error"`
	Errors  map[string][]string `json:"errors"`
}

func serverMessage(data []byte, status int) string {
	var body errorBody
	if err := json.Unmarshal(data, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return fmt.Sprintf("request failed with status %d", status)
}

func fieldErrors(data []byte) map[string]string {
	var body errorBody
	if err := json.Unmarshal(data, &body); err != nil || len(body.Errors) == 0 {
		return nil
	}
	fields := make(map[string]string, len(body.Errors))
	for k, msgs := range body.Errors {
		fields[k] = strings.Join(msgs, " ")
	}
	return fields
}
