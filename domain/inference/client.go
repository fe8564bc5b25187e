package inference

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Endpoint paths consumed from the backend.
const (
	PathPredict         = "/predict"
	PathProcessMultiple = "/process-multiple-files"
	PathGenerateHeatmap = "/generate-heatmap"
	PathPredictFeature  = "/predict/"
)

const (
	defaultBaseURL          = "http://127.0.0.1:8000"
	defaultMaxResponseBytes = 32 << 20
	defaultUserAgent        = "predict-client"
	requestIDHeader         = "X-Request-ID"
)

// Options configures a Client. Zero values select defaults.
type Options struct {
	BaseURL          string
	Timeout          time.Duration // 0 leaves the request bounded only by the transport
	MaxResponseBytes int64
	UserAgent        string
	HTTPClient       *http.Client
}

func (o *Options) defaults() {
	if strings.TrimSpace(o.BaseURL) == "" {
		o.BaseURL = defaultBaseURL
	}
	if o.MaxResponseBytes <= 0 {
		o.MaxResponseBytes = defaultMaxResponseBytes
	}
	if o.UserAgent == "" {
		o.UserAgent = defaultUserAgent
	}
}

// Client talks to the inference backend. Methods are safe to call from a
// background goroutine; SetBaseURL must not race with an outstanding call.
type Client struct {
	base    string
	maxBody int64
	ua      string
	logger  *slog.Logger
	do      func(*http.Request) (*http.Response, error)
	newID   func() string
}

// NewClient builds a client from opts.
func NewClient(opts Options, logger *slog.Logger) *Client {
	opts.defaults()
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	return &Client{
		base:    strings.TrimRight(opts.BaseURL, "/"),
		maxBody: opts.MaxResponseBytes,
		ua:      opts.UserAgent,
		logger:  logger,
		do:      hc.Do,
		newID:   func() string { return uuid.NewString() },
	}
}

// BaseURL returns the configured backend root.
func (c *Client) BaseURL() string { return c.base }

// SetBaseURL points the client at a different backend.
func (c *Client) SetBaseURL(u string) {
	if strings.TrimSpace(u) == "" {
		u = defaultBaseURL
	}
	c.base = strings.TrimRight(u, "/")
}

// SetMaxResponseBytes changes the response body cap. Non-positive values restore the default.
func (c *Client) SetMaxResponseBytes(n int64) {
	if n <= 0 {
		n = defaultMaxResponseBytes
	}
	c.maxBody = n
}

// Predict uploads one file as field "file" and returns the raw prediction value.
func (c *Client) Predict(ctx context.Context, up Upload) (json.RawMessage, error) {
	body, ctype, err := multipartBody("file", []Upload{up})
	if err != nil {
		return nil, err
	}
	raw, err := c.post(ctx, PathPredict, ctype, body)
	if err != nil {
		return nil, err
	}
	return decodePrediction(raw)
}

// ProcessMultiple uploads every file as a repeated "files" field. The returned
// records keep the backend's order; files the backend dropped are simply absent.
func (c *Client) ProcessMultiple(ctx context.Context, ups []Upload) ([]ResultRecord, error) {
	body, ctype, err := multipartBody("files", ups)
	if err != nil {
		return nil, err
	}
	raw, err := c.post(ctx, PathProcessMultiple, ctype, body)
	if err != nil {
		return nil, err
	}
	var mr multiResponse
	if err := json.Unmarshal(raw, &mr); err != nil {
		return nil, &TransportError{Op: "decode results", Err: err}
	}
	if mr.Results == nil {
		return nil, &TransportError{Op: "decode results", Err: fmt.Errorf("%w: missing results", ErrShape)}
	}
	out := make([]ResultRecord, 0, len(*mr.Results))
	for i, r := range *mr.Results {
		if len(r.Prediction) == 0 {
			return nil, &TransportError{Op: "decode results", Err: fmt.Errorf("%w: result %d has no prediction", ErrShape, i)}
		}
		heat, err := decodeHeatmap(r.Heatmap)
		if err != nil {
			return nil, &TransportError{Op: "decode heatmap", Err: fmt.Errorf("result %d (%s): %w", i, r.Filename, err)}
		}
		out = append(out, ResultRecord{Filename: r.Filename, Prediction: r.Prediction, Heatmap: heat})
	}
	return out, nil
}

// GenerateHeatmap uploads one file and returns the raw image bytes.
func (c *Client) GenerateHeatmap(ctx context.Context, up Upload) ([]byte, error) {
	body, ctype, err := multipartBody("file", []Upload{up})
	if err != nil {
		return nil, err
	}
	raw, err := c.post(ctx, PathGenerateHeatmap, ctype, body)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, &TransportError{Op: "read heatmap", Err: fmt.Errorf("%w: empty body", ErrShape)}
	}
	if ct := http.DetectContentType(raw); !strings.HasPrefix(ct, "image/") {
		return nil, &TransportError{Op: "read heatmap", Err: fmt.Errorf("%w: got %s", ErrShape, ct)}
	}
	return raw, nil
}

// PredictFeature posts {"feature": v} to the legacy numeric route.
func (c *Client) PredictFeature(ctx context.Context, feature float64) (json.RawMessage, error) {
	payload, err := json.Marshal(featureRequest{Feature: feature})
	if err != nil {
		return nil, &TransportError{Op: "encode feature", Err: err}
	}
	raw, err := c.post(ctx, PathPredictFeature, "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	return decodePrediction(raw)
}

// post issues one request and returns the body of a 2xx response.
func (c *Client) post(ctx context.Context, path, contentType string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, body)
	if err != nil {
		return nil, &TransportError{Op: "new request", Err: err}
	}
	id := c.newID()
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json, image/png")
	req.Header.Set("User-Agent", c.ua)
	req.Header.Set(requestIDHeader, id)

	start := time.Now()
	resp, err := c.do(req)
	if err != nil {
		return nil, &TransportError{Op: "POST " + path, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, &TransportError{Op: "read response", Err: err}
	}
	if int64(len(raw)) > c.maxBody {
		return nil, &TransportError{Op: "read response", Err: fmt.Errorf("response exceeds %d bytes", c.maxBody)}
	}
	if c.logger != nil {
		c.logger.Debug("inference call", "path", path, "status", resp.StatusCode, "bytes", len(raw), "request_id", id, "elapsed", time.Since(start))
	}
	if resp.StatusCode/100 != 2 {
		return nil, &RequestError{Status: resp.StatusCode, Detail: detailFromBody(raw)}
	}
	return raw, nil
}

func decodePrediction(raw []byte) (json.RawMessage, error) {
	var pr predictResponse
	if err := json.Unmarshal(raw, &pr); err != nil {
		return nil, &TransportError{Op: "decode prediction", Err: err}
	}
	if len(pr.Prediction) == 0 {
		return nil, &TransportError{Op: "decode prediction", Err: fmt.Errorf("%w: missing prediction", ErrShape)}
	}
	return pr.Prediction, nil
}

// decodeHeatmap decodes a base64 image, tolerating a data URL prefix.
// An empty string means no heatmap.
func decodeHeatmap(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if strings.HasPrefix(s, "data:") {
		if i := strings.Index(s, ","); i >= 0 {
			s = s[i+1:]
		}
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// multipartBody buffers the given files into a multipart form under field.
func multipartBody(field string, ups []Upload) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, up := range ups {
		if err := writePart(mw, field, up); err != nil {
			return nil, "", err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", &TransportError{Op: "encode form", Err: err}
	}
	return &buf, mw.FormDataContentType(), nil
}

func writePart(mw *multipart.Writer, field string, up Upload) error {
	f, err := os.Open(up.Path)
	if err != nil {
		return &TransportError{Op: "open " + up.Name, Err: err}
	}
	defer f.Close()
	part, err := mw.CreateFormFile(field, up.Name)
	if err != nil {
		return &TransportError{Op: "encode form", Err: err}
	}
	if _, err := io.Copy(part, f); err != nil {
		return &TransportError{Op: "read " + up.Name, Err: err}
	}
	return nil
}
