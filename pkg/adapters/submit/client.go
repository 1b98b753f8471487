// Package submit delivers registrations to the remote registration endpoint
// as a single multipart/form-data request.
package submit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/aretw0/onboard/internal/logging"
	"github.com/aretw0/onboard/pkg/domain"
	"github.com/aretw0/onboard/pkg/ports"
)

// SubmissionIDHeader carries the submission id. It is for tracing only; the
// endpoint is not expected to deduplicate on it.
const SubmissionIDHeader = "X-Submission-ID"

// maxErrorBody bounds how much of a rejection body is read.
const maxErrorBody = 64 << 10

// EndpointError is a non-2xx answer of the registration endpoint.
type EndpointError struct {
	StatusCode int
	// Message is the server-provided reason, empty when the body had none.
	Message string
}

func (e *EndpointError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("registration endpoint returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("registration endpoint returned status %d: %s", e.StatusCode, e.Message)
}

// UserMessage returns the reason to show to the user.
func (e *EndpointError) UserMessage() string {
	return e.Message
}

// Client posts submissions to the registration endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
	headers    http.Header
	logger     *slog.Logger
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithHeader adds a static header (e.g. an API key) to every request.
func WithHeader(key, value string) Option {
	return func(cl *Client) {
		cl.headers.Add(key, value)
	}
}

// WithLogger configures a logger for the Client.
func WithLogger(logger *slog.Logger) Option {
	return func(cl *Client) {
		cl.logger = logger
	}
}

// New creates a Client for endpoint. Deadlines come from the caller's context;
// the default HTTP client only carries a safety timeout.
func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 2 * time.Minute},
		headers:    make(http.Header),
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Submit sends sub in exactly one request. It never retries.
func (c *Client) Submit(ctx context.Context, sub *domain.Submission) error {
	body, contentType, err := Encode(sub)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	for k, vs := range c.headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set(SubmissionIDHeader, sub.ID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("registration request failed: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("registration endpoint answered",
		"submission_id", sub.ID,
		"status", resp.StatusCode,
		"duration", time.Since(start))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &EndpointError{StatusCode: resp.StatusCode, Message: rejectionMessage(raw)}
}

// Encode renders sub as a multipart/form-data body: one part per scalar
// field, in catalogue order, then one file part per attachment.
func Encode(sub *domain.Submission) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range sub.Fields {
		if err := w.WriteField(f.Name, f.Value); err != nil {
			return nil, "", fmt.Errorf("failed to write field %s: %w", f.Name, err)
		}
	}
	for _, part := range sub.Files {
		if err := writeFile(w, part); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart body: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func writeFile(w *multipart.Writer, part domain.FilePart) error {
	att := part.Attachment
	mediaType := att.MediaType
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(part.Field), quoteEscaper.Replace(att.Name)))
	h.Set("Content-Type", mediaType)

	pw, err := w.CreatePart(h)
	if err != nil {
		return fmt.Errorf("failed to create part %s: %w", part.Field, err)
	}
	if _, err := pw.Write(att.Data); err != nil {
		return fmt.Errorf("failed to write part %s: %w", part.Field, err)
	}
	return nil
}

// rejectionMessage extracts "message" (or "error") from a JSON error body.
func rejectionMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   any    `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	if msg := strings.TrimSpace(body.Message); msg != "" {
		return msg
	}
	switch e := body.Error.(type) {
	case string:
		return strings.TrimSpace(e)
	case map[string]any:
		if msg, ok := e["message"].(string); ok {
			return strings.TrimSpace(msg)
		}
	}
	return ""
}

var _ ports.Submitter = (*Client)(nil)
