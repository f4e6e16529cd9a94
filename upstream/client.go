package upstream

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
)

// maxBodyBytes caps how much of an upstream reply is read.
const maxBodyBytes = 10 << 20

// Client talks JSON (and multipart) to one companion service.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a client for baseURL with a whole-request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// PostJSON sends in as JSON and decodes a 2xx reply into out.
func (c *Client) PostJSON(ctx context.Context, path string, in, out any) error {
	op := "POST " + path
	jsonData, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	return c.do(ctx, op, http.MethodPost, path, "application/json", bytes.NewReader(jsonData), out)
}

// PostRaw sends an already encoded JSON body unchanged.
func (c *Client) PostRaw(ctx context.Context, path string, body []byte, out any) error {
	return c.do(ctx, "POST "+path, http.MethodPost, path, "application/json", bytes.NewReader(body), out)
}

// Get performs a GET and decodes a 2xx reply into out, which may be nil.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, "GET "+path, http.MethodGet, path, "", nil, out)
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// File is one multipart file part. An empty MimeType is sent as
// application/octet-stream.
type File struct {
	Field    string
	Name     string
	Content  io.Reader
	MimeType string
}

// PostMultipart uploads file plus plain form fields.
func (c *Client) PostMultipart(ctx context.Context, path string, file File, fields map[string]string, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return fmt.Errorf("failed to write form field: %w", err)
		}
	}
	mimeType := file.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(file.Field), quoteEscaper.Replace(file.Name)))
	header.Set("Content-Type", mimeType)
	part, err := w.CreatePart(header)
	if err != nil {
		return fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, file.Content); err != nil {
		return fmt.Errorf("failed to copy file: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close multipart writer: %w", err)
	}
	return c.do(ctx, "POST "+path, http.MethodPost, path, w.FormDataContentType(), &buf, out)
}

// Reply is an upstream answer passed through untouched.
type Reply struct {
	Status      int
	ContentType string
	Body        []byte
}

// Forward relays a request body and returns whatever the service said,
// non-2xx included. Only timeouts and transport failures are errors.
func (c *Client) Forward(ctx context.Context, method, path, contentType string, body io.Reader) (*Reply, error) {
	op := method + " " + path
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, classify(op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, classify(op, err)
	}
	return &Reply{Status: resp.StatusCode, ContentType: resp.Header.Get("Content-Type"), Body: data}, nil
}

func (c *Client) do(ctx context.Context, op, method, path, contentType string, body io.Reader, out any) error {
	reply, err := c.Forward(ctx, method, path, contentType, body)
	if err != nil {
		slog.Warn("Upstream request failed", "op", op, "base_url", c.baseURL, "kind", KindOf(err), "error", err)
		return err
	}

	if reply.Status < 200 || reply.Status > 299 {
		slog.Warn("Upstream returned error status", "op", op, "status", reply.Status)
		return &Error{Kind: KindStatus, Op: op, Status: reply.Status, Body: strings.TrimSpace(string(reply.Body))}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(reply.Body, out); err != nil {
		return &Error{Kind: KindDecode, Op: op, Err: err}
	}
	return nil
}
