package sellerapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
)

const DefaultBaseURL = "http://localhost:8001"

// Session supplies the bearer token attached to outgoing requests.
type Session interface {
	AccessToken() string
}

// Error is a non-2xx response from the API.
type Error struct {
	Status int
	Body   string
}

func (e *Error) Error() string {
	if strings.TrimSpace(e.Body) == "" {
		return fmt.Sprintf("HTTP %d", e.Status)
	}
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.Body)
}

// Detail returns the "detail" message of a JSON error body, or the raw
// body when it has none.
func (e *Error) Detail() string {
	var body struct {
		Detail any `json:"detail"`
	}
	if json.Unmarshal([]byte(e.Body), &body) == nil {
		if s, ok := body.Detail.(string); ok && s != "" {
			return s
		}
	}
	return strings.TrimSpace(e.Body)
}

// StatusOf reports the HTTP status carried by err, if any.
func StatusOf(err error) (int, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Status, true
	}
	return 0, false
}

// Multipart is a file upload body. Its content type (with boundary) is set
// by the multipart writer, never as JSON.
type Multipart struct {
	Field    string
	Filename string
	Content  io.Reader
}

func (m *Multipart) encode() (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	field := m.Field
	if field == "" {
		field = "file"
	}
	part, err := w.CreateFormFile(field, m.Filename)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, m.Content); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}

// Client talks to the seller REST API. It has no retry or backoff of its
// own; callers decide what to do with an error.
type Client struct {
	baseURL string
	http    *http.Client
	session Session
}

func New(baseURL string, httpClient *http.Client) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{baseURL: baseURL, http: httpClient}
}

// WithSession returns a copy of c that authenticates as s.
func (c *Client) WithSession(s Session) *Client {
	cp := *c
	cp.session = s
	return &cp
}

func (c *Client) BaseURL() string { return c.baseURL }

// Do sends a request to path (relative to the base URL) and decodes a JSON
// response into out. A 204 leaves out untouched.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var (
		rdr         io.Reader
		contentType = "application/json"
	)

	switch b := body.(type) {
	case nil:
	case *Multipart:
		buf, ct, err := b.encode()
		if err != nil {
			return fmt.Errorf("sellerapi: encode multipart: %w", err)
		}
		rdr, contentType = buf, ct
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return fmt.Errorf("sellerapi: encode body: %w", err)
		}
		rdr = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", contentType)
	if c.session != nil {
		if tok := c.session.AccessToken(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("sellerapi: %s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		text, _ := io.ReadAll(res.Body)
		return &Error{Status: res.StatusCode, Body: string(text)}
	}
	if res.StatusCode == http.StatusNoContent || out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("sellerapi: decode %s %s: %w", method, path, err)
	}
	return nil
}
