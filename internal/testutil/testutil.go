// Package testutil drives a todo service running in an httptest server and
// checks its JSON responses.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/wondertwin-ai/todo-service/internal/httpcore"
)

// Client sends requests to a test server and fails the test on transport
// errors.
type Client struct {
	t    *testing.T
	base string
	http *http.Client
}

// NewClient creates a client for server.
func NewClient(t *testing.T, server *httptest.Server) *Client {
	return &Client{t: t, base: server.URL, http: server.Client()}
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	t          *testing.T
}

// Get performs a GET request.
func (c *Client) Get(path string) *Response {
	c.t.Helper()
	return c.send(http.MethodGet, path, nil)
}

// Post sends body encoded as JSON.
func (c *Client) Post(path string, body any) *Response {
	c.t.Helper()
	return c.send(http.MethodPost, path, c.encode(body))
}

// Patch sends body encoded as JSON.
func (c *Client) Patch(path string, body any) *Response {
	c.t.Helper()
	return c.send(http.MethodPatch, path, c.encode(body))
}

// Delete performs a DELETE request.
func (c *Client) Delete(path string) *Response {
	c.t.Helper()
	return c.send(http.MethodDelete, path, nil)
}

// Raw sends rawJSON verbatim, for bodies a map cannot express: malformed
// JSON, duplicate keys or keys that differ only in case.
func (c *Client) Raw(method, path, rawJSON string) *Response {
	c.t.Helper()
	return c.send(method, path, []byte(rawJSON))
}

func (c *Client) encode(body any) []byte {
	c.t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		c.t.Fatalf("encoding request body: %v", err)
	}
	return data
}

func (c *Client) send(method, path string, body []byte) *Response {
	c.t.Helper()

	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequest(method, c.base+path, r)
	if err != nil {
		c.t.Fatalf("building %s %s: %v", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.t.Fatalf("reading %s %s response: %v", method, path, err)
	}
	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: data, t: c.t}
}

// JSON decodes the body into v.
func (r *Response) JSON(v any) {
	r.t.Helper()
	if err := json.Unmarshal(r.Body, v); err != nil {
		r.t.Fatalf("decoding response: %v\nbody: %s", err, r.Body)
	}
}

// AssertStatus checks the status code.
func (r *Response) AssertStatus(want int) *Response {
	r.t.Helper()
	if r.StatusCode != want {
		r.t.Errorf("status = %d, want %d\nbody: %s", r.StatusCode, want, r.Body)
	}
	return r
}

// AssertBodyContains checks that the raw body contains substr.
func (r *Response) AssertBodyContains(substr string) *Response {
	r.t.Helper()
	if !strings.Contains(string(r.Body), substr) {
		r.t.Errorf("body does not contain %q: %s", substr, r.Body)
	}
	return r
}

// AssertError checks for the service's error response: the given status and
// {"status":"error","message":message}.
func (r *Response) AssertError(status int, message string) *Response {
	r.t.Helper()
	r.AssertStatus(status)
	var body httpcore.ErrorBody
	r.JSON(&body)
	if body.Status != "error" {
		r.t.Errorf(`error body status = %q, want "error"`, body.Status)
	}
	if body.Message != message {
		r.t.Errorf("error message = %q, want %q", body.Message, message)
	}
	return r
}

// AssertMessage checks for a 200 {"message":message} body, as returned by a
// successful delete.
func (r *Response) AssertMessage(message string) *Response {
	r.t.Helper()
	r.AssertStatus(http.StatusOK)
	var body struct {
		Message string `json:"message"`
	}
	r.JSON(&body)
	if body.Message != message {
		r.t.Errorf("message = %q, want %q", body.Message, message)
	}
	return r
}
