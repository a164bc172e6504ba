package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// httpClient allows http.Client to be mocked for tests
type httpClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Error is returned when the server responds with an unexpected status.  Message holds the error
// field of a JSON error body, when present.
type Error struct {
	Method     string
	URI        string
	StatusCode int
	Status     string
	Message    string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s for %q, unexpected %v: %s", e.Method, e.URI, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s for %q, unexpected %v: %s", e.Method, e.URI, e.StatusCode, e.Status)
}

// Generic REST restClient
type restClient struct {
	client  httpClient
	baseURL *url.URL
}

// do performs an HTTP request with this client and returns the response.  A non-nil body is sent
// as JSON.
func (c *restClient) do(ctx context.Context, method, uri string, body []byte) (*http.Response, error) {
	url := c.baseURL.JoinPath(uri)
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url.String(), r)
	if err != nil {
		return nil, fmt.Errorf("%s for %q: %v", method, url, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.client.Do(req)
}

// doJSON marshalls in, if not nil, as the request body, performs an HTTP request with this client
// and unmarshalls the JSON response into out.
func (c *restClient) doJSON(ctx context.Context, method, uri string, in, out any) error {
	var body []byte
	if in != nil {
		var err error
		if body, err = json.Marshal(in); err != nil {
			return err
		}
	}
	resp, err := c.do(ctx, method, uri, body)
	if err != nil {
		return err
	}

	defer func() {
		_ = resp.Body.Close()
	}()
	if err := checkStatus(method, uri, resp); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	// Decode response body
	return json.NewDecoder(resp.Body).Decode(out)
}

// doRaw performs an HTTP GET request and returns the response body.
func (c *restClient) doRaw(ctx context.Context, uri string) (*bytes.Buffer, error) {
	resp, err := c.do(ctx, "GET", uri, nil)
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = resp.Body.Close()
	}()
	if err := checkStatus("GET", uri, resp); err != nil {
		return nil, err
	}
	buf := new(bytes.Buffer)
	_, err = buf.ReadFrom(resp.Body)
	return buf, err
}

// checkStatus returns an *Error unless the response status is 2xx.
func checkStatus(method, uri string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	e := &Error{Method: method, URI: uri, StatusCode: resp.StatusCode, Status: resp.Status}
	var body struct {
		Error string `json:"error"`
	}
	if json.NewDecoder(resp.Body).Decode(&body) == nil {
		e.Message = body.Error
	}
	return e
}
