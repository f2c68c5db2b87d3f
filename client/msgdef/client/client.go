package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	"github.com/wkalt/msgdef/catalog"
	"github.com/wkalt/msgdef/registry"
	"github.com/wkalt/msgdef/routes"
	"github.com/wkalt/msgdef/util/httputil"
	"github.com/wkalt/msgdef/util/ros1msg"
)

/*
Client is a thin wrapper over the msgdef HTTP API. Error responses from the
server are returned as APIError, which carries the status code and the
optional detail line reported by the codec.
*/

////////////////////////////////////////////////////////////////////////////////

// APIError is an error response from the server.
type APIError struct {
	StatusCode int
	Message    string
	Details    string
}

func (e APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.StatusCode, e.Message)
}

// Detail returns the detail message of the error, if any.
func (e APIError) Detail() string {
	return e.Details
}

// Client calls a msgdef server.
type Client struct {
	serverURL string
	httpc     *http.Client
}

// New constructs a client for the server at serverURL.
func New(serverURL string) *Client {
	return &Client{
		serverURL: serverURL,
		httpc:     &http.Client{Timeout: 30 * time.Second},
	}
}

// Encode renders a sequence as canonical text.
func (c *Client) Encode(ctx context.Context, seq ros1msg.Sequence) (string, error) {
	resp := routes.EncodeResponse{}
	if err := c.do(ctx, http.MethodPost, "/encode", routes.EncodeRequest{Definitions: seq}, &resp); err != nil {
		return "", err
	}
	return resp.Text, nil
}

// Decode parses definition text. If lenient is set the server accepts
// human-authored text.
func (c *Client) Decode(ctx context.Context, text string, lenient bool) (ros1msg.Sequence, error) {
	resp := routes.DecodeResponse{}
	req := routes.DecodeRequest{Text: text, Lenient: lenient}
	if err := c.do(ctx, http.MethodPost, "/decode", req, &resp); err != nil {
		return nil, err
	}
	return resp.Definitions, nil
}

// MD5Sum computes the ROS MD5 sum of a type from its concatenated definition.
func (c *Client) MD5Sum(ctx context.Context, name string, text string) (string, error) {
	resp := routes.MD5SumResponse{}
	if err := c.do(ctx, http.MethodPost, "/md5sum", routes.MD5SumRequest{Name: name, Text: text}, &resp); err != nil {
		return "", err
	}
	return resp.MD5Sum, nil
}

// Types lists the types known to the server's registry.
func (c *Client) Types(ctx context.Context) ([]string, error) {
	names := []string{}
	if err := c.do(ctx, http.MethodGet, "/types", nil, &names); err != nil {
		return nil, err
	}
	return names, nil
}

// Definition returns the flattened definition of a registered type.
func (c *Client) Definition(ctx context.Context, name string) (*registry.Definition, error) {
	def := &registry.Definition{}
	if err := c.do(ctx, http.MethodGet, "/types/"+name+"/definition", nil, def); err != nil {
		return nil, err
	}
	return def, nil
}

// History lists the recorded definitions of a type, oldest first.
func (c *Client) History(ctx context.Context, name string) ([]catalog.Entry, error) {
	entries := []catalog.Entry{}
	if err := c.do(ctx, http.MethodGet, "/types/"+name+"/history", nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// PutDefinition submits a concatenated definition for storage.
func (c *Client) PutDefinition(ctx context.Context, name string, text string) (*routes.PutDefinitionResponse, error) {
	resp := &routes.PutDefinitionResponse{}
	req := routes.PutDefinitionRequest{Name: name, Text: text}
	if err := c.do(ctx, http.MethodPost, "/definitions", req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Changes lists the definitions first seen after since, grouped by type.
func (c *Client) Changes(ctx context.Context, since time.Time) ([]routes.TypeChanges, error) {
	changes := []routes.TypeChanges{}
	path := "/changes?since=" + url.QueryEscape(since.Format(time.RFC3339Nano))
	if err := c.do(ctx, http.MethodGet, path, nil, &changes); err != nil {
		return nil, err
	}
	return changes, nil
}

func (c *Client) do(ctx context.Context, method string, path string, body any, v any) error {
	var rd io.Reader
	if body != nil {
		buf := &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(body); err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		rd = buf
	}
	req, err := http.NewRequestWithContext(ctx, method, c.serverURL+path, rd)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		response := httputil.ErrorResponse{}
		if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
			return APIError{StatusCode: resp.StatusCode, Message: resp.Status}
		}
		return APIError{StatusCode: resp.StatusCode, Message: response.Error, Details: response.Detail}
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
