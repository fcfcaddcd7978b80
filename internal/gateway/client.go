package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/roster/internal/metrics"
	"github.com/shrimpsizemoose/roster/internal/models"
)

const (
	OpList   = "list"
	OpGet    = "get"
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
	OpSearch = "search"
)

// RemoteError is returned for transport failures and non-2xx responses.
// Status is zero when no response was received.
type RemoteError struct {
	Op     string
	Status int
	Err    error
}

func (e *RemoteError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s failed with status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

var ErrUnexpectedStatus = errors.New("unexpected response status")

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid api base url %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("api base url %q must be absolute", baseURL)
	}
	return &Client{
		baseURL: u.String(),
		http:    &http.Client{Timeout: timeout},
	}, nil
}

// WithHTTPClient swaps the underlying transport, mostly for tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.http = hc
	return c
}

func (c *Client) List(ctx context.Context) ([]models.Student, error) {
	var students []models.Student
	if err := c.do(ctx, OpList, http.MethodGet, "/", nil, nil, &students); err != nil {
		return nil, err
	}
	return students, nil
}

func (c *Client) Get(ctx context.Context, id string) (*models.Student, error) {
	var student models.Student
	if err := c.do(ctx, OpGet, http.MethodGet, studentPath(id), nil, nil, &student); err != nil {
		return nil, err
	}
	return &student, nil
}

func (c *Client) Create(ctx context.Context, s *models.Student) (*models.Student, error) {
	var created models.Student
	if err := c.do(ctx, OpCreate, http.MethodPost, "/api/students", nil, s, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) Update(ctx context.Context, id string, s *models.Student) (*models.Student, error) {
	var updated models.Student
	if err := c.do(ctx, OpUpdate, http.MethodPut, studentPath(id), nil, s, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete accepts both 204 and a 2xx response carrying any JSON body.
func (c *Client) Delete(ctx context.Context, id string) error {
	var ignored json.RawMessage
	return c.do(ctx, OpDelete, http.MethodDelete, studentPath(id), nil, nil, &ignored)
}

func (c *Client) Search(ctx context.Context, query string) ([]models.Student, error) {
	var students []models.Student
	q := url.Values{"q": []string{query}}
	if err := c.do(ctx, OpSearch, http.MethodGet, "/api/search", q, nil, &students); err != nil {
		return nil, err
	}
	return students, nil
}

func studentPath(id string) string {
	return "/api/students/" + url.PathEscape(id)
}

func (c *Client) endpoint(path string, query url.Values) string {
	target := c.baseURL + path
	if query != nil {
		// spaces go out as %20, not +
		target += "?" + strings.ReplaceAll(query.Encode(), "+", "%20")
	}
	return target
}

func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, in, out interface{}) (err error) {
	start := time.Now()
	status := 0
	defer func() {
		metrics.GatewayRequestDuration.WithLabelValues(op, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
	}()

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return &RemoteError{Op: op, Err: fmt.Errorf("failed to encode request: %w", err)}
		}
		body = bytes.NewReader(payload)
	}

	target := c.endpoint(path, query)
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return &RemoteError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	logger.Debug.Printf("%s %s", method, target)
	resp, err := c.http.Do(req)
	if err != nil {
		return &RemoteError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	status = resp.StatusCode

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &RemoteError{Op: op, Status: status, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if status < 200 || status > 299 {
		return &RemoteError{Op: op, Status: status, Err: fmt.Errorf("%w: %s", ErrUnexpectedStatus, strings.TrimSpace(string(data)))}
	}

	if status == http.StatusNoContent || len(bytes.TrimSpace(data)) == 0 {
		if op == OpDelete {
			return nil
		}
		return &RemoteError{Op: op, Status: status, Err: errors.New("empty response body")}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return &RemoteError{Op: op, Status: status, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}
