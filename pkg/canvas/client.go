package canvas

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const perPage = 100

// Client talks to the Canvas REST API on behalf of a single instructor token.
type Client struct {
	host  string // e.g. https://school.instructure.com
	token string
	http  *http.Client
	log   *zap.SugaredLogger
	sleep func(time.Duration)
}

func NewClient(host, token string, log *zap.SugaredLogger) *Client {
	return &Client{
		host:  strings.TrimRight(host, "/"),
		token: token,
		http:  &http.Client{Timeout: 60 * time.Second},
		log:   log,
		sleep: time.Sleep,
	}
}

// Host returns the instance base URL, without a trailing slash.
func (c *Client) Host() string {
	return c.host
}

// SpeedGraderURL builds the grade-review link shown after grading runs.
func (c *Client) SpeedGraderURL(courseID, assignmentID int) string {
	return fmt.Sprintf("%s/courses/%d/gradebook/speed_grader?assignment_id=%d", c.host, courseID, assignmentID)
}

// APIError is a non-2xx response from Canvas.
type APIError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *APIError) Error() string {
	body := e.Body
	if len(body) > 300 {
		body = body[:300] + "..."
	}
	return fmt.Sprintf("canvas: HTTP %d from %s: %s", e.StatusCode, e.URL, body)
}

// IsForbidden reports whether err is a 403 from Canvas. Bulk passes skip these.
func IsForbidden(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusForbidden
}

func (c *Client) url(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return c.host + "/" + strings.TrimLeft(path, "/")
}

// do performs one authenticated request, following Canvas throttling:
// a 429 sleeps for Retry-After seconds and retries the same request.
func (c *Client) do(ctx context.Context, method, rawurl string, contentType string, body []byte) (*http.Response, error) {
	for {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, rawurl, reader)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}

		res, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("canvas: %s %s: %w", method, rawurl, err)
		}

		if res.StatusCode == http.StatusTooManyRequests {
			retryAfter := 60
			if v, err := strconv.Atoi(res.Header.Get("Retry-After")); err == nil && v > 0 {
				retryAfter = v
			}
			_ = res.Body.Close()
			c.log.Warnw("rate limited", "retry_after_sec", retryAfter)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
			c.sleep(time.Duration(retryAfter) * time.Second)
			continue
		}

		if res.StatusCode < 200 || res.StatusCode > 299 {
			b, _ := io.ReadAll(res.Body)
			_ = res.Body.Close()
			return nil, &APIError{StatusCode: res.StatusCode, URL: rawurl, Body: string(b)}
		}
		return res, nil
	}
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	rawurl := c.url(path)
	if len(query) > 0 {
		rawurl += "?" + query.Encode()
	}
	res, err := c.do(ctx, http.MethodGet, rawurl, "", nil)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if out == nil {
		return nil
	}
	return json.NewDecoder(res.Body).Decode(out)
}

func (c *Client) putJSON(ctx context.Context, path string, payload interface{}, out interface{}) error {
	return c.sendJSON(ctx, http.MethodPut, path, payload, out)
}

func (c *Client) postJSON(ctx context.Context, path string, payload interface{}, out interface{}) error {
	return c.sendJSON(ctx, http.MethodPost, path, payload, out)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	res, err := c.do(ctx, method, c.url(path), "application/json", body)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if out == nil {
		return nil
	}
	return json.NewDecoder(res.Body).Decode(out)
}

// putForm sends a form-encoded PUT; several Canvas endpoints only accept
// bracketed form fields (assignment[published], module[name], ...).
func (c *Client) putForm(ctx context.Context, path string, form url.Values) error {
	res, err := c.do(ctx, http.MethodPut, c.url(path), "application/x-www-form-urlencoded", []byte(form.Encode()))
	if err != nil {
		return err
	}
	return res.Body.Close()
}

func (c *Client) delete(ctx context.Context, path string) error {
	res, err := c.do(ctx, http.MethodDelete, c.url(path), "", nil)
	if err != nil {
		return err
	}
	return res.Body.Close()
}

var nextLinkRe = regexp.MustCompile(`<([^>]+)>;\s*rel="next"`)

// nextPage extracts the rel="next" URL from a Link header, or "".
func nextPage(linkHeader string) string {
	m := nextLinkRe.FindStringSubmatch(linkHeader)
	if m == nil {
		return ""
	}
	return m[1]
}

// paginate GETs every page of a collection endpoint, handing each raw page
// body to onPage. The first request carries query plus per_page=100; follow-up
// requests use the server's own next links verbatim.
func (c *Client) paginate(ctx context.Context, path string, query url.Values, onPage func(body []byte) error) error {
	if query == nil {
		query = url.Values{}
	}
	query.Set("per_page", strconv.Itoa(perPage))
	rawurl := c.url(path) + "?" + query.Encode()

	for rawurl != "" {
		res, err := c.do(ctx, http.MethodGet, rawurl, "", nil)
		if err != nil {
			return err
		}
		body, err := io.ReadAll(res.Body)
		_ = res.Body.Close()
		if err != nil {
			return err
		}
		if err := onPage(body); err != nil {
			return err
		}
		rawurl = nextPage(res.Header.Get("Link"))
	}
	return nil
}
