package driver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/datazip-inc/olake-clubspeed/constants"
	"github.com/datazip-inc/olake-clubspeed/utils/logger"
	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
)

const (
	apiPrefix         = "api/index.php/"
	authCheckResource = "payments"
)

var (
	retryWaitTime    = time.Second
	retryMaxWaitTime = 30 * time.Second
	keyParam         = regexp.MustCompile(`([?&]key=)[^&]*`)
)

// Transport issues one authenticated GET and returns the decoded JSON body.
//
// An HTTP 500 is reported as constants.ErrEmptyResult: the API answers 500
// for legitimately empty result sets.
type Transport interface {
	Get(ctx context.Context, rawURL string) (any, error)
}

// Client is the Clubspeed REST transport
type Client struct {
	config *Config
	client *resty.Client
}

func NewClient(config *Config) *Client {
	client := resty.New().
		SetTimeout(time.Duration(config.TimeoutSeconds)*time.Second).
		SetRetryCount(config.RetryCount).
		SetRetryWaitTime(retryWaitTime).
		SetRetryMaxWaitTime(retryMaxWaitTime).
		SetHeader("Accept", "application/json").
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			switch resp.StatusCode() {
			case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
				return true
			}
			return false
		}).
		AddRetryHook(func(resp *resty.Response, err error) {
			if resp != nil && resp.Request != nil {
				logger.Warnf("retrying GET %s, status[%s], err[%v]", redact(resp.Request.URL), resp.Status(), err)
				return
			}
			logger.Warnf("retrying GET, err[%v]", err)
		})

	return &Client{config: config, client: client}
}

// Endpoint builds the unpaginated, unfiltered URL of a resource
func (c *Client) Endpoint(path string) string {
	return fmt.Sprintf("https://%s.%s/%s%s.json?key=%s", c.config.Subdomain, c.config.Domain, apiPrefix, path, c.config.PrivateKey)
}

func (c *Client) Get(ctx context.Context, rawURL string) (any, error) {
	resp, err := c.client.R().SetContext(ctx).Get(escapeQuery(rawURL))
	if err != nil {
		return nil, fmt.Errorf("GET %s failed: %s", redact(rawURL), err)
	}

	switch {
	case resp.StatusCode() == http.StatusInternalServerError:
		logger.Debugf("GET %s returned 500, treating as empty result", redact(rawURL))
		return nil, constants.ErrEmptyResult
	case resp.IsError():
		return nil, fmt.Errorf("%w: GET %s returned %s: %s", constants.ErrNonRetryable, redact(rawURL), resp.Status(), truncate(resp.String(), 256))
	}

	var payload any
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return nil, fmt.Errorf("failed to decode response of %s: %s", redact(rawURL), err)
	}
	return payload, nil
}

// IsAuthorized requests the payments resource with the configured key
func (c *Client) IsAuthorized(ctx context.Context) error {
	_, err := c.Get(ctx, AddPagination(c.Endpoint(authCheckResource)))
	if err != nil && !errors.Is(err, constants.ErrEmptyResult) {
		return fmt.Errorf("failed to authorize against %s: %s", c.config.Subdomain, err)
	}
	return nil
}

// escapeQuery percent-encodes every query value in place, keeping parameter
// order; URLs are built unescaped so pagination can rewrite them textually
func escapeQuery(rawURL string) string {
	base, query, found := strings.Cut(rawURL, "?")
	if !found || query == "" {
		return rawURL
	}

	params := strings.Split(query, "&")
	for idx, param := range params {
		key, value, hasValue := strings.Cut(param, "=")
		if !hasValue {
			params[idx] = url.QueryEscape(key)
			continue
		}
		params[idx] = url.QueryEscape(key) + "=" + url.QueryEscape(value)
	}
	return base + "?" + strings.Join(params, "&")
}

func redact(rawURL string) string {
	return keyParam.ReplaceAllString(rawURL, "${1}****")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
