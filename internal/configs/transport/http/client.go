package http

import (
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Opt configures a *resty.Client.
type Opt func(*resty.Client) error

// New creates a resty client for baseURL with the given options applied.
// baseURL may be empty when requests use absolute URLs.
func New(baseURL string, opts ...Opt) (*resty.Client, error) {
	client := resty.New()
	if baseURL != "" {
		client.SetBaseURL(baseURL)
	}

	for _, opt := range opts {
		if err := opt(client); err != nil {
			return nil, err
		}
	}

	return client, nil
}

// RetryPolicy describes the parameters for HTTP request retry logic.
type RetryPolicy struct {
	Count   int           // Number of retry attempts
	Wait    time.Duration // Wait time between retries
	MaxWait time.Duration // Maximum total wait time across retries
}

// WithRetryPolicy applies the first policy that has at least one positive field.
func WithRetryPolicy(policies ...RetryPolicy) Opt {
	return func(c *resty.Client) error {
		for _, policy := range policies {
			if policy.Count > 0 || policy.Wait > 0 || policy.MaxWait > 0 {
				if policy.Count > 0 {
					c.SetRetryCount(policy.Count)
				}
				if policy.Wait > 0 {
					c.SetRetryWaitTime(policy.Wait)
				}
				if policy.MaxWait > 0 {
					c.SetRetryMaxWaitTime(policy.MaxWait)
				}
				break
			}
		}
		return nil
	}
}

// WithTimeout sets the request timeout to the first positive duration.
func WithTimeout(timeouts ...time.Duration) Opt {
	return func(c *resty.Client) error {
		for _, t := range timeouts {
			if t > 0 {
				c.SetTimeout(t)
				break
			}
		}
		return nil
	}
}

// WithBasicAuth enables basic authentication when user is not blank.
// HAProxy stats pages protected by "stats auth" need it.
func WithBasicAuth(user, password string) Opt {
	return func(c *resty.Client) error {
		if strings.TrimSpace(user) == "" {
			return nil
		}
		c.SetBasicAuth(user, password)
		return nil
	}
}

// WithHeader sets a header on every request when value is not empty.
func WithHeader(name, value string) Opt {
	return func(c *resty.Client) error {
		if value != "" {
			c.SetHeader(name, value)
		}
		return nil
	}
}
