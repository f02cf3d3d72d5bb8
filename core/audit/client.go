// Package audit — external audit service client.
// The service receives raw page HTML and returns the audit report JSON.
// Calls are retried a fixed number of times with a fixed delay; after the
// retry budget is exhausted the failure is terminal for the pipeline.
package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-hclog"

	"github.com/gaurav-prasanna/seopatch/core"
)

const (
	defaultRetryCount = 3
	defaultRetryWait  = 2 * time.Second
	defaultTimeout    = 60 * time.Second
)

// Client talks to the audit service over HTTP.
type Client struct {
	http    *resty.Client
	baseURL string
	logger  hclog.Logger
}

// NewClient creates a Client for the given audit service base URL.
func NewClient(baseURL string, logger hclog.Logger) *Client {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	http := resty.New().
		SetRetryCount(defaultRetryCount).
		SetRetryWaitTime(defaultRetryWait).
		SetRetryMaxWaitTime(defaultRetryWait).
		SetTimeout(defaultTimeout)
	http.AddRetryCondition(func(r *resty.Response, err error) bool {
		return err != nil || r.StatusCode() >= 500
	})

	return &Client{
		http:    http,
		baseURL: baseURL,
		logger:  logger,
	}
}

// auditRequest is the request body for the audit endpoint.
type auditRequest struct {
	HTML string `json:"html"`
}

// Audit submits the page HTML and returns the parsed report.
// A failure after all retries is returned as a StepError: callers must
// treat it as "analysis could not be performed".
func (c *Client) Audit(ctx context.Context, html string) (*core.AuditReport, error) {
	var report core.AuditReport

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(auditRequest{HTML: html}).
		SetResult(&report).
		Post(c.baseURL + "/audit-html")
	if err != nil {
		return nil, &core.StepError{Step: "audit", Err: err}
	}
	if resp.IsError() {
		return nil, &core.StepError{
			Step: "audit",
			Err:  fmt.Errorf("audit service returned %d", resp.StatusCode()),
		}
	}

	c.logger.Debug("audit report received", "audits", len(report.Audits), "score", report.Score)
	return &report, nil
}
