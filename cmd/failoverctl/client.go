package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"gitlab.bluewillows.net/root/failoverctl/internal/health"
	"gitlab.bluewillows.net/root/failoverctl/pkg/httputil"
)

// Exit codes per spec.md §6.
const (
	exitSuccess         = 0
	exitGenericError    = 1
	exitSafetyRejection = 2
	exitRegistrarError  = 3
)

// adminClient talks to a running failoverctl serve process's admin HTTP
// endpoints, exposed on the same port as /health and /metrics.
type adminClient struct {
	baseURL string
	http    *http.Client
}

func newAdminClient(healthPort int) *adminClient {
	return &adminClient{
		baseURL: fmt.Sprintf("http://127.0.0.1:%d", healthPort),
		http:    httputil.NewClient(&httputil.ClientConfig{Timeout: 10 * time.Second}),
	}
}

func (c *adminClient) status() (health.StatusInfo, error) {
	resp, err := c.http.Get(c.baseURL + "/admin/status")
	if err != nil {
		return health.StatusInfo{}, fmt.Errorf("contacting failoverctl daemon: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return health.StatusInfo{}, adminHTTPError(resp)
	}

	var info health.StatusInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return health.StatusInfo{}, fmt.Errorf("decoding status response: %w", err)
	}
	return info, nil
}

func (c *adminClient) authorize() error {
	resp, err := c.http.Post(c.baseURL+"/admin/authorize", "application/json", nil)
	if err != nil {
		return fmt.Errorf("contacting failoverctl daemon: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		return adminHTTPError(resp)
	}
	return nil
}

func (c *adminClient) forceFailover(operatorID string) error {
	url := c.baseURL + "/admin/force-failover"
	if operatorID != "" {
		url += "?operator=" + operatorID
	}
	resp, err := c.http.Post(url, "application/json", nil)
	if err != nil {
		return fmt.Errorf("contacting failoverctl daemon: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		return adminHTTPError(resp)
	}
	return nil
}

// cliError pairs an error message with the exit code the CLI should use,
// preserving the admin endpoint's status-code classification across the
// HTTP boundary.
type cliError struct {
	exitCode int
	err      error
}

func (e *cliError) Error() string { return e.err.Error() }
func (e *cliError) Unwrap() error { return e.err }

func adminHTTPError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	msg := string(body)
	if msg == "" {
		msg = resp.Status
	}

	switch resp.StatusCode {
	case http.StatusConflict:
		return &cliError{exitCode: exitSafetyRejection, err: fmt.Errorf("%s", msg)}
	case http.StatusBadGateway:
		return &cliError{exitCode: exitRegistrarError, err: fmt.Errorf("%s", msg)}
	default:
		return &cliError{exitCode: exitGenericError, err: fmt.Errorf("%s", msg)}
	}
}

// exitCodeFor extracts the exit code a command's error should produce.
// Errors not originating from the admin HTTP boundary exit generically.
func exitCodeFor(err error) int {
	if err == nil {
		return exitSuccess
	}
	var ce *cliError
	if errors.As(err, &ce) {
		return ce.exitCode
	}
	return exitGenericError
}
