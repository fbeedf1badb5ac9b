// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rollbook Contributors

package auth

import (
	"bufio"
	"context"
	"crypto/sha1" //nolint:gosec // G505: the range-query protocol is defined over SHA-1
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/samber/oops"
)

// Breach-check defaults.
const (
	DefaultBreachBaseURL = "https://api.pwnedpasswords.com/range"
	DefaultBreachTimeout = 3 * time.Second

	breachPrefixLen = 5
)

// BreachChecker reports whether a password appears in a known-breach corpus.
type BreachChecker interface {
	// IsBreached returns whether password is present in the corpus. An error
	// means the check could not be completed; it is the caller's job to
	// decide whether that fails open or closed.
	IsBreached(ctx context.Context, password string) (bool, error)
}

// RangeClient queries a k-anonymity range endpoint: only the first five hex
// characters of the password's uppercase SHA-1 digest leave the process, the
// service returns every known suffix sharing that prefix, and the match is
// decided locally. The response body is a sequence of SUFFIX:COUNT lines.
type RangeClient struct {
	baseURL string
	client  *http.Client
}

// RangeClientOptions configures a RangeClient. Zero values take defaults.
type RangeClientOptions struct {
	// BaseURL is the range endpoint without a trailing slash.
	BaseURL string

	// Timeout bounds each query. The surrounding request context can cancel
	// earlier; whichever fires first aborts the in-flight call.
	Timeout time.Duration
}

// NewRangeClient creates a RangeClient.
func NewRangeClient(opts RangeClientOptions) *RangeClient {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBreachBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultBreachTimeout
	}
	return &RangeClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// IsBreached performs one range query. No retries: if the endpoint is down,
// the error surfaces immediately and the validator decides the outcome.
func (c *RangeClient) IsBreached(ctx context.Context, password string) (bool, error) {
	digest := sha1.Sum([]byte(password)) //nolint:gosec // G401: protocol-mandated digest
	hexDigest := strings.ToUpper(hex.EncodeToString(digest[:]))
	prefix, suffix := hexDigest[:breachPrefixLen], hexDigest[breachPrefixLen:]

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+prefix, nil)
	if err != nil {
		return false, oops.Code("BREACH_REQUEST_FAILED").Wrap(err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return false, oops.Code("BREACH_QUERY_FAILED").
			With("operation", "range query").
			Wrap(err)
	}
	defer resp.Body.Close() //nolint:errcheck // response body close on read path

	if resp.StatusCode != http.StatusOK {
		return false, oops.Code("BREACH_QUERY_FAILED").
			With("status", resp.StatusCode).
			Errorf("range endpoint returned status %d", resp.StatusCode)
	}

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		candidate, _, found := strings.Cut(line, ":")
		if !found {
			return false, oops.Code("BREACH_RESPONSE_INVALID").
				Errorf("malformed range response line")
		}
		if strings.EqualFold(candidate, suffix) {
			return true, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return false, oops.Code("BREACH_RESPONSE_INVALID").Wrap(err)
	}
	return false, nil
}

// Compile-time interface check.
var _ BreachChecker = (*RangeClient)(nil)
