// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rollbook Contributors

package auth_test

import (
	"context"
	"crypto/sha1" //nolint:gosec // G505: building range-protocol fixtures
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rollbook/rollbook/internal/auth"
	"github.com/rollbook/rollbook/pkg/errutil"
)

// sha1Parts returns the uppercase SHA-1 prefix and suffix the range protocol
// splits a password's digest into.
func sha1Parts(password string) (prefix, suffix string) {
	digest := sha1.Sum([]byte(password)) //nolint:gosec // G401: protocol fixture
	hexDigest := strings.ToUpper(hex.EncodeToString(digest[:]))
	return hexDigest[:5], hexDigest[5:]
}

func TestRangeClientIsBreached(t *testing.T) {
	const password = "password123"
	prefix, suffix := sha1Parts(password)

	t.Run("matching suffix reports breached", func(t *testing.T) {
		var gotPath string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			fmt.Fprintf(w, "0018A45C4D1DEF81644B54AB7F969B88D65:3\r\n%s:42\r\nFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFF:1\r\n", suffix)
		}))
		defer srv.Close()

		client := auth.NewRangeClient(auth.RangeClientOptions{BaseURL: srv.URL})
		breached, err := client.IsBreached(context.Background(), password)
		require.NoError(t, err)
		assert.True(t, breached)
		assert.Equal(t, "/"+prefix, gotPath, "only the 5-character prefix may leave the process")
	})

	t.Run("suffix match is case-insensitive", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprintf(w, "%s:42\n", strings.ToLower(suffix))
		}))
		defer srv.Close()

		client := auth.NewRangeClient(auth.RangeClientOptions{BaseURL: srv.URL})
		breached, err := client.IsBreached(context.Background(), password)
		require.NoError(t, err)
		assert.True(t, breached)
	})

	t.Run("absent suffix reports clear", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, "0018A45C4D1DEF81644B54AB7F969B88D65:3\r\nFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFF:1\r\n")
		}))
		defer srv.Close()

		client := auth.NewRangeClient(auth.RangeClientOptions{BaseURL: srv.URL})
		breached, err := client.IsBreached(context.Background(), password)
		require.NoError(t, err)
		assert.False(t, breached)
	})

	t.Run("empty body reports clear", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
		defer srv.Close()

		client := auth.NewRangeClient(auth.RangeClientOptions{BaseURL: srv.URL})
		breached, err := client.IsBreached(context.Background(), password)
		require.NoError(t, err)
		assert.False(t, breached)
	})

	t.Run("non-200 status is an error, not a result", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		client := auth.NewRangeClient(auth.RangeClientOptions{BaseURL: srv.URL})
		breached, err := client.IsBreached(context.Background(), password)
		assert.False(t, breached)
		errutil.AssertErrorCode(t, err, "BREACH_QUERY_FAILED")
		errutil.AssertErrorContext(t, err, "status", http.StatusInternalServerError)
	})

	t.Run("malformed response line is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, "this line has no separator\n")
		}))
		defer srv.Close()

		client := auth.NewRangeClient(auth.RangeClientOptions{BaseURL: srv.URL})
		_, err := client.IsBreached(context.Background(), password)
		errutil.AssertErrorCode(t, err, "BREACH_RESPONSE_INVALID")
	})

	t.Run("unreachable endpoint is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
		srv.Close()

		client := auth.NewRangeClient(auth.RangeClientOptions{BaseURL: srv.URL})
		_, err := client.IsBreached(context.Background(), password)
		errutil.AssertErrorCode(t, err, "BREACH_QUERY_FAILED")
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))
		defer srv.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		client := auth.NewRangeClient(auth.RangeClientOptions{BaseURL: srv.URL})
		_, err := client.IsBreached(ctx, password)
		require.Error(t, err)
	})
}
