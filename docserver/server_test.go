// SPDX-FileCopyrightText: Copyright 2026 Pipewright Authors
// SPDX-License-Identifier: Apache-2.0

package docserver

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pipewright/pipewright-core/logging"
	"github.com/pipewright/pipewright-core/platforms"
	"github.com/pipewright/pipewright-core/prompts"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	catalog, err := platforms.Load()
	require.NoError(t, err)
	library, err := prompts.Load()
	require.NoError(t, err)

	srv, err := New(catalog, library, logging.New(logging.WithOutput(io.Discard)))
	require.NoError(t, err)
	return srv
}

func doRequest(t *testing.T, srv *Server, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	catalog, err := platforms.Load()
	require.NoError(t, err)
	library, err := prompts.Load()
	require.NoError(t, err)

	_, err = New(nil, library, nil)
	require.Error(t, err)

	_, err = New(catalog, nil, nil)
	require.Error(t, err)

	srv, err := New(catalog, library, nil)
	require.NoError(t, err)
	assert.NotNil(t, srv)
}

func TestHealthz(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestListPrompts(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	t.Run("all prompts", func(t *testing.T) {
		t.Parallel()
		rec := doRequest(t, srv, http.MethodGet, "/api/prompts")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var list []map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
		assert.NotEmpty(t, list)
		// Bodies stay out of the list response.
		assert.NotContains(t, list[0], "body")
	})

	t.Run("filtered by role", func(t *testing.T) {
		t.Parallel()
		rec := doRequest(t, srv, http.MethodGet, "/api/prompts?role=code-reviewer")
		assert.Equal(t, http.StatusOK, rec.Code)

		var list []map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
		require.Len(t, list, 1)
		assert.Equal(t, "code-reviewer", list[0]["role"])
	})

	t.Run("unknown role gives empty array", func(t *testing.T) {
		t.Parallel()
		rec := doRequest(t, srv, http.MethodGet, "/api/prompts?role=astronaut")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "[]\n", rec.Body.String())
	})
}

func TestGetPrompt(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	t.Run("known prompt includes body", func(t *testing.T) {
		t.Parallel()
		rec := doRequest(t, srv, http.MethodGet, "/api/prompts/code-reviewer")
		assert.Equal(t, http.StatusOK, rec.Code)

		var got map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "code-reviewer", got["name"])
		assert.NotEmpty(t, got["body"])
	})

	t.Run("unknown prompt", func(t *testing.T) {
		t.Parallel()
		rec := doRequest(t, srv, http.MethodGet, "/api/prompts/no-such-prompt")
		assert.Equal(t, http.StatusNotFound, rec.Code)

		var got map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Contains(t, got["error"], "not found")
	})
}

func TestListPlatforms(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	t.Run("all platforms", func(t *testing.T) {
		t.Parallel()
		rec := doRequest(t, srv, http.MethodGet, "/api/platforms")
		assert.Equal(t, http.StatusOK, rec.Code)

		var list []map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
		assert.NotEmpty(t, list)
	})

	t.Run("filtered by category", func(t *testing.T) {
		t.Parallel()
		rec := doRequest(t, srv, http.MethodGet, "/api/platforms?category=self-hosted")
		assert.Equal(t, http.StatusOK, rec.Code)

		var list []map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
		require.NotEmpty(t, list)
		for _, p := range list {
			assert.Equal(t, "self-hosted", p["category"])
		}
	})

	t.Run("unknown category gives empty array", func(t *testing.T) {
		t.Parallel()
		rec := doRequest(t, srv, http.MethodGet, "/api/platforms?category=mainframe")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "[]\n", rec.Body.String())
	})
}

func TestGetPlatform(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	t.Run("known platform", func(t *testing.T) {
		t.Parallel()
		rec := doRequest(t, srv, http.MethodGet, "/api/platforms/gitlab-ci")
		assert.Equal(t, http.StatusOK, rec.Code)

		var got map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, ".gitlab-ci.yml", got["config_file"])
	})

	t.Run("unknown platform", func(t *testing.T) {
		t.Parallel()
		rec := doRequest(t, srv, http.MethodGet, "/api/platforms/no-such-platform")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestMethodNotAllowed(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/platforms")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRequestLogging(t *testing.T) {
	t.Parallel()

	catalog, err := platforms.Load()
	require.NoError(t, err)
	library, err := prompts.Load()
	require.NoError(t, err)

	var buf bytes.Buffer
	srv, err := New(catalog, library, logging.New(logging.WithOutput(&buf)))
	require.NoError(t, err)

	doRequest(t, srv, http.MethodGet, "/healthz")

	assert.Contains(t, buf.String(), `"path":"/healthz"`)
	assert.Contains(t, buf.String(), `"status":200`)
}
