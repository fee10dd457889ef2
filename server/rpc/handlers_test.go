/*
 * Copyright 2026 The CoEdit Authors. All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package rpc_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/coedit-team/coedit/api/types"
	"github.com/coedit-team/coedit/server/backend"
	"github.com/coedit-team/coedit/server/profiling/prometheus"
	"github.com/coedit-team/coedit/server/rpc"
)

func setupTestServer(t *testing.T) (*rpc.Server, *backend.Backend) {
	t.Helper()

	conf := &backend.Config{
		SecretKey:     "test-secret",
		TokenDuration: "1h",
		AssetsPath:    t.TempDir(),
	}
	metrics, err := prometheus.NewMetrics()
	assert.NoError(t, err)

	be, err := backend.New(conf, nil, metrics)
	assert.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, be.Shutdown())
	})

	server, err := rpc.NewServer(&rpc.Config{Port: 0}, be)
	assert.NoError(t, err)
	return server, be
}

func doJSON(
	t *testing.T,
	handler http.Handler,
	method, path, token string,
	body any,
) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		assert.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeInto(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(v))
}

func signUpAndLogIn(t *testing.T, handler http.Handler, email string) string {
	t.Helper()

	rec := doJSON(t, handler, http.MethodPost, "/auth/signup", "", map[string]string{
		"email":       email,
		"password":    "password123",
		"displayName": "Tester",
	})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, handler, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    email,
		"password": "password123",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	session := struct {
		Token string `json:"token"`
	}{}
	decodeInto(t, rec, &session)
	assert.NotEmpty(t, session.Token)
	return session.Token
}

func TestAuthHandlers(t *testing.T) {
	server, _ := setupTestServer(t)
	handler := server.Handler()

	t.Run("sign up validation test", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodPost, "/auth/signup", "", map[string]string{
			"email":       "not-an-email",
			"password":    "password123",
			"displayName": "Tester",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = doJSON(t, handler, http.MethodPost, "/auth/signup", "", map[string]string{
			"email":       "short@coedit.dev",
			"password":    "short",
			"displayName": "Tester",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("duplicate sign up test", func(t *testing.T) {
		body := map[string]string{
			"email":       "dup@coedit.dev",
			"password":    "password123",
			"displayName": "Dup",
		}
		rec := doJSON(t, handler, http.MethodPost, "/auth/signup", "", body)
		assert.Equal(t, http.StatusCreated, rec.Code)

		rec = doJSON(t, handler, http.MethodPost, "/auth/signup", "", body)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("bad credentials test", func(t *testing.T) {
		token := signUpAndLogIn(t, handler, "creds@coedit.dev")
		assert.NotEmpty(t, token)

		rec := doJSON(t, handler, http.MethodPost, "/auth/login", "", map[string]string{
			"email":    "creds@coedit.dev",
			"password": "wrong-password",
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("profile test", func(t *testing.T) {
		token := signUpAndLogIn(t, handler, "profile@coedit.dev")

		rec := doJSON(t, handler, http.MethodGet, "/auth/profile", token, nil)
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = doJSON(t, handler, http.MethodPut, "/auth/profile", token, map[string]string{
			"displayName": "Renamed",
		})
		assert.Equal(t, http.StatusOK, rec.Code)

		profile := types.Identity{}
		decodeInto(t, rec, &profile)
		assert.Equal(t, "Renamed", profile.DisplayName)
	})

	t.Run("missing token test", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodGet, "/auth/profile", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestDocumentHandlers(t *testing.T) {
	server, _ := setupTestServer(t)
	handler := server.Handler()

	ownerToken := signUpAndLogIn(t, handler, "owner@coedit.dev")
	otherToken := signUpAndLogIn(t, handler, "other@coedit.dev")

	createDocument := func(t *testing.T, token, title string) types.Document {
		t.Helper()

		rec := doJSON(t, handler, http.MethodPost, "/documents", token, map[string]string{
			"title":   title,
			"content": "hello",
		})
		assert.Equal(t, http.StatusCreated, rec.Code)

		doc := types.Document{}
		decodeInto(t, rec, &doc)
		return doc
	}

	t.Run("create and get test", func(t *testing.T) {
		doc := createDocument(t, ownerToken, "Notes")
		assert.Equal(t, int64(1), doc.Version)

		rec := doJSON(t, handler, http.MethodGet, "/documents/"+string(doc.ID), ownerToken, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("update advances version test", func(t *testing.T) {
		doc := createDocument(t, ownerToken, "Draft")

		rec := doJSON(t, handler, http.MethodPatch, "/documents/"+string(doc.ID), ownerToken, map[string]string{
			"content": "v2",
		})
		assert.Equal(t, http.StatusOK, rec.Code)

		updated := types.Document{}
		decodeInto(t, rec, &updated)
		assert.Equal(t, int64(2), updated.Version)
		assert.Equal(t, "v2", updated.Content)
	})

	t.Run("stranger gets forbidden test", func(t *testing.T) {
		doc := createDocument(t, ownerToken, "Private")

		rec := doJSON(t, handler, http.MethodGet, "/documents/"+string(doc.ID), otherToken, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("missing document is not found test", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodGet, "/documents/"+string(types.NewID()), ownerToken, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("share flow test", func(t *testing.T) {
		doc := createDocument(t, ownerToken, "Shared")
		path := fmt.Sprintf("/documents/%s/share", doc.ID)

		rec := doJSON(t, handler, http.MethodPost, path, ownerToken, map[string]string{
			"email": "other@coedit.dev",
		})
		assert.Equal(t, http.StatusOK, rec.Code)

		// sharing twice is a success with notice, not an error
		rec = doJSON(t, handler, http.MethodPost, path, ownerToken, map[string]string{
			"email": "other@coedit.dev",
		})
		assert.Equal(t, http.StatusOK, rec.Code)

		resp := struct {
			Message string `json:"message"`
		}{}
		decodeInto(t, rec, &resp)
		assert.Contains(t, resp.Message, "already shared")

		// self-share is rejected
		rec = doJSON(t, handler, http.MethodPost, path, ownerToken, map[string]string{
			"email": "owner@coedit.dev",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		// a collaborator may now read
		rec = doJSON(t, handler, http.MethodGet, "/documents/"+string(doc.ID), otherToken, nil)
		assert.Equal(t, http.StatusOK, rec.Code)

		// but may not share onward
		rec = doJSON(t, handler, http.MethodPost, path, otherToken, map[string]string{
			"email": "third@coedit.dev",
		})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("asset round trip test", func(t *testing.T) {
		doc := createDocument(t, ownerToken, "Illustrated")
		path := fmt.Sprintf("/documents/%s/assets/diagram.png", doc.ID)

		req := httptest.NewRequest(http.MethodPut, path, strings.NewReader("png-bytes"))
		req.Header.Set("Authorization", "Bearer "+ownerToken)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		rec = doJSON(t, handler, http.MethodGet, path, ownerToken, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "png-bytes", rec.Body.String())

		rec = doJSON(t, handler, http.MethodGet, path, otherToken, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		missing := fmt.Sprintf("/documents/%s/assets/missing.bin", doc.ID)
		rec = doJSON(t, handler, http.MethodGet, missing, ownerToken, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("delete test", func(t *testing.T) {
		doc := createDocument(t, ownerToken, "Doomed")

		rec := doJSON(t, handler, http.MethodDelete, "/documents/"+string(doc.ID), otherToken, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = doJSON(t, handler, http.MethodDelete, "/documents/"+string(doc.ID), ownerToken, nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		rec = doJSON(t, handler, http.MethodGet, "/documents/"+string(doc.ID), ownerToken, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("list visible test", func(t *testing.T) {
		token := signUpAndLogIn(t, handler, "lister@coedit.dev")
		createDocument(t, token, "Mine")

		rec := doJSON(t, handler, http.MethodGet, "/documents", token, nil)
		assert.Equal(t, http.StatusOK, rec.Code)

		var docs []types.Document
		decodeInto(t, rec, &docs)
		assert.Len(t, docs, 1)
		assert.Equal(t, "Mine", docs[0].Title)
	})
}
