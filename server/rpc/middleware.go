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

package rpc

import (
	"net/http"
	"strings"

	"github.com/coedit-team/coedit/pkg/errors"
	"github.com/coedit-team/coedit/server/auth"
	"github.com/coedit-team/coedit/server/users"
)

// bearerToken extracts the session token from the request. The Authorization
// header wins; a token query parameter is accepted for websocket clients
// that cannot set headers.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return token
	}

	return r.URL.Query().Get("token")
}

// withAuth verifies the session token and attaches the caller's identity to
// the request context.
func (s *Server) withAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, errors.Unauthenticated("missing token"))
			return
		}

		identity, err := users.Verify(r.Context(), s.backend, token)
		if err != nil {
			writeError(w, err)
			return
		}

		next(w, r.WithContext(auth.With(r.Context(), *identity)))
	}
}
