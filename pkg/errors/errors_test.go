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

package errors_test

import (
	goerrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/coedit-team/coedit/pkg/errors"
)

func TestStatusError(t *testing.T) {
	t.Run("status code extraction test", func(t *testing.T) {
		err := errors.NotFound("document not found")
		assert.Equal(t, errors.CodeNotFound, errors.StatusOf(err))
		assert.Equal(t, "document not found", err.Error())
	})

	t.Run("wrapped error keeps status test", func(t *testing.T) {
		err := errors.PermissionDenied("only the owner can delete")
		wrapped := fmt.Errorf("delete document: %w", err)

		assert.Equal(t, errors.CodePermissionDenied, errors.StatusOf(wrapped))
		assert.True(t, errors.IsStatus(wrapped, errors.CodePermissionDenied))
		assert.True(t, goerrors.Is(wrapped, err))
	})

	t.Run("plain error has no status test", func(t *testing.T) {
		err := goerrors.New("plain")
		assert.Equal(t, errors.StatusCode(0), errors.StatusOf(err))
		assert.Equal(t, errors.StatusCode(0), errors.StatusOf(nil))
	})

	t.Run("client and server classification test", func(t *testing.T) {
		assert.True(t, errors.CodeNotFound.IsClientError())
		assert.True(t, errors.CodePermissionDenied.IsClientError())
		assert.False(t, errors.CodeNotFound.IsServerError())
		assert.True(t, errors.CodeUnavailable.IsServerError())
		assert.True(t, errors.CodeInternal.IsServerError())
	})

	t.Run("http status mapping test", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, errors.CodeNotFound.HTTPStatus())
		assert.Equal(t, http.StatusForbidden, errors.CodePermissionDenied.HTTPStatus())
		assert.Equal(t, http.StatusBadRequest, errors.CodeInvalidArgument.HTTPStatus())
		assert.Equal(t, http.StatusConflict, errors.CodeAlreadyExists.HTTPStatus())
		assert.Equal(t, http.StatusUnauthorized, errors.CodeUnauthenticated.HTTPStatus())
		assert.Equal(t, http.StatusServiceUnavailable, errors.CodeUnavailable.HTTPStatus())
		assert.Equal(t, http.StatusInternalServerError, errors.CodeInternal.HTTPStatus())
	})
}
