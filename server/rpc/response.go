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
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/coedit-team/coedit/internal/validation"
	"github.com/coedit-team/coedit/pkg/errors"
	"github.com/coedit-team/coedit/server/logging"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.DefaultLogger().Warnf("encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	var structErr *validation.StructError
	if stderrors.As(err, &structErr) {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Code:    errors.CodeInvalidArgument.String(),
			Message: structErr.Error(),
		})
		return
	}

	code := errors.StatusOf(err)
	if code == 0 {
		code = errors.CodeInternal
	}

	message := err.Error()
	if code.IsServerError() {
		logging.DefaultLogger().Errorf("internal error: %v", err)
		message = "internal error"
	}

	writeJSON(w, code.HTTPStatus(), errorResponse{
		Code:    code.String(),
		Message: message,
	})
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.InvalidArgument("invalid request body")
	}

	return nil
}
