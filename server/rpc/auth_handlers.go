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

	"github.com/coedit-team/coedit/api/types"
	"github.com/coedit-team/coedit/internal/validation"
	"github.com/coedit-team/coedit/server/auth"
	"github.com/coedit-team/coedit/server/users"
)

type signUpRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	DisplayName string `json:"displayName" validate:"required,max=100"`
}

type logInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type sessionResponse struct {
	Token string         `json:"token"`
	User  types.Identity `json:"user"`
}

type updateProfileRequest struct {
	DisplayName string `json:"displayName" validate:"required,max=100"`
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	req := signUpRequest{}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := validation.ValidateStruct(&req); err != nil {
		writeError(w, err)
		return
	}

	identity, err := users.SignUp(r.Context(), s.backend, req.Email, req.Password, req.DisplayName)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, identity)
}

func (s *Server) handleLogIn(w http.ResponseWriter, r *http.Request) {
	req := logInRequest{}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := validation.ValidateStruct(&req); err != nil {
		writeError(w, err)
		return
	}

	token, identity, err := users.LogIn(r.Context(), s.backend, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{Token: token, User: *identity})
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	identity, err := auth.From(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	profile, err := users.GetProfile(r.Context(), s.backend, identity.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	identity, err := auth.From(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	req := updateProfileRequest{}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := validation.ValidateStruct(&req); err != nil {
		writeError(w, err)
		return
	}

	profile, err := users.UpdateProfile(r.Context(), s.backend, identity.ID, req.DisplayName)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}
