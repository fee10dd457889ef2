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
	stderrors "errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/coedit-team/coedit/api/types"
	"github.com/coedit-team/coedit/internal/validation"
	"github.com/coedit-team/coedit/pkg/errors"
	"github.com/coedit-team/coedit/server/auth"
	"github.com/coedit-team/coedit/server/backend/database"
	"github.com/coedit-team/coedit/server/documents"
	"github.com/coedit-team/coedit/server/logging"
)

type createDocumentRequest struct {
	Title   string `json:"title" validate:"required,max=255"`
	Content string `json:"content"`
}

type updateDocumentRequest struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
}

type shareDocumentRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type shareDocumentResponse struct {
	Message  string          `json:"message"`
	Document *types.Document `json:"document,omitempty"`
}

func docIDFromRequest(r *http.Request) (types.ID, error) {
	id := types.ID(mux.Vars(r)["id"])
	if err := id.Validate(); err != nil {
		return "", errors.InvalidArgument("invalid document id")
	}

	return id, nil
}

func (s *Server) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	identity, err := auth.From(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	req := createDocumentRequest{}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := validation.ValidateStruct(&req); err != nil {
		writeError(w, err)
		return
	}

	info, err := documents.Create(r.Context(), s.backend, identity, req.Title, req.Content)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, info.ToDocument())
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	identity, err := auth.From(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	infos, err := documents.ListVisible(r.Context(), s.backend, identity)
	if err != nil {
		writeError(w, err)
		return
	}

	docs := make([]*types.Document, 0, len(infos))
	for _, info := range infos {
		docs = append(docs, info.ToDocument())
	}

	writeJSON(w, http.StatusOK, docs)
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	identity, err := auth.From(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	docID, err := docIDFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	info, err := documents.Get(r.Context(), s.backend, identity, docID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, info.ToDocument())
}

func (s *Server) handleUpdateDocument(w http.ResponseWriter, r *http.Request) {
	identity, err := auth.From(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	docID, err := docIDFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	req := updateDocumentRequest{}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	info, err := documents.Update(r.Context(), s.backend, identity, docID, &database.UpdatableDocFields{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, info.ToDocument())
}

func (s *Server) handleRemoveDocument(w http.ResponseWriter, r *http.Request) {
	identity, err := auth.From(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	docID, err := docIDFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := documents.Remove(r.Context(), s.backend, identity, docID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleUploadAsset(w http.ResponseWriter, r *http.Request) {
	identity, err := auth.From(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	docID, err := docIDFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	name := mux.Vars(r)["name"]
	if err := documents.PutAsset(r.Context(), s.backend, identity, docID, name, r.Body); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleDownloadAsset(w http.ResponseWriter, r *http.Request) {
	identity, err := auth.From(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	docID, err := docIDFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	name := mux.Vars(r)["name"]
	rc, err := documents.GetAsset(r.Context(), s.backend, identity, docID, name)
	if err != nil {
		writeError(w, err)
		return
	}
	defer func() {
		_ = rc.Close()
	}()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		logging.From(r.Context()).Warnf("stream asset %s of %s: %v", name, docID, err)
	}
}

func (s *Server) handleShareDocument(w http.ResponseWriter, r *http.Request) {
	identity, err := auth.From(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	docID, err := docIDFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	req := shareDocumentRequest{}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := validation.ValidateStruct(&req); err != nil {
		writeError(w, err)
		return
	}

	info, err := documents.Share(r.Context(), s.backend, identity, docID, req.Email)
	if err != nil {
		// Sharing twice is reported as a success with notice so that
		// clients retrying a share do not surface an error to the user.
		if stderrors.Is(err, documents.ErrAlreadyShared) {
			writeJSON(w, http.StatusOK, shareDocumentResponse{
				Message: err.Error(),
			})
			return
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, shareDocumentResponse{
		Message:  "document shared",
		Document: info.ToDocument(),
	})
}
