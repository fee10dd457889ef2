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

package documents_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/coedit-team/coedit/api/types"
	"github.com/coedit-team/coedit/pkg/errors"
	"github.com/coedit-team/coedit/server/backend"
	"github.com/coedit-team/coedit/server/backend/database"
	"github.com/coedit-team/coedit/server/documents"
	"github.com/coedit-team/coedit/server/profiling/prometheus"
	"github.com/coedit-team/coedit/server/users"
)

func setupTestBackend(t *testing.T) *backend.Backend {
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

	return be
}

func signUpUser(t *testing.T, be *backend.Backend, email, name string) types.Identity {
	t.Helper()

	identity, err := users.SignUp(context.Background(), be, email, "password", name)
	assert.NoError(t, err)
	return *identity
}

func TestDocuments(t *testing.T) {
	ctx := context.Background()
	be := setupTestBackend(t)

	owner := signUpUser(t, be, "owner@coedit.dev", "Owner")
	collaborator := signUpUser(t, be, "collab@coedit.dev", "Collaborator")
	stranger := signUpUser(t, be, "stranger@coedit.dev", "Stranger")

	t.Run("create and get test", func(t *testing.T) {
		info, err := documents.Create(ctx, be, owner, "Notes", "hello")
		assert.NoError(t, err)
		assert.Equal(t, int64(1), info.Version)

		found, err := documents.Get(ctx, be, owner, info.ID)
		assert.NoError(t, err)
		assert.Equal(t, "Notes", found.Title)
	})

	t.Run("missing document reported before permission test", func(t *testing.T) {
		_, err := documents.Get(ctx, be, stranger, types.NewID())
		assert.True(t, errors.IsStatus(err, errors.CodeNotFound))
	})

	t.Run("stranger cannot read test", func(t *testing.T) {
		info, err := documents.Create(ctx, be, owner, "Private", "")
		assert.NoError(t, err)

		_, err = documents.Get(ctx, be, stranger, info.ID)
		assert.True(t, errors.IsStatus(err, errors.CodePermissionDenied))
	})

	t.Run("share grants read and write test", func(t *testing.T) {
		info, err := documents.Create(ctx, be, owner, "Shared", "v1")
		assert.NoError(t, err)

		shared, err := documents.Share(ctx, be, owner, info.ID, collaborator.Email)
		assert.NoError(t, err)
		assert.True(t, shared.IsSharedWith(collaborator.Email))

		_, err = documents.Get(ctx, be, collaborator, info.ID)
		assert.NoError(t, err)

		content := "v2"
		updated, err := documents.Update(ctx, be, collaborator, info.ID, &database.UpdatableDocFields{
			Content: &content,
		})
		assert.NoError(t, err)
		assert.Equal(t, int64(2), updated.Version)
	})

	t.Run("self share rejected test", func(t *testing.T) {
		info, err := documents.Create(ctx, be, owner, "Mine", "")
		assert.NoError(t, err)

		_, err = documents.Share(ctx, be, owner, info.ID, owner.Email)
		assert.True(t, errors.IsStatus(err, errors.CodeInvalidArgument))
	})

	t.Run("sharing twice returns already shared test", func(t *testing.T) {
		info, err := documents.Create(ctx, be, owner, "Twice", "")
		assert.NoError(t, err)

		_, err = documents.Share(ctx, be, owner, info.ID, collaborator.Email)
		assert.NoError(t, err)

		_, err = documents.Share(ctx, be, owner, info.ID, collaborator.Email)
		assert.ErrorIs(t, err, documents.ErrAlreadyShared)
	})

	t.Run("only owner may share or delete test", func(t *testing.T) {
		info, err := documents.Create(ctx, be, owner, "Guarded", "")
		assert.NoError(t, err)
		_, err = documents.Share(ctx, be, owner, info.ID, collaborator.Email)
		assert.NoError(t, err)

		_, err = documents.Share(ctx, be, collaborator, info.ID, stranger.Email)
		assert.True(t, errors.IsStatus(err, errors.CodePermissionDenied))

		err = documents.Remove(ctx, be, collaborator, info.ID)
		assert.True(t, errors.IsStatus(err, errors.CodePermissionDenied))

		assert.NoError(t, documents.Remove(ctx, be, owner, info.ID))
		_, err = documents.Get(ctx, be, owner, info.ID)
		assert.True(t, errors.IsStatus(err, errors.CodeNotFound))
	})

	t.Run("empty update rejected test", func(t *testing.T) {
		info, err := documents.Create(ctx, be, owner, "Static", "")
		assert.NoError(t, err)

		_, err = documents.Update(ctx, be, owner, info.ID, &database.UpdatableDocFields{})
		assert.True(t, errors.IsStatus(err, errors.CodeInvalidArgument))
	})

	t.Run("asset round trip test", func(t *testing.T) {
		info, err := documents.Create(ctx, be, owner, "Illustrated", "")
		assert.NoError(t, err)

		err = documents.PutAsset(ctx, be, owner, info.ID, "notes.txt", strings.NewReader("attached"))
		assert.NoError(t, err)

		rc, err := documents.GetAsset(ctx, be, owner, info.ID, "notes.txt")
		assert.NoError(t, err)
		data, err := io.ReadAll(rc)
		assert.NoError(t, err)
		assert.NoError(t, rc.Close())
		assert.Equal(t, "attached", string(data))

		err = documents.PutAsset(ctx, be, stranger, info.ID, "evil.txt", strings.NewReader("x"))
		assert.True(t, errors.IsStatus(err, errors.CodePermissionDenied))

		_, err = documents.GetAsset(ctx, be, stranger, info.ID, "notes.txt")
		assert.True(t, errors.IsStatus(err, errors.CodePermissionDenied))

		_, err = documents.GetAsset(ctx, be, owner, info.ID, "missing.txt")
		assert.True(t, errors.IsStatus(err, errors.CodeNotFound))

		err = documents.PutAsset(ctx, be, owner, info.ID, "", strings.NewReader("x"))
		assert.True(t, errors.IsStatus(err, errors.CodeInvalidArgument))
	})

	t.Run("list visible test", func(t *testing.T) {
		lister := signUpUser(t, be, "lister@coedit.dev", "Lister")

		mine, err := documents.Create(ctx, be, lister, "Mine", "")
		assert.NoError(t, err)

		theirs, err := documents.Create(ctx, be, owner, "Theirs", "")
		assert.NoError(t, err)
		_, err = documents.Share(ctx, be, owner, theirs.ID, lister.Email)
		assert.NoError(t, err)

		_, err = documents.Create(ctx, be, owner, "Hidden", "")
		assert.NoError(t, err)

		infos, err := documents.ListVisible(ctx, be, lister)
		assert.NoError(t, err)

		ids := map[types.ID]bool{}
		for _, info := range infos {
			ids[info.ID] = true
		}
		assert.True(t, ids[mine.ID])
		assert.True(t, ids[theirs.ID])
		assert.Len(t, infos, 2)
	})
}
