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

package users_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/coedit-team/coedit/pkg/errors"
	"github.com/coedit-team/coedit/server/backend"
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

func TestUsers(t *testing.T) {
	ctx := context.Background()
	be := setupTestBackend(t)

	t.Run("sign up test", func(t *testing.T) {
		identity, err := users.SignUp(ctx, be, "alice@coedit.dev", "s3cret!", "Alice")
		assert.NoError(t, err)
		assert.Equal(t, "alice@coedit.dev", identity.Email)

		_, err = users.SignUp(ctx, be, "alice@coedit.dev", "other", "Alice Again")
		assert.True(t, errors.IsStatus(err, errors.CodeAlreadyExists))
	})

	t.Run("log in test", func(t *testing.T) {
		token, identity, err := users.LogIn(ctx, be, "alice@coedit.dev", "s3cret!")
		assert.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, "alice@coedit.dev", identity.Email)

		_, _, err = users.LogIn(ctx, be, "alice@coedit.dev", "wrong")
		assert.True(t, errors.IsStatus(err, errors.CodeUnauthenticated))

		_, _, err = users.LogIn(ctx, be, "nobody@coedit.dev", "s3cret!")
		assert.True(t, errors.IsStatus(err, errors.CodeUnauthenticated))
	})

	t.Run("verify token test", func(t *testing.T) {
		token, issued, err := users.LogIn(ctx, be, "alice@coedit.dev", "s3cret!")
		assert.NoError(t, err)

		verified, err := users.Verify(ctx, be, token)
		assert.NoError(t, err)
		assert.Equal(t, issued.ID, verified.ID)

		_, err = users.Verify(ctx, be, "garbage")
		assert.True(t, errors.IsStatus(err, errors.CodeUnauthenticated))
	})

	t.Run("update profile test", func(t *testing.T) {
		_, identity, err := users.LogIn(ctx, be, "alice@coedit.dev", "s3cret!")
		assert.NoError(t, err)

		updated, err := users.UpdateProfile(ctx, be, identity.ID, "Alice B.")
		assert.NoError(t, err)
		assert.Equal(t, "Alice B.", updated.DisplayName)

		profile, err := users.GetProfile(ctx, be, identity.ID)
		assert.NoError(t, err)
		assert.Equal(t, "Alice B.", profile.DisplayName)
	})
}
