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

package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/coedit-team/coedit/api/types"
	"github.com/coedit-team/coedit/pkg/errors"
	"github.com/coedit-team/coedit/server/auth"
)

func TestTokenManager(t *testing.T) {
	manager := auth.NewTokenManager("test-secret", time.Hour)

	identity := types.Identity{
		ID:          types.NewID(),
		Email:       "alice@coedit.dev",
		DisplayName: "Alice",
	}

	t.Run("issue and verify round trip test", func(t *testing.T) {
		token, err := manager.Issue(identity)
		assert.NoError(t, err)
		assert.NotEmpty(t, token)

		verified, err := manager.Verify(token)
		assert.NoError(t, err)
		assert.Equal(t, identity, verified)
	})

	t.Run("reject token signed with another key test", func(t *testing.T) {
		other := auth.NewTokenManager("other-secret", time.Hour)
		token, err := other.Issue(identity)
		assert.NoError(t, err)

		_, err = manager.Verify(token)
		assert.True(t, errors.IsStatus(err, errors.CodeUnauthenticated))
	})

	t.Run("reject expired token test", func(t *testing.T) {
		expired := auth.NewTokenManager("test-secret", -time.Minute)
		token, err := expired.Issue(identity)
		assert.NoError(t, err)

		_, err = manager.Verify(token)
		assert.True(t, errors.IsStatus(err, errors.CodeUnauthenticated))
	})

	t.Run("reject garbage token test", func(t *testing.T) {
		_, err := manager.Verify("not-a-token")
		assert.True(t, errors.IsStatus(err, errors.CodeUnauthenticated))
	})
}

func TestIdentityContext(t *testing.T) {
	identity := types.Identity{ID: types.NewID(), Email: "bob@coedit.dev"}

	t.Run("round trip test", func(t *testing.T) {
		ctx := auth.With(context.Background(), identity)
		got, err := auth.From(ctx)
		assert.NoError(t, err)
		assert.Equal(t, identity, got)
	})

	t.Run("missing identity test", func(t *testing.T) {
		_, err := auth.From(context.Background())
		assert.True(t, errors.IsStatus(err, errors.CodeUnauthenticated))
	})
}
