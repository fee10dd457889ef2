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

package authz_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/coedit-team/coedit/api/types"
	"github.com/coedit-team/coedit/pkg/errors"
	"github.com/coedit-team/coedit/server/authz"
	"github.com/coedit-team/coedit/server/backend/database"
)

func TestCanAccess(t *testing.T) {
	owner := types.Identity{ID: types.NewID(), Email: "owner@coedit.dev"}
	collaborator := types.Identity{ID: types.NewID(), Email: "collab@coedit.dev"}
	stranger := types.Identity{ID: types.NewID(), Email: "stranger@coedit.dev"}

	doc := &database.DocInfo{
		ID:         types.NewID(),
		Owner:      owner.ID,
		SharedWith: []string{collaborator.Email},
	}

	t.Run("owner may do anything test", func(t *testing.T) {
		for _, action := range []authz.Action{
			authz.ActionRead, authz.ActionWrite, authz.ActionShare, authz.ActionDelete,
		} {
			assert.True(t, authz.CanAccess(owner, doc, action), string(action))
		}
	})

	t.Run("collaborator may read and write only test", func(t *testing.T) {
		assert.True(t, authz.CanAccess(collaborator, doc, authz.ActionRead))
		assert.True(t, authz.CanAccess(collaborator, doc, authz.ActionWrite))
		assert.False(t, authz.CanAccess(collaborator, doc, authz.ActionShare))
		assert.False(t, authz.CanAccess(collaborator, doc, authz.ActionDelete))
	})

	t.Run("stranger may do nothing test", func(t *testing.T) {
		for _, action := range []authz.Action{
			authz.ActionRead, authz.ActionWrite, authz.ActionShare, authz.ActionDelete,
		} {
			assert.False(t, authz.CanAccess(stranger, doc, action), string(action))
		}
	})

	t.Run("verify returns permission denied test", func(t *testing.T) {
		assert.NoError(t, authz.Verify(owner, doc, authz.ActionDelete))

		err := authz.Verify(stranger, doc, authz.ActionRead)
		assert.True(t, errors.IsStatus(err, errors.CodePermissionDenied))
	})
}
