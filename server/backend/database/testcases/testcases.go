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

// Package testcases contains testcases for database. It is used by database
// implementations to test their own implementations with the same testcases.
package testcases

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/coedit-team/coedit/api/types"
	"github.com/coedit-team/coedit/server/backend/database"
)

func emailOf(t *testing.T, who string) string {
	return fmt.Sprintf("%s-%s@coedit.dev", t.Name(), who)
}

// RunUserInfoTest runs the UserInfo tests for the given db.
func RunUserInfoTest(t *testing.T, db database.Database) {
	t.Run("create and find user test", func(t *testing.T) {
		ctx := context.Background()
		email := emailOf(t, "alice")

		info, err := db.CreateUserInfo(ctx, email, "hashed", "Alice")
		assert.NoError(t, err)
		assert.Equal(t, email, info.Email)
		assert.False(t, info.CreatedAt.IsZero())

		found, err := db.FindUserInfoByEmail(ctx, email)
		assert.NoError(t, err)
		assert.Equal(t, info.ID, found.ID)

		found, err = db.FindUserInfoByID(ctx, info.ID)
		assert.NoError(t, err)
		assert.Equal(t, "Alice", found.DisplayName)
	})

	t.Run("duplicate email test", func(t *testing.T) {
		ctx := context.Background()
		email := emailOf(t, "dup")

		_, err := db.CreateUserInfo(ctx, email, "hashed", "First")
		assert.NoError(t, err)

		_, err = db.CreateUserInfo(ctx, email, "hashed", "Second")
		assert.ErrorIs(t, err, database.ErrUserAlreadyExists)
	})

	t.Run("update display name test", func(t *testing.T) {
		ctx := context.Background()

		info, err := db.CreateUserInfo(ctx, emailOf(t, "bob"), "hashed", "Bob")
		assert.NoError(t, err)

		updated, err := db.UpdateUserInfo(ctx, info.ID, "Bob B.")
		assert.NoError(t, err)
		assert.Equal(t, "Bob B.", updated.DisplayName)

		found, err := db.FindUserInfoByID(ctx, info.ID)
		assert.NoError(t, err)
		assert.Equal(t, "Bob B.", found.DisplayName)
	})

	t.Run("user not found test", func(t *testing.T) {
		ctx := context.Background()

		_, err := db.FindUserInfoByID(ctx, types.NewID())
		assert.ErrorIs(t, err, database.ErrUserNotFound)

		_, err = db.FindUserInfoByEmail(ctx, emailOf(t, "nobody"))
		assert.ErrorIs(t, err, database.ErrUserNotFound)

		_, err = db.UpdateUserInfo(ctx, types.NewID(), "Ghost")
		assert.ErrorIs(t, err, database.ErrUserNotFound)
	})
}

// RunDocInfoTest runs the DocInfo tests for the given db.
func RunDocInfoTest(t *testing.T, db database.Database) {
	ctx := context.Background()
	owner := types.NewID()

	t.Run("create document test", func(t *testing.T) {
		info, err := db.CreateDocInfo(ctx, owner, "Notes", "")
		assert.NoError(t, err)
		assert.Equal(t, int64(1), info.Version)
		assert.Equal(t, owner, info.Owner)

		found, err := db.FindDocInfoByID(ctx, info.ID)
		assert.NoError(t, err)
		assert.Equal(t, "Notes", found.Title)
	})

	t.Run("update advances version by exactly one test", func(t *testing.T) {
		info, err := db.CreateDocInfo(ctx, owner, "Draft", "v1")
		assert.NoError(t, err)

		title := "Renamed"
		updated, err := db.UpdateDocInfo(ctx, info.ID, &database.UpdatableDocFields{Title: &title})
		assert.NoError(t, err)
		assert.Equal(t, int64(2), updated.Version)
		assert.Equal(t, "Renamed", updated.Title)
		assert.Equal(t, "v1", updated.Content)

		content := "v2"
		updated, err = db.UpdateDocInfo(ctx, info.ID, &database.UpdatableDocFields{Content: &content})
		assert.NoError(t, err)
		assert.Equal(t, int64(3), updated.Version)
		assert.Equal(t, "v2", updated.Content)
	})

	t.Run("update missing document test", func(t *testing.T) {
		content := "orphan"
		_, err := db.UpdateDocInfo(ctx, types.NewID(), &database.UpdatableDocFields{Content: &content})
		assert.ErrorIs(t, err, database.ErrDocumentNotFound)
	})

	t.Run("remove document test", func(t *testing.T) {
		info, err := db.CreateDocInfo(ctx, owner, "Doomed", "")
		assert.NoError(t, err)

		assert.NoError(t, db.RemoveDocInfo(ctx, info.ID))
		_, err = db.FindDocInfoByID(ctx, info.ID)
		assert.ErrorIs(t, err, database.ErrDocumentNotFound)

		err = db.RemoveDocInfo(ctx, info.ID)
		assert.ErrorIs(t, err, database.ErrDocumentNotFound)
	})
}

// RunConcurrentUpdateDocInfoTest checks that no version increment is lost
// under concurrent updates to the same document.
func RunConcurrentUpdateDocInfoTest(t *testing.T, db database.Database) {
	t.Run("no lost increments under concurrent updates test", func(t *testing.T) {
		ctx := context.Background()

		info, err := db.CreateDocInfo(ctx, types.NewID(), "Contended", "")
		assert.NoError(t, err)

		const n = 50
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				content := "concurrent"
				_, err := db.UpdateDocInfo(ctx, info.ID, &database.UpdatableDocFields{Content: &content})
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		found, err := db.FindDocInfoByID(ctx, info.ID)
		assert.NoError(t, err)
		assert.Equal(t, int64(1+n), found.Version)
	})
}

// RunAddSharedWithTest runs the AddSharedWith tests for the given db.
func RunAddSharedWithTest(t *testing.T, db database.Database) {
	ctx := context.Background()

	t.Run("share document test", func(t *testing.T) {
		grantee := emailOf(t, "grantee")

		info, err := db.CreateDocInfo(ctx, types.NewID(), "Shared", "")
		assert.NoError(t, err)

		shared, err := db.AddSharedWith(ctx, info.ID, grantee)
		assert.NoError(t, err)
		assert.True(t, shared.IsSharedWith(grantee))

		_, err = db.AddSharedWith(ctx, info.ID, grantee)
		assert.ErrorIs(t, err, database.ErrAlreadyShared)
	})

	t.Run("share missing document test", func(t *testing.T) {
		_, err := db.AddSharedWith(ctx, types.NewID(), emailOf(t, "grantee"))
		assert.ErrorIs(t, err, database.ErrDocumentNotFound)
	})

	t.Run("share with second grantee test", func(t *testing.T) {
		first := emailOf(t, "first")
		second := emailOf(t, "second")

		info, err := db.CreateDocInfo(ctx, types.NewID(), "Popular", "")
		assert.NoError(t, err)

		_, err = db.AddSharedWith(ctx, info.ID, first)
		assert.NoError(t, err)

		shared, err := db.AddSharedWith(ctx, info.ID, second)
		assert.NoError(t, err)
		assert.True(t, shared.IsSharedWith(first))
		assert.True(t, shared.IsSharedWith(second))
	})
}

// RunListDocInfosTest runs the ListDocInfos tests for the given db.
func RunListDocInfosTest(t *testing.T, db database.Database) {
	t.Run("list visible documents test", func(t *testing.T) {
		ctx := context.Background()
		lister := types.NewID()
		other := types.NewID()
		listerEmail := emailOf(t, "lister")

		owned, err := db.CreateDocInfo(ctx, lister, "Mine", "")
		assert.NoError(t, err)

		foreign, err := db.CreateDocInfo(ctx, other, "Theirs", "")
		assert.NoError(t, err)
		_, err = db.AddSharedWith(ctx, foreign.ID, listerEmail)
		assert.NoError(t, err)

		_, err = db.CreateDocInfo(ctx, other, "Invisible", "")
		assert.NoError(t, err)

		infos, err := db.ListDocInfos(ctx, lister, listerEmail)
		assert.NoError(t, err)
		assert.Len(t, infos, 2)

		ids := map[types.ID]bool{}
		for _, info := range infos {
			ids[info.ID] = true
		}
		assert.True(t, ids[owned.ID])
		assert.True(t, ids[foreign.ID])
	})
}

// RunConnInfoTest runs the ConnInfo tests for the given db.
func RunConnInfoTest(t *testing.T, db database.Database) {
	t.Run("connection lifecycle test", func(t *testing.T) {
		ctx := context.Background()
		connID := types.NewID()

		info, err := db.CreateConnInfo(ctx, connID)
		assert.NoError(t, err)
		assert.False(t, info.ConnectedAt.IsZero())

		found, err := db.FindConnInfo(ctx, connID)
		assert.NoError(t, err)
		assert.Equal(t, connID, found.ID)

		assert.NoError(t, db.RemoveConnInfo(ctx, connID))
		_, err = db.FindConnInfo(ctx, connID)
		assert.ErrorIs(t, err, database.ErrConnectionNotFound)

		// unregistering an already-absent connection is not an error
		assert.NoError(t, db.RemoveConnInfo(ctx, connID))
	})
}

// RunRoomMemberInfoTest runs the RoomMemberInfo tests for the given db.
func RunRoomMemberInfoTest(t *testing.T, db database.Database) {
	ctx := context.Background()

	connect := func(t *testing.T) types.ID {
		t.Helper()
		connID := types.NewID()
		_, err := db.CreateConnInfo(ctx, connID)
		assert.NoError(t, err)
		return connID
	}

	t.Run("join requires connection record test", func(t *testing.T) {
		_, err := db.CreateRoomMemberInfo(ctx, types.NewID(), types.NewID())
		assert.ErrorIs(t, err, database.ErrConnectionNotFound)
	})

	t.Run("idempotent join and leave test", func(t *testing.T) {
		docID := types.NewID()
		connID := connect(t)

		first, err := db.CreateRoomMemberInfo(ctx, docID, connID)
		assert.NoError(t, err)

		again, err := db.CreateRoomMemberInfo(ctx, docID, connID)
		assert.NoError(t, err)
		assert.Equal(t, first.JoinedAt.Unix(), again.JoinedAt.Unix())

		members, err := db.FindRoomMemberInfosByDocID(ctx, docID)
		assert.NoError(t, err)
		assert.Len(t, members, 1)

		assert.NoError(t, db.RemoveRoomMemberInfo(ctx, docID, connID))
		assert.NoError(t, db.RemoveRoomMemberInfo(ctx, docID, connID))

		members, err = db.FindRoomMemberInfosByDocID(ctx, docID)
		assert.NoError(t, err)
		assert.Len(t, members, 0)
	})

	t.Run("bidirectional lookup test", func(t *testing.T) {
		docA := types.NewID()
		docB := types.NewID()
		conn1 := connect(t)
		conn2 := connect(t)

		_, err := db.CreateRoomMemberInfo(ctx, docA, conn1)
		assert.NoError(t, err)
		_, err = db.CreateRoomMemberInfo(ctx, docB, conn1)
		assert.NoError(t, err)
		_, err = db.CreateRoomMemberInfo(ctx, docA, conn2)
		assert.NoError(t, err)

		members, err := db.FindRoomMemberInfosByDocID(ctx, docA)
		assert.NoError(t, err)
		assert.Len(t, members, 2)

		rooms, err := db.FindRoomMemberInfosByConnID(ctx, conn1)
		assert.NoError(t, err)
		assert.Len(t, rooms, 2)
	})

	t.Run("cascade removal by connection test", func(t *testing.T) {
		docA := types.NewID()
		docB := types.NewID()
		conn1 := connect(t)
		conn2 := connect(t)

		_, err := db.CreateRoomMemberInfo(ctx, docA, conn1)
		assert.NoError(t, err)
		_, err = db.CreateRoomMemberInfo(ctx, docB, conn1)
		assert.NoError(t, err)
		_, err = db.CreateRoomMemberInfo(ctx, docA, conn2)
		assert.NoError(t, err)

		assert.NoError(t, db.RemoveRoomMemberInfosByConnID(ctx, conn1))

		rooms, err := db.FindRoomMemberInfosByConnID(ctx, conn1)
		assert.NoError(t, err)
		assert.Len(t, rooms, 0)

		members, err := db.FindRoomMemberInfosByDocID(ctx, docA)
		assert.NoError(t, err)
		assert.Len(t, members, 1)
		assert.Equal(t, conn2, members[0].ConnID)
	})
}
