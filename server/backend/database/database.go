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

// Package database provides the database interface for the CoEdit backend.
// Every piece of session state — documents, users, connections and room
// memberships — is persisted here and reconstructed on demand; no component
// keeps in-memory authority over it.
package database

import (
	"context"

	"github.com/coedit-team/coedit/api/types"
	"github.com/coedit-team/coedit/pkg/errors"
)

var (
	// ErrUserNotFound is returned when the user could not be found.
	ErrUserNotFound = errors.NotFound("user not found")

	// ErrUserAlreadyExists is returned when a user with the email already exists.
	ErrUserAlreadyExists = errors.AlreadyExists("user already exists")

	// ErrDocumentNotFound is returned when the document could not be found.
	ErrDocumentNotFound = errors.NotFound("document not found")

	// ErrConnectionNotFound is returned when the connection could not be found.
	ErrConnectionNotFound = errors.NotFound("connection not found")

	// ErrAlreadyShared is returned when the document is already shared with
	// the grantee. It is a domain rejection, not a failure.
	ErrAlreadyShared = errors.FailedPrecond("document already shared")

	// ErrStoreUnavailable is returned when the durable store is unreachable.
	// It is surfaced to the caller as-is; retrying is the caller's decision.
	ErrStoreUnavailable = errors.Unavailable("store unavailable")
)

// Database persists CoEdit data. Implementations must be safe for concurrent
// use, and UpdateDocInfo must advance the version counter atomically against
// the store so that concurrent editors never lose an increment.
type Database interface {
	// Close closes all resources of this database.
	Close() error

	// CreateUserInfo creates a new user with the given email.
	CreateUserInfo(ctx context.Context, email, hashedPassword, displayName string) (*UserInfo, error)

	// FindUserInfoByID returns a user by the given ID.
	FindUserInfoByID(ctx context.Context, id types.ID) (*UserInfo, error)

	// FindUserInfoByEmail returns a user by the given email.
	FindUserInfoByEmail(ctx context.Context, email string) (*UserInfo, error)

	// UpdateUserInfo updates the display name of the user.
	UpdateUserInfo(ctx context.Context, id types.ID, displayName string) (*UserInfo, error)

	// CreateDocInfo creates a new document owned by the given user.
	CreateDocInfo(ctx context.Context, owner types.ID, title, content string) (*DocInfo, error)

	// FindDocInfoByID returns a document by the given ID.
	FindDocInfoByID(ctx context.Context, id types.ID) (*DocInfo, error)

	// UpdateDocInfo applies the given fields to the document. The new content
	// fully replaces the old; no field-level merge is performed. The version
	// counter advances by exactly 1 in the same store operation, regardless of
	// which subset of fields changed.
	UpdateDocInfo(ctx context.Context, id types.ID, fields *UpdatableDocFields) (*DocInfo, error)

	// RemoveDocInfo removes the document.
	RemoveDocInfo(ctx context.Context, id types.ID) error

	// ListDocInfos returns the documents owned by the given user together
	// with the documents shared with the given email.
	ListDocInfos(ctx context.Context, owner types.ID, email string) ([]*DocInfo, error)

	// AddSharedWith grants access to the grantee email. It returns
	// ErrAlreadyShared if the email is already on the share list.
	AddSharedWith(ctx context.Context, id types.ID, email string) (*DocInfo, error)

	// CreateConnInfo records a live connection. Re-creating an existing
	// connection refreshes its record.
	CreateConnInfo(ctx context.Context, id types.ID) (*ConnInfo, error)

	// FindConnInfo returns the connection record of the given ID.
	FindConnInfo(ctx context.Context, id types.ID) (*ConnInfo, error)

	// RemoveConnInfo removes the connection record. Removing an absent
	// connection is not an error.
	RemoveConnInfo(ctx context.Context, id types.ID) error

	// CreateRoomMemberInfo adds the connection to the document room. The
	// connection must have a record; ErrConnectionNotFound is returned
	// otherwise. Joining a room the connection already belongs to is a no-op.
	CreateRoomMemberInfo(ctx context.Context, docID, connID types.ID) (*RoomMemberInfo, error)

	// RemoveRoomMemberInfo removes the connection from the document room.
	// Leaving a room the connection is not in is not an error.
	RemoveRoomMemberInfo(ctx context.Context, docID, connID types.ID) error

	// FindRoomMemberInfosByDocID returns the memberships of the given room.
	FindRoomMemberInfosByDocID(ctx context.Context, docID types.ID) ([]*RoomMemberInfo, error)

	// FindRoomMemberInfosByConnID returns the memberships of the given
	// connection across all rooms.
	FindRoomMemberInfosByConnID(ctx context.Context, connID types.ID) ([]*RoomMemberInfo, error)

	// RemoveRoomMemberInfosByConnID removes the connection from every room it
	// belongs to. It is the cascade half of connection unregistration.
	RemoveRoomMemberInfosByConnID(ctx context.Context, connID types.ID) error
}
