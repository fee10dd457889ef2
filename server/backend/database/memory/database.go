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

// Package memory implements the database interface using an in-memory
// database. It is used for standalone deployments and tests.
package memory

import (
	"context"
	"fmt"
	gotime "time"

	"github.com/hashicorp/go-memdb"

	"github.com/coedit-team/coedit/api/types"
	"github.com/coedit-team/coedit/server/backend/database"
)

// DB is an in-memory database for standalone deployments or tests.
type DB struct {
	db *memdb.MemDB
}

// New returns a new in-memory database.
func New() (*DB, error) {
	memDB, err := memdb.NewMemDB(schema)
	if err != nil {
		return nil, fmt.Errorf("new memdb: %w", err)
	}

	return &DB{
		db: memDB,
	}, nil
}

// Close closes the database.
func (d *DB) Close() error {
	return nil
}

// CreateUserInfo creates a new user with the given email.
func (d *DB) CreateUserInfo(
	_ context.Context,
	email, hashedPassword, displayName string,
) (*database.UserInfo, error) {
	txn := d.db.Txn(true)
	defer txn.Abort()

	existing, err := txn.First(tblUsers, "email", email)
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	if existing != nil {
		return nil, database.ErrUserAlreadyExists
	}

	info := &database.UserInfo{
		ID:             types.NewID(),
		Email:          email,
		HashedPassword: hashedPassword,
		DisplayName:    displayName,
		CreatedAt:      gotime.Now(),
	}

	if err := txn.Insert(tblUsers, info); err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	txn.Commit()
	return info.DeepCopy(), nil
}

// FindUserInfoByID returns a user by the given ID.
func (d *DB) FindUserInfoByID(_ context.Context, id types.ID) (*database.UserInfo, error) {
	txn := d.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(tblUsers, "id", id.String())
	if err != nil {
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%s: %w", id, database.ErrUserNotFound)
	}

	return raw.(*database.UserInfo).DeepCopy(), nil
}

// FindUserInfoByEmail returns a user by the given email.
func (d *DB) FindUserInfoByEmail(_ context.Context, email string) (*database.UserInfo, error) {
	txn := d.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(tblUsers, "email", email)
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%s: %w", email, database.ErrUserNotFound)
	}

	return raw.(*database.UserInfo).DeepCopy(), nil
}

// UpdateUserInfo updates the display name of the user.
func (d *DB) UpdateUserInfo(
	_ context.Context,
	id types.ID,
	displayName string,
) (*database.UserInfo, error) {
	txn := d.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First(tblUsers, "id", id.String())
	if err != nil {
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%s: %w", id, database.ErrUserNotFound)
	}

	info := raw.(*database.UserInfo).DeepCopy()
	info.DisplayName = displayName

	if err := txn.Insert(tblUsers, info); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	txn.Commit()
	return info.DeepCopy(), nil
}

// CreateDocInfo creates a new document owned by the given user.
func (d *DB) CreateDocInfo(
	_ context.Context,
	owner types.ID,
	title, content string,
) (*database.DocInfo, error) {
	txn := d.db.Txn(true)
	defer txn.Abort()

	now := gotime.Now()
	info := &database.DocInfo{
		ID:         types.NewID(),
		Title:      title,
		Content:    content,
		Owner:      owner,
		SharedWith: nil,
		Version:    1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := txn.Insert(tblDocuments, info); err != nil {
		return nil, fmt.Errorf("insert document: %w", err)
	}

	txn.Commit()
	return info.DeepCopy(), nil
}

// FindDocInfoByID returns a document by the given ID.
func (d *DB) FindDocInfoByID(_ context.Context, id types.ID) (*database.DocInfo, error) {
	txn := d.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(tblDocuments, "id", id.String())
	if err != nil {
		return nil, fmt.Errorf("find document by id: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%s: %w", id, database.ErrDocumentNotFound)
	}

	return raw.(*database.DocInfo).DeepCopy(), nil
}

// UpdateDocInfo applies the given fields to the document and advances the
// version counter by exactly 1. The read-modify-write happens inside a single
// write transaction, so concurrent updates cannot lose an increment.
func (d *DB) UpdateDocInfo(
	_ context.Context,
	id types.ID,
	fields *database.UpdatableDocFields,
) (*database.DocInfo, error) {
	txn := d.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First(tblDocuments, "id", id.String())
	if err != nil {
		return nil, fmt.Errorf("find document by id: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%s: %w", id, database.ErrDocumentNotFound)
	}

	info := raw.(*database.DocInfo).DeepCopy()
	if fields.Title != nil {
		info.Title = *fields.Title
	}
	if fields.Content != nil {
		info.Content = *fields.Content
	}
	info.Version++
	info.UpdatedAt = gotime.Now()

	if err := txn.Insert(tblDocuments, info); err != nil {
		return nil, fmt.Errorf("update document: %w", err)
	}

	txn.Commit()
	return info.DeepCopy(), nil
}

// RemoveDocInfo removes the document.
func (d *DB) RemoveDocInfo(_ context.Context, id types.ID) error {
	txn := d.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First(tblDocuments, "id", id.String())
	if err != nil {
		return fmt.Errorf("find document by id: %w", err)
	}
	if raw == nil {
		return fmt.Errorf("%s: %w", id, database.ErrDocumentNotFound)
	}

	if err := txn.Delete(tblDocuments, raw); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}

	txn.Commit()
	return nil
}

// ListDocInfos returns the documents owned by the given user together with
// the documents shared with the given email.
func (d *DB) ListDocInfos(
	_ context.Context,
	owner types.ID,
	email string,
) ([]*database.DocInfo, error) {
	txn := d.db.Txn(false)
	defer txn.Abort()

	var infos []*database.DocInfo

	iter, err := txn.Get(tblDocuments, "owner", owner.String())
	if err != nil {
		return nil, fmt.Errorf("list documents by owner: %w", err)
	}
	for raw := iter.Next(); raw != nil; raw = iter.Next() {
		infos = append(infos, raw.(*database.DocInfo).DeepCopy())
	}

	iter, err = txn.Get(tblDocuments, "id")
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	for raw := iter.Next(); raw != nil; raw = iter.Next() {
		info := raw.(*database.DocInfo)
		if info.Owner != owner && info.IsSharedWith(email) {
			infos = append(infos, info.DeepCopy())
		}
	}

	return infos, nil
}

// AddSharedWith grants access to the grantee email.
func (d *DB) AddSharedWith(
	_ context.Context,
	id types.ID,
	email string,
) (*database.DocInfo, error) {
	txn := d.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First(tblDocuments, "id", id.String())
	if err != nil {
		return nil, fmt.Errorf("find document by id: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%s: %w", id, database.ErrDocumentNotFound)
	}

	info := raw.(*database.DocInfo).DeepCopy()
	if info.IsSharedWith(email) {
		return nil, fmt.Errorf("%s: %w", email, database.ErrAlreadyShared)
	}
	info.SharedWith = append(info.SharedWith, email)

	if err := txn.Insert(tblDocuments, info); err != nil {
		return nil, fmt.Errorf("share document: %w", err)
	}

	txn.Commit()
	return info.DeepCopy(), nil
}

// CreateConnInfo records a live connection.
func (d *DB) CreateConnInfo(_ context.Context, id types.ID) (*database.ConnInfo, error) {
	txn := d.db.Txn(true)
	defer txn.Abort()

	info := &database.ConnInfo{
		ID:          id,
		ConnectedAt: gotime.Now(),
	}

	if err := txn.Insert(tblConnections, info); err != nil {
		return nil, fmt.Errorf("insert connection: %w", err)
	}

	txn.Commit()
	return info.DeepCopy(), nil
}

// FindConnInfo returns the connection record of the given ID.
func (d *DB) FindConnInfo(_ context.Context, id types.ID) (*database.ConnInfo, error) {
	txn := d.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(tblConnections, "id", id.String())
	if err != nil {
		return nil, fmt.Errorf("find connection by id: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%s: %w", id, database.ErrConnectionNotFound)
	}

	return raw.(*database.ConnInfo).DeepCopy(), nil
}

// RemoveConnInfo removes the connection record. Removing an absent
// connection is not an error.
func (d *DB) RemoveConnInfo(_ context.Context, id types.ID) error {
	txn := d.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First(tblConnections, "id", id.String())
	if err != nil {
		return fmt.Errorf("find connection by id: %w", err)
	}
	if raw == nil {
		return nil
	}

	if err := txn.Delete(tblConnections, raw); err != nil {
		return fmt.Errorf("delete connection: %w", err)
	}

	txn.Commit()
	return nil
}

// CreateRoomMemberInfo adds the connection to the document room. Joining a
// room the connection already belongs to returns the existing membership.
// The connection check and the insert share one write transaction, so a
// concurrent disconnect cannot slip between them and leave a membership
// behind for a gone connection.
func (d *DB) CreateRoomMemberInfo(
	_ context.Context,
	docID, connID types.ID,
) (*database.RoomMemberInfo, error) {
	txn := d.db.Txn(true)
	defer txn.Abort()

	conn, err := txn.First(tblConnections, "id", connID.String())
	if err != nil {
		return nil, fmt.Errorf("find connection by id: %w", err)
	}
	if conn == nil {
		return nil, fmt.Errorf("%s: %w", connID, database.ErrConnectionNotFound)
	}

	raw, err := txn.First(tblRoomMembers, "id", docID.String(), connID.String())
	if err != nil {
		return nil, fmt.Errorf("find room member: %w", err)
	}
	if raw != nil {
		return raw.(*database.RoomMemberInfo).DeepCopy(), nil
	}

	info := &database.RoomMemberInfo{
		DocID:    docID,
		ConnID:   connID,
		JoinedAt: gotime.Now(),
	}

	if err := txn.Insert(tblRoomMembers, info); err != nil {
		return nil, fmt.Errorf("insert room member: %w", err)
	}

	txn.Commit()
	return info.DeepCopy(), nil
}

// RemoveRoomMemberInfo removes the connection from the document room.
// Leaving a room the connection is not in is not an error.
func (d *DB) RemoveRoomMemberInfo(_ context.Context, docID, connID types.ID) error {
	txn := d.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First(tblRoomMembers, "id", docID.String(), connID.String())
	if err != nil {
		return fmt.Errorf("find room member: %w", err)
	}
	if raw == nil {
		return nil
	}

	if err := txn.Delete(tblRoomMembers, raw); err != nil {
		return fmt.Errorf("delete room member: %w", err)
	}

	txn.Commit()
	return nil
}

// FindRoomMemberInfosByDocID returns the memberships of the given room.
func (d *DB) FindRoomMemberInfosByDocID(
	_ context.Context,
	docID types.ID,
) ([]*database.RoomMemberInfo, error) {
	txn := d.db.Txn(false)
	defer txn.Abort()

	iter, err := txn.Get(tblRoomMembers, "doc_id", docID.String())
	if err != nil {
		return nil, fmt.Errorf("find room members by doc: %w", err)
	}

	var infos []*database.RoomMemberInfo
	for raw := iter.Next(); raw != nil; raw = iter.Next() {
		infos = append(infos, raw.(*database.RoomMemberInfo).DeepCopy())
	}

	return infos, nil
}

// FindRoomMemberInfosByConnID returns the memberships of the given
// connection across all rooms.
func (d *DB) FindRoomMemberInfosByConnID(
	_ context.Context,
	connID types.ID,
) ([]*database.RoomMemberInfo, error) {
	txn := d.db.Txn(false)
	defer txn.Abort()

	iter, err := txn.Get(tblRoomMembers, "conn_id", connID.String())
	if err != nil {
		return nil, fmt.Errorf("find room members by conn: %w", err)
	}

	var infos []*database.RoomMemberInfo
	for raw := iter.Next(); raw != nil; raw = iter.Next() {
		infos = append(infos, raw.(*database.RoomMemberInfo).DeepCopy())
	}

	return infos, nil
}

// RemoveRoomMemberInfosByConnID removes the connection from every room it
// belongs to.
func (d *DB) RemoveRoomMemberInfosByConnID(_ context.Context, connID types.ID) error {
	txn := d.db.Txn(true)
	defer txn.Abort()

	if _, err := txn.DeleteAll(tblRoomMembers, "conn_id", connID.String()); err != nil {
		return fmt.Errorf("delete room members by conn: %w", err)
	}

	txn.Commit()
	return nil
}
