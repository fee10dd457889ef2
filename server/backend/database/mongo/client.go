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

// Package mongo implements the database interface using MongoDB.
package mongo

import (
	"context"
	"errors"
	"fmt"
	gotime "time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/coedit-team/coedit/api/types"
	"github.com/coedit-team/coedit/server/backend/database"
)

// Client is a client that connects to MongoDB and reads or saves CoEdit data.
type Client struct {
	config *Config
	client *mongo.Client
}

// Dial creates an instance of Client and dials the given MongoDB.
func Dial(conf *Config) (*Client, error) {
	connTimeout, err := conf.ParseConnectionTimeout()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), connTimeout)
	defer cancel()

	client, err := mongo.Connect(options.Client().ApplyURI(conf.ConnectionURI))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}

	pingTimeout, err := conf.ParsePingTimeout()
	if err != nil {
		return nil, err
	}

	ctxPing, cancelPing := context.WithTimeout(ctx, pingTimeout)
	defer cancelPing()

	if err := client.Ping(ctxPing, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", database.ErrStoreUnavailable)
	}

	if err := ensureIndexes(ctx, client.Database(conf.Database)); err != nil {
		return nil, err
	}

	return &Client{
		config: conf,
		client: client,
	}, nil
}

// Close all resources of this client.
func (c *Client) Close() error {
	if err := c.client.Disconnect(context.Background()); err != nil {
		return fmt.Errorf("disconnect from mongo: %w", err)
	}

	return nil
}

func (c *Client) collection(name string) *mongo.Collection {
	return c.client.Database(c.config.Database).Collection(name)
}

// CreateUserInfo creates a new user with the given email.
func (c *Client) CreateUserInfo(
	ctx context.Context,
	email, hashedPassword, displayName string,
) (*database.UserInfo, error) {
	info := &database.UserInfo{
		ID:             types.NewID(),
		Email:          email,
		HashedPassword: hashedPassword,
		DisplayName:    displayName,
		CreatedAt:      gotime.Now(),
	}

	if _, err := c.collection(ColUsers).InsertOne(ctx, info); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, database.ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	return info, nil
}

// FindUserInfoByID returns a user by the given ID.
func (c *Client) FindUserInfoByID(ctx context.Context, id types.ID) (*database.UserInfo, error) {
	info := &database.UserInfo{}
	if err := c.collection(ColUsers).FindOne(ctx, bson.M{
		"_id": id,
	}).Decode(info); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", id, database.ErrUserNotFound)
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}

	return info, nil
}

// FindUserInfoByEmail returns a user by the given email.
func (c *Client) FindUserInfoByEmail(ctx context.Context, email string) (*database.UserInfo, error) {
	info := &database.UserInfo{}
	if err := c.collection(ColUsers).FindOne(ctx, bson.M{
		"email": email,
	}).Decode(info); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", email, database.ErrUserNotFound)
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}

	return info, nil
}

// UpdateUserInfo updates the display name of the user.
func (c *Client) UpdateUserInfo(
	ctx context.Context,
	id types.ID,
	displayName string,
) (*database.UserInfo, error) {
	info := &database.UserInfo{}
	if err := c.collection(ColUsers).FindOneAndUpdate(ctx, bson.M{
		"_id": id,
	}, bson.M{
		"$set": bson.M{"display_name": displayName},
	}, options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(info); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", id, database.ErrUserNotFound)
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	return info, nil
}

// CreateDocInfo creates a new document owned by the given user.
func (c *Client) CreateDocInfo(
	ctx context.Context,
	owner types.ID,
	title, content string,
) (*database.DocInfo, error) {
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

	if _, err := c.collection(ColDocuments).InsertOne(ctx, info); err != nil {
		return nil, fmt.Errorf("insert document: %w", err)
	}

	return info, nil
}

// FindDocInfoByID returns a document by the given ID.
func (c *Client) FindDocInfoByID(ctx context.Context, id types.ID) (*database.DocInfo, error) {
	info := &database.DocInfo{}
	if err := c.collection(ColDocuments).FindOne(ctx, bson.M{
		"_id": id,
	}).Decode(info); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", id, database.ErrDocumentNotFound)
		}
		return nil, fmt.Errorf("find document by id: %w", err)
	}

	return info, nil
}

// UpdateDocInfo applies the given fields to the document. The $set and $inc
// run in a single conditional update against the store, so concurrent
// editors never lose a version increment.
func (c *Client) UpdateDocInfo(
	ctx context.Context,
	id types.ID,
	fields *database.UpdatableDocFields,
) (*database.DocInfo, error) {
	set := bson.M{"updated_at": gotime.Now()}
	if fields.Title != nil {
		set["title"] = *fields.Title
	}
	if fields.Content != nil {
		set["content"] = *fields.Content
	}

	info := &database.DocInfo{}
	if err := c.collection(ColDocuments).FindOneAndUpdate(ctx, bson.M{
		"_id": id,
	}, bson.M{
		"$set": set,
		"$inc": bson.M{"version": int64(1)},
	}, options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(info); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", id, database.ErrDocumentNotFound)
		}
		return nil, fmt.Errorf("update document: %w", err)
	}

	return info, nil
}

// RemoveDocInfo removes the document.
func (c *Client) RemoveDocInfo(ctx context.Context, id types.ID) error {
	res, err := c.collection(ColDocuments).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%s: %w", id, database.ErrDocumentNotFound)
	}

	return nil
}

// ListDocInfos returns the documents owned by the given user together with
// the documents shared with the given email.
func (c *Client) ListDocInfos(
	ctx context.Context,
	owner types.ID,
	email string,
) ([]*database.DocInfo, error) {
	cursor, err := c.collection(ColDocuments).Find(ctx, bson.M{
		"$or": bson.A{
			bson.M{"owner": owner},
			bson.M{"shared_with": email},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	var infos []*database.DocInfo
	if err := cursor.All(ctx, &infos); err != nil {
		return nil, fmt.Errorf("decode documents: %w", err)
	}

	return infos, nil
}

// AddSharedWith grants access to the grantee email.
func (c *Client) AddSharedWith(
	ctx context.Context,
	id types.ID,
	email string,
) (*database.DocInfo, error) {
	info := &database.DocInfo{}
	err := c.collection(ColDocuments).FindOneAndUpdate(ctx, bson.M{
		"_id":         id,
		"shared_with": bson.M{"$ne": email},
	}, bson.M{
		"$addToSet": bson.M{"shared_with": email},
	}, options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(info)
	if err == nil {
		return info, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("share document: %w", err)
	}

	// The filter missed either because the document does not exist or
	// because the email is already on the share list.
	if _, err := c.FindDocInfoByID(ctx, id); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("%s: %w", email, database.ErrAlreadyShared)
}

// CreateConnInfo records a live connection.
func (c *Client) CreateConnInfo(ctx context.Context, id types.ID) (*database.ConnInfo, error) {
	info := &database.ConnInfo{
		ID:          id,
		ConnectedAt: gotime.Now(),
	}

	if _, err := c.collection(ColConnections).UpdateOne(ctx, bson.M{
		"_id": id,
	}, bson.M{
		"$set": bson.M{"connected_at": info.ConnectedAt},
	}, options.UpdateOne().SetUpsert(true)); err != nil {
		return nil, fmt.Errorf("insert connection: %w", err)
	}

	return info, nil
}

// FindConnInfo returns the connection record of the given ID.
func (c *Client) FindConnInfo(ctx context.Context, id types.ID) (*database.ConnInfo, error) {
	info := &database.ConnInfo{}
	if err := c.collection(ColConnections).FindOne(ctx, bson.M{
		"_id": id,
	}).Decode(info); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", id, database.ErrConnectionNotFound)
		}
		return nil, fmt.Errorf("find connection by id: %w", err)
	}

	return info, nil
}

// RemoveConnInfo removes the connection record. Removing an absent
// connection is not an error.
func (c *Client) RemoveConnInfo(ctx context.Context, id types.ID) error {
	if _, err := c.collection(ColConnections).DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete connection: %w", err)
	}

	return nil
}

// CreateRoomMemberInfo adds the connection to the document room. The upsert
// keys on (doc_id, conn_id), so joining twice leaves a single membership.
// The connection check and the upsert are separate operations, so a
// disconnect landing between them can leave a membership behind; the
// broadcast-time prune removes such rows on first delivery.
func (c *Client) CreateRoomMemberInfo(
	ctx context.Context,
	docID, connID types.ID,
) (*database.RoomMemberInfo, error) {
	if _, err := c.FindConnInfo(ctx, connID); err != nil {
		return nil, err
	}

	filter := bson.M{
		"doc_id":  docID,
		"conn_id": connID,
	}

	if _, err := c.collection(ColRoomMembers).UpdateOne(ctx, filter, bson.M{
		"$setOnInsert": bson.M{"joined_at": gotime.Now()},
	}, options.UpdateOne().SetUpsert(true)); err != nil {
		return nil, fmt.Errorf("insert room member: %w", err)
	}

	info := &database.RoomMemberInfo{}
	if err := c.collection(ColRoomMembers).FindOne(ctx, filter).Decode(info); err != nil {
		return nil, fmt.Errorf("find room member: %w", err)
	}

	return info, nil
}

// RemoveRoomMemberInfo removes the connection from the document room.
// Leaving a room the connection is not in is not an error.
func (c *Client) RemoveRoomMemberInfo(ctx context.Context, docID, connID types.ID) error {
	if _, err := c.collection(ColRoomMembers).DeleteOne(ctx, bson.M{
		"doc_id":  docID,
		"conn_id": connID,
	}); err != nil {
		return fmt.Errorf("delete room member: %w", err)
	}

	return nil
}

// FindRoomMemberInfosByDocID returns the memberships of the given room.
func (c *Client) FindRoomMemberInfosByDocID(
	ctx context.Context,
	docID types.ID,
) ([]*database.RoomMemberInfo, error) {
	cursor, err := c.collection(ColRoomMembers).Find(ctx, bson.M{"doc_id": docID})
	if err != nil {
		return nil, fmt.Errorf("find room members by doc: %w", err)
	}

	var infos []*database.RoomMemberInfo
	if err := cursor.All(ctx, &infos); err != nil {
		return nil, fmt.Errorf("decode room members: %w", err)
	}

	return infos, nil
}

// FindRoomMemberInfosByConnID returns the memberships of the given
// connection across all rooms.
func (c *Client) FindRoomMemberInfosByConnID(
	ctx context.Context,
	connID types.ID,
) ([]*database.RoomMemberInfo, error) {
	cursor, err := c.collection(ColRoomMembers).Find(ctx, bson.M{"conn_id": connID})
	if err != nil {
		return nil, fmt.Errorf("find room members by conn: %w", err)
	}

	var infos []*database.RoomMemberInfo
	if err := cursor.All(ctx, &infos); err != nil {
		return nil, fmt.Errorf("decode room members: %w", err)
	}

	return infos, nil
}

// RemoveRoomMemberInfosByConnID removes the connection from every room it
// belongs to.
func (c *Client) RemoveRoomMemberInfosByConnID(ctx context.Context, connID types.ID) error {
	if _, err := c.collection(ColRoomMembers).DeleteMany(ctx, bson.M{
		"conn_id": connID,
	}); err != nil {
		return fmt.Errorf("delete room members by conn: %w", err)
	}

	return nil
}
