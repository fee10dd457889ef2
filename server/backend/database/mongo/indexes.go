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

package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	// ColUsers represents the users collection in the database.
	ColUsers = "users"
	// ColDocuments represents the documents collection in the database.
	ColDocuments = "documents"
	// ColConnections represents the connections collection in the database.
	ColConnections = "connections"
	// ColRoomMembers represents the room membership collection in the database.
	ColRoomMembers = "roommembers"
)

type collectionInfo struct {
	name    string
	indexes []mongo.IndexModel
}

var collectionInfos = []collectionInfo{
	{
		name: ColUsers,
		indexes: []mongo.IndexModel{{
			Keys:    bson.D{{Key: "email", Value: int32(1)}},
			Options: options.Index().SetUnique(true),
		}},
	},
	{
		name: ColDocuments,
		indexes: []mongo.IndexModel{{
			Keys: bson.D{{Key: "owner", Value: int32(1)}},
		}, {
			Keys: bson.D{{Key: "shared_with", Value: int32(1)}},
		}},
	},
	{
		name: ColRoomMembers,
		indexes: []mongo.IndexModel{{
			Keys: bson.D{
				{Key: "doc_id", Value: int32(1)},
				{Key: "conn_id", Value: int32(1)},
			},
			Options: options.Index().SetUnique(true),
		}, {
			Keys: bson.D{{Key: "conn_id", Value: int32(1)}},
		}},
	},
}

func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	for _, info := range collectionInfos {
		if len(info.indexes) == 0 {
			continue
		}

		if _, err := db.Collection(info.name).Indexes().CreateMany(ctx, info.indexes); err != nil {
			return fmt.Errorf("create indexes of %s: %w", info.name, err)
		}
	}

	return nil
}
