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

package database

import (
	"time"

	"github.com/coedit-team/coedit/api/types"
)

// RoomMemberInfo is a (document, connection) membership row. Membership never
// implies authorization by itself; the gate is checked at join time.
type RoomMemberInfo struct {
	// DocID is the ID of the document room.
	DocID types.ID `bson:"doc_id"`

	// ConnID is the ID of the member connection.
	ConnID types.ID `bson:"conn_id"`

	// JoinedAt is the time when the connection joined the room.
	JoinedAt time.Time `bson:"joined_at"`
}

// DeepCopy creates a deep copy of this RoomMemberInfo.
func (info *RoomMemberInfo) DeepCopy() *RoomMemberInfo {
	if info == nil {
		return nil
	}

	copied := *info
	return &copied
}
