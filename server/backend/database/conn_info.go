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

// ConnInfo is a structure representing a live transport connection. A record
// exists iff the transport channel is believed open; destruction cascades to
// removal from every room the connection belonged to.
type ConnInfo struct {
	// ID is the unique ID assigned by the transport layer at connect time.
	ID types.ID `bson:"_id"`

	// ConnectedAt is the time when the connection was established.
	ConnectedAt time.Time `bson:"connected_at"`
}

// DeepCopy creates a deep copy of this ConnInfo.
func (info *ConnInfo) DeepCopy() *ConnInfo {
	if info == nil {
		return nil
	}

	copied := *info
	return &copied
}
