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

// UserInfo is a structure representing information of a user.
type UserInfo struct {
	// ID is the unique ID of the user.
	ID types.ID `bson:"_id"`

	// Email is the email address of the user. It is unique.
	Email string `bson:"email"`

	// HashedPassword is the bcrypt hash of the user's password.
	HashedPassword string `bson:"hashed_password"`

	// DisplayName is the human-readable name of the user.
	DisplayName string `bson:"display_name"`

	// CreatedAt is the time when the user signed up.
	CreatedAt time.Time `bson:"created_at"`
}

// Identity returns the identity of this user.
func (info *UserInfo) Identity() types.Identity {
	return types.Identity{
		ID:          info.ID,
		Email:       info.Email,
		DisplayName: info.DisplayName,
	}
}

// DeepCopy creates a deep copy of this UserInfo.
func (info *UserInfo) DeepCopy() *UserInfo {
	if info == nil {
		return nil
	}

	copied := *info
	return &copied
}
