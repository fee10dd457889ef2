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

// Package authz provides the access gate for documents. Every decision is
// derived from the document record itself, so the gate carries no state of
// its own.
package authz

import (
	"fmt"

	"github.com/coedit-team/coedit/api/types"
	"github.com/coedit-team/coedit/pkg/errors"
	"github.com/coedit-team/coedit/server/backend/database"
)

// Action represents an operation a caller wants to perform on a document.
type Action string

const (
	// ActionRead is reading the document contents or metadata.
	ActionRead Action = "read"
	// ActionWrite is mutating the document contents or title.
	ActionWrite Action = "write"
	// ActionShare is granting access to another user.
	ActionShare Action = "share"
	// ActionDelete is removing the document entirely.
	ActionDelete Action = "delete"
)

// CanAccess reports whether the given identity may perform the action on the
// document. Owners may do anything. Users on the share list may read and
// write but never share or delete.
func CanAccess(identity types.Identity, info *database.DocInfo, action Action) bool {
	if info.Owner == identity.ID {
		return true
	}

	switch action {
	case ActionRead, ActionWrite:
		return info.IsSharedWith(identity.Email)
	default:
		return false
	}
}

// Verify returns a permission-denied error unless the identity may perform
// the action on the document.
func Verify(identity types.Identity, info *database.DocInfo, action Action) error {
	if CanAccess(identity, info, action) {
		return nil
	}

	return errors.PermissionDenied(fmt.Sprintf("not allowed to %s document %s", action, info.ID))
}
