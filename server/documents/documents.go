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

// Package documents provides the document-related business logic.
package documents

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/coedit-team/coedit/api/types"
	"github.com/coedit-team/coedit/pkg/errors"
	"github.com/coedit-team/coedit/server/authz"
	"github.com/coedit-team/coedit/server/backend"
	"github.com/coedit-team/coedit/server/backend/database"
	"github.com/coedit-team/coedit/server/logging"
)

// ErrAlreadyShared is returned when sharing a document with an email that is
// already on the share list. Callers may treat it as a success with notice.
var ErrAlreadyShared = errors.FailedPrecond("document already shared with that email")

// Create creates a new document owned by the caller.
func Create(
	ctx context.Context,
	be *backend.Backend,
	identity types.Identity,
	title, content string,
) (*database.DocInfo, error) {
	if err := database.ValidateTitle(title); err != nil {
		return nil, err
	}
	if err := database.ValidateContent(content); err != nil {
		return nil, err
	}

	return be.DB.CreateDocInfo(ctx, identity.ID, title, content)
}

// Get returns the document if the caller may read it. A missing document is
// reported as not found before any permission check so that callers cannot
// probe for the existence of documents they may not see.
func Get(
	ctx context.Context,
	be *backend.Backend,
	identity types.Identity,
	id types.ID,
) (*database.DocInfo, error) {
	info, err := findDocInfo(ctx, be, id)
	if err != nil {
		return nil, err
	}

	if err := authz.Verify(identity, info, authz.ActionRead); err != nil {
		return nil, err
	}

	return info, nil
}

// Update applies the given fields to the document and advances its version
// by exactly one.
func Update(
	ctx context.Context,
	be *backend.Backend,
	identity types.Identity,
	id types.ID,
	fields *database.UpdatableDocFields,
) (*database.DocInfo, error) {
	if fields.IsEmpty() {
		return nil, errors.InvalidArgument("no fields to update")
	}
	if err := fields.Validate(); err != nil {
		return nil, err
	}

	info, err := findDocInfo(ctx, be, id)
	if err != nil {
		return nil, err
	}

	if err := authz.Verify(identity, info, authz.ActionWrite); err != nil {
		return nil, err
	}

	updated, err := be.DB.UpdateDocInfo(ctx, id, fields)
	if err != nil {
		if stderrors.Is(err, database.ErrDocumentNotFound) {
			return nil, errors.NotFound(fmt.Sprintf("document %s not found", id))
		}
		return nil, err
	}

	return updated, nil
}

// Remove deletes the document. Only the owner may delete. Attachments are
// purged asynchronously; a failed purge never fails the delete.
func Remove(
	ctx context.Context,
	be *backend.Backend,
	identity types.Identity,
	id types.ID,
) error {
	info, err := findDocInfo(ctx, be, id)
	if err != nil {
		return err
	}

	if err := authz.Verify(identity, info, authz.ActionDelete); err != nil {
		return err
	}

	if err := be.DB.RemoveDocInfo(ctx, id); err != nil {
		if stderrors.Is(err, database.ErrDocumentNotFound) {
			return errors.NotFound(fmt.Sprintf("document %s not found", id))
		}
		return err
	}

	go func() {
		if err := be.Assets.RemoveAll(context.Background(), id); err != nil {
			logging.DefaultLogger().Warnf("purge assets of %s: %v", id, err)
		}
	}()

	return nil
}

// ListVisible returns the documents the caller owns together with the
// documents shared with the caller's email.
func ListVisible(
	ctx context.Context,
	be *backend.Backend,
	identity types.Identity,
) ([]*database.DocInfo, error) {
	return be.DB.ListDocInfos(ctx, identity.ID, identity.Email)
}

// Share grants read and write access on the document to the grantee email.
// Only the owner may share. Sharing with the owner's own email is rejected,
// and sharing with an email already on the list returns ErrAlreadyShared.
func Share(
	ctx context.Context,
	be *backend.Backend,
	identity types.Identity,
	id types.ID,
	granteeEmail string,
) (*database.DocInfo, error) {
	if granteeEmail == identity.Email {
		return nil, errors.InvalidArgument("cannot share a document with yourself")
	}

	info, err := findDocInfo(ctx, be, id)
	if err != nil {
		return nil, err
	}

	if err := authz.Verify(identity, info, authz.ActionShare); err != nil {
		return nil, err
	}

	shared, err := be.DB.AddSharedWith(ctx, id, granteeEmail)
	if err != nil {
		if stderrors.Is(err, database.ErrAlreadyShared) {
			return nil, ErrAlreadyShared
		}
		if stderrors.Is(err, database.ErrDocumentNotFound) {
			return nil, errors.NotFound(fmt.Sprintf("document %s not found", id))
		}
		return nil, err
	}

	return shared, nil
}

// PutAsset stores an attachment on the document under the given name. Write
// access on the document is required.
func PutAsset(
	ctx context.Context,
	be *backend.Backend,
	identity types.Identity,
	id types.ID,
	name string,
	r io.Reader,
) error {
	if name == "" {
		return errors.InvalidArgument("asset name must not be empty")
	}

	info, err := findDocInfo(ctx, be, id)
	if err != nil {
		return err
	}

	if err := authz.Verify(identity, info, authz.ActionWrite); err != nil {
		return err
	}

	return be.Assets.Put(ctx, id, name, r)
}

// GetAsset opens the attachment of the document with the given name. Read
// access on the document is required; the caller closes the returned reader.
func GetAsset(
	ctx context.Context,
	be *backend.Backend,
	identity types.Identity,
	id types.ID,
	name string,
) (io.ReadCloser, error) {
	info, err := findDocInfo(ctx, be, id)
	if err != nil {
		return nil, err
	}

	if err := authz.Verify(identity, info, authz.ActionRead); err != nil {
		return nil, err
	}

	rc, err := be.Assets.Get(ctx, id, name)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return nil, errors.NotFound(fmt.Sprintf("asset %s not found", name))
		}
		return nil, err
	}

	return rc, nil
}

func findDocInfo(
	ctx context.Context,
	be *backend.Backend,
	id types.ID,
) (*database.DocInfo, error) {
	info, err := be.DB.FindDocInfoByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, database.ErrDocumentNotFound) {
			return nil, errors.NotFound(fmt.Sprintf("document %s not found", id))
		}
		return nil, err
	}

	return info, nil
}
