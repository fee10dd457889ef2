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
	"github.com/coedit-team/coedit/internal/validation"
	"github.com/coedit-team/coedit/pkg/errors"
)

const (
	// MaxTitleLength is the maximum length of a document title.
	MaxTitleLength = 255

	// MaxContentBytes is the maximum size of a document content blob.
	MaxContentBytes = 10 << 20
)

// DocInfo is a structure representing information of the document.
type DocInfo struct {
	// ID is the unique ID of the document.
	ID types.ID `bson:"_id"`

	// Title is the title of the document.
	Title string `bson:"title"`

	// Content is the content of the document. It is an opaque blob; updates
	// replace it wholesale.
	Content string `bson:"content"`

	// Owner is the ID of the user who owns the document.
	Owner types.ID `bson:"owner"`

	// SharedWith is the list of collaborator emails the document is shared with.
	SharedWith []string `bson:"shared_with"`

	// Version increases by exactly 1 on every successful mutation of title or
	// content. It never decreases and never skips on failure.
	Version int64 `bson:"version"`

	// CreatedAt is the time when the document was created.
	CreatedAt time.Time `bson:"created_at"`

	// UpdatedAt is the time when the document was last modified.
	UpdatedAt time.Time `bson:"updated_at"`
}

// IsSharedWith returns true if the document is shared with the given email.
func (info *DocInfo) IsSharedWith(email string) bool {
	for _, e := range info.SharedWith {
		if e == email {
			return true
		}
	}
	return false
}

// ToDocument converts this DocInfo to the client-facing document type.
func (info *DocInfo) ToDocument() *types.Document {
	shared := info.SharedWith
	if shared == nil {
		shared = []string{}
	}

	return &types.Document{
		ID:         info.ID,
		Title:      info.Title,
		Content:    info.Content,
		Owner:      info.Owner,
		SharedWith: shared,
		Version:    info.Version,
		CreatedAt:  info.CreatedAt,
		UpdatedAt:  info.UpdatedAt,
	}
}

// DeepCopy creates a deep copy of this DocInfo.
func (info *DocInfo) DeepCopy() *DocInfo {
	if info == nil {
		return nil
	}

	shared := make([]string, len(info.SharedWith))
	copy(shared, info.SharedWith)

	return &DocInfo{
		ID:         info.ID,
		Title:      info.Title,
		Content:    info.Content,
		Owner:      info.Owner,
		SharedWith: shared,
		Version:    info.Version,
		CreatedAt:  info.CreatedAt,
		UpdatedAt:  info.UpdatedAt,
	}
}

// UpdatableDocFields is the set of document fields an update may carry. A nil
// field is left untouched; a non-nil field replaces the stored value.
type UpdatableDocFields struct {
	Title   *string
	Content *string
}

// IsEmpty returns true if no field is set.
func (f *UpdatableDocFields) IsEmpty() bool {
	return f.Title == nil && f.Content == nil
}

// Validate validates the fields against the document limits.
func (f *UpdatableDocFields) Validate() error {
	if f.IsEmpty() {
		return errors.InvalidArgument("no fields to update")
	}
	if f.Title != nil {
		if err := validation.ValidateValue(*f.Title, "required,max=255"); err != nil {
			return errors.InvalidArgument(err.Error())
		}
	}
	if f.Content != nil && len(*f.Content) > MaxContentBytes {
		return errors.InvalidArgument("content exceeds maximum size")
	}
	return nil
}

// ValidateTitle validates a document title.
func ValidateTitle(title string) error {
	if err := validation.ValidateValue(title, "required,max=255"); err != nil {
		return errors.InvalidArgument(err.Error())
	}
	return nil
}

// ValidateContent validates a document content blob.
func ValidateContent(content string) error {
	if len(content) > MaxContentBytes {
		return errors.InvalidArgument("content exceeds maximum size")
	}
	return nil
}
