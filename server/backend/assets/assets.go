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

// Package assets stores binary attachments uploaded alongside documents,
// keyed by the owning document ID.
package assets

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/coedit-team/coedit/api/types"
)

// Store is a content store for document attachments.
type Store interface {
	// Put stores the attachment under the given document and name.
	Put(ctx context.Context, docID types.ID, name string, r io.Reader) error

	// Get opens the attachment. The caller closes the returned reader.
	Get(ctx context.Context, docID types.ID, name string) (io.ReadCloser, error)

	// RemoveAll removes every attachment of the document.
	RemoveAll(ctx context.Context, docID types.ID) error
}

// FileStore is a Store backed by a local directory, one subdirectory per
// document.
type FileStore struct {
	rootPath string
}

// NewFileStore creates an instance of FileStore rooted at the given path.
func NewFileStore(rootPath string) (*FileStore, error) {
	if err := os.MkdirAll(rootPath, 0o755); err != nil {
		return nil, fmt.Errorf("create asset root: %w", err)
	}

	return &FileStore{rootPath: rootPath}, nil
}

// Put stores the attachment under the given document and name.
func (s *FileStore) Put(_ context.Context, docID types.ID, name string, r io.Reader) error {
	dir := filepath.Join(s.rootPath, string(docID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create asset dir: %w", err)
	}

	path := filepath.Join(dir, filepath.Base(name))
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create asset file: %w", err)
	}

	if _, err := io.Copy(file, r); err != nil {
		_ = file.Close()
		return fmt.Errorf("write asset file: %w", err)
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("close asset file: %w", err)
	}

	return nil
}

// Get opens the attachment.
func (s *FileStore) Get(_ context.Context, docID types.ID, name string) (io.ReadCloser, error) {
	path := filepath.Join(s.rootPath, string(docID), filepath.Base(name))
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open asset file: %w", err)
	}

	return file, nil
}

// RemoveAll removes every attachment of the document.
func (s *FileStore) RemoveAll(_ context.Context, docID types.ID) error {
	if err := os.RemoveAll(filepath.Join(s.rootPath, string(docID))); err != nil {
		return fmt.Errorf("remove asset dir: %w", err)
	}

	return nil
}
