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

// Package users provides the user-related business logic.
package users

import (
	"context"
	stderrors "errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/coedit-team/coedit/api/types"
	"github.com/coedit-team/coedit/pkg/errors"
	"github.com/coedit-team/coedit/server/backend"
	"github.com/coedit-team/coedit/server/backend/database"
)

// SignUp registers a new user with the given email and plaintext password.
func SignUp(
	ctx context.Context,
	be *backend.Backend,
	email, password, displayName string,
) (*types.Identity, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	info, err := be.DB.CreateUserInfo(ctx, email, string(hashed), displayName)
	if err != nil {
		if stderrors.Is(err, database.ErrUserAlreadyExists) {
			return nil, errors.AlreadyExists(fmt.Sprintf("user %s already exists", email))
		}
		return nil, err
	}

	identity := info.Identity()
	return &identity, nil
}

// LogIn checks the credentials and issues a session token.
func LogIn(
	ctx context.Context,
	be *backend.Backend,
	email, password string,
) (string, *types.Identity, error) {
	info, err := be.DB.FindUserInfoByEmail(ctx, email)
	if err != nil {
		if stderrors.Is(err, database.ErrUserNotFound) {
			return "", nil, errors.Unauthenticated("invalid email or password")
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword(
		[]byte(info.HashedPassword),
		[]byte(password),
	); err != nil {
		return "", nil, errors.Unauthenticated("invalid email or password")
	}

	identity := info.Identity()
	token, err := be.Tokens.Issue(identity)
	if err != nil {
		return "", nil, err
	}

	return token, &identity, nil
}

// Verify parses the session token and returns the identity it was issued
// for, after checking that the user still exists.
func Verify(
	ctx context.Context,
	be *backend.Backend,
	token string,
) (*types.Identity, error) {
	identity, err := be.Tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	info, err := be.DB.FindUserInfoByID(ctx, identity.ID)
	if err != nil {
		if stderrors.Is(err, database.ErrUserNotFound) {
			return nil, errors.Unauthenticated("user no longer exists")
		}
		return nil, err
	}

	current := info.Identity()
	return &current, nil
}

// GetProfile returns the profile of the given user.
func GetProfile(
	ctx context.Context,
	be *backend.Backend,
	id types.ID,
) (*types.Identity, error) {
	info, err := be.DB.FindUserInfoByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, database.ErrUserNotFound) {
			return nil, errors.NotFound(fmt.Sprintf("user %s not found", id))
		}
		return nil, err
	}

	identity := info.Identity()
	return &identity, nil
}

// UpdateProfile changes the display name of the given user.
func UpdateProfile(
	ctx context.Context,
	be *backend.Backend,
	id types.ID,
	displayName string,
) (*types.Identity, error) {
	info, err := be.DB.UpdateUserInfo(ctx, id, displayName)
	if err != nil {
		if stderrors.Is(err, database.ErrUserNotFound) {
			return nil, errors.NotFound(fmt.Sprintf("user %s not found", id))
		}
		return nil, err
	}

	identity := info.Identity()
	return &identity, nil
}
