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

package auth

import (
	"context"

	"github.com/coedit-team/coedit/api/types"
	"github.com/coedit-team/coedit/pkg/errors"
)

type identityKey struct{}

// With returns a context with the given identity attached.
func With(ctx context.Context, identity types.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// From returns the identity attached to the context.
func From(ctx context.Context) (types.Identity, error) {
	identity, ok := ctx.Value(identityKey{}).(types.Identity)
	if !ok {
		return types.Identity{}, errors.Unauthenticated("no identity in context")
	}

	return identity, nil
}
