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

// Package connections provides the connection lifecycle logic. A connection
// exists from the moment its transport attaches until it disconnects or its
// transport is found severed; disconnecting also removes the connection from
// every room it joined.
package connections

import (
	"context"
	"errors"

	"github.com/coedit-team/coedit/api/types"
	"github.com/coedit-team/coedit/server/backend"
	"github.com/coedit-team/coedit/server/backend/database"
	"github.com/coedit-team/coedit/server/backend/transport"
)

// Connect registers the connection: a durable record in the store plus the
// live sink in the transport registry.
func Connect(
	ctx context.Context,
	be *backend.Backend,
	sink transport.Sink,
) (*database.ConnInfo, error) {
	info, err := be.DB.CreateConnInfo(ctx, sink.ID())
	if err != nil {
		return nil, err
	}

	be.Transports.Register(sink)
	be.Metrics.ConnectionAdded()

	return info, nil
}

// Disconnect tears the connection down: the sink is dropped, the connection
// leaves every room it joined, and the durable record is removed. It is
// idempotent so that a disconnect raced by a prune does no harm.
func Disconnect(ctx context.Context, be *backend.Backend, id types.ID) error {
	if be.Transports.Remove(id) {
		be.Metrics.ConnectionRemoved()
	}

	if err := be.DB.RemoveRoomMemberInfosByConnID(ctx, id); err != nil {
		return err
	}

	return be.DB.RemoveConnInfo(ctx, id)
}

// IsActive reports whether the connection has a durable record.
func IsActive(ctx context.Context, be *backend.Backend, id types.ID) (bool, error) {
	if _, err := be.DB.FindConnInfo(ctx, id); err != nil {
		if errors.Is(err, database.ErrConnectionNotFound) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}
