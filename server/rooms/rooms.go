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

// Package rooms provides document room membership and broadcast fan-out.
// Membership lives in the durable store; fan-out resolves the member list
// from the store at send time and delivers through the live sinks of the
// transport registry.
package rooms

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"

	"github.com/coedit-team/coedit/api/types"
	"github.com/coedit-team/coedit/pkg/errors"
	"github.com/coedit-team/coedit/server/backend"
	"github.com/coedit-team/coedit/server/backend/database"
	"github.com/coedit-team/coedit/server/backend/transport"
	"github.com/coedit-team/coedit/server/connections"
	"github.com/coedit-team/coedit/server/logging"
)

// Delivery is the per-member outcome of a broadcast.
type Delivery struct {
	ConnID types.ID
	Err    error
}

// DeliveryReport summarizes a broadcast fan-out.
type DeliveryReport struct {
	// Deliveries holds one entry per room member the message was sent to,
	// excluding the origin.
	Deliveries []Delivery

	// Pruned lists the connections whose transports were found severed and
	// which were therefore disconnected.
	Pruned []types.ID
}

// Failed returns the deliveries that did not succeed.
func (r *DeliveryReport) Failed() []Delivery {
	var failed []Delivery
	for _, d := range r.Deliveries {
		if d.Err != nil {
			failed = append(failed, d)
		}
	}
	return failed
}

// Join adds the connection to the document room. The connection must have a
// durable record; joining a room twice leaves a single membership. The store
// verifies the connection itself, so a disconnect racing the join cannot
// leave a membership behind.
func Join(
	ctx context.Context,
	be *backend.Backend,
	docID, connID types.ID,
) (*database.RoomMemberInfo, error) {
	info, err := be.DB.CreateRoomMemberInfo(ctx, docID, connID)
	if err != nil {
		if stderrors.Is(err, database.ErrConnectionNotFound) {
			return nil, errors.FailedPrecond(fmt.Sprintf("connection %s is not active", connID))
		}
		return nil, err
	}

	return info, nil
}

// Leave removes the connection from the document room. Leaving a room the
// connection is not in is a no-op.
func Leave(ctx context.Context, be *backend.Backend, docID, connID types.ID) error {
	return be.DB.RemoveRoomMemberInfo(ctx, docID, connID)
}

// MembersOf returns the connection IDs currently in the document room.
func MembersOf(ctx context.Context, be *backend.Backend, docID types.ID) ([]types.ID, error) {
	infos, err := be.DB.FindRoomMemberInfosByDocID(ctx, docID)
	if err != nil {
		return nil, err
	}

	ids := make([]types.ID, 0, len(infos))
	for _, info := range infos {
		ids = append(ids, info.ConnID)
	}
	return ids, nil
}

// RoomsOf returns the document IDs of the rooms the connection is in.
func RoomsOf(ctx context.Context, be *backend.Backend, connID types.ID) ([]types.ID, error) {
	infos, err := be.DB.FindRoomMemberInfosByConnID(ctx, connID)
	if err != nil {
		return nil, err
	}

	ids := make([]types.ID, 0, len(infos))
	for _, info := range infos {
		ids = append(ids, info.DocID)
	}
	return ids, nil
}

// Broadcast sends the message to every member of the document room except
// the origin connection. The member list is resolved from the store at call
// time, deliveries run concurrently, and one slow or broken member never
// blocks the others. Members whose transports are severed are pruned.
func Broadcast(
	ctx context.Context,
	be *backend.Backend,
	docID types.ID,
	origin types.ID,
	msg types.Message,
) (*DeliveryReport, error) {
	members, err := be.DB.FindRoomMemberInfosByDocID(ctx, docID)
	if err != nil {
		return nil, err
	}

	be.Metrics.BroadcastPerformed()

	report := &DeliveryReport{}
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, member := range members {
		if member.ConnID == origin {
			continue
		}

		connID := member.ConnID
		wg.Add(1)
		go func() {
			defer wg.Done()

			delivery := Delivery{ConnID: connID, Err: deliver(ctx, be, connID, msg)}

			mu.Lock()
			defer mu.Unlock()
			report.Deliveries = append(report.Deliveries, delivery)
			if stderrors.Is(delivery.Err, transport.ErrTransportGone) {
				report.Pruned = append(report.Pruned, connID)
			}
		}()
	}
	wg.Wait()

	for _, d := range report.Failed() {
		be.Metrics.DeliveryFailed()
		logging.From(ctx).Warnf("deliver to %s: %v", d.ConnID, d.Err)
	}

	// A severed transport means the client is gone for good, so its stale
	// membership must not linger and re-fail every later broadcast. The
	// cascade runs before return, but its outcome never affects the
	// broadcast result.
	for _, connID := range report.Pruned {
		be.Metrics.ConnectionPruned()
		if err := connections.Disconnect(ctx, be, connID); err != nil {
			logging.From(ctx).Warnf("prune connection %s: %v", connID, err)
		}
	}

	return report, nil
}

func deliver(ctx context.Context, be *backend.Backend, connID types.ID, msg types.Message) error {
	sink, ok := be.Transports.Get(connID)
	if !ok {
		return transport.ErrTransportGone
	}

	return sink.Send(ctx, msg)
}
