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

// Package transport keeps track of the live delivery channels of connected
// clients. Membership and connection records live in the database; this
// registry only maps a connection ID to the in-process channel that can
// actually push bytes to the client.
package transport

import (
	"context"
	"errors"

	"github.com/coedit-team/coedit/api/types"
	"github.com/coedit-team/coedit/pkg/cmap"
)

// ErrTransportGone is returned by a sink whose underlying channel has been
// severed. It signals that the connection is permanently unreachable and
// should be pruned, as opposed to a transient delivery failure.
var ErrTransportGone = errors.New("transport gone")

// Sink is a live delivery channel to a single connected client.
type Sink interface {
	// ID returns the connection ID this sink delivers to.
	ID() types.ID

	// Send delivers the message to the client. It returns ErrTransportGone
	// if the channel has been severed.
	Send(ctx context.Context, msg types.Message) error
}

// Registry maps connection IDs to their live sinks.
type Registry struct {
	sinks *cmap.Map[types.ID, Sink]
}

// NewRegistry creates an instance of Registry.
func NewRegistry() *Registry {
	return &Registry{
		sinks: cmap.New[types.ID, Sink](),
	}
}

// Register adds the sink for its connection ID.
func (r *Registry) Register(sink Sink) {
	r.sinks.Set(sink.ID(), sink)
}

// Remove removes the sink of the given connection ID and reports whether a
// sink was actually registered. Removing an absent sink is a no-op.
func (r *Registry) Remove(id types.ID) bool {
	_, ok := r.sinks.Delete(id)
	return ok
}

// Get returns the sink of the given connection ID.
func (r *Registry) Get(id types.ID) (Sink, bool) {
	return r.sinks.Get(id)
}

// Has reports whether a sink is registered for the connection ID.
func (r *Registry) Has(id types.ID) bool {
	return r.sinks.Has(id)
}

// Len returns the number of registered sinks.
func (r *Registry) Len() int {
	return r.sinks.Len()
}
