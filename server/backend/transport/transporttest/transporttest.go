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

// Package transporttest provides an in-memory sink for tests.
package transporttest

import (
	"context"
	"sync"

	"github.com/coedit-team/coedit/api/types"
	"github.com/coedit-team/coedit/server/backend/transport"
)

// Sink is a transport.Sink that records delivered messages in memory.
type Sink struct {
	id types.ID

	mu       sync.Mutex
	severed  bool
	messages []types.Message
}

// NewSink creates an instance of Sink for the given connection ID.
func NewSink(id types.ID) *Sink {
	return &Sink{id: id}
}

// ID returns the connection ID this sink delivers to.
func (s *Sink) ID() types.ID {
	return s.id
}

// Send records the message, or returns transport.ErrTransportGone if the
// sink has been severed.
func (s *Sink) Send(_ context.Context, msg types.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.severed {
		return transport.ErrTransportGone
	}

	s.messages = append(s.messages, msg)
	return nil
}

// Sever makes every later Send fail with transport.ErrTransportGone.
func (s *Sink) Sever() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.severed = true
}

// Messages returns a copy of the messages delivered so far.
func (s *Sink) Messages() []types.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]types.Message, len(s.messages))
	copy(out, s.messages)
	return out
}
