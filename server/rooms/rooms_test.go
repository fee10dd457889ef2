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

package rooms_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/coedit-team/coedit/api/types"
	"github.com/coedit-team/coedit/pkg/errors"
	"github.com/coedit-team/coedit/server/backend"
	"github.com/coedit-team/coedit/server/backend/transport"
	"github.com/coedit-team/coedit/server/backend/transport/transporttest"
	"github.com/coedit-team/coedit/server/connections"
	"github.com/coedit-team/coedit/server/profiling/prometheus"
	"github.com/coedit-team/coedit/server/rooms"
)

func setupTestBackend(t *testing.T) *backend.Backend {
	t.Helper()

	conf := &backend.Config{
		SecretKey:     "test-secret",
		TokenDuration: "1h",
		AssetsPath:    t.TempDir(),
	}
	metrics, err := prometheus.NewMetrics()
	assert.NoError(t, err)

	be, err := backend.New(conf, nil, metrics)
	assert.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, be.Shutdown())
	})

	return be
}

func connect(t *testing.T, be *backend.Backend) *transporttest.Sink {
	t.Helper()

	sink := transporttest.NewSink(types.NewID())
	_, err := connections.Connect(context.Background(), be, sink)
	assert.NoError(t, err)
	return sink
}

func updateMessage(docID types.ID, content string) types.Message {
	payload, _ := json.Marshal(map[string]string{"content": content})
	return types.Message{
		Action:     types.ActionDocumentUpdate,
		DocumentID: docID,
		Payload:    payload,
	}
}

func TestRoomMembership(t *testing.T) {
	ctx := context.Background()
	be := setupTestBackend(t)

	docID := types.NewID()

	t.Run("join requires active connection test", func(t *testing.T) {
		_, err := rooms.Join(ctx, be, docID, types.NewID())
		assert.True(t, errors.IsStatus(err, errors.CodeFailedPrecondition))
	})

	t.Run("join and leave test", func(t *testing.T) {
		sink := connect(t, be)

		_, err := rooms.Join(ctx, be, docID, sink.ID())
		assert.NoError(t, err)

		members, err := rooms.MembersOf(ctx, be, docID)
		assert.NoError(t, err)
		assert.Equal(t, []types.ID{sink.ID()}, members)

		// joining twice leaves a single membership
		_, err = rooms.Join(ctx, be, docID, sink.ID())
		assert.NoError(t, err)
		members, err = rooms.MembersOf(ctx, be, docID)
		assert.NoError(t, err)
		assert.Len(t, members, 1)

		assert.NoError(t, rooms.Leave(ctx, be, docID, sink.ID()))
		assert.NoError(t, rooms.Leave(ctx, be, docID, sink.ID()))

		members, err = rooms.MembersOf(ctx, be, docID)
		assert.NoError(t, err)
		assert.Len(t, members, 0)
	})

	t.Run("disconnect leaves all rooms test", func(t *testing.T) {
		sink := connect(t, be)
		otherDoc := types.NewID()

		_, err := rooms.Join(ctx, be, docID, sink.ID())
		assert.NoError(t, err)
		_, err = rooms.Join(ctx, be, otherDoc, sink.ID())
		assert.NoError(t, err)

		joined, err := rooms.RoomsOf(ctx, be, sink.ID())
		assert.NoError(t, err)
		assert.Len(t, joined, 2)

		assert.NoError(t, connections.Disconnect(ctx, be, sink.ID()))

		joined, err = rooms.RoomsOf(ctx, be, sink.ID())
		assert.NoError(t, err)
		assert.Len(t, joined, 0)
	})
}

func TestBroadcast(t *testing.T) {
	ctx := context.Background()

	t.Run("delivers to every member except origin test", func(t *testing.T) {
		be := setupTestBackend(t)
		docID := types.NewID()

		origin := connect(t, be)
		peer1 := connect(t, be)
		peer2 := connect(t, be)
		outsider := connect(t, be)

		for _, sink := range []*transporttest.Sink{origin, peer1, peer2} {
			_, err := rooms.Join(ctx, be, docID, sink.ID())
			assert.NoError(t, err)
		}

		report, err := rooms.Broadcast(ctx, be, docID, origin.ID(), updateMessage(docID, "v2"))
		assert.NoError(t, err)
		assert.Len(t, report.Deliveries, 2)
		assert.Len(t, report.Failed(), 0)

		assert.Len(t, origin.Messages(), 0)
		assert.Len(t, peer1.Messages(), 1)
		assert.Len(t, peer2.Messages(), 1)
		assert.Len(t, outsider.Messages(), 0)

		assert.Equal(t, types.ActionDocumentUpdate, peer1.Messages()[0].Action)
		assert.Equal(t, docID, peer1.Messages()[0].DocumentID)
	})

	t.Run("empty room broadcast is a no-op test", func(t *testing.T) {
		be := setupTestBackend(t)
		docID := types.NewID()
		origin := connect(t, be)

		report, err := rooms.Broadcast(ctx, be, docID, origin.ID(), updateMessage(docID, "v2"))
		assert.NoError(t, err)
		assert.Len(t, report.Deliveries, 0)
	})

	t.Run("severed transport is pruned test", func(t *testing.T) {
		be := setupTestBackend(t)
		docID := types.NewID()

		origin := connect(t, be)
		healthy := connect(t, be)
		broken := connect(t, be)

		for _, sink := range []*transporttest.Sink{origin, healthy, broken} {
			_, err := rooms.Join(ctx, be, docID, sink.ID())
			assert.NoError(t, err)
		}
		broken.Sever()

		report, err := rooms.Broadcast(ctx, be, docID, origin.ID(), updateMessage(docID, "v2"))
		assert.NoError(t, err)
		assert.Len(t, report.Deliveries, 2)
		assert.Equal(t, []types.ID{broken.ID()}, report.Pruned)

		failed := report.Failed()
		assert.Len(t, failed, 1)
		assert.ErrorIs(t, failed[0].Err, transport.ErrTransportGone)

		// healthy member still got the update
		assert.Len(t, healthy.Messages(), 1)

		// the broken connection is fully disconnected before Broadcast returns
		active, err := connections.IsActive(ctx, be, broken.ID())
		assert.NoError(t, err)
		assert.False(t, active)

		members, err := rooms.MembersOf(ctx, be, docID)
		assert.NoError(t, err)
		assert.Len(t, members, 2)
	})

	t.Run("missing sink counts as gone test", func(t *testing.T) {
		be := setupTestBackend(t)
		docID := types.NewID()

		origin := connect(t, be)
		ghost := connect(t, be)

		_, err := rooms.Join(ctx, be, docID, origin.ID())
		assert.NoError(t, err)
		_, err = rooms.Join(ctx, be, docID, ghost.ID())
		assert.NoError(t, err)

		// the sink vanished without a disconnect, e.g. a crashed worker
		be.Transports.Remove(ghost.ID())

		report, err := rooms.Broadcast(ctx, be, docID, origin.ID(), updateMessage(docID, "v2"))
		assert.NoError(t, err)
		assert.Equal(t, []types.ID{ghost.ID()}, report.Pruned)

		members, err := rooms.MembersOf(ctx, be, docID)
		assert.NoError(t, err)
		assert.Equal(t, []types.ID{origin.ID()}, members)
	})
}
