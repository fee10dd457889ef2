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

package rpc

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/coedit-team/coedit/api/types"
	"github.com/coedit-team/coedit/pkg/errors"
	"github.com/coedit-team/coedit/server/auth"
	"github.com/coedit-team/coedit/server/backend/database"
	"github.com/coedit-team/coedit/server/backend/transport"
	"github.com/coedit-team/coedit/server/connections"
	"github.com/coedit-team/coedit/server/documents"
	"github.com/coedit-team/coedit/server/logging"
	"github.com/coedit-team/coedit/server/rooms"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(*http.Request) bool {
		return true
	},
}

// wsSink is a transport.Sink delivering over a websocket. A mutex guards the
// connection because fan-outs from different rooms may write concurrently.
type wsSink struct {
	id   types.ID
	mu   sync.Mutex
	conn *websocket.Conn
}

func newWSSink(conn *websocket.Conn) *wsSink {
	return &wsSink{
		id:   types.NewID(),
		conn: conn,
	}
}

// ID returns the connection ID this sink delivers to.
func (s *wsSink) ID() types.ID {
	return s.id
}

// Send writes the message to the websocket. A failed write means the socket
// is unusable from here on, so any error is reported as
// transport.ErrTransportGone.
func (s *wsSink) Send(_ context.Context, msg types.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.conn.WriteJSON(msg); err != nil {
		return transport.ErrTransportGone
	}

	return nil
}

type wsError struct {
	Action  string `json:"action"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// handleRealtime upgrades the request to a websocket and runs the session
// loop: register the connection, demultiplex inbound messages, and tear the
// connection down when the socket closes for any reason.
func (s *Server) handleRealtime(w http.ResponseWriter, r *http.Request) {
	identity, err := auth.From(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.From(r.Context()).Warnf("upgrade websocket: %v", err)
		return
	}

	sink := newWSSink(conn)
	ctx := logging.With(context.Background(), logging.New(string(sink.ID())))

	if _, err := connections.Connect(ctx, s.backend, sink); err != nil {
		logging.From(ctx).Errorf("connect %s: %v", sink.ID(), err)
		_ = conn.Close()
		return
	}

	defer func() {
		if err := connections.Disconnect(ctx, s.backend, sink.ID()); err != nil {
			logging.From(ctx).Warnf("disconnect %s: %v", sink.ID(), err)
		}
		_ = conn.Close()
	}()

	for {
		msg := types.Message{}
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(
				err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
			) {
				logging.From(ctx).Warnf("read websocket: %v", err)
			}
			return
		}

		if err := s.dispatch(ctx, identity, sink, msg); err != nil {
			s.sendSessionError(sink, msg, err)
		}
	}
}

func (s *Server) dispatch(
	ctx context.Context,
	identity types.Identity,
	sink *wsSink,
	msg types.Message,
) error {
	if err := msg.DocumentID.Validate(); err != nil {
		return errors.InvalidArgument("invalid document id")
	}

	switch msg.Action {
	case types.ActionJoinDocument:
		return s.handleJoin(ctx, identity, sink, msg.DocumentID)
	case types.ActionLeaveDocument:
		return rooms.Leave(ctx, s.backend, msg.DocumentID, sink.ID())
	case types.ActionDocumentUpdate:
		return s.handleDocumentUpdate(ctx, identity, sink, msg)
	default:
		return errors.InvalidArgument("unknown action")
	}
}

// handleJoin checks read access, adds the connection to the room and sends
// the current document snapshot back to the joiner.
func (s *Server) handleJoin(
	ctx context.Context,
	identity types.Identity,
	sink *wsSink,
	docID types.ID,
) error {
	info, err := documents.Get(ctx, s.backend, identity, docID)
	if err != nil {
		return err
	}

	if _, err := rooms.Join(ctx, s.backend, docID, sink.ID()); err != nil {
		return err
	}

	payload, err := json.Marshal(info.ToDocument())
	if err != nil {
		return errors.Internal("encode document")
	}

	return sink.Send(ctx, types.Message{
		Action:     types.ActionJoinedDocument,
		DocumentID: docID,
		Payload:    payload,
	})
}

// handleDocumentUpdate persists the new snapshot and fans it out to the
// other members of the room. The payload reaches the peers as-is.
func (s *Server) handleDocumentUpdate(
	ctx context.Context,
	identity types.Identity,
	sink *wsSink,
	msg types.Message,
) error {
	update := struct {
		Title   *string `json:"title,omitempty"`
		Content *string `json:"content,omitempty"`
	}{}
	if err := json.Unmarshal(msg.Payload, &update); err != nil {
		return errors.InvalidArgument("invalid update payload")
	}

	updated, err := documents.Update(ctx, s.backend, identity, msg.DocumentID, &database.UpdatableDocFields{
		Title:   update.Title,
		Content: update.Content,
	})
	if err != nil {
		return err
	}

	payload, err := json.Marshal(updated.ToDocument())
	if err != nil {
		return errors.Internal("encode document")
	}

	// delivery failures are isolated per member and already logged by the
	// router; they never fail the update for the sender
	if _, err := rooms.Broadcast(ctx, s.backend, msg.DocumentID, sink.ID(), types.Message{
		Action:     types.ActionDocumentUpdate,
		DocumentID: msg.DocumentID,
		Payload:    payload,
	}); err != nil {
		return err
	}

	return nil
}

func (s *Server) sendSessionError(sink *wsSink, msg types.Message, err error) {
	code := errors.StatusOf(err)
	if code == 0 {
		code = errors.CodeInternal
	}

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if writeErr := sink.conn.WriteJSON(wsError{
		Action:  "ERROR",
		Code:    code.String(),
		Message: err.Error(),
	}); writeErr != nil {
		logging.DefaultLogger().Warnf("write session error for %v: %v", msg.Action, writeErr)
	}
}
