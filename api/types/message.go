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

package types

import "encoding/json"

// MessageAction is the application-level action tag of a realtime message.
type MessageAction string

const (
	// ActionJoinDocument is sent by a client to join a document room.
	ActionJoinDocument MessageAction = "JOIN_DOCUMENT"

	// ActionLeaveDocument is sent by a client to leave a document room.
	ActionLeaveDocument MessageAction = "LEAVE_DOCUMENT"

	// ActionDocumentUpdate carries a document snapshot. Inbound it is fanned
	// out to the other members of the room; outbound it is the fan-out copy.
	ActionDocumentUpdate MessageAction = "DOCUMENT_UPDATE"

	// ActionJoinedDocument is sent back to a client after a successful join.
	ActionJoinedDocument MessageAction = "JOINED_DOCUMENT"
)

// Message is a realtime message exchanged over the session gateway. The
// payload is opaque to every component between the two editors; the server
// broadcasts it as-is, last writer observed wins.
type Message struct {
	Action     MessageAction   `json:"action"`
	DocumentID ID              `json:"documentId"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}
