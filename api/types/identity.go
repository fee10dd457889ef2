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

// Identity is the verified identity of a caller. It is produced by the token
// verifier at the boundary of every request; the core components never parse
// the credential themselves.
type Identity struct {
	// ID is the unique ID of the user.
	ID ID `json:"userId"`

	// Email is the email address of the user. Document sharing grants access
	// by email, so it participates in access checks alongside the ID.
	Email string `json:"email"`

	// DisplayName is the human-readable name of the user.
	DisplayName string `json:"displayName"`
}
