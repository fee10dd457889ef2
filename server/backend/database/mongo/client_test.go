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

package mongo_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/coedit-team/coedit/api/types"
	"github.com/coedit-team/coedit/server/backend/database/mongo"
	"github.com/coedit-team/coedit/server/backend/database/testcases"
)

func setupTestClient(t *testing.T) *mongo.Client {
	config := &mongo.Config{
		ConnectionTimeout: "5s",
		ConnectionURI:     "mongodb://localhost:27017",
		Database:          fmt.Sprintf("test-coedit-%s", types.NewID()),
		PingTimeout:       "5s",
	}
	assert.NoError(t, config.Validate())

	cli, err := mongo.Dial(config)
	assert.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, cli.Close())
	})

	return cli
}

func TestClient(t *testing.T) {
	cli := setupTestClient(t)

	t.Run("RunUserInfoTest test", func(t *testing.T) {
		testcases.RunUserInfoTest(t, cli)
	})

	t.Run("RunDocInfoTest test", func(t *testing.T) {
		testcases.RunDocInfoTest(t, cli)
	})

	t.Run("RunConcurrentUpdateDocInfoTest test", func(t *testing.T) {
		testcases.RunConcurrentUpdateDocInfoTest(t, cli)
	})

	t.Run("RunAddSharedWithTest test", func(t *testing.T) {
		testcases.RunAddSharedWithTest(t, cli)
	})

	t.Run("RunListDocInfosTest test", func(t *testing.T) {
		testcases.RunListDocInfosTest(t, cli)
	})

	t.Run("RunConnInfoTest test", func(t *testing.T) {
		testcases.RunConnInfoTest(t, cli)
	})

	t.Run("RunRoomMemberInfoTest test", func(t *testing.T) {
		testcases.RunRoomMemberInfoTest(t, cli)
	})
}
