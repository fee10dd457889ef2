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

package server

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewConfigFromFile(t *testing.T) {
	t.Run("fail read config file test", func(t *testing.T) {
		conf, err := NewConfigFromFile("nowhere.yml")
		assert.Error(t, err)
		assert.Nil(t, conf)
	})

	t.Run("defaults applied to empty file test", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yml")
		assert.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))

		conf, err := NewConfigFromFile(path)
		assert.NoError(t, err)
		assert.Equal(t, DefaultRPCPort, conf.RPC.Port)
		assert.Equal(t, DefaultProfilingPort, conf.Profiling.Port)
		assert.Equal(t, DefaultTokenDuration, conf.Backend.TokenDuration)
		assert.Nil(t, conf.Mongo)
		assert.NoError(t, conf.Validate())
	})

	t.Run("mongo defaults applied when section present test", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yml")
		assert.NoError(t, os.WriteFile(path, []byte("Mongo:\n  Database: custom\n"), 0o644))

		conf, err := NewConfigFromFile(path)
		assert.NoError(t, err)
		assert.NotNil(t, conf.Mongo)
		assert.Equal(t, "custom", conf.Mongo.Database)
		assert.Equal(t, DefaultMongoConnectionURI, conf.Mongo.ConnectionURI)
		assert.NoError(t, conf.Validate())
	})

	t.Run("invalid port rejected test", func(t *testing.T) {
		conf := NewConfig()
		conf.RPC.Port = -1
		assert.Error(t, conf.Validate())
	})

	t.Run("invalid token duration rejected test", func(t *testing.T) {
		conf := NewConfig()
		conf.Backend.TokenDuration = "not-a-duration"
		assert.Error(t, conf.Validate())
	})
}
