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

// Package backend provides the backend implementation of the server. It
// bundles the durable store, the live transport registry, the token manager
// and the metrics collector so that services receive a single handle.
package backend

import (
	"fmt"

	"github.com/coedit-team/coedit/server/auth"
	"github.com/coedit-team/coedit/server/backend/assets"
	"github.com/coedit-team/coedit/server/backend/database"
	"github.com/coedit-team/coedit/server/backend/database/memory"
	"github.com/coedit-team/coedit/server/backend/database/mongo"
	"github.com/coedit-team/coedit/server/backend/transport"
	"github.com/coedit-team/coedit/server/logging"
	"github.com/coedit-team/coedit/server/profiling/prometheus"
)

// Backend manages the server-side resources shared by all services.
type Backend struct {
	Config *Config

	// DB is the durable store for users, documents, connections and room
	// memberships.
	DB database.Database

	// Transports holds the live delivery channels of connected clients.
	Transports *transport.Registry

	// Tokens issues and verifies session tokens.
	Tokens *auth.TokenManager

	// Assets stores document attachments.
	Assets assets.Store

	// Metrics is the metrics collector of this backend.
	Metrics *prometheus.Metrics
}

// New creates an instance of Backend. If a Mongo configuration is given the
// durable store is MongoDB, otherwise an embedded in-memory store is used.
func New(
	conf *Config,
	mongoConf *mongo.Config,
	metrics *prometheus.Metrics,
) (*Backend, error) {
	tokenDuration, err := conf.ParseTokenDuration()
	if err != nil {
		return nil, err
	}

	var db database.Database
	if mongoConf != nil {
		db, err = mongo.Dial(mongoConf)
		if err != nil {
			return nil, err
		}
		logging.DefaultLogger().Infof("connected to mongo: %s", mongoConf.ConnectionURI)
	} else {
		db, err = memory.New()
		if err != nil {
			return nil, err
		}
		logging.DefaultLogger().Warn("mongo is not configured, using memory store")
	}

	store, err := assets.NewFileStore(conf.AssetsPath)
	if err != nil {
		return nil, err
	}

	return &Backend{
		Config:     conf,
		DB:         db,
		Transports: transport.NewRegistry(),
		Tokens:     auth.NewTokenManager(conf.SecretKey, tokenDuration),
		Assets:     store,
		Metrics:    metrics,
	}, nil
}

// Shutdown closes all resources of this backend.
func (b *Backend) Shutdown() error {
	if err := b.DB.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}

	return nil
}
