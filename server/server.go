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

// Package server provides the CoEdit server which is the main entry point of
// the system. The server receives HTTP and websocket requests from clients
// and handles them via the backend services.
package server

import (
	"github.com/coedit-team/coedit/server/backend"
	"github.com/coedit-team/coedit/server/profiling"
	"github.com/coedit-team/coedit/server/profiling/prometheus"
	"github.com/coedit-team/coedit/server/rpc"
)

// CoEdit is an instance of the collaborative editing server.
type CoEdit struct {
	conf *Config

	backend         *backend.Backend
	rpcServer       *rpc.Server
	profilingServer *profiling.Server

	shutdown   bool
	shutdownCh chan struct{}
}

// New creates a new instance of CoEdit.
func New(conf *Config) (*CoEdit, error) {
	conf.ensureDefaultValue()
	if err := conf.Validate(); err != nil {
		return nil, err
	}

	metrics, err := prometheus.NewMetrics()
	if err != nil {
		return nil, err
	}

	be, err := backend.New(conf.Backend, conf.Mongo, metrics)
	if err != nil {
		return nil, err
	}

	rpcServer, err := rpc.NewServer(conf.RPC, be)
	if err != nil {
		return nil, err
	}

	return &CoEdit{
		conf:            conf,
		backend:         be,
		rpcServer:       rpcServer,
		profilingServer: profiling.NewServer(conf.Profiling, metrics),
		shutdownCh:      make(chan struct{}),
	}, nil
}

// Start starts the server by opening the rpc and profiling ports.
func (r *CoEdit) Start() error {
	if err := r.profilingServer.Start(); err != nil {
		return err
	}

	return r.rpcServer.Start()
}

// Shutdown shuts down this server.
func (r *CoEdit) Shutdown(graceful bool) error {
	if r.shutdown {
		return nil
	}
	r.shutdown = true

	r.rpcServer.Shutdown(graceful)
	r.profilingServer.Shutdown(graceful)

	if err := r.backend.Shutdown(); err != nil {
		return err
	}

	close(r.shutdownCh)
	return nil
}

// ShutdownCh returns the shutdown channel.
func (r *CoEdit) ShutdownCh() <-chan struct{} {
	return r.shutdownCh
}

// RPCAddr returns the address of the rpc server.
func (r *CoEdit) RPCAddr() string {
	addr := r.rpcServer.ListenAddr()
	if addr == nil {
		return ""
	}

	return addr.String()
}
