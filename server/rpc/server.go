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

// Package rpc provides the HTTP and websocket API of the server.
package rpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/coedit-team/coedit/server/backend"
	"github.com/coedit-team/coedit/server/logging"
)

// Server is the HTTP and websocket entry point of this server.
type Server struct {
	conf       *Config
	backend    *backend.Backend
	httpServer *http.Server
	listenAddr *net.TCPAddr
}

// NewServer creates an instance of Server.
func NewServer(conf *Config, be *backend.Backend) (*Server, error) {
	server := &Server{
		conf:    conf,
		backend: be,
	}

	router := mux.NewRouter()
	router.HandleFunc("/auth/signup", server.handleSignUp).Methods(http.MethodPost)
	router.HandleFunc("/auth/login", server.handleLogIn).Methods(http.MethodPost)
	router.HandleFunc("/auth/profile", server.withAuth(server.handleGetProfile)).Methods(http.MethodGet)
	router.HandleFunc("/auth/profile", server.withAuth(server.handleUpdateProfile)).Methods(http.MethodPut)

	router.HandleFunc("/documents", server.withAuth(server.handleCreateDocument)).Methods(http.MethodPost)
	router.HandleFunc("/documents", server.withAuth(server.handleListDocuments)).Methods(http.MethodGet)
	router.HandleFunc("/documents/{id}", server.withAuth(server.handleGetDocument)).Methods(http.MethodGet)
	router.HandleFunc("/documents/{id}", server.withAuth(server.handleUpdateDocument)).
		Methods(http.MethodPut, http.MethodPatch)
	router.HandleFunc("/documents/{id}", server.withAuth(server.handleRemoveDocument)).Methods(http.MethodDelete)
	router.HandleFunc("/documents/{id}/share", server.withAuth(server.handleShareDocument)).Methods(http.MethodPost)
	router.HandleFunc("/documents/{id}/assets/{name}", server.withAuth(server.handleUploadAsset)).
		Methods(http.MethodPut)
	router.HandleFunc("/documents/{id}/assets/{name}", server.withAuth(server.handleDownloadAsset)).
		Methods(http.MethodGet)

	router.HandleFunc("/realtime", server.withAuth(server.handleRealtime)).Methods(http.MethodGet)

	router.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)

	server.httpServer = &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return server, nil
}

// Start starts this server by opening a listener and serving in the
// background.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", s.conf.Port))
	if err != nil {
		return fmt.Errorf("listen on %d: %w", s.conf.Port, err)
	}
	s.listenAddr = listener.Addr().(*net.TCPAddr)

	go func() {
		logging.DefaultLogger().Infof("serving API on %d", s.listenAddr.Port)
		if err := s.httpServer.Serve(listener); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				logging.DefaultLogger().Errorf("HTTP server Serve: %v", err)
			}
		}
	}()

	return nil
}

// Handler returns the HTTP handler of this server for testing.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAddr returns the address this server is listening on.
func (s *Server) ListenAddr() *net.TCPAddr {
	return s.listenAddr
}

// Shutdown shuts down this server.
func (s *Server) Shutdown(graceful bool) {
	if graceful {
		_ = s.httpServer.Shutdown(context.Background())
		return
	}

	_ = s.httpServer.Close()
}
