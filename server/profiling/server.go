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

// Package profiling provides a server for profiling and metrics.
package profiling

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/coedit-team/coedit/server/logging"
	"github.com/coedit-team/coedit/server/profiling/prometheus"
)

const httpPrefixPProf = "/debug/pprof"

// Server serves information for profiling, such as metrics and pprof.
type Server struct {
	conf       *Config
	serverMux  *http.ServeMux
	httpServer *http.Server
}

// NewServer creates an instance of Server.
func NewServer(conf *Config, metrics *prometheus.Metrics) *Server {
	serverMux := http.NewServeMux()
	serverMux.Handle("/metrics", promhttp.HandlerFor(
		metrics.Registry(),
		promhttp.HandlerOpts{},
	))

	if conf.EnablePprof {
		serverMux.Handle(httpPrefixPProf+"/", http.HandlerFunc(pprof.Index))
		serverMux.Handle(httpPrefixPProf+"/profile", http.HandlerFunc(pprof.Profile))
		serverMux.Handle(httpPrefixPProf+"/symbol", http.HandlerFunc(pprof.Symbol))
		serverMux.Handle(httpPrefixPProf+"/cmdline", http.HandlerFunc(pprof.Cmdline))
		serverMux.Handle(httpPrefixPProf+"/trace", http.HandlerFunc(pprof.Trace))
	}

	return &Server{
		conf:      conf,
		serverMux: serverMux,
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", conf.Port),
			Handler:           serverMux,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Start starts the server.
func (s *Server) Start() error {
	go func() {
		logging.DefaultLogger().Infof("serving profiling on %d", s.conf.Port)
		if err := s.httpServer.ListenAndServe(); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				logging.DefaultLogger().Errorf("HTTP server ListenAndServe: %v", err)
			}
		}
	}()

	return nil
}

// Shutdown shuts down this server.
func (s *Server) Shutdown(graceful bool) {
	if graceful {
		_ = s.httpServer.Shutdown(context.Background())
		return
	}

	_ = s.httpServer.Close()
}
