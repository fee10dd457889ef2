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

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/coedit-team/coedit/server"
	"github.com/coedit-team/coedit/server/backend/database/mongo"
	"github.com/coedit-team/coedit/server/logging"
)

var (
	gracefulTimeout = 10 * time.Second

	flagConfPath string
	flagLogLevel string

	flagMongo bool

	conf = server.NewConfig()

	mongoConnectionURI     string
	mongoConnectionTimeout string
	mongoPingTimeout       string
	mongoDatabase          string
)

func newServerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "server [options]",
		Short: "Start CoEdit server",
		RunE: func(_ *cobra.Command, _ []string) error {
			if flagConfPath != "" {
				parsed, err := server.NewConfigFromFile(flagConfPath)
				if err != nil {
					return fmt.Errorf(
						"fail to create config: parse %s: %w",
						flagConfPath,
						err,
					)
				}
				conf = parsed
			} else if flagMongo {
				conf.Mongo = &mongo.Config{
					ConnectionURI:     mongoConnectionURI,
					ConnectionTimeout: mongoConnectionTimeout,
					PingTimeout:       mongoPingTimeout,
					Database:          mongoDatabase,
				}
			}

			if key := os.Getenv("COEDIT_SECRET_KEY"); key != "" {
				conf.Backend.SecretKey = key
			}

			if err := logging.SetLogLevel(flagLogLevel); err != nil {
				return err
			}

			r, err := server.New(conf)
			if err != nil {
				return err
			}

			if err := r.Start(); err != nil {
				return err
			}

			if code := handleSignal(r); code != 0 {
				os.Exit(code)
			}

			return nil
		},
	}
}

func handleSignal(r *server.CoEdit) int {
	signalCh := make(chan os.Signal, 4)
	signal.Notify(signalCh, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)

	var sig os.Signal
	select {
	case s := <-signalCh:
		sig = s
	case <-r.ShutdownCh():
		// server is already shutdown
		return 0
	}

	graceful := false
	if sig == syscall.SIGHUP {
		graceful = true
	}

	gracefulCh := make(chan struct{})
	go func() {
		if err := r.Shutdown(graceful); err != nil {
			logging.DefaultLogger().Error(err)
			return
		}
		close(gracefulCh)
	}()

	select {
	case <-signalCh:
		return 1
	case <-gracefulCh:
		return 0
	case <-time.After(gracefulTimeout):
		return 1
	}
}

func init() {
	cmd := newServerCmd()
	cmd.Flags().StringVarP(
		&flagConfPath,
		"config",
		"c",
		"",
		"Config path",
	)
	cmd.Flags().StringVarP(
		&flagLogLevel,
		"log-level",
		"l",
		"info",
		"Log level: debug, info, warn, error, panic, fatal",
	)
	cmd.Flags().IntVar(
		&conf.RPC.Port,
		"rpc-port",
		server.DefaultRPCPort,
		"RPC port",
	)
	cmd.Flags().IntVar(
		&conf.Profiling.Port,
		"profiling-port",
		server.DefaultProfilingPort,
		"Profiling port",
	)
	cmd.Flags().BoolVar(
		&conf.Profiling.EnablePprof,
		"pprof-enabled",
		false,
		"Enable runtime profiling data via HTTP server.",
	)
	cmd.Flags().StringVar(
		&conf.Backend.TokenDuration,
		"token-duration",
		server.DefaultTokenDuration,
		"How long issued session tokens stay valid.",
	)
	cmd.Flags().StringVar(
		&conf.Backend.AssetsPath,
		"assets-path",
		server.DefaultAssetsPath,
		"Directory where document attachments are stored.",
	)
	cmd.Flags().BoolVar(
		&flagMongo,
		"mongo",
		false,
		"Use MongoDB as the durable store instead of the embedded memory store.",
	)
	cmd.Flags().StringVar(
		&mongoConnectionURI,
		"mongo-connection-uri",
		server.DefaultMongoConnectionURI,
		"MongoDB's connection URI",
	)
	cmd.Flags().StringVar(
		&mongoConnectionTimeout,
		"mongo-connection-timeout",
		server.DefaultMongoConnectionTimeout,
		"Mongo DB's connection timeout",
	)
	cmd.Flags().StringVar(
		&mongoPingTimeout,
		"mongo-ping-timeout",
		server.DefaultMongoPingTimeout,
		"Mongo DB's ping timeout",
	)
	cmd.Flags().StringVar(
		&mongoDatabase,
		"mongo-database",
		server.DefaultMongoDatabase,
		"Mongo DB's database name",
	)

	rootCmd.AddCommand(cmd)
}
