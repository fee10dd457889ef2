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

package backend

import (
	"fmt"
	"time"
)

// Config is the configuration for creating a Backend instance.
type Config struct {
	// SecretKey is the secret key used to sign session tokens.
	SecretKey string `yaml:"SecretKey"`

	// TokenDuration is how long an issued session token stays valid.
	TokenDuration string `yaml:"TokenDuration"`

	// AssetsPath is the directory where document attachments are stored.
	AssetsPath string `yaml:"AssetsPath"`
}

// Validate returns an error if the provided Config is invalidated.
func (c *Config) Validate() error {
	if c.SecretKey == "" {
		return fmt.Errorf("backend secret key must not be empty")
	}

	if _, err := time.ParseDuration(c.TokenDuration); err != nil {
		return fmt.Errorf(
			`invalid argument "%s" for "--token-duration" flag: %w`,
			c.TokenDuration,
			err,
		)
	}

	return nil
}

// ParseTokenDuration returns the token duration.
func (c *Config) ParseTokenDuration() (time.Duration, error) {
	d, err := time.ParseDuration(c.TokenDuration)
	if err != nil {
		return 0, fmt.Errorf("parse token duration: %w", err)
	}
	return d, nil
}
