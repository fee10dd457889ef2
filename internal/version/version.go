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

// Package version provides the version information of the server.
package version

import "runtime"

var (
	// Version is the version of the server. It is set by the build flags.
	Version = "0.1.0"

	// GitCommit is the git commit hash. It is set by the build flags.
	GitCommit = ""

	// BuildDate is the date of the build. It is set by the build flags.
	BuildDate = ""
)

// GoVersion returns the version of the Go runtime the binary was built with.
func GoVersion() string {
	return runtime.Version()
}
