// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftboard Contributors

// Command driftboard runs the Driftboard web application.
package main

import "os"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
