//go:build tools
// +build tools

// Package tools tracks tool dependencies for the project.
// This keeps `go mod tidy` from dropping the architecture checker.
package tools

import (
	_ "github.com/arch-go/arch-go"
)
