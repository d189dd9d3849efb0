//go:build tools

package tools

// Pins the goose CLI used to author new files under internal/adapters/postgres/migrations:
//
//	go run github.com/pressly/goose/v3/cmd/goose -dir internal/adapters/postgres/migrations create <name> sql
import (
	_ "github.com/pressly/goose/v3/cmd/goose"
)
