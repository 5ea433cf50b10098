package main

import (
	"os"
)

// @title Bookkeeping Core API
// @version 1.0
// @description Multi-currency double-entry posting and balance reconciliation.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
