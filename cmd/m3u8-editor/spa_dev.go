//go:build dev

package main

import (
	"net/http"
	"os"

	"github.com/alorle/m3u8-editor/internal/adapter/driver"
	"github.com/alorle/m3u8-editor/internal/config"
)

func newSPAHandler(_ *config.Config) http.Handler {
	target := os.Getenv("VITE_DEV_URL")
	if target == "" {
		target = "http://localhost:5173"
	}
	return driver.NewSPADevProxy(target)
}
