//go:build !dev

package main

import (
	"net/http"
	"os"

	"github.com/alorle/m3u8-editor/internal/adapter/driver"
	"github.com/alorle/m3u8-editor/internal/config"
)

// newSPAHandler serves a built frontend from disk. Without a static
// directory only the API and export routes are mounted.
func newSPAHandler(cfg *config.Config) http.Handler {
	if cfg.HTTP.StaticDir == "" {
		return nil
	}
	return driver.NewSPAHandler(os.DirFS(cfg.HTTP.StaticDir))
}
