// Package web embeds the browser panel page served by the panel server.
//
// The page is plain HTML and JavaScript with no build step. When
// RECPANEL_WEB_DIR points at a directory, that directory is served instead so
// the page can be edited without rebuilding the binary.
package web

import (
	"embed"
	"io/fs"
	"os"
)

// DevDirEnv names the environment variable that overrides the embedded page.
const DevDirEnv = "RECPANEL_WEB_DIR"

//go:embed dist/*
var assets embed.FS

// Assets returns the page's files, rooted so that "index.html" is at the top.
func Assets() fs.FS {
	if dir := os.Getenv(DevDirEnv); dir != "" {
		if stat, err := os.Stat(dir); err == nil && stat.IsDir() {
			return os.DirFS(dir)
		}
	}
	return Embedded()
}

// Embedded returns the files compiled into the binary.
func Embedded() fs.FS {
	sub, err := fs.Sub(assets, "dist")
	if err != nil {
		// Only possible if the embed directive and the path disagree.
		panic("failed to access embedded web assets: " + err.Error())
	}
	return sub
}
