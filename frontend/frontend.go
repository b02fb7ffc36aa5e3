// Package frontend provides the embedded dashboard user interface.
package frontend

import (
	"embed"
	"io/fs"
)

// Files contains the embedded web frontend.
//
//go:embed dist/*
var Files embed.FS

// Dist returns the frontend rooted at dist/.
func Dist() fs.FS {
	sub, err := fs.Sub(Files, "dist")
	if err != nil {
		panic(err)
	}
	return sub
}
