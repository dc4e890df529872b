// Package embedded bundles a small sample of the regions, departments and
// referendum datasets so the CLI can be tried without downloading them.
package embedded

import (
	"embed"
	"io/fs"
)

// FS embeds the sample datasets at build time.
//
//go:embed sample/*
var FS embed.FS

// Sample returns the sample datasets rooted so that the default file
// names resolve directly.
func Sample() fs.FS {
	sub, err := fs.Sub(FS, "sample")
	if err != nil {
		// fs.Sub only fails on an invalid path, and "sample" is valid.
		panic(err)
	}
	return sub
}
