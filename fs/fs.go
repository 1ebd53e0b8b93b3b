// Package appfs embeds the static assets shipped with the binaries.
package appfs

import "embed"

// templates/email/* is globbed: embedding the directory would skip the _base layouts.
//go:embed migrations templates/email/*
var FS embed.FS
