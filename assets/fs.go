// Package assets embeds static files shipped with the binary.
package assets

import "embed"

// all: is required so the underscore-prefixed base templates are embedded.
//
//go:embed all:templates
var FS embed.FS
