package web

import "embed"

// Templates embeds the delivery act HTML templates.
//
//go:embed templates/documents/*.html
var Templates embed.FS
