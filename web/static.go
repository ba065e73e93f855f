// Package web embeds the static pages served by the HTTP transport.
package web

import "embed"

//go:embed static
var Static embed.FS
