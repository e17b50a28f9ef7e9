// Package assets embeds the static files shipped with the gallery viewer.
// index.html is generated from index.html.tpl by cmd/minify.
package assets

import _ "embed"

// Index is the minified single-page gallery application.
//
//go:embed index.html
var Index []byte
