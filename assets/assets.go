// Package assets embeds the web page served at the site root.
package assets

import _ "embed"

// Index is the page built by cmd/minify from index.html.tpl, style.css and script.js.
//
//go:embed index.html
var Index []byte

// Favicon is the minified SVG icon.
//
//go:embed favicon.min.svg
var Favicon []byte
