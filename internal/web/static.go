package web

import (
	_ "embed"
)

// indexHTML is the live-view page served at the root.
//
//go:embed static/index.html
var indexHTML []byte
