// Package gofumptplugin bridges formatting hosts to the gofumpt-based Go
// formatting engine.
package gofumptplugin

import _ "embed"

// License is the text of the LICENSE file shipped with the plugin.
//
//go:embed LICENSE
var License string
