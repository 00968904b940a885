// Package views carries the HTML templates compiled into the server binary.
package views

import "embed"

//go:embed layouts pages partials
var FS embed.FS
