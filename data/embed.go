// Package data embeds the sample fixtures the dashboard ships with.
package data

import "embed"

//go:embed *.json
var FS embed.FS
