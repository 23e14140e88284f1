// Package web holds the static HTML shells served by the API process.
package web

import (
	"embed"
	"fmt"
)

//go:embed pages/*.html
var pages embed.FS

// Page returns the embedded HTML page with the given base name, e.g. "login".
func Page(name string) ([]byte, error) {
	b, err := pages.ReadFile("pages/" + name + ".html")
	if err != nil {
		return nil, fmt.Errorf("page %q: %w", name, err)
	}
	return b, nil
}
