// Package templates embeds the project templates shipped with mkservice.
package templates

import (
	"embed"
	iofs "io/fs"
)

// Default is the name of the template used for new services.
const Default = "node-express"

//go:embed all:node-express
var embedded embed.FS

// Embedded returns the named built-in template rooted at its directory.
func Embedded(name string) (iofs.FS, error) {
	return iofs.Sub(embedded, name)
}

// Names lists the built-in templates.
func Names() []string {
	entries, _ := iofs.ReadDir(embedded, ".")
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names
}
