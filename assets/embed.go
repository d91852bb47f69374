// Package assets bundles files shipped inside the server binary.
package assets

import (
	"embed"
	"io/fs"
	"sort"
)

//go:embed sql/*.sql
var FS embed.FS

// Migrations returns the embedded SQL migration names in apply order.
func Migrations() ([]string, error) {
	entries, err := fs.ReadDir(FS, "sql")
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() {
			out = append(out, "sql/"+e.Name())
		}
	}
	sort.Strings(out)
	return out, nil
}
