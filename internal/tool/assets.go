package tool

import (
	"embed"
	"io/fs"
)

//go:embed assets
var embedded embed.FS

// DefaultAssets returns the bundled tool scripts laid out at their fixed
// asset paths (js/jslint.lua, js/beautifier.lua, ...).
func DefaultAssets() fs.FS {
	sub, err := fs.Sub(embedded, "assets")
	if err != nil {
		panic(err)
	}
	return sub
}
