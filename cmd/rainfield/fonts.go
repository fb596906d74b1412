package main

import (
	"github.com/gogpu/gg/text"

	"github.com/lixenwraith/rainfield/render/raster"
)

// loadFont reads path, nil selects the bundled fallback
func loadFont(path string) (*text.FontSource, error) {
	if path == "" {
		return nil, nil
	}
	return raster.LoadFont(path)
}
