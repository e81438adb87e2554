package images

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/umoja/ujenzi/internal/models"
)

// rasterExtensions are the file types the web UI can render inline.
var rasterExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
}

// FilterDisplayable drops scored images whose file is missing from dir or
// whose extension is not a raster type. It runs after Match so scoring
// stays a pure function of the catalog.
func FilterDisplayable(scored []models.ScoredImage, dir string) []models.ScoredImage {
	displayable := make([]models.ScoredImage, 0, len(scored))
	for _, image := range scored {
		ext := strings.ToLower(filepath.Ext(image.Record.Filename))
		if !rasterExtensions[ext] {
			continue
		}
		if _, err := os.Stat(filepath.Join(dir, image.Record.Filename)); err != nil {
			continue
		}
		displayable = append(displayable, image)
	}
	return displayable
}
