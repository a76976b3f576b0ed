package jobform

import (
	"embed"
	"io/fs"

	"github.com/goliatone/go-jobform/pkg/render"
)

//go:embed locales/*.yaml
var embeddedLocales embed.FS

// LocalesFS exposes the bundled message catalogs so callers can copy or
// extend them.
func LocalesFS() fs.FS {
	sub, err := fs.Sub(embeddedLocales, "locales")
	if err != nil {
		return embeddedLocales
	}
	return sub
}

// DefaultCatalog loads the bundled catalogs with English as the fallback.
func DefaultCatalog() (*render.Catalog, error) {
	return render.LoadCatalog(LocalesFS(), "en")
}
