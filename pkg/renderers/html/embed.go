package html

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tpl templates/controls/*.tpl
var embeddedTemplates embed.FS

// TemplatesFS exposes the built-in template bundle rooted at "templates".
func TemplatesFS() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return embeddedTemplates
	}
	return sub
}
