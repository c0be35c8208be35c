// Package views holds the HTML templates and their helper functions.
package views

import (
	"embed"
	"html/template"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed *.html
var FS embed.FS

// VND formats an amount the vi-VN way: "200.000 đ".
func VND(v int64) string {
	return message.NewPrinter(language.Vietnamese).Sprintf("%d", v) + " đ"
}

// ImageSrc lets inline data URLs and https placeholders through html/template
// and drops anything else.
func ImageSrc(s string) template.URL {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:image/") || strings.HasPrefix(s, "https://") {
		return template.URL(s)
	}
	return ""
}

func Funcs() template.FuncMap {
	return template.FuncMap{
		"add":    func(a, b int) int { return a + b },
		"vnd":    VND,
		"imgsrc": ImageSrc,
	}
}

const devGlob = "internal/views/*.html"

// Load parses the templates. In dev they are read from disk so edits show
// up without a rebuild; outside the repo root the embedded copy is used.
func Load(dev bool) (*template.Template, error) {
	t := template.New("layout").Funcs(Funcs())
	if dev {
		if matches, _ := filepath.Glob(devGlob); len(matches) > 0 {
			return t.ParseFiles(matches...)
		}
		log.Warn().Str("glob", devGlob).Msg("templates not found on disk, using embedded copy")
	}
	return t.ParseFS(FS, "*.html")
}
