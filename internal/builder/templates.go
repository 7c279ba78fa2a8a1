// internal/builder/templates.go
package builder

import (
	"fmt"
	"html/template"
	"io"
	"path/filepath"
)

// Views rendered by the site. Each has a <view>.html file in the theme
// defining the "content" block.
const (
	ViewIndex    = "index"
	ViewTopic    = "topic"
	ViewCategory = "category"
	ViewPage     = "page"
)

var views = []string{ViewIndex, ViewTopic, ViewCategory, ViewPage}

// Templates holds one parsed template set per view.
type Templates struct {
	sets map[string]*template.Template
}

// LoadTemplates parses the theme in templateDir/templateName. Every view
// shares layout.html, header.html and footer.html.
func LoadTemplates(templateDir, templateName string) (*Templates, error) {
	path := filepath.Join(templateDir, templateName)
	t := &Templates{sets: make(map[string]*template.Template, len(views))}
	for _, view := range views {
		tmpl, err := template.ParseFiles(
			filepath.Join(path, "layout.html"),
			filepath.Join(path, "header.html"),
			filepath.Join(path, "footer.html"),
			filepath.Join(path, view+".html"),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s view: %w", view, err)
		}
		t.sets[view] = tmpl
	}
	return t, nil
}

// Execute renders a view. "main" is the template defined by layout.html.
func (t *Templates) Execute(w io.Writer, view string, data PageData) error {
	tmpl, ok := t.sets[view]
	if !ok {
		return fmt.Errorf("unknown view %q", view)
	}
	return tmpl.ExecuteTemplate(w, "main", data)
}
