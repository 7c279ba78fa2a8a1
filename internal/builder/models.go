// internal/builder/models.go
package builder

import (
	"html/template"

	"wikihost/internal/config"
	"wikihost/internal/wiki"
)

// PageMeta holds the front matter of a markdown side page.
type PageMeta struct {
	Title       string                 `yaml:"title"`
	Description string                 `yaml:"description"`
	Draft       bool                   `yaml:"draft"`
	Params      map[string]interface{} `yaml:",inline"`
}

// PageData is the struct passed to templates. Views use the fields that
// apply to them: index reads Topics and Query, category reads Category and
// Topics, topic and page read Content.
type PageData struct {
	Site        config.SiteConfig
	Title       string
	Description string
	Content     template.HTML
	Topics      []wiki.Topic
	Categories  []string
	Category    string
	Query       string
	Params      map[string]interface{}
}
