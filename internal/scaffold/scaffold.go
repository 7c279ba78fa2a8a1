// internal/scaffold/scaffold.go
package scaffold

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"wikihost/internal/config"
	"wikihost/internal/store"
)

// ErrTopicExists is returned by CreateNewTopic for identifiers already in the corpus.
var ErrTopicExists = errors.New("topic already exists")

// CreateNewSite writes a starter wiki into the directory name.
func CreateNewSite(name string) error {
	fmt.Println("Scaffolding new wiki in:", name)
	mkdir := func(path string) error { return os.MkdirAll(filepath.Join(name, path), 0755) }
	writeFile := func(path, content string) error {
		return os.WriteFile(filepath.Join(name, path), []byte(content), 0644)
	}
	dirs := []string{"content", "static/css", "templates/simple", "archetypes"}
	for _, dir := range dirs {
		if err := mkdir(dir); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	files := map[string]string{
		"wiki.yaml":                      siteYamlContent,
		config.DefaultPages:              corpusContent,
		"content/about.md":               aboutMdContent,
		"archetypes/default.wiki":        archetypeDefaultWikiContent,
		"static/css/style.css":           staticCssContent,
		"templates/simple/layout.html":   templateLayoutHtmlContent,
		"templates/simple/header.html":   templateHeaderHtmlContent,
		"templates/simple/footer.html":   templateFooterHtmlContent,
		"templates/simple/index.html":    templateIndexHtmlContent,
		"templates/simple/topic.html":    templateTopicHtmlContent,
		"templates/simple/category.html": templateCategoryHtmlContent,
		"templates/simple/page.html":     templatePageHtmlContent,
	}
	for path, content := range files {
		if err := writeFile(path, content); err != nil {
			return fmt.Errorf("failed to write file %s: %w", path, err)
		}
	}
	fmt.Println("Wiki scaffolded. You can now:")
	fmt.Println("  cd", name)
	fmt.Println("  wikihost serve --watch")
	return nil
}

// CreateNewTopic adds a page to the corpus from archetypes/default.wiki.
func CreateNewTopic(id, title, configPath string) error {
	site, err := config.LoadSiteConfig(configPath)
	if err != nil {
		return err
	}
	return createTopic(id, title,
		config.ResolvePath(configPath, site.Pages),
		config.ResolvePath(configPath, filepath.Join("archetypes", "default.wiki")))
}

func createTopic(id, title, corpusPath, archetypePath string) error {
	st, err := store.Load(corpusPath)
	if err != nil {
		return err
	}
	if st.Snapshot().Has(id) {
		return fmt.Errorf("%w: %s", ErrTopicExists, id)
	}

	tmplBytes, err := os.ReadFile(archetypePath)
	if err != nil {
		return fmt.Errorf("could not read archetype file %s: %w", archetypePath, err)
	}

	tmpl, err := template.New("archetype").Parse(string(tmplBytes))
	if err != nil {
		return fmt.Errorf("failed to parse archetype file %s: %w", archetypePath, err)
	}

	data := struct {
		ID    string
		Title string
	}{
		ID:    id,
		Title: title,
	}

	var output bytes.Buffer
	if err := tmpl.Execute(&output, data); err != nil {
		return fmt.Errorf("failed to execute archetype template: %w", err)
	}

	if err := st.Put(id, output.String()); err != nil {
		return err
	}
	if err := st.Save(); err != nil {
		return err
	}

	fmt.Printf("Created topic %s in %s\n", id, corpusPath)
	return nil
}

// Constants for default file contents
const siteYamlContent = `title: My Wiki
description: A new wiki powered by wikihost.
baseurl: /
template: simple
pages: all_wikipages.json
`

const corpusContent = `{
  "Go": "= Go =\nGo\nGo is a programming language designed at [[Google]].\n== Features ==\n* Garbage collection\n* Goroutines and channels\n\nIt is often compared with [[Rust]].\n== External Links ==\n* [The Go website](https://go.dev)\n[[Category:Programming Languages]]",
  "Google": "= Google =\nGoogle is a technology company.\n[[Category:Companies]]"
}
`

const aboutMdContent = `---
title: About
description: What this wiki is.
---

# About this wiki

Pages are written in WikiText and stored in ` + "`all_wikipages.json`" + `.
Start with the [Go](topic:Go) topic.
`

const archetypeDefaultWikiContent = `= {{.Title}} =
Write something meaningful about {{.Title}} here.

== External Links ==

[[Category:Uncategorized]]
`

const staticCssContent = `body {
  font-family: sans-serif;
  max-width: 760px;
  margin: 2em auto;
  padding: 0 1em;
  line-height: 1.6;
  color: #222;
  background: #fdfdfd;
}
header { display: flex; justify-content: space-between; align-items: baseline; margin-bottom: 2em; }
header a { color: #222; text-decoration: none; }
main { margin-bottom: 3em; }
a.new { color: #ba0000; }
.topics li p { margin: 0 0 0.75em; color: #555; }
.categories { margin-top: 2em; padding: 0.5em; border: 1px solid #ccc; background: #f8f9fa; }
.category { display: inline-block; margin-right: 1em; }
footer { text-align: center; font-size: 0.9em; color: #555; }
`

const templateLayoutHtmlContent = `{{ define "main" }}
<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>{{ .Title }} | {{ .Site.Title }}</title>
  <link rel="stylesheet" href="{{ .Site.BaseURL }}static/css/style.css">
  <meta name="description" content="{{ .Description }}">
</head>
<body>
  {{ template "header" . }}
  <main>
    {{ template "content" . }}
  </main>
  {{ template "footer" . }}
</body>
</html>
{{ end }}`

const templateHeaderHtmlContent = `{{ define "header" }}
<header>
  <a class="site-name" href="{{ .Site.BaseURL }}">{{ .Site.Title }}</a>
  <nav><a href="{{ .Site.BaseURL }}page/about">about</a></nav>
</header>
{{ end }}`

const templateFooterHtmlContent = `{{ define "footer" }}
<footer>
  &copy; {{ .Site.Title }}
</footer>
{{ end }}`

const templateIndexHtmlContent = `{{ define "content" }}
<h1>{{ .Site.Title }}</h1>
<form method="get" action="{{ .Site.BaseURL }}">
  <input type="search" name="q" value="{{ .Query }}" placeholder="Filter topics">
</form>
<ul class="topics">
{{ range .Topics }}
  <li><a href="{{ $.Site.BaseURL }}topic/{{ .ID }}">{{ .Title }}</a>{{ if .Description }}<p>{{ .Description }}</p>{{ end }}</li>
{{ else }}
  <li>No topics found.</li>
{{ end }}
</ul>
{{ end }}`

const templateTopicHtmlContent = `{{ define "content" }}
<article>
  <h1>{{ .Title }}</h1>
  {{ .Content }}
</article>
{{ end }}`

const templateCategoryHtmlContent = `{{ define "content" }}
<h1>Category: {{ .Category }}</h1>
<ul>
{{ range .Topics }}
  <li><a href="{{ $.Site.BaseURL }}topic/{{ .ID }}">{{ .Title }}</a></li>
{{ else }}
  <li>No pages in this category.</li>
{{ end }}
</ul>
{{ end }}`

const templatePageHtmlContent = `{{ define "content" }}
<article>
  {{ .Content }}
</article>
{{ end }}`
