// internal/builder/site.go
package builder

import (
	"errors"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"wikihost/internal/config"
	"wikihost/internal/store"
	"wikihost/internal/wiki"
)

// ErrPageNotFound is returned for unknown markdown side pages.
var ErrPageNotFound = errors.New("page not found")

const (
	notFoundTitle   = "Topic Not Found"
	notFoundContent = "<p>The requested page does not exist yet.</p>"
)

type BuildOptions struct {
	CleanDestination bool
	Unsafe           bool
	Debug            bool
}

// Paths locates the on-disk inputs of a site.
type Paths struct {
	TemplateDir string
	ContentDir  string
	StaticDir   string
}

// MarkdownPage is a rendered side page from the content directory.
type MarkdownPage struct {
	Slug string
	Meta PageMeta
	HTML string
}

// Site ties the corpus, templates and side pages together. Both the server
// and the static export render through it.
type Site struct {
	cfg   config.SiteConfig
	store *store.Store
	wiki  *wiki.Service
	paths Paths
	opts  BuildOptions
	log   logrus.FieldLogger

	mu    sync.RWMutex
	tmpl  *Templates
	pages map[string]MarkdownPage
}

// NewSite loads templates and side pages for the given corpus.
func NewSite(cfg config.SiteConfig, st *store.Store, paths Paths, opts BuildOptions, log logrus.FieldLogger) (*Site, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &Site{
		cfg:   cfg,
		store: st,
		wiki:  wiki.New(st, log),
		paths: paths,
		opts:  opts,
		log:   log,
	}
	if err := s.loadAssets(); err != nil {
		return nil, err
	}
	return s, nil
}

// Config returns the site configuration.
func (s *Site) Config() config.SiteConfig {
	return s.cfg
}

// Wiki returns the service used to query the corpus.
func (s *Site) Wiki() *wiki.Service {
	return s.wiki
}

// Paths returns the on-disk inputs of the site.
func (s *Site) Paths() Paths {
	return s.paths
}

// CorpusPath returns the path of the JSON corpus.
func (s *Site) CorpusPath() string {
	return s.store.Path()
}

// Reload re-reads the corpus, templates and side pages. On error the
// previous state is kept.
func (s *Site) Reload() error {
	if err := s.store.Reload(); err != nil {
		return err
	}
	return s.loadAssets()
}

func (s *Site) loadAssets() error {
	tmpl, err := LoadTemplates(s.paths.TemplateDir, s.cfg.Template)
	if err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}
	pages, err := loadMarkdownPages(s.paths.ContentDir, s.opts)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.tmpl = tmpl
	s.pages = pages
	s.mu.Unlock()
	s.log.WithField("pages", len(pages)).Debug("Loaded templates and side pages")
	return nil
}

// PageSlugs lists the side pages in sorted order.
func (s *Site) PageSlugs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	slugs := make([]string, 0, len(s.pages))
	for slug := range s.pages {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	return slugs
}

// IndexData lists the topics, optionally filtered.
func (s *Site) IndexData(query string) PageData {
	return PageData{
		Site:        s.cfg,
		Title:       s.cfg.Title,
		Description: s.cfg.Description,
		Topics:      s.wiki.Topics(query),
		Query:       query,
	}
}

// TopicData renders a topic. For unknown topics it returns the not-found
// page together with wiki.ErrTopicNotFound.
func (s *Site) TopicData(id string) (PageData, error) {
	page, err := s.wiki.Topic(id)
	if err != nil {
		return PageData{
			Site:    s.cfg,
			Title:   notFoundTitle,
			Content: template.HTML(notFoundContent),
		}, err
	}
	return PageData{
		Site:        s.cfg,
		Title:       page.Title,
		Description: s.cfg.Description,
		Content:     template.HTML(sanitize(page.HTML, s.opts)),
		Categories:  page.Categories,
	}, nil
}

// CategoryData lists the topics in a category.
func (s *Site) CategoryData(name string) PageData {
	return PageData{
		Site:        s.cfg,
		Title:       "Category: " + name,
		Description: s.cfg.Description,
		Category:    name,
		Topics:      s.wiki.Category(name),
	}
}

// MarkdownData returns a side page.
func (s *Site) MarkdownData(slug string) (PageData, error) {
	s.mu.RLock()
	page, ok := s.pages[slug]
	s.mu.RUnlock()
	if !ok {
		return PageData{}, ErrPageNotFound
	}
	data := PageData{
		Site:        s.cfg,
		Title:       page.Meta.Title,
		Description: page.Meta.Description,
		Content:     template.HTML(page.HTML),
		Params:      page.Meta.Params,
	}
	if data.Title == "" {
		data.Title = page.Slug
	}
	if data.Description == "" {
		data.Description = s.cfg.Description
	}
	return data, nil
}

// Render executes a view with the current templates.
func (s *Site) Render(w io.Writer, view string, data PageData) error {
	s.mu.RLock()
	tmpl := s.tmpl
	s.mu.RUnlock()
	return tmpl.Execute(w, view, data)
}

// loadMarkdownPages renders every .md file below contentDir. A missing
// directory means the site has no side pages.
func loadMarkdownPages(contentDir string, opts BuildOptions) (map[string]MarkdownPage, error) {
	pages := make(map[string]MarkdownPage)
	if contentDir == "" {
		return pages, nil
	}
	if _, err := os.Stat(contentDir); errors.Is(err, os.ErrNotExist) {
		return pages, nil
	}

	err := filepath.Walk(contentDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || filepath.Ext(info.Name()) != ".md" {
			return nil
		}

		contentBytes, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read file %s: %w", path, err)
		}
		if !utf8.Valid(contentBytes) {
			return fmt.Errorf("content file is not valid UTF-8: %s", path)
		}

		meta, htmlOut, err := processMarkdown(contentBytes, opts)
		if err != nil {
			return fmt.Errorf("failed to process content for %s: %w", path, err)
		}
		if meta.Draft {
			return nil
		}

		relPath, err := filepath.Rel(contentDir, path)
		if err != nil {
			return err
		}
		slug := filepath.ToSlash(strings.TrimSuffix(relPath, ".md"))
		pages[slug] = MarkdownPage{Slug: slug, Meta: meta, HTML: htmlOut}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pages, nil
}
