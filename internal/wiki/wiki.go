// internal/wiki/wiki.go

// Package wiki answers the questions the site asks of the corpus: which
// topics exist, what a topic renders to, and which topics share a category.
package wiki

import (
	"errors"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"wikihost/internal/store"
	"wikihost/internal/wikitext"
)

// ErrTopicNotFound is returned for identifiers missing from the corpus.
var ErrTopicNotFound = errors.New("topic not found")

// Topic is a corpus entry as shown in listings.
type Topic struct {
	ID          string
	Title       string
	Description string
}

// Page is a rendered topic.
type Page struct {
	ID         string
	Title      string
	HTML       string
	Categories []string
}

// Source provides corpus snapshots.
type Source interface {
	Snapshot() store.Corpus
}

var _ wikitext.PageIndex = store.Corpus(nil)

// Service reads from a Source. Every call works on a single snapshot.
type Service struct {
	src Source
	log logrus.FieldLogger
}

// New returns a Service. A nil logger falls back to the standard logrus logger.
func New(src Source, log logrus.FieldLogger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{src: src, log: log}
}

// Topics lists every page sorted by title. A non-empty filter keeps topics
// whose title or id contains it, ignoring case.
func (s *Service) Topics(filter string) []Topic {
	corpus := s.src.Snapshot()
	filter = strings.ToLower(strings.TrimSpace(filter))

	topics := make([]Topic, 0, len(corpus))
	for id, markup := range corpus {
		title := wikitext.Title(markup)
		if filter != "" &&
			!strings.Contains(strings.ToLower(title), filter) &&
			!strings.Contains(strings.ToLower(id), filter) {
			continue
		}
		topics = append(topics, Topic{
			ID:          id,
			Title:       title,
			Description: wikitext.Description(markup),
		})
	}
	sortTopics(topics)
	return topics
}

// Topic renders one page.
func (s *Service) Topic(id string) (Page, error) {
	corpus := s.src.Snapshot()
	markup, ok := corpus.Get(id)
	if !ok {
		return Page{}, ErrTopicNotFound
	}
	doc := wikitext.Convert(markup, corpus)
	s.log.WithFields(logrus.Fields{
		"topic":      id,
		"categories": len(doc.Categories),
	}).Debug("Rendered topic")
	return Page{
		ID:         id,
		Title:      wikitext.Title(markup),
		HTML:       doc.HTML,
		Categories: doc.Categories,
	}, nil
}

// Category lists the pages tagged with [[Category:name]], sorted by title.
func (s *Service) Category(name string) []Topic {
	var topics []Topic
	for id, markup := range s.src.Snapshot() {
		if wikitext.HasCategory(markup, name) {
			topics = append(topics, Topic{ID: id, Title: wikitext.Title(markup)})
		}
	}
	sortTopics(topics)
	return topics
}

// Categories returns every category used in the corpus, sorted.
func (s *Service) Categories() []string {
	corpus := s.src.Snapshot()
	seen := make(map[string]bool)
	var names []string
	for _, markup := range corpus {
		for _, name := range wikitext.Convert(markup, corpus).Categories {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}

func sortTopics(topics []Topic) {
	sort.Slice(topics, func(i, j int) bool {
		if topics[i].Title != topics[j].Title {
			return topics[i].Title < topics[j].Title
		}
		return topics[i].ID < topics[j].ID
	})
}
