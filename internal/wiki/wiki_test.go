package wiki

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wikihost/internal/store"
)

func newService(t *testing.T) *Service {
	t.Helper()
	s := store.New("unused.json", map[string]string{
		"go":     "= Go =\nGo\nGo is a language by [[google]].\n[[Category:Languages]]",
		"rust":   "= Rust =\n== Overview ==\nRust is a systems language.\n[[Category:Languages]]\n[[Category:Systems]]",
		"google": "= Google =\nA company.",
		"awk":    "= AWK =\n* list only",
	})
	logger, _ := test.NewNullLogger()
	return New(s, logger)
}

func TestTopics(t *testing.T) {
	t.Parallel()

	svc := newService(t)
	topics := svc.Topics("")

	require.Len(t, topics, 4)
	assert.Equal(t, []Topic{
		{ID: "awk", Title: "AWK", Description: ""},
		{ID: "go", Title: "Go", Description: "Go"},
		{ID: "google", Title: "Google", Description: "A company."},
		{ID: "rust", Title: "Rust", Description: "Rust is a systems language."},
	}, topics)
}

func TestTopicsFilter(t *testing.T) {
	t.Parallel()

	svc := newService(t)

	got := svc.Topics("  RU ")
	require.Len(t, got, 1)
	assert.Equal(t, "rust", got[0].ID)

	assert.Len(t, svc.Topics("go"), 2)
	assert.Empty(t, svc.Topics("cobol"))
}

func TestTopic(t *testing.T) {
	t.Parallel()

	svc := newService(t)

	page, err := svc.Topic("go")
	require.NoError(t, err)
	assert.Equal(t, "Go", page.Title)
	assert.Equal(t, []string{"Languages"}, page.Categories)
	assert.Contains(t, page.HTML, `<a href="/topic/google">google</a>`)
	assert.NotContains(t, page.HTML, "<p>Go</p>", "duplicate title is suppressed")

	_, err = svc.Topic("cobol")
	assert.ErrorIs(t, err, ErrTopicNotFound)
}

func TestTopicLogsAtDebug(t *testing.T) {
	t.Parallel()

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	svc := New(store.New("unused.json", map[string]string{"x": "= X ="}), logger)

	_, err := svc.Topic("x")
	require.NoError(t, err)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "x", hook.LastEntry().Data["topic"])
}

func TestCategory(t *testing.T) {
	t.Parallel()

	svc := newService(t)

	langs := svc.Category("Languages")
	assert.Equal(t, []Topic{{ID: "go", Title: "Go"}, {ID: "rust", Title: "Rust"}}, langs)
	assert.Empty(t, svc.Category("Lang"))
}

func TestCategories(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"Languages", "Systems"}, newService(t).Categories())
}
