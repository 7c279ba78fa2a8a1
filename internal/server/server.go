// internal/server/server.go
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/schema"
	"github.com/sirupsen/logrus"

	"wikihost/internal/builder"
	"wikihost/internal/wiki"
)

// Options configures Run.
type Options struct {
	Port  int
	Watch bool
	Debug bool
	Log   *logrus.Logger
}

// Run serves the wiki until ctx is cancelled. With Watch set, changes to the
// corpus, templates, content or static files reload the site and refresh
// connected browsers.
func Run(ctx context.Context, site *builder.Site, opts Options) error {
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	var hub *Hub
	if opts.Watch {
		hub = newHub(log)

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("could not create file watcher: %w", err)
		}
		defer watcher.Close()

		if err := watchSite(watcher, site, log); err != nil {
			return err
		}
		go watchForChanges(ctx, watcher, hub, site.Reload, log)
	}

	accessLog := log.WriterLevel(logrus.InfoLevel)
	defer accessLog.Close()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Port),
		Handler:           NewHandler(site, hub, accessLog, log, opts.Debug),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	fmt.Printf("Serving wiki on http://localhost%s\n", srv.Addr)
	fmt.Println("Press Ctrl+C to stop")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if hub != nil {
			hub.closeAll()
		}
		log.Info("Shutting down server")
		return srv.Shutdown(shutdownCtx)
	}
}

// NewHandler builds the router. A non-nil hub enables the live-reload
// endpoint and script injection.
func NewHandler(site *builder.Site, hub *Hub, accessLog io.Writer, log logrus.FieldLogger, debug bool) http.Handler {
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)
	h := &handler{site: site, log: log, decoder: decoder}

	r := mux.NewRouter()
	r.HandleFunc("/", h.index).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/topic/{id}", h.topic).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/category/{name}", h.category).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/page/{slug:.+}", h.page).Methods(http.MethodGet, http.MethodHead)
	if dir := site.Paths().StaticDir; dir != "" {
		r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.Dir(dir))))
	}

	var next http.Handler = r
	if hub != nil {
		r.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
			serveWs(hub, w, r)
		})
		next = liveReloadWrapper(r)
	}

	next = handlers.RecoveryHandler(
		handlers.RecoveryLogger(log),
		handlers.PrintRecoveryStack(debug),
	)(next)
	return handlers.CombinedLoggingHandler(accessLog, next)
}

type handler struct {
	site    *builder.Site
	log     logrus.FieldLogger
	decoder *schema.Decoder
}

type indexQuery struct {
	Query string `schema:"q"`
}

func (h *handler) index(w http.ResponseWriter, r *http.Request) {
	var q indexQuery
	if err := h.decoder.Decode(&q, r.URL.Query()); err != nil {
		http.Error(w, "invalid query", http.StatusBadRequest)
		return
	}
	h.render(w, http.StatusOK, builder.ViewIndex, h.site.IndexData(q.Query))
}

func (h *handler) topic(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	data, err := h.site.TopicData(id)
	status := http.StatusOK
	if errors.Is(err, wiki.ErrTopicNotFound) {
		status = http.StatusNotFound
	}
	h.render(w, status, builder.ViewTopic, data)
}

func (h *handler) category(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	h.render(w, http.StatusOK, builder.ViewCategory, h.site.CategoryData(name))
}

func (h *handler) page(w http.ResponseWriter, r *http.Request) {
	data, err := h.site.MarkdownData(mux.Vars(r)["slug"])
	if errors.Is(err, builder.ErrPageNotFound) {
		http.NotFound(w, r)
		return
	}
	h.render(w, http.StatusOK, builder.ViewPage, data)
}

// render buffers the view so a template error can still become a 500.
func (h *handler) render(w http.ResponseWriter, status int, view string, data builder.PageData) {
	var buf bytes.Buffer
	if err := h.site.Render(&buf, view, data); err != nil {
		h.log.WithError(err).WithField("view", view).Error("Failed to render view")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

// watchSite adds the corpus directory and every template, content and static
// directory to the watcher. Files are watched through their parent directory
// so editors that save by renaming are still seen.
func watchSite(watcher *fsnotify.Watcher, site *builder.Site, log logrus.FieldLogger) error {
	watchedDirs := make(map[string]bool)
	addWatch := func(dir string) {
		dir = filepath.Clean(dir)
		if watchedDirs[dir] {
			return
		}
		if err := watcher.Add(dir); err != nil {
			log.WithError(err).WithField("dir", dir).Warn("Could not watch directory")
			return
		}
		log.WithField("dir", dir).Debug("Watching directory")
		watchedDirs[dir] = true
	}

	addWatch(filepath.Dir(site.CorpusPath()))

	paths := site.Paths()
	for _, root := range []string{paths.TemplateDir, paths.ContentDir, paths.StaticDir} {
		if root == "" {
			continue
		}
		info, err := os.Stat(root)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return fmt.Errorf("could not stat path %s: %w", root, err)
		}
		if !info.IsDir() {
			addWatch(filepath.Dir(root))
			continue
		}
		if err := filepath.Walk(root, func(walkPath string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				addWatch(walkPath)
			}
			return nil
		}); err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", root, err)
		}
	}
	return nil
}

func watchForChanges(ctx context.Context, watcher *fsnotify.Watcher, hub *Hub, reload func() error, log logrus.FieldLogger) {
	var lastReload time.Time
	const debounceDuration = 500 * time.Millisecond

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			if time.Since(lastReload) <= debounceDuration {
				continue
			}
			// Let the editor finish writing.
			time.Sleep(100 * time.Millisecond)

			log.WithField("file", event.Name).Info("Change detected, reloading")
			if err := reload(); err != nil {
				log.WithError(err).Error("Reload failed")
			} else {
				hub.broadcastMessage([]byte("reload"))
			}
			lastReload = time.Now()
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.WithError(err).Warn("Watcher error")
		}
	}
}

func liveReloadWrapper(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")

		if r.URL.Path == "/ws" || strings.HasPrefix(r.URL.Path, "/static/") {
			next.ServeHTTP(w, r)
			return
		}

		iw := newInterceptingWriter(w)
		next.ServeHTTP(iw, r)

		for key, values := range iw.Header() {
			for _, value := range values {
				w.Header().Add(key, value)
			}
		}

		bodyBytes := iw.body.Bytes()
		isHTML := strings.HasPrefix(iw.header.Get("Content-Type"), "text/html")

		if iw.statusCode != http.StatusOK || !isHTML {
			w.WriteHeader(iw.statusCode)
			w.Write(bodyBytes)
			return
		}

		injectedBody := bytes.Replace(bodyBytes, []byte("</body>"), []byte(liveReloadScript+"</body>"), 1)
		w.Header().Set("Content-Length", fmt.Sprint(len(injectedBody)))
		w.WriteHeader(iw.statusCode)
		w.Write(injectedBody)
	})
}

type interceptingWriter struct {
	http.ResponseWriter
	body       *bytes.Buffer
	statusCode int
	header     http.Header
}

func newInterceptingWriter(w http.ResponseWriter) *interceptingWriter {
	return &interceptingWriter{
		ResponseWriter: w,
		body:           new(bytes.Buffer),
		header:         make(http.Header),
		statusCode:     http.StatusOK,
	}
}

func (iw *interceptingWriter) Header() http.Header {
	return iw.header
}

func (iw *interceptingWriter) Write(b []byte) (int, error) {
	return iw.body.Write(b)
}

func (iw *interceptingWriter) WriteHeader(statusCode int) {
	iw.statusCode = statusCode
}

const liveReloadScript = `
<script>
  (function() {
    let socket = new WebSocket("ws://" + window.location.host + "/ws");
    socket.onmessage = function(event) {
      if (event.data === "reload") {
        window.location.reload();
      }
    };
    socket.onerror = function() {
      console.error("Live reload connection error. Please restart 'wikihost serve --watch'.");
    };
  })();
</script>
`
