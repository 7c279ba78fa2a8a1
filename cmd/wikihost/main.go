// cmd/wikihost/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"

	"wikihost/internal/builder"
	"wikihost/internal/config"
	"wikihost/internal/scaffold"
	"wikihost/internal/server"
	"wikihost/internal/store"
	"wikihost/internal/wiki"
)

type appConfig struct {
	debug      bool
	unsafe     bool
	configPath string
}

const (
	contentDir  = "content"
	templateDir = "templates"
	staticDir   = "static"
	outputDir   = "public"
	configFile  = "wiki.yaml"
)

func main() {
	appCfg := appConfig{}
	flag.BoolVar(&appCfg.debug, "debug", false, "Enable debug logging.")
	flag.BoolVar(&appCfg.unsafe, "unsafe", false, "Disable HTML sanitization of rendered pages.")
	flag.StringVar(&appCfg.configPath, "config", configFile, "Path to the wiki configuration file.")
	flag.CommandLine.SetInterspersed(false)
	flag.Usage = printHelp
	flag.Parse()

	if err := run(appCfg, flag.Args(), os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Operation failed: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(debug bool) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if debug {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}

func run(appCfg appConfig, args []string, stdout io.Writer) error {
	if len(args) == 0 {
		flag.Usage()
		return nil
	}

	log := newLogger(appCfg.debug)
	opts := builder.BuildOptions{
		Unsafe: appCfg.unsafe,
		Debug:  appCfg.debug,
	}

	switch args[0] {
	case "serve":
		serveCmd := flag.NewFlagSet("serve", flag.ContinueOnError)
		port := serveCmd.IntP("port", "p", 5000, "Port for the HTTP server.")
		watch := serveCmd.BoolP("watch", "w", false, "Reload on file changes and refresh open browsers.")
		if err := serveCmd.Parse(args[1:]); err != nil {
			return err
		}

		// maxprocs.Set only fails on an invalid GOMAXPROCS, in which case
		// the runtime default applies.
		_, _ = maxprocs.Set(maxprocs.Logger(log.Debugf))

		site, err := loadSite(appCfg, opts, log)
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return server.Run(ctx, site, server.Options{
			Port:  *port,
			Watch: *watch,
			Debug: appCfg.debug,
			Log:   log,
		})

	case "gen":
		opts.CleanDestination = true
		fmt.Fprintln(stdout, "--- Generating static wiki ---")
		site, err := loadSite(appCfg, opts, log)
		if err != nil {
			return err
		}
		pageCount, err := builder.BuildSite(resolvePath(appCfg.configPath, outputDir), site, opts)
		if err != nil {
			return fmt.Errorf("site generation failed: %w", err)
		}
		fmt.Fprintf(stdout, "✅ Success! Generated %d pages.\n", pageCount)
		return nil

	case "render":
		if len(args) < 2 {
			flag.Usage()
			return nil
		}
		return renderTopic(appCfg, args[1], stdout, log)

	case "new":
		if len(args) < 3 {
			flag.Usage()
			return nil
		}
		if args[1] == "site" {
			return scaffold.CreateNewSite(args[2])
		}
		if args[1] == "topic" {
			title := args[2]
			if len(args) > 3 {
				title = args[3]
			}
			return scaffold.CreateNewTopic(args[2], title, appCfg.configPath)
		}
		flag.Usage()

	default:
		flag.Usage()
	}

	return nil
}

// renderTopic prints the raw HTML fragment of one topic.
func renderTopic(appCfg appConfig, id string, stdout io.Writer, log *logrus.Logger) error {
	siteCfg, err := config.LoadSiteConfig(appCfg.configPath)
	if err != nil {
		return err
	}
	st, err := store.Load(resolvePath(appCfg.configPath, siteCfg.Pages))
	if err != nil {
		return err
	}
	page, err := wiki.New(st, log).Topic(id)
	if errors.Is(err, wiki.ErrTopicNotFound) {
		return fmt.Errorf("topic '%s' not found", id)
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, page.HTML)
	return err
}

func loadSite(appCfg appConfig, opts builder.BuildOptions, log *logrus.Logger) (*builder.Site, error) {
	siteCfg, err := config.LoadSiteConfig(appCfg.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load wiki config: %w", err)
	}
	st, err := store.Load(resolvePath(appCfg.configPath, siteCfg.Pages))
	if err != nil {
		return nil, err
	}
	log.WithField("pages", len(st.Snapshot())).Info("Loaded corpus")

	return builder.NewSite(siteCfg, st, builder.Paths{
		TemplateDir: resolvePath(appCfg.configPath, templateDir),
		ContentDir:  resolvePath(appCfg.configPath, contentDir),
		StaticDir:   resolvePath(appCfg.configPath, staticDir),
	}, opts, log)
}

func resolvePath(configPath, path string) string {
	return config.ResolvePath(configPath, path)
}

func printHelp() {
	fmt.Println("wikihost - serve a WikiText corpus as HTML")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  wikihost [global-flags] <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  serve [--port N] [--watch]   Run the wiki server")
	fmt.Println("  gen                          Export the wiki as static HTML into ./public")
	fmt.Println("  render <id>                  Print the HTML fragment of one topic")
	fmt.Println("  new site <dir>               Create a new wiki scaffold")
	fmt.Println("  new topic <id> [title]       Add a topic from archetypes/default.wiki")
	fmt.Println()
	fmt.Println("Global Flags:")
	flag.PrintDefaults()
}
