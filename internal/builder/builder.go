// internal/builder/builder.go
package builder

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// BuildSite exports the whole wiki as static HTML. Every page is written as
// <route>/index.html so the links produced by WikiText (/topic/Id,
// /category/Name) resolve on any static file host.
func BuildSite(outputDir string, site *Site, opts BuildOptions) (int, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return 0, err
	}

	if opts.CleanDestination {
		fmt.Println("Cleaning destination directory...")
		entries, err := os.ReadDir(outputDir)
		if err != nil {
			return 0, err
		}
		for _, entry := range entries {
			if err := os.RemoveAll(filepath.Join(outputDir, entry.Name())); err != nil {
				return 0, err
			}
		}
	}

	pagesGenerated := 0
	write := func(route, view string, data PageData) error {
		outputPath := filepath.Join(outputDir, filepath.FromSlash(route), "index.html")
		if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
			return err
		}
		if err := renderPage(site, outputPath, view, data); err != nil {
			return fmt.Errorf("failed to render %s: %w", route, err)
		}
		pagesGenerated++
		return nil
	}

	if err := write("", ViewIndex, site.IndexData("")); err != nil {
		return 0, err
	}

	for _, topic := range site.Wiki().Topics("") {
		if !isLocalRoute(topic.ID) {
			site.log.WithField("topic", topic.ID).Warn("Skipping topic with an unsafe identifier")
			continue
		}
		data, err := site.TopicData(topic.ID)
		if err != nil {
			return 0, err
		}
		if err := write("topic/"+topic.ID, ViewTopic, data); err != nil {
			return 0, err
		}
	}

	for _, name := range site.Wiki().Categories() {
		if !isLocalRoute(name) {
			site.log.WithField("category", name).Warn("Skipping category with an unsafe name")
			continue
		}
		if err := write("category/"+name, ViewCategory, site.CategoryData(name)); err != nil {
			return 0, err
		}
	}

	for _, slug := range site.PageSlugs() {
		data, err := site.MarkdownData(slug)
		if err != nil {
			return 0, err
		}
		if err := write("page/"+slug, ViewPage, data); err != nil {
			return 0, err
		}
	}

	if err := copyStaticAssets(site.Paths().StaticDir, filepath.Join(outputDir, "static")); err != nil {
		return 0, err
	}
	return pagesGenerated, nil
}

// isLocalRoute rejects identifiers that would be written outside their
// route directory.
func isLocalRoute(id string) bool {
	return id != "" && !strings.ContainsAny(id, `/\`) && filepath.IsLocal(id)
}

// copyStaticAssets copies files from the static directory to the output directory.
func copyStaticAssets(staticDir, outputDir string) error {
	if staticDir == "" {
		return nil
	}
	if _, err := os.Stat(staticDir); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	allowedExts := map[string]bool{
		".css": true, ".js": true, ".txt": true, ".svg": true, ".ico": true,
		".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	}
	return filepath.Walk(staticDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !allowedExts[filepath.Ext(info.Name())] {
			return nil
		}

		rel, err := filepath.Rel(staticDir, path)
		if err != nil {
			return err
		}
		dest := filepath.Join(outputDir, rel)
		if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			return err
		}
		src, err := os.Open(path)
		if err != nil {
			return err
		}
		defer src.Close()
		dst, err := os.Create(dest)
		if err != nil {
			return err
		}
		defer dst.Close()
		_, err = io.Copy(dst, src)
		return err
	})
}

// renderPage executes a view and writes the output to a file.
func renderPage(site *Site, outPath, view string, data PageData) error {
	outFile, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer outFile.Close()
	return site.Render(outFile, view, data)
}
