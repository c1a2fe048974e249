// Package main sends local images through the analysis pipeline and prints
// the result as JSON.
//
// Usage:
//
//	go run ./cmd/analyze -backend-url http://localhost:3000 photo1.jpg photo2.jpg
//	go run ./cmd/analyze -mode menu-ocr menu.png
//	go run ./cmd/analyze -draft photo.jpg   # also print the draft the result fills
package main

import (
	"context"
	"encoding/json/v2"
	"encoding/json/jsontext"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/vitrinelab/vitrine/internal/analysis"
	"github.com/vitrinelab/vitrine/internal/catalog"
	"github.com/vitrinelab/vitrine/internal/domain"
	"github.com/vitrinelab/vitrine/internal/form"
	"github.com/vitrinelab/vitrine/internal/logger"
	"github.com/vitrinelab/vitrine/internal/media/images"
	"github.com/vitrinelab/vitrine/internal/taxonomy"
)

var (
	backendURL = flag.String("backend-url", envOr("BACKEND_URL", "http://localhost:3000"), "Catalog backend base URL")
	mode       = flag.String("mode", "", "Analysis mode: single, multiple or menu-ocr (default: by image count)")
	timeout    = flag.Duration("timeout", 90*time.Second, "Backend request timeout")
	maxBytes   = flag.Int64("max-bytes", images.DefaultMaxBytes, "Maximum bytes per image")
	taxPath    = flag.String("taxonomy", "", "YAML taxonomy used with -draft (default: built-in)")
	showDraft  = flag.Bool("draft", false, "Apply the result to an empty draft and print it")
	verbose    = flag.Bool("v", false, "Log requests to stderr")
)

type output struct {
	Result *analysis.Result     `json:"result"`
	Method *domain.MethodInfo   `json:"method,omitempty"`
	Images []images.Info        `json:"images"`
	Draft  *domain.ProductDraft `json:"draft,omitempty"`
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: analyze [flags] <image> [image...]\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "analyze: %v\n", err)
		os.Exit(1)
	}
}

func run(paths []string) error {
	level := "warn"
	if *verbose {
		level = "debug"
	}
	log := logger.New(logger.Config{
		Writer:      os.Stderr,
		Level:       logger.ParseLevel(level),
		Environment: "development",
	})

	imgs, infos, err := readImages(paths)
	if err != nil {
		return err
	}

	client := catalog.New(catalog.Options{
		BaseURL: *backendURL,
		Timeout: *timeout,
		Logger:  log.Logger,
	})
	defer client.Close()

	orch := analysis.New(client, log.Logger, nil)

	out := output{Images: infos}
	var session *form.Session
	if *showDraft {
		if session, err = newSession(log); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout+5*time.Second)
	defer cancel()

	var sink analysis.DraftSink
	if session != nil {
		sink = session
	}
	result, err := orch.AnalyzeInto(ctx, imgs, domain.AnalysisMode(*mode), sink)
	if err != nil {
		return err
	}

	out.Result = result
	if result.Method != "" {
		info := result.MethodInfo()
		out.Method = &info
	}
	if session != nil {
		d := session.Draft()
		out.Draft = &d
	}

	return json.MarshalWrite(os.Stdout, out, jsontext.WithIndent("  "))
}

func readImages(paths []string) ([]domain.Image, []images.Info, error) {
	raw := make([]domain.Image, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, nil, err
		}
		raw = append(raw, domain.Image{Name: filepath.Base(p), Data: data})
	}
	return images.InspectAll(raw, *maxBytes)
}

func newSession(log *logger.Logger) (*form.Session, error) {
	var (
		resolver *taxonomy.Resolver
		err      error
	)
	if *taxPath == "" {
		resolver, err = taxonomy.NewDefaultResolver(log.Logger)
	} else {
		var tree *taxonomy.Tree
		if tree, err = taxonomy.LoadFile(*taxPath); err != nil {
			return nil, err
		}
		resolver, err = taxonomy.NewResolver(tree, log.Logger)
	}
	if err != nil {
		return nil, err
	}
	return form.NewSession(resolver, nil), nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
