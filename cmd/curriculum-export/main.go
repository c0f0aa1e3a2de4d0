// Command curriculum-export writes the embedded curriculum catalog to an
// Excel workbook.
package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/shiksha-ai/shiksha-server/internal/curriculum"
	"github.com/shiksha-ai/shiksha-server/internal/export"
)

func main() {
	out := flag.String("o", "curriculum.xlsx", "output file path")
	flag.Parse()

	catalog, err := curriculum.Default()
	if err != nil {
		slog.Error("loading curriculum", "error", err)
		os.Exit(1)
	}

	f, err := os.Create(*out)
	if err != nil {
		slog.Error("creating output file", "error", err)
		os.Exit(1)
	}

	if err := export.Workbook(catalog, f); err != nil {
		f.Close()
		slog.Error("writing workbook", "error", err)
		os.Exit(1)
	}
	if err := f.Close(); err != nil {
		slog.Error("closing output file", "error", err)
		os.Exit(1)
	}

	slog.Info("catalog exported",
		"path", *out,
		"topics", catalog.TopicCount(),
		"curricula", len(catalog.Coverage()),
	)
}
