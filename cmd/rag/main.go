package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"labrag/internal/app"
	"labrag/internal/config"
	"labrag/internal/domain"
	"labrag/internal/metrics"
	"labrag/internal/preview"
	"labrag/internal/service"
	"labrag/internal/tui"
)

const session = "local"

func main() {
	_ = godotenv.Load()

	var (
		cfgPath    string
		logPath    string
		structured bool
		withPack bool
	)
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/labrag/config.yaml if not provided)")
	flag.StringVar(&logPath, "log", filepath.Join(os.TempDir(), "labrag.log"), "File the logger writes to while the TUI owns the terminal")
	flag.BoolVar(&structured, "structured", false, "Treat every input as layout-extracted text (tables, figures)")
	flag.BoolVar(&withPack, "pack", false, "Start with the knowledge pack included in results")
	flag.Parse()
	inputs := flag.Args()
	if len(inputs) == 0 {
		fmt.Println("Usage: rag [--config=config.yaml] [--structured] report1.md [report2.txt ...]")
		os.Exit(1)
	}

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Fatalf("open log file: %v", err)
	}
	defer logFile.Close()
	logger, err := app.NewLogger(cfg, logFile)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	svc, err := app.NewService(cfg, logger, metrics.New())
	if err != nil {
		log.Fatalf("init service: %v", err)
	}

	docs, err := readDocuments(inputs, structured)
	if err != nil {
		log.Fatalf("read documents: %v", err)
	}
	report, err := svc.Ingest(context.Background(), session, docs...)
	if err != nil {
		log.Fatalf("ingest failed: %v", err)
	}

	m := tui.New(svc, preview.New(cfg.Preview.MaxChars), session, cfg.Ranking.Session.TopK, summarize(report, svc.HasPack()))
	if withPack {
		m = m.WithPack()
	}
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		log.Fatal(err)
	}
}

func readDocuments(paths []string, structured bool) ([]domain.Document, error) {
	docs := make([]domain.Document, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		docs = append(docs, domain.Document{
			ID:         service.DocumentID(p),
			Label:      filepath.Base(p),
			Content:    string(data),
			Format:     formatFor(p, structured),
			UploadedAt: info.ModTime().UTC(),
		})
	}
	return docs, nil
}

// formatFor guesses the document format from its file name.
func formatFor(path string, structured bool) domain.Format {
	name := strings.ToLower(path)
	switch {
	case structured, strings.HasSuffix(name, ".pdf.txt"):
		return domain.FormatStructured
	case strings.HasSuffix(name, ".md"), strings.HasSuffix(name, ".markdown"):
		return domain.FormatMarkdown
	default:
		return domain.FormatText
	}
}

func summarize(r service.IngestReport, hasPack bool) string {
	chunks := 0
	for _, d := range r.Documents {
		chunks += d.Embedded
	}
	s := fmt.Sprintf("%d documents, %d chunks", len(r.Documents), chunks)
	if failed := r.Failed(); failed > 0 {
		s += fmt.Sprintf(", %d chunks failed to embed", failed)
	}
	if hasPack {
		s += ", knowledge pack loaded"
	}
	return s
}
