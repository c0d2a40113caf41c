package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"labrag/internal/app"
	"labrag/internal/config"
	"labrag/internal/domain"
	"labrag/internal/knowledgepack"
	"labrag/internal/metrics"
	"labrag/internal/service"
	"labrag/internal/vectorstore/memory"
)

func main() {
	_ = godotenv.Load()

	var cfgPath, docsDir, outPath string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/labrag/config.yaml if not provided)")
	flag.StringVar(&docsDir, "docs", "docs", "Directory of built-in reference documents")
	flag.StringVar(&outPath, "out", "", "Output pack path (defaults to knowledge_pack.path from config)")
	flag.Parse()

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
	if outPath == "" {
		outPath = cfg.KnowledgePack.Path
	}

	logger, err := app.NewLogger(cfg, os.Stderr)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	gateway, err := app.NewGateway(cfg, logger, m)
	if err != nil {
		logger.Fatal().Err(err).Msg("init embedder")
	}
	svc := service.NewRetrievalService(app.NewChunker(cfg, logger), gateway, memory.NewStorage(), nil, service.WithLogger(logger))

	docs, err := loadDocs(docsDir)
	if err != nil {
		logger.Fatal().Err(err).Str("dir", docsDir).Msg("load documents")
	}
	logger.Info().Int("documents", len(docs)).Str("dir", docsDir).Msg("documents loaded")

	var chunks []domain.Chunk
	for _, doc := range docs {
		c, _ := svc.BuildChunks(doc)
		chunks = append(chunks, c...)
	}

	start := time.Now()
	failed, err := gateway.EmbedChunks(ctx, chunks)
	if err != nil {
		logger.Fatal().Err(err).Msg("embedding interrupted, pack not written")
	}
	if failed > 0 {
		logger.Warn().Int("failed", failed).Msg("chunks left out of the pack")
	}

	pack := knowledgepack.Pack{
		Chunks:    chunks,
		ModelInfo: gateway.ModelInfo(),
		Dimension: gateway.Dimension(),
		BuiltAt:   time.Now().UTC(),
	}
	if err := knowledgepack.WriteFile(outPath, pack); err != nil {
		logger.Fatal().Err(err).Str("path", outPath).Msg("write pack")
	}
	fmt.Printf("wrote %s: %d chunks (%d failed) from %d documents in %s\n",
		outPath, len(chunks)-failed, failed, len(docs), time.Since(start).Round(time.Millisecond))
}

// loadDocs reads every text-like file under dir. File modification times
// stand in for upload timestamps.
func loadDocs(dir string) ([]domain.Document, error) {
	var docs []domain.Document
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		format, ok := formatFor(path)
		if !ok {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			rel = path
		}
		docs = append(docs, domain.Document{
			ID:         service.DocumentID(rel),
			Label:      filepath.ToSlash(rel),
			Content:    string(data),
			Format:     format,
			UploadedAt: info.ModTime().UTC(),
		})
		return nil
	})
	return docs, err
}

func formatFor(path string) (domain.Format, bool) {
	name := strings.ToLower(path)
	switch {
	case strings.HasSuffix(name, ".pdf.txt"):
		return domain.FormatStructured, true
	case strings.HasSuffix(name, ".md"), strings.HasSuffix(name, ".markdown"):
		return domain.FormatMarkdown, true
	case strings.HasSuffix(name, ".txt"):
		return domain.FormatText, true
	default:
		return "", false
	}
}
