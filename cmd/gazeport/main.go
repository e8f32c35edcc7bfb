package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/oculab/gazeport/internal/config"
	"github.com/oculab/gazeport/internal/export"
	"github.com/oculab/gazeport/internal/extract"
	"github.com/oculab/gazeport/internal/logger"
	"github.com/oculab/gazeport/internal/naming"
	"github.com/oculab/gazeport/internal/recording"
)

// Version is set at build time
var Version = "dev"

func main() {
	var (
		inputPath   = flag.String("input", "", "Path to the recording file (required)")
		outputDir   = flag.String("output", "", "Output directory (overrides config)")
		filePrefix  = flag.String("prefix", "", "Output file name prefix (default: input base name)")
		showVersion = flag.Bool("version", false, "Print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("gazeport %s\n", Version)
		return
	}

	if *inputPath == "" && flag.NArg() == 1 {
		*inputPath = flag.Arg(0)
	}
	if *inputPath == "" {
		fmt.Fprintln(os.Stderr, "usage: gazeport -input <recording> [-output <dir>] [-prefix <name>]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *outputDir != "" {
		cfg.Export.OutputDir = *outputDir
	}
	if *filePrefix != "" {
		cfg.Export.FilePrefix = *filePrefix
	}

	logger.Setup(cfg.Log.Level, cfg.Log.Format)
	extract.Version = Version

	if err := run(cfg, *inputPath); err != nil {
		log.Error().Err(err).Msg("Export failed")
		os.Exit(1)
	}
}

func run(cfg *config.Config, inputPath string) error {
	renames, err := naming.NewRenameMap(cfg.Rename)
	if err != nil {
		return fmt.Errorf("invalid rename configuration: %w", err)
	}

	loader := recording.NewLoader(log.Logger)
	rec, err := loader.Load(inputPath)
	if err != nil {
		return err
	}

	exporter := extract.NewExporter(renames, log.Logger)
	if err := exporter.Export(rec); err != nil {
		return err
	}

	writer, err := export.NewWriter(export.Options{
		Dir:          cfg.Export.OutputDir,
		Delimiter:    cfg.Export.DelimiterRune(),
		MissingToken: cfg.Export.MissingToken,
		Gzip:         cfg.Export.Gzip,
	}, log.Logger)
	if err != nil {
		return err
	}

	prefix := cfg.Export.FilePrefix
	if prefix == "" {
		prefix = baseName(inputPath)
	}
	if err := writer.WriteAll(context.Background(), exporter.Tables(), prefix); err != nil {
		return err
	}

	log.Info().
		Str("export_id", exporter.SessionID().String()).
		Str("output_dir", cfg.Export.OutputDir).
		Int("tables", len(exporter.Tables().TableIDs())).
		Int("warnings", exporter.Warnings()).
		Msg("Recording exported")
	return nil
}

// baseName strips the directory and all recognized extensions from the
// input path, e.g. "data/session1.rec.gz" -> "session1".
func baseName(path string) string {
	name := filepath.Base(path)
	for {
		ext := filepath.Ext(name)
		switch strings.ToLower(ext) {
		case ".gz", ".rec", ".msgpack", ".json":
			name = strings.TrimSuffix(name, ext)
		default:
			return name
		}
	}
}
