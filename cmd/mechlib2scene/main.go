package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"mech3-scene/internal/batch"
	"mech3-scene/internal/config"
	"mech3-scene/internal/convert"
	"mech3-scene/internal/gltfexport"
	"mech3-scene/internal/logging"
	"mech3-scene/internal/nodetree"
	"mech3-scene/internal/watch"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to a config file (.json or .toml)")
	archive := flag.String("mechlib", "", "Path to 'mechlib.zip'")
	model := flag.String("model", "", "The model to convert (e.g. madcat)")
	motion := flag.String("motion", "", "Load animations from this archive")
	var textures config.StringList
	flag.Var(&textures, "texture", "Texture archive, repeatable; earlier wins (use 'rmechtex.zip' for the highest quality)")
	scheme := flag.String("scheme", "", "Node addressing: children (default) or parents")
	outputDir := flag.String("output", "", "Output directory (default: current directory)")
	format := flag.String("format", "", "Output format: glb (default) or gltf")
	webp := flag.Bool("webp", false, "Embed textures as WebP")
	all := flag.Bool("all", false, "Convert every model in the archive and write manifest.json")
	workers := flag.Int("workers", 0, "Number of worker goroutines for -all (default: NumCPU)")
	watchInputs := flag.Bool("watch", false, "Re-run the conversion when an input archive changes")
	logLevel := flag.String("log-level", "", "debug, info, warn or error (default: info)")

	flag.Parse()
	if *model == "" && flag.NArg() > 0 {
		*model = flag.Arg(0)
	}

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// CLI flags override config file
	cfg.Resolve("mechlib", config.Flags{
		Archive:         *archive,
		Model:           *model,
		MotionArchive:   *motion,
		TextureArchives: textures,
		NodeScheme:      *scheme,
		OutputDir:       *outputDir,
		Format:          *format,
		WebP:            *webp,
		Workers:         *workers,
		LogLevel:        *logLevel,
	})
	logging.SetLevel(cfg.LogLevel)
	logger := logging.Default()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", "err", err)
	}
	nodeScheme, err := nodetree.ParseScheme(cfg.NodeScheme)
	if err != nil {
		logger.Fatal("invalid configuration", "err", err)
	}

	convOpts := convert.Options{
		Logger:          logger,
		TextureArchives: cfg.TextureArchives,
		MotionArchive:   cfg.MotionArchive,
		Scheme:          nodeScheme,
	}
	exportOpts := gltfexport.Options{Logger: logger, WebP: cfg.WebP}

	if *all {
		if err := runAll(cfg, convOpts, exportOpts); err != nil {
			logger.Fatal("batch failed", "err", err)
		}
		return
	}

	if cfg.Model == "" {
		logger.Fatal("no model given; use -model or -all")
	}
	run := func() error {
		return runOne(cfg, convOpts, exportOpts)
	}
	if err := run(); err != nil && !*watchInputs {
		logger.Fatal("conversion failed", "model", cfg.Model, "err", err)
	} else if err != nil {
		logger.Error("conversion failed", "model", cfg.Model, "err", err)
	}

	if *watchInputs {
		inputs := append([]string{cfg.Archive}, cfg.TextureArchives...)
		if cfg.MotionArchive != "" {
			inputs = append(inputs, cfg.MotionArchive)
		}
		if err := watchAndRun(inputs, run); err != nil {
			logger.Fatal("watch failed", "err", err)
		}
	}
}

func runOne(cfg config.Config, convOpts convert.Options, exportOpts gltfexport.Options) error {
	sc, err := convert.RunMechlib(cfg.Archive, cfg.Model, convOpts)
	if err != nil {
		return err
	}
	doc, err := gltfexport.Export(sc, exportOpts)
	if err != nil {
		return err
	}
	out := cfg.OutputPath(cfg.Model)
	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return err
	}
	if err := gltfexport.Save(doc, out); err != nil {
		return err
	}
	convOpts.Logger.Info("saved", "path", out, "run", sc.RunID.String())
	return nil
}

func runAll(cfg config.Config, convOpts convert.Options, exportOpts gltfexport.Options) error {
	logger := convOpts.Logger
	models, err := convert.Models(cfg.Archive)
	if err != nil {
		return err
	}
	if len(models) == 0 {
		logger.Info("no models to convert")
		return nil
	}
	logger.Info("converting", "models", len(models), "workers", cfg.Workers, "output", cfg.OutputDir)

	start := time.Now()
	results := batch.Run(batch.Config{
		Logger:     logger,
		Archive:    cfg.Archive,
		Convert:    convOpts,
		Export:     exportOpts,
		OutputPath: cfg.OutputPath,
		Workers:    cfg.Workers,
		Progress:   2 * time.Second,
	}, models)

	failed := 0
	for _, r := range results {
		if !r.Success {
			failed++
			logger.Error("model failed", "model", r.Model, "err", r.Error)
		}
	}
	logger.Info("done", "converted", len(results)-failed, "total", len(results),
		"elapsed", time.Since(start).Round(time.Millisecond))

	// Write manifest
	manifestPath := filepath.Join(cfg.OutputDir, "manifest.json")
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return err
	}
	if err := batch.WriteManifest(manifestPath, results); err != nil {
		logger.Warn("manifest write failed", "err", err)
	} else {
		logger.Info("manifest written", "path", manifestPath)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d models failed", failed, len(results))
	}
	return nil
}

func watchAndRun(inputs []string, run func() error) error {
	w, err := watch.New(inputs)
	if err != nil {
		return err
	}
	defer w.Close()
	w.Logger = logging.Default()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	w.Logger.Info("watching inputs", "files", len(inputs))
	if err := w.Run(ctx, run); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
