package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"mech3-scene/internal/config"
	"mech3-scene/internal/convert"
	"mech3-scene/internal/gltfexport"
	"mech3-scene/internal/logging"
	"mech3-scene/internal/watch"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to a config file (.json or .toml)")
	archive := flag.String("gamez", "", "Path to 'gamez.zip'")
	var textures config.StringList
	flag.Var(&textures, "texture", "Texture archive, repeatable; earlier wins (e.g. 'rtexture.zip' then 'rmechtex.zip')")
	outputDir := flag.String("output", "", "Output directory (default: current directory)")
	format := flag.String("format", "", "Output format: glb (default) or gltf")
	webp := flag.Bool("webp", false, "Embed textures as WebP")
	watchInputs := flag.Bool("watch", false, "Re-run the conversion when an input archive changes")
	logLevel := flag.String("log-level", "", "debug, info, warn or error (default: info)")

	flag.Parse()
	if *archive == "" && flag.NArg() > 0 {
		*archive = flag.Arg(0)
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
	cfg.Resolve("gamez", config.Flags{
		Archive:         *archive,
		TextureArchives: textures,
		OutputDir:       *outputDir,
		Format:          *format,
		WebP:            *webp,
		LogLevel:        *logLevel,
	})
	logging.SetLevel(cfg.LogLevel)
	logger := logging.Default()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", "err", err)
	}

	convOpts := convert.Options{Logger: logger, TextureArchives: cfg.TextureArchives}
	exportOpts := gltfexport.Options{Logger: logger, WebP: cfg.WebP}

	run := func() error {
		sc, err := convert.RunGamez(cfg.Archive, convOpts)
		if err != nil {
			return err
		}
		doc, err := gltfexport.Export(sc, exportOpts)
		if err != nil {
			return err
		}
		out := cfg.OutputPath(sc.Name)
		if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
			return err
		}
		if err := gltfexport.Save(doc, out); err != nil {
			return err
		}
		logger.Info("saved", "path", out, "run", sc.RunID.String(), "missing_textures", sc.Missing)
		return nil
	}

	if err := run(); err != nil {
		if !*watchInputs {
			logger.Fatal("conversion failed", "err", err)
		}
		logger.Error("conversion failed", "err", err)
	}
	if !*watchInputs {
		return
	}

	w, err := watch.New(append([]string{cfg.Archive}, cfg.TextureArchives...))
	if err != nil {
		logger.Fatal("watch failed", "err", err)
	}
	defer w.Close()
	w.Logger = logger

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := w.Run(ctx, run); err != nil && ctx.Err() == nil {
		logger.Error("watch failed", "err", err)
	}
}
