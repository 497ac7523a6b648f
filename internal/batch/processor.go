package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"mech3-scene/internal/convert"
	"mech3-scene/internal/gltfexport"
	"mech3-scene/internal/logging"
)

// Config holds all shared settings for a batch run.
type Config struct {
	Logger *log.Logger

	Archive string
	Convert convert.Options
	Export  gltfexport.Options
	// OutputPath maps a model name to the file it is written to.
	OutputPath func(model string) string
	Workers    int
	// Progress is the interval between progress lines. Zero disables them.
	Progress time.Duration
}

// Result holds the outcome of converting one model.
type Result struct {
	Model   string
	Output  string
	RunID   string
	Faces   int
	Bones   int
	Tracks  int
	Missing int
	Success bool
	Error   string
	Elapsed time.Duration
}

// Run converts every model using a worker pool. Each model is an
// independent run with its own material cache and texture staging.
func Run(cfg Config, models []string) []Result {
	logger := logging.Or(cfg.Logger)
	total := len(models)
	results := make([]Result, total)
	var processed atomic.Int64

	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	if cfg.Progress > 0 {
		go func() {
			ticker := time.NewTicker(cfg.Progress)
			defer ticker.Stop()
			for {
				select {
				case <-done:
					return
				case <-ticker.C:
					p := processed.Load()
					if p > 0 {
						rate := float64(p) / time.Since(start).Seconds()
						logger.Info("progress", "done", p, "total", total, "per_sec", fmt.Sprintf("%.1f", rate))
					}
				}
			}
		}()
	}

	// Worker pool
	modelChan := make(chan int, workers*2)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range modelChan {
				results[idx] = processModel(cfg, models[idx])
				processed.Add(1)
			}
		}()
	}

	// Send work
	for i := range models {
		modelChan <- i
	}
	close(modelChan)

	wg.Wait()
	close(done)

	return results
}

func processModel(cfg Config, model string) Result {
	start := time.Now()
	res := Result{Model: model}
	fail := func(err error) Result {
		res.Error = err.Error()
		res.Elapsed = time.Since(start)
		return res
	}

	sc, err := convert.RunMechlib(cfg.Archive, model, cfg.Convert)
	if err != nil {
		return fail(err)
	}
	res.RunID = sc.RunID.String()
	for _, m := range sc.Meshes {
		res.Faces += len(m.Faces)
	}
	res.Bones = sc.Skeleton.Len()
	res.Tracks = len(sc.Tracks)
	res.Missing = sc.Missing

	if cfg.OutputPath != nil {
		doc, err := gltfexport.Export(sc, cfg.Export)
		if err != nil {
			return fail(err)
		}
		out := cfg.OutputPath(model)
		if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
			return fail(err)
		}
		if err := gltfexport.Save(doc, out); err != nil {
			return fail(err)
		}
		res.Output = out
	}

	res.Success = true
	res.Elapsed = time.Since(start)
	return res
}
