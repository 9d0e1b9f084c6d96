package driver

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"rtlpatch/internal/observ"
	"rtlpatch/internal/patch"
	"rtlpatch/internal/project"
	"rtlpatch/internal/source"
)

// Options configures one driver run.
type Options struct {
	// Patch holds the pipeline tunables passed through to the passes.
	Patch patch.Options
	// Jobs caps directory-mode parallelism (0 means GOMAXPROCS).
	Jobs int
	// Timings enables per-pass timing collection.
	Timings bool
	// DryRun suppresses all writes; repaired text is only returned.
	DryRun bool
	// OutputDir, when set, receives repaired files mirroring their relative
	// paths; empty means repair in place.
	OutputDir string
	// Root is the directory relative paths under OutputDir are computed
	// against. PatchDir sets it to the run's directory; empty falls back to
	// the file's own directory.
	Root string
	// Progress receives per-file stage events; nil disables reporting.
	Progress ProgressSink
}

// Result is the outcome of repairing one file. Err is set for per-file
// failures in directory mode instead of aborting the whole run.
type Result struct {
	Path    string
	Text    string
	Report  patch.Report
	Timing  *observ.Report
	Changed bool
	Err     error
}

// PatchText repairs in-memory text, for stdin input and tests.
func PatchText(name, text string, opts Options) Result {
	f := source.NewVirtual(name, text)
	return runPipeline(f, opts)
}

// PatchFile loads, repairs, and (unless dry-run) rewrites one file.
func PatchFile(path string, opts Options) Result {
	start := time.Now()
	emit(opts.Progress, path, StageLoad, StatusWorking, nil, 0)

	f, err := source.Load(path)
	if err != nil {
		emit(opts.Progress, path, StageLoad, StatusError, err, time.Since(start))
		return Result{Path: path, Err: err}
	}

	emit(opts.Progress, path, StagePatch, StatusWorking, nil, 0)
	res := runPipeline(f, opts)

	if res.Changed && !opts.DryRun {
		emit(opts.Progress, path, StageWrite, StatusWorking, nil, 0)
		if err := writeOutput(path, res.Text, opts); err != nil {
			emit(opts.Progress, path, StageWrite, StatusError, err, time.Since(start))
			res.Err = err
			return res
		}
	}

	emit(opts.Progress, path, StagePatch, StatusDone, nil, time.Since(start))
	return res
}

// PatchDir repairs every RTL file under dir in parallel. Per-file errors land
// in the corresponding Result; only context cancellation aborts the run.
func PatchDir(ctx context.Context, dir string, opts Options) ([]Result, error) {
	files, err := project.CollectFiles(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}
	if opts.Root == "" {
		opts.Root = dir
	}

	for _, path := range files {
		emit(opts.Progress, path, StageLoad, StatusQueued, nil, 0)
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// индексы уникальны для каждой горутины, мьютекс не нужен
	results := make([]Result, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))

	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			results[i] = PatchFile(path, opts)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func runPipeline(f *source.File, opts Options) Result {
	var timer *observ.Timer
	if opts.Timings {
		timer = observ.NewTimer()
	}

	p := patch.New(opts.Patch)
	repaired, report := p.RepairTimed(f.Lines, timer)

	res := Result{
		Path:   f.Path,
		Text:   source.JoinLines(repaired),
		Report: report,
	}
	res.Changed = res.Text != f.Text()
	if timer != nil {
		tr := timer.Report()
		res.Timing = &tr
	}
	return res
}

// writeOutput places repaired text at its destination via an atomic rename.
func writeOutput(path, text string, opts Options) error {
	dest := path
	if opts.OutputDir != "" {
		// вложенные файлы сохраняют относительный путь, иначе одинаковые
		// имена затирали бы друг друга
		rel := filepath.Base(path)
		if opts.Root != "" {
			if r, err := filepath.Rel(opts.Root, path); err == nil && !strings.HasPrefix(r, "..") {
				rel = r
			}
		}
		dest = filepath.Join(opts.OutputDir, rel)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), "tmp-*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.WriteString(text); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dest)
}
