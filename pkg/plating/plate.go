package plating

import (
	"context"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/errgroup"

	"github.com/provide-io/plating/pkg/bundle"
	"github.com/provide-io/plating/pkg/errors"
	"github.com/provide-io/plating/pkg/logging"
	"github.com/provide-io/plating/pkg/render"
)

// PlateOptions configures a plate run.
type PlateOptions struct {
	// OutputDir is the root of the generated documentation tree.
	OutputDir string

	// Dimensions restricts the run; empty means every dimension.
	Dimensions []bundle.Dimension

	// Force overwrites existing output files.
	Force bool

	// Validate re-reads each written file and fails the bundle if the
	// write did not land intact.
	Validate bool
}

// ValidateOptions configures a validate run.
type ValidateOptions struct {
	Dimensions []bundle.Dimension
}

// Plate renders every documented bundle matching the dimension filter
// into the output tree. Tasks run concurrently under a bounded limit;
// results arrive in completion order, each tagged with its bundle
// identity. Cancellation stops issuing new tasks but lets in-flight
// writes finish, avoiding partial files.
func (o *Orchestrator) Plate(ctx context.Context, opts PlateOptions) (*RunReport, error) {
	if opts.OutputDir == "" {
		return nil, errors.WrapResource("plate", "output dir", "", errors.ErrInvalidInput)
	}
	if err := os.MkdirAll(opts.OutputDir, DirPermissions); err != nil {
		return nil, errors.WrapIO("create", opts.OutputDir, err)
	}

	report := &RunReport{}
	o.forEachBundle(ctx, opts.Dimensions, report, func(taskCtx context.Context, b *bundle.Bundle) Result {
		return o.plateOne(taskCtx, b, opts)
	})

	logging.Ctx(ctx).Info().
		Int("succeeded", report.Succeeded()).
		Int("skipped", report.Skipped()).
		Int("failed", report.Failed()).
		Msg("plate run complete")
	return report, nil
}

// Validate dry-runs every documented bundle without writing anything.
func (o *Orchestrator) Validate(ctx context.Context, opts ValidateOptions) (*RunReport, error) {
	report := &RunReport{}
	o.forEachBundle(ctx, opts.Dimensions, report, func(taskCtx context.Context, b *bundle.Bundle) Result {
		if !b.IsDocumented() {
			return Result{Ref: b.Ref(), Outcome: OutcomeSkippedUndocumented}
		}
		if _, err := o.renderBundle(taskCtx, b); err != nil {
			return Result{Ref: b.Ref(), Outcome: OutcomeFailed, Err: err}
		}
		return Result{Ref: b.Ref(), Outcome: OutcomeValidated}
	})

	logging.Ctx(ctx).Info().
		Int("validated", report.Succeeded()).
		Int("failed", report.Failed()).
		Msg("validate run complete")
	return report, nil
}

// forEachBundle fans a task out over the selected bundles with bounded
// concurrency. The registry is read-only for the duration; tasks only
// read it. A canceled context stops dispatching; started tasks finish.
func (o *Orchestrator) forEachBundle(
	ctx context.Context,
	dims []bundle.Dimension,
	report *RunReport,
	task func(context.Context, *bundle.Bundle) Result,
) {
	if len(dims) == 0 {
		dims = o.registry.Dimensions()
	}

	g := &errgroup.Group{}
	g.SetLimit(o.concurrency)

	for _, dim := range dims {
		for _, b := range o.registry.List(dim) {
			b := b
			if ctx.Err() != nil {
				report.add(Result{Ref: b.Ref(), Outcome: OutcomeFailed,
					Err: errors.WrapResource("dispatch", "bundle", b.Name(), errors.ErrCanceled)})
				continue
			}
			g.Go(func() error {
				report.add(o.runTask(ctx, b, task))
				return nil
			})
		}
	}
	// Tasks never return errors; failures live in the report.
	_ = g.Wait()
}

// runTask applies the per-bundle timeout and failure classification
// around one task. Every panic-free path yields exactly one Result.
func (o *Orchestrator) runTask(
	ctx context.Context,
	b *bundle.Bundle,
	task func(context.Context, *bundle.Bundle) Result,
) Result {
	taskCtx := ctx
	if o.timeout > 0 {
		var cancel context.CancelFunc
		taskCtx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	res := task(taskCtx, b)
	if res.Err != nil && taskCtx.Err() == context.DeadlineExceeded {
		// Timeouts are reported as such and never retried.
		res.Err = &errors.RenderError{
			Bundle: b.Name(),
			Kind:   errors.KindTimeout,
			Detail: o.timeout.String(),
			Err:    res.Err,
		}
	}
	return res
}

// plateOne renders and writes a single bundle.
func (o *Orchestrator) plateOne(ctx context.Context, b *bundle.Bundle, opts PlateOptions) Result {
	ref := b.Ref()
	if !b.IsDocumented() {
		return Result{Ref: ref, Outcome: OutcomeSkippedUndocumented}
	}

	path := o.outputPath(opts.OutputDir, b)
	if !opts.Force {
		if _, err := os.Stat(path); err == nil {
			return Result{Ref: ref, Outcome: OutcomeSkippedExists, Path: path}
		}
	}

	out, err := o.renderBundle(ctx, b)
	if err != nil {
		return Result{Ref: ref, Outcome: OutcomeFailed, Path: path, Err: err}
	}

	if err := os.MkdirAll(filepath.Dir(path), DirPermissions); err != nil {
		return Result{Ref: ref, Outcome: OutcomeFailed, Path: path, Err: errors.WrapIO("create", filepath.Dir(path), err)}
	}
	if err := o.writeWithRetry(ctx, b, path, []byte(out)); err != nil {
		return Result{Ref: ref, Outcome: OutcomeFailed, Path: path, Err: err}
	}

	if opts.Validate {
		written, err := os.ReadFile(path)
		if err != nil || string(written) != out {
			return Result{Ref: ref, Outcome: OutcomeFailed, Path: path,
				Err: errors.WrapIO("verify", path, errors.ErrInvalidInput)}
		}
	}

	logging.Ctx(ctx).Debug().Str("bundle", ref.String()).Str("path", path).Msg("wrote documentation")
	return Result{Ref: ref, Outcome: OutcomeWritten, Path: path}
}

// renderBundle builds a context and renders one bundle.
func (o *Orchestrator) renderBundle(ctx context.Context, b *bundle.Bundle) (string, error) {
	rc, err := render.BuildContext(ctx, b, o.provider)
	if err != nil {
		return "", err
	}
	return o.engine.Render(rc, b)
}

// outputPath maps a bundle onto its file in the output tree.
func (o *Orchestrator) outputPath(outputDir string, b *bundle.Bundle) string {
	return filepath.Join(outputDir, dimensionDir(b.Dimension()), b.Name()+".md")
}

// dimensionDir maps a dimension onto its conventional directory name.
func dimensionDir(dim bundle.Dimension) string {
	switch dim {
	case bundle.Resource:
		return "resources"
	case bundle.DataSource:
		return "data_sources"
	case bundle.Function:
		return "functions"
	case bundle.Provider:
		return "."
	default:
		return dim.String()
	}
}

// writeWithRetry writes one file, retrying transient failures with
// exponential backoff up to the attempt ceiling. Non-transient
// failures are never retried.
func (o *Orchestrator) writeWithRetry(ctx context.Context, b *bundle.Bundle, path string, data []byte) error {
	attempts := 0
	op := func() error {
		attempts++
		err := o.write(path, data, FilePermissions)
		if err == nil {
			return nil
		}
		if isTransient(err) {
			logging.Ctx(ctx).Debug().
				Str("bundle", b.Name()).
				Str("path", path).
				Int("attempt", attempts).
				Err(err).
				Msg("transient write failure, retrying")
			return err
		}
		return backoff.Permanent(err)
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 10 * time.Millisecond
	bo.MaxElapsedTime = 0

	err := backoff.Retry(op, backoff.WithContext(
		backoff.WithMaxRetries(bo, uint64(o.maxAttempts-1)), ctx))
	if err != nil {
		return &errors.WriteError{Bundle: b.Name(), Path: path, Attempts: attempts, Err: err}
	}
	return nil
}

// isTransient classifies retryable I/O failures: the explicit
// sentinel, plus the ephemeral OS errors seen under file lock
// contention and interrupted syscalls.
func isTransient(err error) bool {
	if errors.IsTransient(err) {
		return true
	}
	return errors.Is(err, syscall.EAGAIN) ||
		errors.Is(err, syscall.EBUSY) ||
		errors.Is(err, syscall.EINTR)
}
