// Package covers drives the cover fetch: for each manifest item it skips
// covers already on disk, tries each URL shape until one downloads a valid
// image, and reports the outcome without aborting the batch.
package covers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pevans/coverfetch/fetcher"
	"github.com/pevans/coverfetch/ledger"
	"github.com/pevans/coverfetch/manifest"
)

// CoverFilename is the name of the image written in each item directory.
const CoverFilename = "cover.jpg"

// Downloader writes the body of rawURL to dest and returns the byte count.
// fetcher.Client implements it.
type Downloader interface {
	Download(ctx context.Context, rawURL, dest string) (int64, error)
}

// Recorder persists attempts. ledger.Store implements it.
type Recorder interface {
	Record(attempt ledger.Attempt) (*ledger.Attempt, error)
}

// Status is the outcome of processing one item.
type Status int

const (
	StatusSucceeded Status = iota
	StatusSkipped
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusSucceeded:
		return ledger.OutcomeSucceeded
	case StatusSkipped:
		return ledger.OutcomeSkipped
	default:
		return ledger.OutcomeFailed
	}
}

// Result is the outcome for one item. URL is the URL that produced the file,
// or the last one attempted on failure.
type Result struct {
	Item   manifest.ContentItem
	Status Status
	Path   string
	URL    string
	Shape  string
	Bytes  int64
	Err    error
}

// Report summarizes one run over a manifest.
type Report struct {
	RunID      uuid.UUID
	StartedAt  time.Time
	FinishedAt time.Time
	Results    []Result
	Succeeded  int
	Skipped    int
	Failed     int

	// Cancelled is set when the run stopped before reaching every item.
	Cancelled bool
}

// Failures returns the failed results in manifest order.
func (r *Report) Failures() []Result {
	var failed []Result
	for _, res := range r.Results {
		if res.Status == StatusFailed {
			failed = append(failed, res)
		}
	}
	return failed
}

func (r *Report) add(res Result) {
	r.Results = append(r.Results, res)
	switch res.Status {
	case StatusSucceeded:
		r.Succeeded++
	case StatusSkipped:
		r.Skipped++
	default:
		r.Failed++
	}
}

// Runner fetches covers into OutputRoot/{id}/cover.jpg.
type Runner struct {
	downloader Downloader
	shapes     []Shape
	outputRoot string

	// MinImageBytes is the size a cover must exceed to count as valid.
	MinImageBytes int64

	// Logger receives operational messages.
	Logger *log.Logger

	// Recorder, when set, receives one attempt per item.
	Recorder Recorder

	// OnResult, when set, is called after each item is processed.
	OnResult func(Result)
}

// NewRunner creates a runner that tries shapes in order for each item.
func NewRunner(downloader Downloader, shapes []Shape, outputRoot string) *Runner {
	return &Runner{
		downloader:    downloader,
		shapes:        shapes,
		outputRoot:    outputRoot,
		MinImageBytes: fetcher.DefaultMinImageBytes,
		Logger:        log.Default(),
	}
}

// CoverPath returns the destination file for an item id.
func (r *Runner) CoverPath(id string) string {
	return CoverPath(r.outputRoot, id)
}

// CoverPath returns outputRoot/{id}/cover.jpg.
func CoverPath(outputRoot, id string) string {
	return filepath.Join(outputRoot, id, CoverFilename)
}

// Run processes every item in manifest order. Item failures are reported,
// not returned. A cancelled context fails the in-flight item and stops the
// run.
func (r *Runner) Run(ctx context.Context, m *manifest.Manifest) *Report {
	report := &Report{
		RunID:     uuid.New(),
		StartedAt: time.Now(),
	}

	r.Logger.Printf("INFO: Starting cover fetch run %s for %d items", report.RunID, m.Len())

	for _, item := range m.Items() {
		if ctx.Err() != nil {
			report.Cancelled = true
			break
		}

		res := r.Process(ctx, item)
		report.add(res)
		r.record(report.RunID, res)

		if r.OnResult != nil {
			r.OnResult(res)
		}

		if ctx.Err() != nil {
			report.Cancelled = true
			break
		}
	}

	report.FinishedAt = time.Now()
	r.Logger.Printf("INFO: Run %s finished: %d succeeded, %d skipped, %d failed",
		report.RunID, report.Succeeded, report.Skipped, report.Failed)

	return report
}

// Process handles one item: it skips an existing valid cover without any
// network access, and otherwise tries every shape.
func (r *Runner) Process(ctx context.Context, item manifest.ContentItem) Result {
	dest := r.CoverPath(item.ID)
	res := Result{Item: item, Path: dest}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		res.Status = StatusFailed
		res.Err = &fetcher.FileSystemError{Op: "create", Path: filepath.Dir(dest), Err: err}
		r.Logger.Printf("ERROR: Item %s: %v", item.ID, res.Err)
		return res
	}

	if size, ok := fetcher.FileSize(dest, r.MinImageBytes); ok {
		res.Status = StatusSkipped
		res.Bytes = size
		r.Logger.Printf("INFO: Item %s: cover already present (%d bytes)", item.ID, size)
		return res
	}

	// An undersized cover from an earlier run must not survive a failure.
	if err := os.Remove(dest); err != nil && !os.IsNotExist(err) {
		res.Status = StatusFailed
		res.Err = &fetcher.FileSystemError{Op: "remove", Path: dest, Err: err}
		r.Logger.Printf("ERROR: Item %s: %v", item.ID, res.Err)
		return res
	}

	return r.TryAllCandidates(ctx, item)
}

// TryAllCandidates tries each shape in order and stops at the first one that
// leaves a valid image at the item's cover path. Files that fail validation
// are deleted before the next shape runs.
func (r *Runner) TryAllCandidates(ctx context.Context, item manifest.ContentItem) Result {
	dest := r.CoverPath(item.ID)
	res := Result{Item: item, Path: dest, Status: StatusFailed}

	var errs []error
	for _, shape := range r.shapes {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		n, candidate, err := r.tryShape(ctx, shape, item, dest)
		if candidate != "" {
			res.URL = candidate
			res.Shape = shape.Name
		}
		if err != nil {
			r.Logger.Printf("WARN: Item %s: %s failed for %q: %v", item.ID, shape.Name, candidate, err)
			errs = append(errs, fmt.Errorf("%s: %w", shape.Name, err))
			continue
		}

		res.Status = StatusSucceeded
		res.Bytes = n
		r.Logger.Printf("INFO: Item %s: saved %d bytes from %s via %s", item.ID, n, candidate, shape.Name)
		return res
	}

	if len(r.shapes) == 0 {
		errs = append(errs, errors.New("no URL shapes configured"))
	}

	res.Err = errors.Join(errs...)
	r.Logger.Printf("ERROR: Item %s: all candidates failed (last URL %q)", item.ID, res.URL)
	return res
}

// tryShape downloads one candidate and validates it. Any invalid file is
// removed.
func (r *Runner) tryShape(ctx context.Context, shape Shape, item manifest.ContentItem, dest string) (int64, string, error) {
	candidate, err := shape.Candidate(ctx, item)
	if err != nil {
		return 0, "", err
	}

	n, err := r.downloader.Download(ctx, candidate, dest)
	if err != nil {
		return 0, candidate, err
	}

	if _, err := fetcher.VerifyImage(dest, r.MinImageBytes); err != nil {
		if rmErr := os.Remove(dest); rmErr != nil && !os.IsNotExist(rmErr) {
			return 0, candidate, errors.Join(err, &fetcher.FileSystemError{Op: "remove", Path: dest, Err: rmErr})
		}
		return 0, candidate, err
	}

	return n, candidate, nil
}

// record writes res to the ledger. Ledger failures are logged and ignored.
func (r *Runner) record(runID uuid.UUID, res Result) {
	if r.Recorder == nil {
		return
	}

	attempt := ledger.Attempt{
		RunID:   runID,
		ItemID:  res.Item.ID,
		URL:     res.URL,
		Shape:   res.Shape,
		Outcome: res.Status.String(),
		Bytes:   res.Bytes,
	}
	if res.Err != nil {
		msg := res.Err.Error()
		attempt.Error = &msg
	}

	if _, err := r.Recorder.Record(attempt); err != nil {
		r.Logger.Printf("WARN: Failed to record attempt for item %s: %v", res.Item.ID, err)
	}
}
