// Package pipeline runs statement files through read, detect, adapt.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"sync"

	"github.com/google/uuid"

	"github.com/voidshard/tallyman/pkg/adapter"
	"github.com/voidshard/tallyman/pkg/detect"
	"github.com/voidshard/tallyman/pkg/domain"
	"github.com/voidshard/tallyman/pkg/logger"
	"github.com/voidshard/tallyman/pkg/reader"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Result is the outcome of one file.
type Result struct {
	RunID        string
	File         string
	Status       string
	Bank         string
	Adapter      string
	Transactions []domain.Transaction
	Message      string

	// Err is the failure behind Message.
	Err error
}

// OK reports whether the file was processed.
func (r *Result) OK() bool {
	return r.Status == StatusSuccess
}

// Statement is the processed file, or nil for a failed one.
func (r *Result) Statement() *domain.Statement {
	if !r.OK() {
		return nil
	}
	return &domain.Statement{File: r.File, Bank: r.Bank, Transactions: r.Transactions}
}

type successJSON struct {
	File         string               `json:"file"`
	Status       string               `json:"status"`
	Bank         string               `json:"bank"`
	Adapter      string               `json:"adapter"`
	Count        int                  `json:"transaction_count"`
	Transactions []domain.Transaction `json:"transactions"`
	RunID        string               `json:"run_id,omitempty"`
}

type errorJSON struct {
	File    string `json:"file"`
	Status  string `json:"status"`
	Message string `json:"message"`
	RunID   string `json:"run_id,omitempty"`
}

// MarshalJSON writes the success or the error shape depending on Status.
func (r *Result) MarshalJSON() ([]byte, error) {
	if !r.OK() {
		return json.Marshal(errorJSON{File: r.File, Status: StatusError, Message: r.Message, RunID: r.RunID})
	}
	txns := r.Transactions
	if txns == nil {
		txns = []domain.Transaction{}
	}
	return json.Marshal(successJSON{
		File:         r.File,
		Status:       r.Status,
		Bank:         r.Bank,
		Adapter:      r.Adapter,
		Count:        len(txns),
		Transactions: txns,
		RunID:        r.RunID,
	})
}

// Statements collects the successful results.
func Statements(results []*Result) []*domain.Statement {
	out := []*domain.Statement{}
	for _, r := range results {
		if s := r.Statement(); s != nil {
			out = append(out, s)
		}
	}
	return out
}

// Processor turns files into transactions. It holds no per-file state and is
// safe for concurrent use.
type Processor struct {
	detector *detect.Detector
	opts     adapter.Options
}

// New returns a processor using d (nil means the built in banks).
func New(d *detect.Detector, opts adapter.Options) *Processor {
	if d == nil {
		d = detect.New(nil)
	}
	return &Processor{detector: d, opts: opts}
}

func (p *Processor) Detector() *detect.Detector {
	return p.detector
}

// ProcessFile reads and processes the file at path.
func (p *Processor) ProcessFile(ctx context.Context, path string) *Result {
	return p.process(ctx, uuid.NewString(), path)
}

// ProcessBytes processes an in memory file; name picks the format.
func (p *Processor) ProcessBytes(ctx context.Context, name string, data []byte) *Result {
	src, err := reader.Read(name, data)
	if err != nil {
		return p.fail(ctx, uuid.NewString(), name, err)
	}
	return p.ProcessSource(ctx, uuid.NewString(), src)
}

// ProcessSource runs detection and the selected adapter over src.
func (p *Processor) ProcessSource(ctx context.Context, runID string, src *reader.Source) *Result {
	log := logger.FromContext(ctx).With().Str("run", runID).Str("file", src.Name).Logger()

	if src.Table == nil {
		return p.fail(ctx, runID, src.Name, reader.ErrNoTable)
	}
	if err := src.Table.Validate(); err != nil {
		return p.fail(ctx, runID, src.Name, err)
	}

	bank := p.detector.Detect(src.Text)
	a := adapter.For(bank, src.Table, p.opts)
	if err := a.Validate(); err != nil {
		log.Debug().Err(err).Str("adapter", a.Name()).Msg("table does not look like its dialect")
	}

	txns := a.Process()

	log.Info().
		Str("bank", bank).
		Str("adapter", a.Name()).
		Int("transactions", len(txns)).
		Msg("processed statement")
	if dropped := src.Table.Len() - len(txns); dropped > 0 {
		log.Debug().Int("dropped", dropped).Msg("rows without a date")
	}

	return &Result{
		RunID:        runID,
		File:         src.Name,
		Status:       StatusSuccess,
		Bank:         bank,
		Adapter:      a.Name(),
		Transactions: txns,
	}
}

func (p *Processor) process(ctx context.Context, runID, path string) *Result {
	if err := ctx.Err(); err != nil {
		return p.fail(ctx, runID, path, err)
	}
	src, err := reader.ReadFile(path)
	if err != nil {
		return p.fail(ctx, runID, path, err)
	}
	return p.ProcessSource(ctx, runID, src)
}

func (p *Processor) fail(ctx context.Context, runID, file string, err error) *Result {
	msg := err.Error()
	if errors.Is(err, fs.ErrNotExist) {
		msg = "File not found"
	}

	log := logger.FromContext(ctx)
	log.Warn().Err(err).Str("run", runID).Str("file", file).Msg("failed to process statement")

	return &Result{RunID: runID, File: file, Status: StatusError, Message: msg, Err: err}
}

type job struct {
	index int
	path  string
}

type done struct {
	index  int
	result *Result
}

// ProcessAll processes paths with up to workers files in flight. Results
// come back in the order of paths; a failing file never stops the others.
func (p *Processor) ProcessAll(ctx context.Context, paths []string, workers int) []*Result {
	if workers < 1 {
		workers = 1
	}
	runID := uuid.NewString()

	jobs := make(chan job)
	rChan := make(chan done)
	finalChan := make(chan []*Result)

	go func() { // fan in
		results := make([]*Result, len(paths))
		for d := range rChan {
			results[d.index] = d.result
		}
		finalChan <- results
	}()

	wg := &sync.WaitGroup{}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() { // fan out
			defer wg.Done()
			for j := range jobs {
				rChan <- done{index: j.index, result: p.process(ctx, runID, j.path)}
			}
		}()
	}

	for i, path := range paths {
		jobs <- job{index: i, path: path}
	}
	close(jobs)

	wg.Wait()
	close(rChan)

	return <-finalChan
}
