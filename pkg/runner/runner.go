// Package runner executes a batch of query descriptors through per-table dispatchers
// with limited concurrency. Each descriptor gets its own result, failures don't stop other items.
package runner

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/go-pkgz/stringutils"
	"github.com/go-pkgz/syncs"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"github.com/umputun/dbq/pkg/config"
	"github.com/umputun/dbq/pkg/dispatch"
	"github.com/umputun/dbq/pkg/handler"
	"github.com/umputun/dbq/pkg/query"
)

// Process runs descriptors against dispatchers, one dispatcher per table
type Process struct {
	Concurrency int
	Dispatchers map[string]*dispatch.Dispatcher

	Skip []string // tables to skip
	Only []string // tables to run, all if empty
}

// Result of a single descriptor
type Result struct {
	ID         string // request id
	Descriptor query.Descriptor
	Outcome    dispatch.Outcome
	Skipped    bool
	Err        error
	Duration   time.Duration
}

// ProcResp holds results in the order of passed descriptors
type ProcResp struct {
	Results []Result
	Queries int
	Failed  int
	Skipped int
}

// Batch is a file with a list of descriptors
type Batch struct {
	Queries []query.Descriptor `yaml:"queries"`
}

// Bind makes dispatchers for all tables in config, each table bound to the handler of its connection
func Bind(ctx context.Context, conf *config.Config, sel *handler.Selector) (map[string]*dispatch.Dispatcher, error) {
	res := make(map[string]*dispatch.Dispatcher, len(conf.Tables))
	for _, t := range conf.Tables {
		d, err := dispatch.Bind(ctx, sel, conf.ConnectionFor(t), t.Table)
		if err != nil {
			return nil, fmt.Errorf("can't bind table %q: %w", t.Name, err)
		}
		res[t.Name] = d
	}
	return res, nil
}

// LoadBatch reads yaml file with descriptors. Filter keys order is preserved.
func LoadBatch(fname string) ([]query.Descriptor, error) {
	data, err := os.ReadFile(fname) // nolint
	if err != nil {
		return nil, fmt.Errorf("can't read batch %s: %w", fname, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	batch := Batch{}
	if err = dec.Decode(&batch); err != nil {
		return nil, fmt.Errorf("can't unmarshal batch %s: %w", fname, err)
	}
	for i := range batch.Queries {
		batch.Queries[i].Kind = query.ParseKind(string(batch.Queries[i].Kind))
	}
	log.Printf("[DEBUG] batch %s loaded, %d queries", fname, len(batch.Queries))
	return batch.Queries, nil
}

// Run dispatches all descriptors in parallel with limited concurrency. Returns results for every descriptor
// and combined error of all failed ones. Cancelled context stops scheduling of new descriptors.
func (p *Process) Run(ctx context.Context, descs []query.Descriptor) (ProcResp, error) {
	resp := ProcResp{Results: make([]Result, len(descs)), Queries: len(descs)}
	errs := new(multierror.Error)
	ran := make([]bool, len(descs))
	var lock sync.Mutex

	concurrency := p.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	wg := syncs.NewErrSizedGroup(concurrency, syncs.Context(ctx), syncs.Preemptive)
	for i, desc := range descs {
		resp.Results[i] = Result{ID: uuid.NewString(), Descriptor: desc}
		if !p.shouldRun(desc.Table) {
			log.Printf("[INFO] skip %s", desc)
			resp.Results[i].Skipped = true
			resp.Skipped++
			continue
		}
		wg.Go(func() error {
			r := p.runOne(ctx, resp.Results[i])
			lock.Lock()
			ran[i] = true
			resp.Results[i] = r
			if r.Err != nil {
				resp.Failed++
				errs = multierror.Append(errs, fmt.Errorf("query %s (%s): %w", r.ID, desc, r.Err))
			}
			lock.Unlock()
			return r.Err
		})
	}

	_ = wg.Wait() // item errors collected above
	if err := ctx.Err(); err != nil {
		// items never started by the group are failed with the context error
		for i := range resp.Results {
			if ran[i] || resp.Results[i].Skipped {
				continue
			}
			resp.Results[i].Err = err
			resp.Failed++
		}
		errs = multierror.Append(errs, err)
	}
	return resp, errs.ErrorOrNil()
}

func (p *Process) runOne(ctx context.Context, r Result) Result {
	st := time.Now()
	d, ok := p.Dispatchers[r.Descriptor.Table]
	if !ok {
		r.Err = fmt.Errorf("no dispatcher for table %q", r.Descriptor.Table)
		return r
	}
	log.Printf("[DEBUG] [%s] run %s", r.ID, r.Descriptor)
	r.Outcome, r.Err = d.Dispatch(ctx, r.Descriptor)
	r.Duration = time.Since(st)
	return r
}

func (p *Process) shouldRun(table string) bool {
	if len(p.Only) > 0 && !stringutils.Contains(table, p.Only) {
		return false
	}
	return !stringutils.Contains(table, p.Skip)
}
