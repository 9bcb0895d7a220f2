package assistant

import (
	"context"
	"sync"
	"time"

	"github.com/ziadkadry99/riskdesk/internal/events"
)

// fakeGateway serves canned data and records searches. It is safe for the
// concurrent reads the assembler performs.
type fakeGateway struct {
	mu sync.Mutex

	stats    *events.Statistics
	critical []events.Event
	months   []events.MonthBucket
	levels   []events.LevelSummary
	records  map[string]events.Event
	results  []events.Event

	statsErr, criticalErr, monthsErr, levelsErr, searchErr, updateErr error

	searches    []events.SearchParams
	textQueries []string
	updates     []events.Status
}

func (f *fakeGateway) Statistics(ctx context.Context) (*events.Statistics, error) {
	return f.stats, f.statsErr
}

func (f *fakeGateway) TopCritical(ctx context.Context, limit int) ([]events.Event, error) {
	return f.critical, f.criticalErr
}

func (f *fakeGateway) MonthlyRollup(ctx context.Context) ([]events.MonthBucket, error) {
	return f.months, f.monthsErr
}

func (f *fakeGateway) LevelRollup(ctx context.Context) ([]events.LevelSummary, error) {
	return f.levels, f.levelsErr
}

func (f *fakeGateway) GetByID(ctx context.Context, id string) (*events.Event, error) {
	e, ok := f.records[id]
	if !ok {
		return nil, events.ErrNotFound
	}
	return &e, nil
}

func (f *fakeGateway) Search(ctx context.Context, p events.SearchParams) ([]events.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searches = append(f.searches, p)
	return f.results, f.searchErr
}

func (f *fakeGateway) SearchText(ctx context.Context, term string, limit int) ([]events.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.textQueries = append(f.textQueries, term)
	return f.results, f.searchErr
}

func (f *fakeGateway) UpdateStatus(ctx context.Context, id string, status events.Status) (*events.StatusChange, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, status)
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return &events.StatusChange{EventID: id, Previous: events.StatusOpen, Current: status}, nil
}

// scriptedGenerator returns errs in order, then text.
type scriptedGenerator struct {
	mu      sync.Mutex
	errs    []error
	text    string
	prompts []string
	params  []GenerationParams
}

func (g *scriptedGenerator) Generate(ctx context.Context, prompt string, params GenerationParams) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, prompt)
	g.params = append(g.params, params)
	if n := len(g.prompts); n <= len(g.errs) {
		return "", g.errs[n-1]
	}
	return g.text, nil
}

func (g *scriptedGenerator) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.prompts)
}

// recordingSleeper notes each requested wait without sleeping.
type recordingSleeper struct {
	waits []time.Duration
	err   error
}

func (s *recordingSleeper) sleep(ctx context.Context, d time.Duration) error {
	s.waits = append(s.waits, d)
	return s.err
}

func ptrFloat(v float64) *float64 { return &v }
func ptrInt64(v int64) *int64 { return &v }
