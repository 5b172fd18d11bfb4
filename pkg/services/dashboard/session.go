package dashboard

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/de-tools/metric-atlas/pkg/models/domain"
	"github.com/de-tools/metric-atlas/pkg/services/formula"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrNoDataset is returned by View before anything has been loaded.
var ErrNoDataset = errors.New("no dataset loaded")

// Options configure a new Session.
type Options struct {
	Mode        domain.PeriodMode
	Metric      string
	Watched     []string
	CalcColumns []domain.CalcColumn
	// Observer, if set, is told about every formula cell that evaluated to null.
	Observer formula.Observer
}

// Session is the mutable configuration surface of one dashboard. Every read derives a
// fresh View; nothing derived is kept between calls.
type Session struct {
	mu sync.RWMutex

	loaded   bool
	dataset  domain.Dataset
	mode     domain.PeriodMode
	sel      Selection
	calc     []domain.CalcColumn
	metric   string
	watched  []string
	search   string
	observer formula.Observer

	defaultMetric  string
	defaultWatched []string
}

func NewSession(opts Options) (*Session, error) {
	mode := opts.Mode
	if mode == "" {
		mode = domain.PeriodWeek
	}
	if _, err := domain.ParsePeriodMode(string(mode)); err != nil {
		return nil, err
	}
	for _, c := range opts.CalcColumns {
		if err := formula.ValidateCalcColumn(c); err != nil {
			return nil, err
		}
	}

	return &Session{
		mode:           mode,
		calc:           slices.Clone(opts.CalcColumns),
		metric:         opts.Metric,
		watched:        slices.Clone(opts.Watched),
		observer:       opts.Observer,
		defaultMetric:  opts.Metric,
		defaultWatched: slices.Clone(opts.Watched),
	}, nil
}

// Load replaces the dataset and resets selections, search, metric and watched metrics.
// Calc columns are kept. It returns the dataset id, generating one when ds has none.
func (s *Session) Load(ds domain.Dataset) string {
	if ds.ID == "" {
		ds.ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.loaded = true
	s.dataset = ds
	s.sel = Selection{}
	s.search = ""
	s.metric = s.defaultMetric
	s.watched = slices.Clone(s.defaultWatched)
	return ds.ID
}

// SetMode switches between week and month periods and clears the period selection.
func (s *Session) SetMode(mode domain.PeriodMode) error {
	mode, err := domain.ParsePeriodMode(string(mode))
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if mode != s.mode {
		s.sel.Periods = nil
	}
	s.mode = mode
	return nil
}

// Select replaces the account, year and period selections.
func (s *Session) Select(sel Selection) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sel = Selection{
		Accounts: trimAll(sel.Accounts),
		Years:    trimAll(sel.Years),
		Periods:  trimAll(sel.Periods),
	}
}

// AddCalcColumn appends a calc column after checking that its formula parses.
func (s *Session) AddCalcColumn(c domain.CalcColumn) error {
	c.Name = strings.TrimSpace(c.Name)
	if err := formula.ValidateCalcColumn(c); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.calc = append(s.calc, c)
	return nil
}

// RemoveCalcColumn drops every calc column called name and reports whether one existed.
func (s *Session) RemoveCalcColumn(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.calc)
	s.calc = slices.DeleteFunc(s.calc, func(c domain.CalcColumn) bool { return c.Name == name })
	return len(s.calc) != n
}

func (s *Session) SetMetric(metric string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metric = strings.TrimSpace(metric)
}

// SetWatched sets the compared metrics. nil restores the default of all numeric columns.
func (s *Session) SetWatched(metrics []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if metrics == nil {
		s.watched = nil
		return
	}
	s.watched = trimAll(metrics)
}

func (s *Session) SetSearch(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.search = query
}

// Input snapshots the current state.
func (s *Session) Input() (Input, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.loaded {
		return Input{}, ErrNoDataset
	}
	var watched []string
	if s.watched != nil {
		watched = slices.Clone(s.watched)
	}
	return Input{
		Dataset: s.dataset,
		Mode:    s.mode,
		Selection: Selection{
			Accounts: slices.Clone(s.sel.Accounts),
			Years:    slices.Clone(s.sel.Years),
			Periods:  slices.Clone(s.sel.Periods),
		},
		CalcColumns: slices.Clone(s.calc),
		Metric:      s.metric,
		Watched:     watched,
		Search:      s.search,
	}, nil
}

// View derives the current dashboard. Formula failures are logged at debug level and
// forwarded to the configured observer.
func (s *Session) View(ctx context.Context) (View, error) {
	in, err := s.Input()
	if err != nil {
		return View{}, err
	}

	logger := zerolog.Ctx(ctx)
	obs := formula.ObserverFunc(func(e *formula.EvaluationError) {
		logger.Debug().
			Err(e.Err).
			Str("column", e.Column).
			Int("row", e.Row).
			Msg("calc column evaluated to null")
		if s.observer != nil {
			s.observer.EvaluationFailed(e)
		}
	})

	return Compute(in, obs), nil
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
