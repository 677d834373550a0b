package reports

import (
	"context"
	"time"

	"github.com/appetiteclub/pos/internal/prefs"
	"github.com/aquamarinepk/aqm"
)

// Service loads reports for a timeframe and remembers the last one chosen.
type Service struct {
	da     *DataAccess
	store  *prefs.Store
	logger aqm.Logger
	now    func() time.Time
}

func NewService(da *DataAccess, store *prefs.Store, logger aqm.Logger) *Service {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	if store == nil {
		store = prefs.Memory()
	}
	return &Service{da: da, store: store, logger: logger, now: time.Now}
}

// Timeframe is the remembered preset.
func (s *Service) Timeframe() string {
	tf := s.store.Get().ReportTimeframe
	if tf == "" || tf == Custom {
		return prefs.DefaultTimeframe
	}
	return tf
}

// Load resolves timeframe, falling back to the remembered one when empty,
// and loads the report. The preset is remembered once it resolves.
func (s *Service) Load(ctx context.Context, timeframe string) (*Report, error) {
	if timeframe == "" {
		timeframe = s.Timeframe()
	}

	rng, err := ResolveRange(timeframe, s.now())
	if err != nil {
		return nil, err
	}
	s.remember(timeframe)

	report, err := s.da.Load(ctx, rng)
	if err != nil {
		return nil, err
	}
	report.Timeframe = timeframe
	return report, nil
}

// LoadCustom loads the whole days from first to last.
func (s *Service) LoadCustom(ctx context.Context, first, last time.Time) (*Report, error) {
	rng, err := CustomRange(first, last)
	if err != nil {
		return nil, err
	}

	report, err := s.da.Load(ctx, rng)
	if err != nil {
		return nil, err
	}
	report.Timeframe = Custom
	return report, nil
}

func (s *Service) remember(timeframe string) {
	if s.store.Get().ReportTimeframe == timeframe {
		return
	}
	if err := s.store.Update(func(p *prefs.Preferences) { p.ReportTimeframe = timeframe }); err != nil {
		s.logger.Error("cannot save report timeframe", "error", err)
	}
}
