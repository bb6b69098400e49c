package feed

import (
	"context"
	"time"

	appLog "github.com/RubberMartyr/jvgh-kantinedienst/internal/log"
	"github.com/RubberMartyr/jvgh-kantinedienst/internal/model"
)

// Service ties the fetcher, parser and recurrence expansion together and
// retains the last successfully parsed fixture set. Transport failures never
// wipe previously loaded fixtures; the stale set stays current until a later
// refresh succeeds.
type Service struct {
	fetcher *Fetcher
	parser  *Parser
	horizon time.Duration

	fixtures []model.Fixture
}

// NewService creates a feed service for the given feed URL and home venue.
// horizonDays bounds how far ahead recurring fixtures are expanded.
func NewService(url, homeVenue string, loc *time.Location, horizonDays int) *Service {
	if horizonDays <= 0 {
		horizonDays = 120
	}
	return &Service{
		fetcher: NewFetcher(url),
		parser:  &Parser{HomeVenue: homeVenue, Loc: loc},
		horizon: time.Duration(horizonDays) * 24 * time.Hour,
	}
}

// Refresh fetches and re-parses the feed. On success the retained fixture
// set is replaced. On failure the previous set is kept and the error carries
// a human-readable retry hint.
func (s *Service) Refresh(ctx context.Context) ([]model.Fixture, error) {
	body, err := s.fetcher.Fetch(ctx)
	if err != nil {
		appLog.Error("feed refresh failed; keeping previous fixtures", err,
			"retained", len(s.fixtures))
		return s.fixtures, err
	}

	parsed, err := s.parser.Parse(body)
	if err != nil {
		appLog.Error("feed parse failed; keeping previous fixtures", err,
			"retained", len(s.fixtures))
		return s.fixtures, err
	}

	now := time.Now()
	s.fixtures = Expand(parsed, now.AddDate(0, -1, 0), now.Add(s.horizon))
	return s.fixtures, nil
}

// Fixtures returns the last successfully parsed fixture set.
func (s *Service) Fixtures() []model.Fixture {
	return s.fixtures
}
