package ports

import (
	"context"
	"time"

	"gomarkov/internal/markov"
)

// ObservationSource yields the migrations of one sample, read whole into memory.
type ObservationSource interface {
	LoadObservations(ctx context.Context) ([]markov.Observation, error)
}

// ObservationRepository is a read-only store of migration histories keyed
// by portfolio. Analysis results are never written back.
type ObservationRepository interface {
	ListPortfolios(ctx context.Context) ([]PortfolioSummary, error)
	ObservationsForPortfolio(ctx context.Context, portfolio string, window ObservationWindow) ([]markov.Observation, error)
}

// ObservationWindow restricts a query to migrations observed in [From, To).
// Zero bounds are open.
type ObservationWindow struct {
	From time.Time
	To   time.Time
}

// PortfolioSummary describes one portfolio available in the repository.
type PortfolioSummary struct {
	Portfolio    string    `db:"portfolio" json:"portfolio"`
	Observations int       `db:"observations" json:"observations"`
	FirstSeen    time.Time `db:"first_seen" json:"first_seen"`
	LastSeen     time.Time `db:"last_seen" json:"last_seen"`
}
