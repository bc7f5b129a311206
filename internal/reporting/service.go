package reporting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// ErrRepresentativeNotFound is returned when the requested representative does
// not exist in the tenant.
var ErrRepresentativeNotFound = errors.New("reporting: representative not found")

// Scope narrows repository reads to one representative of one tenant.
type Scope struct {
	TenantID int64  `json:"tenantId"`
	ActorID  string `json:"actorId"`
}

// Representative is the metadata shown in the report header.
type Representative struct {
	ID       string `json:"id"`
	TenantID int64  `json:"tenantId"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Region   string `json:"region,omitempty"`
	Active   bool   `json:"active"`
}

// Repository exposes the storage queries the service relies on.
type Repository interface {
	ListOrders(ctx context.Context, scope Scope) ([]Order, error)
	ListVisits(ctx context.Context, scope Scope) ([]Visit, error)
	ListCollections(ctx context.Context, scope Scope) ([]Collection, error)
	GetRepresentative(ctx context.Context, tenantID int64, actorID string) (Representative, error)
	ActiveRepresentatives(ctx context.Context) ([]Scope, error)
}

// ReportFilter defines the scope of a representative report.
type ReportFilter struct {
	TenantID int64
	ActorID  string
	Period   PeriodName
	Custom   TimeRange
	TopN     int
}

// Report is a built profile with the metadata needed to present it.
type Report struct {
	Representative Representative `json:"representative"`
	Period         PeriodName     `json:"period"`
	Range          TimeRange      `json:"range"`
	TopN           int            `json:"topN"`
	Profile        Profile        `json:"profile"`
	GeneratedAt    time.Time      `json:"generatedAt"`
}

// Service coordinates repository reads with the cache layer and the engine.
type Service struct {
	repo        Repository
	cache       *Cache
	now         func() time.Time
	defaultTopN int
}

// NewService wires a Repository with a Cache helper.
func NewService(repo Repository, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache, now: time.Now, defaultTopN: DefaultTopN}
}

// WithNow overrides the clock used to resolve periods.
func (s *Service) WithNow(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// WithDefaultTopN sets the ranking bound used when a filter leaves TopN unset.
func (s *Service) WithDefaultTopN(n int) *Service {
	if n > 0 {
		s.defaultTopN = n
	}
	return s
}

// Cache exposes the cache helper so writers can invalidate it.
func (s *Service) Cache() *Cache {
	return s.cache
}

// Dataset loads every order, visit and collection of the scope, through the
// cache when one is configured.
func (s *Service) Dataset(ctx context.Context, scope Scope) (Dataset, error) {
	key, err := s.cache.BuildKey(ctx, keyDataset(scope))
	if err != nil {
		return Dataset{}, err
	}
	var ds Dataset
	if err := s.cache.FetchJSON(ctx, key, &ds, func(ctx context.Context) (any, error) {
		return s.loadDataset(ctx, scope)
	}); err != nil {
		return Dataset{}, err
	}
	return ds, nil
}

func (s *Service) loadDataset(ctx context.Context, scope Scope) (Dataset, error) {
	var ds Dataset
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := s.repo.ListOrders(gctx, scope)
		if err != nil {
			return fmt.Errorf("reporting: list orders: %w", err)
		}
		ds.Orders = rows
		return nil
	})
	g.Go(func() error {
		rows, err := s.repo.ListVisits(gctx, scope)
		if err != nil {
			return fmt.Errorf("reporting: list visits: %w", err)
		}
		ds.Visits = rows
		return nil
	})
	g.Go(func() error {
		rows, err := s.repo.ListCollections(gctx, scope)
		if err != nil {
			return fmt.Errorf("reporting: list collections: %w", err)
		}
		ds.Collections = rows
		return nil
	})
	if err := g.Wait(); err != nil {
		return Dataset{}, err
	}
	return ds, nil
}

// RepresentativeReport resolves the period, loads the dataset and builds the
// profile for one representative.
func (s *Service) RepresentativeReport(ctx context.Context, filter ReportFilter) (Report, error) {
	rep, err := s.repo.GetRepresentative(ctx, filter.TenantID, filter.ActorID)
	if err != nil {
		return Report{}, err
	}
	scope := Scope{TenantID: filter.TenantID, ActorID: filter.ActorID}
	ds, err := s.Dataset(ctx, scope)
	if err != nil {
		return Report{}, err
	}

	period := filter.Period
	if period == "" {
		period = PeriodThisMonth
	}
	topN := filter.TopN
	if topN == 0 {
		topN = s.defaultTopN
	}
	now := s.now()
	window := NewResolver(func() time.Time { return now }).Resolve(period, filter.Custom)

	return Report{
		Representative: rep,
		Period:         period,
		Range:          window,
		TopN:           topN,
		Profile:        BuildProfile(ds, ProfileOptions{ActorID: filter.ActorID, Range: window, TopN: topN}),
		GeneratedAt:    now.UTC(),
	}, nil
}

// Warm loads the dataset of every active representative into the cache. A
// failing scope is reported through onError and does not stop the others.
func (s *Service) Warm(ctx context.Context, perScope time.Duration, onError func(Scope, error)) (int, error) {
	scopes, err := s.repo.ActiveRepresentatives(ctx)
	if err != nil {
		return 0, fmt.Errorf("reporting: active representatives: %w", err)
	}
	warmed := 0
	for _, scope := range scopes {
		if err := ctx.Err(); err != nil {
			return warmed, err
		}
		scopeCtx := ctx
		cancel := func() {}
		if perScope > 0 {
			scopeCtx, cancel = context.WithTimeout(ctx, perScope)
		}
		_, err := s.Dataset(scopeCtx, scope)
		cancel()
		if err != nil {
			if onError != nil {
				onError(scope, err)
			}
			continue
		}
		warmed++
	}
	return warmed, nil
}
