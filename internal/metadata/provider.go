package metadata

import (
	"context"

	"github.com/vmunix/sortarr/internal/tmdb"
)

//go:generate mockgen -destination=mocks/mock_provider.go -package=mocks github.com/vmunix/sortarr/internal/metadata Provider

// Provider is the metadata capability the resolver depends on. Any service
// exposing multi-type and type-specific search plus authoritative detail
// lookups can be plugged in; *tmdb.Client implements it.
type Provider interface {
	SearchMulti(ctx context.Context, query string, page int) ([]tmdb.Candidate, int, error)
	SearchTV(ctx context.Context, query string, year, page int) ([]tmdb.Candidate, int, error)
	SearchMovie(ctx context.Context, query string, year, page int) ([]tmdb.Candidate, int, error)
	TVDetails(ctx context.Context, id int) (*tmdb.Details, error)
	MovieDetails(ctx context.Context, id int) (*tmdb.Details, error)
}
