package slug

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/text/cases"
)

// ErrNotFound is returned when no resolution tier matches the identifier.
var ErrNotFound = errors.New("slug: no record matches identifier")

// Record is implemented by content models addressable by slug.
type Record interface {
	// SlugFields returns the display title and the stored slug ("" when never stored).
	SlugFields() (title, stored string)
}

// Source is the backing-store view a Resolver needs.
type Source[T Record] interface {
	// FindBySlug performs the indexed exact lookup on the stored slug column.
	// It returns (nil, nil) when nothing matches.
	FindBySlug(ctx context.Context, slug string) (*T, error)
	// ListCandidates returns every record eligible for fallback matching, in the
	// order that decides collisions (first match wins).
	ListCandidates(ctx context.Context) ([]T, error)
}

// Tier identifies which strategy produced a match.
type Tier int

const (
	TierNone Tier = iota
	TierStored
	TierDerived
	TierTitle
)

func (t Tier) String() string {
	switch t {
	case TierStored:
		return "stored"
	case TierDerived:
		return "derived"
	case TierTitle:
		return "title"
	default:
		return "none"
	}
}

// Match is a resolved record annotated with its effective slug. The annotation
// is never written back to the store.
type Match[T Record] struct {
	Record T
	Slug   string
	Tier   Tier
}

// Strategy is a pure fallback tier over the candidate list. It returns the index
// of the first matching candidate.
type Strategy[T Record] struct {
	Tier  Tier
	Match func(identifier string, candidates []T) (int, bool)
}

// Option tunes a Resolver.
type Option func(*options)

type options struct {
	titleFallback bool
}

// WithoutTitleFallback drops the decoded-title tier. Only safe once every record
// has a stored slug that round-trips from its URL.
func WithoutTitleFallback() Option {
	return func(o *options) {
		o.titleFallback = false
	}
}

// Resolver maps an inbound identifier to a record: stored slug first, then the
// fallback strategies in order over a single candidate fetch.
type Resolver[T Record] struct {
	source     Source[T]
	strategies []Strategy[T]
}

// NewResolver builds the default chain: stored, derived, decoded title.
func NewResolver[T Record](source Source[T], opts ...Option) *Resolver[T] {
	o := options{titleFallback: true}
	for _, opt := range opts {
		opt(&o)
	}

	strategies := []Strategy[T]{{Tier: TierDerived, Match: MatchDerived[T]}}
	if o.titleFallback {
		strategies = append(strategies, Strategy[T]{Tier: TierTitle, Match: MatchDecodedTitle[T]})
	}

	return &Resolver[T]{source: source, strategies: strategies}
}

// Resolve returns the first record matched by the tier chain, or ErrNotFound.
// Source failures are wrapped and returned as-is so callers can tell a missing
// record from a broken store.
func (r *Resolver[T]) Resolve(ctx context.Context, identifier string) (Match[T], error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return Match[T]{}, ErrNotFound
	}

	record, err := r.source.FindBySlug(ctx, identifier)
	if err != nil {
		return Match[T]{}, fmt.Errorf("slug: stored lookup %q: %w", identifier, err)
	}
	if record != nil {
		return annotate(*record, TierStored), nil
	}

	if len(r.strategies) == 0 {
		return Match[T]{}, ErrNotFound
	}

	candidates, err := r.source.ListCandidates(ctx)
	if err != nil {
		return Match[T]{}, fmt.Errorf("slug: list candidates: %w", err)
	}

	for _, strategy := range r.strategies {
		if idx, ok := strategy.Match(identifier, candidates); ok {
			return annotate(candidates[idx], strategy.Tier), nil
		}
	}

	return Match[T]{}, ErrNotFound
}

func annotate[T Record](record T, tier Tier) Match[T] {
	title, stored := record.SlugFields()
	return Match[T]{Record: record, Slug: Effective(title, stored), Tier: tier}
}

// MatchDerived finds the first candidate whose title derives to identifier.
func MatchDerived[T Record](identifier string, candidates []T) (int, bool) {
	for i, candidate := range candidates {
		title, _ := candidate.SlugFields()
		if Derive(title) == identifier {
			return i, true
		}
	}
	return -1, false
}

// MatchDecodedTitle decodes identifier and compares it to each title under
// Unicode case folding.
func MatchDecodedTitle[T Record](identifier string, candidates []T) (int, bool) {
	decoded := DecodeIdentifier(identifier)
	if decoded == "" {
		return -1, false
	}

	// Casers carry state; one per call.
	fold := cases.Fold()
	want := fold.String(decoded)
	for i, candidate := range candidates {
		title, _ := candidate.SlugFields()
		if fold.String(title) == want {
			return i, true
		}
	}
	return -1, false
}

// DecodeIdentifier turns hyphens back into spaces and percent-decodes the
// result. Malformed escapes are kept literally.
func DecodeIdentifier(identifier string) string {
	spaced := strings.ReplaceAll(identifier, "-", " ")
	if decoded, err := url.PathUnescape(spaced); err == nil {
		return decoded
	}
	return spaced
}
