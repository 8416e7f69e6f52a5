package slug

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type post struct {
	ID    string
	Title string
	Slug  string
}

func (p post) SlugFields() (string, string) { return p.Title, p.Slug }

type countingSource struct {
	records   []post
	findCalls int
	listCalls int
	findErr   error
	listErr   error
}

func (s *countingSource) FindBySlug(_ context.Context, slug string) (*post, error) {
	s.findCalls++
	if s.findErr != nil {
		return nil, s.findErr
	}
	for i := range s.records {
		if s.records[i].Slug != "" && s.records[i].Slug == slug {
			found := s.records[i]
			return &found, nil
		}
	}
	return nil, nil
}

func (s *countingSource) ListCandidates(context.Context) ([]post, error) {
	s.listCalls++
	if s.listErr != nil {
		return nil, s.listErr
	}
	return append([]post(nil), s.records...), nil
}

func TestResolveStoredSlugSkipsCandidateScan(t *testing.T) {
	source := &countingSource{records: []post{
		{ID: "1", Title: "Custom Slug Post", Slug: "custom-slug"},
		{ID: "2", Title: "Other"},
	}}

	match, err := NewResolver[post](source).Resolve(context.Background(), "custom-slug")
	require.NoError(t, err)
	require.Equal(t, "1", match.Record.ID)
	require.Equal(t, "custom-slug", match.Slug)
	require.Equal(t, TierStored, match.Tier)
	require.Equal(t, 1, source.findCalls)
	require.Zero(t, source.listCalls)
}

func TestResolveDerivedSlug(t *testing.T) {
	source := &countingSource{records: []post{
		{ID: "1", Title: "Another Post"},
		{ID: "2", Title: "My First Post"},
	}}

	match, err := NewResolver[post](source).Resolve(context.Background(), "my-first-post")
	require.NoError(t, err)
	require.Equal(t, "2", match.Record.ID)
	require.Equal(t, "my-first-post", match.Slug)
	require.Equal(t, TierDerived, match.Tier)
	require.Empty(t, match.Record.Slug, "annotation must not touch the record")
	require.Equal(t, 1, source.listCalls)
}

func TestResolveDecodedTitle(t *testing.T) {
	source := &countingSource{records: []post{
		{ID: "1", Title: "C++ Tricks"},
		{ID: "2", Title: "Café Notes"},
	}}
	resolver := NewResolver[post](source)

	match, err := resolver.Resolve(context.Background(), "c++-tricks")
	require.NoError(t, err)
	require.Equal(t, "1", match.Record.ID)
	require.Equal(t, TierTitle, match.Tier)
	require.Equal(t, "c-tricks", match.Slug)

	match, err = resolver.Resolve(context.Background(), "caf%C3%A9-NOTES")
	require.NoError(t, err)
	require.Equal(t, "2", match.Record.ID)
	require.Equal(t, TierTitle, match.Tier)
}

func TestResolveFetchesCandidatesOnce(t *testing.T) {
	source := &countingSource{records: []post{{ID: "1", Title: "Nothing Here"}}}

	_, err := NewResolver[post](source).Resolve(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)
	require.Equal(t, 1, source.findCalls)
	require.Equal(t, 1, source.listCalls)
}

func TestResolveEmptyIdentifier(t *testing.T) {
	source := &countingSource{}

	_, err := NewResolver[post](source).Resolve(context.Background(), "  ")
	require.ErrorIs(t, err, ErrNotFound)
	require.Zero(t, source.findCalls)
	require.Zero(t, source.listCalls)
}

func TestResolveWithoutTitleFallback(t *testing.T) {
	source := &countingSource{records: []post{{ID: "1", Title: "C++ Tricks"}}}

	_, err := NewResolver[post](source, WithoutTitleFallback()).Resolve(context.Background(), "c++-tricks")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestResolvePropagatesSourceErrors(t *testing.T) {
	boom := errors.New("connection refused")

	_, err := NewResolver[post](&countingSource{findErr: boom}).Resolve(context.Background(), "x")
	require.ErrorIs(t, err, boom)
	require.NotErrorIs(t, err, ErrNotFound)

	_, err = NewResolver[post](&countingSource{listErr: boom}).Resolve(context.Background(), "x")
	require.ErrorIs(t, err, boom)
}

func TestCollisionFirstMatchWins(t *testing.T) {
	candidates := []post{{ID: "old", Title: "Hello World"}, {ID: "new", Title: "Hello, World!"}}

	idx, ok := MatchDerived("hello-world", candidates)
	require.True(t, ok)
	require.Equal(t, 0, idx)
}

func TestDecodeIdentifier(t *testing.T) {
	require.Equal(t, "my first post", DecodeIdentifier("my-first-post"))
	require.Equal(t, "café notes", DecodeIdentifier("caf%C3%A9-notes"))
	require.Equal(t, "100% done", DecodeIdentifier("100%-done"))
}

func TestMatchDecodedTitleKeepsMalformedEscapes(t *testing.T) {
	idx, ok := MatchDecodedTitle("100%-done", []post{{Title: "100% Done"}})
	require.True(t, ok)
	require.Zero(t, idx)
}
