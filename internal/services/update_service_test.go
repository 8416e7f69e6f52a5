package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUpdateServiceLifecycle(t *testing.T) {
	env := newTestEnv(t)
	svc, err := NewUpdateService(env.db, env.accessor, env.cfg)
	require.NoError(t, err)
	ctx := context.Background()

	older := daysAgo(3)
	_, err = svc.Create(ctx, UpdateInput{Title: "First", Date: &older})
	require.NoError(t, err)
	second, err := svc.Create(ctx, UpdateInput{Title: "Second", Link: " https://example.com "})
	require.NoError(t, err)
	require.Equal(t, "https://example.com", second.Link)

	list, err := svc.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "Second", list[0].Title)

	list, err = svc.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, svc.Delete(ctx, second.ID))
	require.ErrorIs(t, svc.Delete(ctx, second.ID), ErrUpdateNotFound)

	_, err = svc.Create(ctx, UpdateInput{})
	require.ErrorIs(t, err, ErrInvalidInput)
}
