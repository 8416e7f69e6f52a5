package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBaseModelBeforeCreateGeneratesID(t *testing.T) {
	var base BaseModel
	require.NoError(t, base.BeforeCreate(nil))
	require.NotEmpty(t, base.ID)

	kept := BaseModel{ID: "fixed"}
	require.NoError(t, kept.BeforeCreate(nil))
	require.Equal(t, "fixed", kept.ID)
}

func TestSlugFields(t *testing.T) {
	title, stored := Blog{Title: "Hello", Slug: "hi"}.SlugFields()
	require.Equal(t, "Hello", title)
	require.Equal(t, "hi", stored)

	title, stored = Project{Title: "Tool"}.SlugFields()
	require.Equal(t, "Tool", title)
	require.Empty(t, stored)
}

func TestCacheEntryExpired(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	require.False(t, CacheEntry{}.Expired(now))
	require.False(t, CacheEntry{ExpiresAt: now.Add(time.Second)}.Expired(now))
	require.True(t, CacheEntry{ExpiresAt: now}.Expired(now))
}

func TestAdminSessionActive(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	session := &AdminSession{ExpiresAt: now.Add(time.Hour)}
	require.True(t, session.Active(now))
	require.False(t, session.Active(now.Add(2*time.Hour)))

	revoked := now
	session.RevokedAt = &revoked
	require.False(t, session.Active(now))
}
