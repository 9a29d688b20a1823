package repomanager

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/archivist/internal/common"
	"github.com/dmitrijs2005/archivist/internal/config"
	"github.com/dmitrijs2005/archivist/internal/dbx"
	"github.com/dmitrijs2005/archivist/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The repositories share one SQL text across dialects; these tests run it
// against a real SQLite file.
func TestRepositories_SQLite(t *testing.T) {
	ctx := context.Background()
	db, m, err := Bootstrap(ctx, config.DriverSQLite, filepath.Join(t.TempDir(), "rt.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

	t.Run("highlights", func(t *testing.T) {
		repo := m.Highlights(db)
		for i, age := range []time.Duration{0, 24 * time.Hour, 10 * 24 * time.Hour} {
			_, err := repo.Insert(ctx, &models.Highlight{
				HashedAuthorID:    "author",
				ChannelType:       "text",
				AnonymizedContent: "row",
				SentimentScore:    float64(i),
				ReactionCount:     i,
				IsHighlight:       i != 1,
				CreatedAt:         now.Add(-age),
			})
			require.NoError(t, err)
		}

		top, err := repo.TopSince(ctx, now.Add(-7*24*time.Hour), 10)
		require.NoError(t, err)
		require.Len(t, top, 1)
		assert.Equal(t, now, top[0].CreatedAt)
		assert.True(t, top[0].IsHighlight)

		n, err := repo.DeleteOlderThan(ctx, now.Add(-24*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, int64(1), n, "row exactly at the cutoff survives")

		all, err := repo.All(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("points", func(t *testing.T) {
		repo := m.Points(db)
		p, err := repo.Add(ctx, "u1", 10, true, now)
		require.NoError(t, err)
		assert.Equal(t, int64(10), p.Points)

		p, err = repo.Add(ctx, "u1", 5, false, now.Add(time.Minute))
		require.NoError(t, err)
		assert.Equal(t, int64(15), p.Points)
		assert.Equal(t, int64(1), p.HighlightsCreated)

		got, err := repo.Get(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, now.Add(time.Minute), got.LastUpdated)

		_, err = repo.Get(ctx, "u2")
		require.ErrorIs(t, err, common.ErrorNotFound)
	})

	t.Run("points concurrent adds", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
					_, err := m.Points(tx).Add(ctx, "racer", 1, false, now)
					return err
				})
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		got, err := m.Points(db).Get(ctx, "racer")
		require.NoError(t, err)
		assert.Equal(t, int64(20), got.Points)
	})

	t.Run("consents and meta", func(t *testing.T) {
		c := m.Consents(db)
		require.NoError(t, c.Upsert(ctx, &models.ConsentRecord{UserID: "u1", Consent: true, RetentionDays: 30, UpdatedAt: now}))
		require.NoError(t, c.Upsert(ctx, &models.ConsentRecord{UserID: "u1", Consent: false, RetentionDays: 30, UpdatedAt: now}))
		rec, err := c.Get(ctx, "u1")
		require.NoError(t, err)
		assert.False(t, rec.Consent)

		md := m.Meta(db)
		_, err = md.Get(ctx, "privacy_salt")
		require.ErrorIs(t, err, common.ErrorNotFound)
		require.NoError(t, md.Put(ctx, "privacy_salt", "abc"))
		v, err := md.Get(ctx, "privacy_salt")
		require.NoError(t, err)
		assert.Equal(t, "abc", v)
	})
}
