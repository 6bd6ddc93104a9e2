package services_test

import (
	"bytes"
	"context"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/enemresultados/internal/errors"
	"github.com/vytor/enemresultados/internal/models"
	"github.com/vytor/enemresultados/internal/render"
	"github.com/vytor/enemresultados/internal/series"
	"github.com/vytor/enemresultados/internal/services"
	"github.com/vytor/enemresultados/internal/session"
)

func seededStore(studentID int64) (*session.Store, *models.Snapshot) {
	store := session.NewStore()
	snap := series.Build(series.Input{
		StudentID: studentID,
		Period:    7,
		Performance: []models.PerformanceRecord{
			{Subject: "matematica", TakenAt: day(2024, 3, 10), AccuracyRate: 70},
			{Subject: "linguagens", TakenAt: day(2024, 3, 9), AccuracyRate: 0.9},
		},
		Activity: []models.ActivityRecord{{Weekday: intPtr(0), QuestionsCount: 20, MinutesSpent: 45}},
	}, fixedNow(), brt)
	store.Replace(studentID, snap)
	return store, snap
}

func newCharts(t *testing.T, store *session.Store, delay time.Duration) services.ChartService {
	t.Helper()
	cache, err := services.NewImageCache(1 << 20)
	require.NoError(t, err)
	t.Cleanup(cache.Close)
	return services.NewChartService(store, cache, services.ChartConfig{Width: 600, Height: 400, RedrawDelay: delay})
}

func TestActivate_DrawsCurrentSnapshot(t *testing.T) {
	store, snap := seededStore(1)
	svc := newCharts(t, store, time.Millisecond)

	view, err := svc.Activate(context.Background(), 1, render.KindRadar, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, render.KindRadar, view.Kind)
	assert.Equal(t, snap.ID, view.SnapshotID)
	assert.Equal(t, 600, view.Width)
	assert.Equal(t, 400, view.Height)
	assert.Equal(t, -1, view.Hovered)
	assert.False(t, view.Tooltip.Visible)
}

func TestActivate_Errors(t *testing.T) {
	store, _ := seededStore(1)
	svc := newCharts(t, store, 0)
	ctx := context.Background()

	_, err := svc.Activate(ctx, 2, render.KindBar, 0, 0)
	assert.True(t, errors.HasCode(err, errors.ErrCodeNotFound))

	_, err = svc.Activate(ctx, 1, render.Kind("pie"), 0, 0)
	assert.True(t, errors.HasCode(err, errors.ErrCodeNotFound))

	_, err = svc.Activate(ctx, 1, render.KindBar, services.MaxChartSize+1, 100)
	assert.True(t, errors.HasCode(err, errors.ErrCodeValidation))

	_, err = svc.Activate(ctx, 1, render.KindBar, 100, -1)
	assert.True(t, errors.HasCode(err, errors.ErrCodeValidation))
}

func TestChartSizeLimit(t *testing.T) {
	store, _ := seededStore(1)
	svc := newCharts(t, store, 0)
	ctx := context.Background()

	assert.Equal(t, 2048, services.MaxChartSize)

	_, err := svc.Image(ctx, 1, render.KindLine, 2049, 300)
	assert.True(t, errors.HasCode(err, errors.ErrCodeValidation))
	_, err = svc.Image(ctx, 1, render.KindLine, 300, 4096)
	assert.True(t, errors.HasCode(err, errors.ErrCodeValidation))

	view, err := svc.Activate(ctx, 1, render.KindBar, 2048, 40)
	require.NoError(t, err)
	assert.Equal(t, 2048, view.Width)
}

func TestActivate_WaitRespectsContext(t *testing.T) {
	store, _ := seededStore(1)
	svc := newCharts(t, store, time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := svc.Activate(ctx, 1, render.KindLine, 0, 0)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPointer_HoverAndLeave(t *testing.T) {
	store, _ := seededStore(1)
	svc := newCharts(t, store, 0)
	ctx := context.Background()

	_, err := svc.PointerMove(ctx, 1, render.KindRadar, 300, 120)
	assert.True(t, errors.HasCode(err, errors.ErrCodeNotFound))

	_, err = svc.Activate(ctx, 1, render.KindRadar, 600, 400)
	require.NoError(t, err)

	view, err := svc.PointerMove(ctx, 1, render.KindRadar, 300, 120)
	require.NoError(t, err)
	assert.True(t, view.Changed)
	assert.Equal(t, 0, view.Hovered)
	assert.True(t, view.Tooltip.Visible)
	assert.Equal(t, "Matemática", view.Tooltip.Title)

	view, err = svc.PointerMove(ctx, 1, render.KindRadar, 302, 122)
	require.NoError(t, err)
	assert.False(t, view.Changed)

	view, err = svc.PointerLeave(ctx, 1, render.KindRadar)
	require.NoError(t, err)
	assert.True(t, view.Changed)
	assert.Equal(t, -1, view.Hovered)

	view, err = svc.PointerLeave(ctx, 1, render.KindRadar)
	require.NoError(t, err)
	assert.False(t, view.Changed)
}

func TestPointer_ReplacedSnapshotNeedsActivation(t *testing.T) {
	store, _ := seededStore(1)
	svc := newCharts(t, store, 0)
	ctx := context.Background()

	_, err := svc.Activate(ctx, 1, render.KindBar, 0, 0)
	require.NoError(t, err)

	store.Replace(1, &models.Snapshot{StudentID: 1})

	_, err = svc.PointerMove(ctx, 1, render.KindBar, 60, 100)
	assert.True(t, errors.HasCode(err, errors.ErrCodeNotFound))
}

func TestImage_EncodesFrameAtDoubleDensity(t *testing.T) {
	store, _ := seededStore(1)
	svc := newCharts(t, store, 0)
	ctx := context.Background()

	first, err := svc.Image(ctx, 1, render.KindLine, 300, 200)
	require.NoError(t, err)

	cfg, err := png.DecodeConfig(bytes.NewReader(first))
	require.NoError(t, err)
	assert.Equal(t, 600, cfg.Width)
	assert.Equal(t, 400, cfg.Height)

	again, err := svc.Image(ctx, 1, render.KindLine, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, first, again)

	_, err = svc.Image(ctx, 7, render.KindLine, 0, 0)
	assert.True(t, errors.HasCode(err, errors.ErrCodeNotFound))
}

func TestImage_HoverChangesFrame(t *testing.T) {
	store, _ := seededStore(1)
	svc := newCharts(t, store, 0)
	ctx := context.Background()

	_, err := svc.Activate(ctx, 1, render.KindBar, 400, 300)
	require.NoError(t, err)
	plain, err := svc.Image(ctx, 1, render.KindBar, 0, 0)
	require.NoError(t, err)

	view, err := svc.PointerMove(ctx, 1, render.KindBar, 60, 100)
	require.NoError(t, err)
	require.Equal(t, 0, view.Hovered)

	hovered, err := svc.Image(ctx, 1, render.KindBar, 0, 0)
	require.NoError(t, err)
	assert.NotEqual(t, plain, hovered)
}
