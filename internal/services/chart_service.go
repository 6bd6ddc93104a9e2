package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/google/uuid"
	"github.com/vytor/enemresultados/internal/canvas"
	"github.com/vytor/enemresultados/internal/errors"
	"github.com/vytor/enemresultados/internal/logger"
	"github.com/vytor/enemresultados/internal/metrics"
	"github.com/vytor/enemresultados/internal/models"
	"github.com/vytor/enemresultados/internal/render"
	"github.com/vytor/enemresultados/internal/session"
)

// MaxChartSize bounds either side of a chart, in logical pixels. A frame at
// the limit is a 4096x4096 RGBA buffer, 64 MiB per bound chart.
const MaxChartSize = 2048

// ChartView is the state of one chart after an interaction.
type ChartView struct {
	Kind       render.Kind    `json:"kind"`
	SnapshotID uuid.UUID      `json:"snapshot_id"`
	Width      int            `json:"width"`
	Height     int            `json:"height"`
	Hovered    int            `json:"hovered"`
	Changed    bool           `json:"changed"`
	Tooltip    render.Tooltip `json:"tooltip"`
}

type ChartConfig struct {
	Width       int
	Height      int
	RedrawDelay time.Duration
}

// ChartService draws a student's snapshot and tracks pointer interaction
// with each chart.
type ChartService interface {
	// Activate waits for the redraw delay, then binds a fresh renderer of the
	// given size and draws the current snapshot.
	Activate(ctx context.Context, studentID int64, kind render.Kind, width, height int) (*ChartView, error)
	// Image returns the current frame as PNG, drawing it first when the chart
	// is not bound at that size.
	Image(ctx context.Context, studentID int64, kind render.Kind, width, height int) ([]byte, error)
	PointerMove(ctx context.Context, studentID int64, kind render.Kind, x, y float64) (*ChartView, error)
	PointerLeave(ctx context.Context, studentID int64, kind render.Kind) (*ChartView, error)
}

type chartService struct {
	sessions *session.Store
	cache    *ristretto.Cache
	cfg      ChartConfig
}

// NewImageCache builds the PNG frame cache; cost is the encoded size in bytes.
func NewImageCache(maxCost int64) (*ristretto.Cache, error) {
	return ristretto.NewCache(&ristretto.Config{
		NumCounters: 10_000,
		MaxCost:     maxCost,
		BufferItems: 64,
	})
}

// NewChartService creates a ChartService. cache may be nil.
func NewChartService(sessions *session.Store, cache *ristretto.Cache, cfg ChartConfig) ChartService {
	if cfg.Width <= 0 {
		cfg.Width = 640
	}
	if cfg.Height <= 0 {
		cfg.Height = 400
	}
	return &chartService{sessions: sessions, cache: cache, cfg: cfg}
}

func (s *chartService) size(width, height int) (int, int, error) {
	if width == 0 {
		width = s.cfg.Width
	}
	if height == 0 {
		height = s.cfg.Height
	}
	if width < 0 || width > MaxChartSize {
		return 0, 0, errors.NewValidationError("w", fmt.Sprintf("must be between 1 and %d", MaxChartSize))
	}
	if height < 0 || height > MaxChartSize {
		return 0, 0, errors.NewValidationError("h", fmt.Sprintf("must be between 1 and %d", MaxChartSize))
	}
	return width, height, nil
}

func checkKind(kind render.Kind) error {
	if _, ok := render.ParseKind(string(kind)); !ok {
		return errors.NewNotFoundError("chart kind", kind)
	}
	return nil
}

func (s *chartService) Activate(ctx context.Context, studentID int64, kind render.Kind, width, height int) (*ChartView, error) {
	log := logger.FromContext(ctx).WithFields(map[string]any{"student_id": studentID, "chart": kind})
	if err := validateStudent(studentID); err != nil {
		return nil, err
	}
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	w, h, err := s.size(width, height)
	if err != nil {
		return nil, err
	}

	if s.cfg.RedrawDelay > 0 {
		timer := time.NewTimer(s.cfg.RedrawDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			log.Debug("activation cancelled before redraw: %v", ctx.Err())
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	var view *ChartView
	err = s.sessions.Exec(studentID, func(st *session.State) error {
		if st.Snapshot == nil {
			return errors.NewNotFoundError("snapshot", studentID)
		}
		chart, err := s.bind(st, kind, w, h)
		if err != nil {
			return err
		}
		view = newView(st.Snapshot, chart, true)
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Debug("chart activated at %dx%d", w, h)
	return view, nil
}

// bind draws a new renderer of kind at w x h and attaches it to the session.
func (s *chartService) bind(st *session.State, kind render.Kind, w, h int) (render.Chart, error) {
	c, err := canvas.New(w, h, canvas.DefaultRatio)
	if err != nil {
		return nil, errors.NewValidationError("size", err.Error())
	}
	chart, err := render.New(kind, c)
	if err != nil {
		return nil, errors.NewNotFoundError("chart kind", kind)
	}

	start := time.Now()
	chart.RenderSnapshot(st.Snapshot)
	metrics.ObserveRender(string(kind), time.Since(start))

	st.Bind(chart)
	return chart, nil
}

func (s *chartService) Image(ctx context.Context, studentID int64, kind render.Kind, width, height int) ([]byte, error) {
	log := logger.FromContext(ctx).WithFields(map[string]any{"student_id": studentID, "chart": kind})
	if err := validateStudent(studentID); err != nil {
		return nil, err
	}
	if err := checkKind(kind); err != nil {
		return nil, err
	}

	var out []byte
	err := s.sessions.Exec(studentID, func(st *session.State) error {
		if st.Snapshot == nil {
			return errors.NewNotFoundError("snapshot", studentID)
		}

		chart, ok := st.Chart(kind)
		if !ok || (width != 0 && chart.Canvas().Width() != width) || (height != 0 && chart.Canvas().Height() != height) {
			w, h, err := s.size(width, height)
			if err != nil {
				return err
			}
			if chart, err = s.bind(st, kind, w, h); err != nil {
				return err
			}
		}

		key := frameKey(st.Snapshot.ID, chart)
		if s.cache != nil {
			if v, found := s.cache.Get(key); found {
				metrics.CacheLookup(true)
				out = v.([]byte)
				return nil
			}
			metrics.CacheLookup(false)
		}

		var buf bytes.Buffer
		if err := chart.Canvas().EncodePNG(&buf); err != nil {
			log.Error("failed to encode chart: %v", err)
			return errors.NewInternalError(err)
		}
		out = buf.Bytes()
		if s.cache != nil {
			s.cache.Set(key, out, int64(len(out)))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// frameKey identifies a frame by everything that determines its pixels.
func frameKey(snapshotID uuid.UUID, chart render.Chart) string {
	c := chart.Canvas()
	return fmt.Sprintf("%s:%s:%dx%d:%d", snapshotID, chart.Kind(), c.Width(), c.Height(), chart.HoveredIndex())
}

func (s *chartService) PointerMove(ctx context.Context, studentID int64, kind render.Kind, x, y float64) (*ChartView, error) {
	return s.interact(ctx, studentID, kind, func(chart render.Chart) bool {
		return chart.PointerMove(x, y)
	})
}

func (s *chartService) PointerLeave(ctx context.Context, studentID int64, kind render.Kind) (*ChartView, error) {
	return s.interact(ctx, studentID, kind, func(chart render.Chart) bool {
		before := chart.HoveredIndex()
		chart.PointerLeave()
		return before != chart.HoveredIndex()
	})
}

func (s *chartService) interact(ctx context.Context, studentID int64, kind render.Kind, fn func(render.Chart) bool) (*ChartView, error) {
	if err := validateStudent(studentID); err != nil {
		return nil, err
	}
	if err := checkKind(kind); err != nil {
		return nil, err
	}

	var view *ChartView
	err := s.sessions.Exec(studentID, func(st *session.State) error {
		if st.Snapshot == nil {
			return errors.NewNotFoundError("snapshot", studentID)
		}
		chart, ok := st.Chart(kind)
		if !ok {
			return errors.NewNotFoundError("active chart", kind)
		}
		view = newView(st.Snapshot, chart, fn(chart))
		return nil
	})
	if err != nil {
		return nil, err
	}
	if view.Changed {
		logger.FromContext(ctx).Debug("chart %s hover moved to %d", kind, view.Hovered)
	}
	return view, nil
}

func newView(snap *models.Snapshot, chart render.Chart, changed bool) *ChartView {
	c := chart.Canvas()
	return &ChartView{
		Kind:       chart.Kind(),
		SnapshotID: snap.ID,
		Width:      c.Width(),
		Height:     c.Height(),
		Hovered:    chart.HoveredIndex(),
		Changed:    changed,
		Tooltip:    chart.Tooltip(),
	}
}
