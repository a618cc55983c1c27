// session owns the state of one visualizer session: the grid, its endpoints and
// the lifecycle of search runs over it. It replaces process-wide grid state: a
// cleared grid is a fresh Grid, and runs are strictly sequential.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"astarviz/models"
	"astarviz/pathfinding"

	"github.com/google/uuid"
)

var (
	// ErrSearchRunning is returned for edits or a second run while a run is alive.
	ErrSearchRunning = errors.New("session: a search is running")
	// ErrMissingEndpoints is returned when a run is requested without start and end.
	ErrMissingEndpoints = errors.New("session: start and end must both be placed")
	// ErrOutOfRange is returned for coordinates outside the grid.
	ErrOutOfRange = errors.New("session: cell out of range")
)

// Session is safe for concurrent use. The grid is only mutated by edits while
// idle, or by the single active run, never both.
type Session struct {
	mu        sync.Mutex
	cfg       *Config
	stepDelay time.Duration
	logger    *log.Logger

	grid       *models.Grid
	start, end *models.Cell

	running bool
	cancel  context.CancelFunc

	frame  models.Frame
	frames chan models.Frame
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger; nil discards logs.
func WithLogger(logger *log.Logger) Option {
	return func(s *Session) {
		if logger == nil {
			logger = log.New(io.Discard, "", 0)
		}
		s.logger = logger
	}
}

// New builds a session over a fresh grid per cfg. A nil cfg uses DefaultConfig.
func New(cfg *Config, options ...Option) (*Session, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	stepDelay, _ := cfg.GetStepDelay()

	s := &Session{
		cfg:       cfg,
		stepDelay: stepDelay,
		logger:    log.New(os.Stderr, "[session] ", log.LstdFlags|log.Lshortfile),
		frames:    make(chan models.Frame, 1),
	}
	for _, option := range options {
		option(s)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.resetLocked(); err != nil {
		return nil, err
	}
	return s, nil
}

// resetLocked replaces the grid with a fresh one built from the config.
func (s *Session) resetLocked() (err error) {
	var grid *models.Grid
	var start, end *models.Cell
	if len(s.cfg.Layout) > 0 {
		grid, start, end, err = models.ParseLayout(s.cfg.Layout)
	} else {
		grid, err = models.NewGrid(s.cfg.GridSize)
	}
	if err != nil {
		return err
	}

	s.grid, s.start, s.end = grid, start, end
	s.publishLocked(models.NewFrame(grid, models.Idle))
	return nil
}

// Frames returns the channel of render frames. Only the latest unread frame is
// kept, so a slow or absent reader never stalls a search.
func (s *Session) Frames() <-chan models.Frame {
	return s.frames
}

// Frame returns the most recently published frame.
func (s *Session) Frame() models.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frame
}

// Size returns the current grid dimension.
func (s *Session) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grid.Size()
}

// Running reports whether a search run is alive.
func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Show prints the grid as of the latest frame.
func (s *Session) Show(w io.Writer) {
	s.Frame().Show(w)
}

// publishLocked records the frame and offers it on the frames chan, replacing
// any unread frame.
func (s *Session) publishLocked(frame models.Frame) {
	s.frame = frame
	select {
	case s.frames <- frame:
	default:
		select {
		case <-s.frames:
		default:
		}
		select {
		case s.frames <- frame:
		default:
		}
	}
}

func (s *Session) publish(frame models.Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.publishLocked(frame)
}

// editableCell returns the cell at (row, col) if the grid may be edited.
func (s *Session) editableCell(row, col int) (*models.Cell, error) {
	if s.running {
		return nil, ErrSearchRunning
	}
	cell := s.grid.Cell(row, col)
	if cell == nil {
		return nil, fmt.Errorf("%w: (%d,%d) on a %dx%d grid", ErrOutOfRange, row, col, s.grid.Size(), s.grid.Size())
	}
	return cell, nil
}

// Paint applies a primary click: the first free click places the start, the
// next the end, and later clicks place barriers. Endpoints are never overwritten.
func (s *Session) Paint(row, col int) (models.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cell, err := s.editableCell(row, col)
	if err != nil {
		return models.Empty, err
	}

	switch {
	case s.start == nil && cell != s.end:
		s.start = cell
		cell.MakeStart()
	case s.end == nil && cell != s.start:
		s.end = cell
		cell.MakeEnd()
	case cell != s.start && cell != s.end:
		cell.MakeBarrier()
	}

	s.publishLocked(models.NewFrame(s.grid, models.Idle))
	return cell.State(), nil
}

// Erase applies a secondary click: the cell is reset, releasing the start or
// end slot if it held one.
func (s *Session) Erase(row, col int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cell, err := s.editableCell(row, col)
	if err != nil {
		return err
	}

	cell.Reset()
	switch cell {
	case s.start:
		s.start = nil
	case s.end:
		s.end = nil
	}

	s.publishLocked(models.NewFrame(s.grid, models.Idle))
	return nil
}

// Clear discards the grid for a fresh one.
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return ErrSearchRunning
	}
	s.logger.Println("clearing grid")
	return s.resetLocked()
}

// Cancel aborts the active run, if any, and reports whether one was running.
func (s *Session) Cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel == nil {
		return false
	}
	s.cancel()
	return true
}

// run is a single search over the session's grid. Its fields are only touched
// by the goroutine executing it.
type run struct {
	id         string
	ctx        context.Context
	grid       *models.Grid
	start, end *models.Cell
	step       int
}

// begin claims the session for a new run and prepares the grid: stale search
// marks are cleared and every neighbor list is refreshed.
func (s *Session) begin(ctx context.Context) (*run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil, ErrSearchRunning
	}
	if s.start == nil || s.end == nil {
		return nil, ErrMissingEndpoints
	}

	runCtx, cancel, err := s.cfg.WithSearchDeadline(ctx)
	if err != nil {
		return nil, err
	}

	s.grid.ResetSearch()
	s.start.MakeStart()
	s.end.MakeEnd()
	s.grid.UpdateAllNeighbors()

	s.running = true
	s.cancel = cancel

	r := &run{
		id:    uuid.NewString(),
		ctx:   runCtx,
		grid:  s.grid,
		start: s.start,
		end:   s.end,
	}
	s.publishLocked(r.frame(models.Running))
	s.logger.Printf("run %s: searching %v -> %v", r.id, r.start.Pos(), r.end.Pos())
	return r, nil
}

func (r *run) frame(status models.Status) models.Frame {
	frame := models.NewFrame(r.grid, status)
	frame.RunID = r.id
	frame.Step = r.step
	return frame
}

// execute runs the search to completion and releases the session.
func (s *Session) execute(r *run) (pathfinding.Result, error) {
	defer func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.cancel()
		s.cancel = nil
		s.running = false
	}()

	onStep := func() {
		r.step++
		s.publish(r.frame(models.Running))
		pause(r.ctx, s.stepDelay)
	}

	started := time.Now()
	result, err := pathfinding.Search(r.ctx, r.grid, r.start, r.end, onStep)
	if err != nil {
		s.logger.Printf("run %s: %v", r.id, err)
		s.publish(r.frame(models.Idle))
		return result, err
	}

	final := r.frame(statusOf(result))
	final.PathLength = result.Cost
	s.publish(final)
	s.logger.Printf("run %s: %s after %d expansions, path length %d, %v",
		r.id, final.Status, result.Expanded, result.Cost, time.Since(started).Round(time.Millisecond))
	return result, nil
}

func statusOf(result pathfinding.Result) models.Status {
	switch {
	case result.Found:
		return models.Found
	case result.Cancelled:
		return models.Cancelled
	}
	return models.NoPath
}

// Run searches from start to end, blocking until the search finishes, is
// cancelled through ctx or Cancel, or exceeds the configured deadline.
func (s *Session) Run(ctx context.Context) (pathfinding.Result, error) {
	r, err := s.begin(ctx)
	if err != nil {
		return pathfinding.Result{}, err
	}
	return s.execute(r)
}

// Start validates and claims the session like Run, then searches in the
// background. The run lives until ctx is done or Cancel is called.
func (s *Session) Start(ctx context.Context) error {
	r, err := s.begin(ctx)
	if err != nil {
		return err
	}
	go func() {
		_, _ = s.execute(r)
	}()
	return nil
}

// pause holds for d or until ctx is done.
func pause(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
