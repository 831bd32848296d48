package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"presto/internal/domain/models"
	"presto/internal/lib/logger/sl"

	"github.com/google/uuid"
)

var (
	ErrPresentationNotFound = errors.New("presentation not found")
	ErrSlideNotFound        = errors.New("slide not found")
	ErrElementNotFound      = errors.New("element not found")
	ErrLastSlide            = errors.New("presentation must keep at least one slide")
	ErrClosed               = errors.New("store controller is closed")
)

const defaultPresentationColor = "#ffffff"

// Remote is the persistence collaborator. There is no partial form: the
// store is always replaced wholesale.
type Remote interface {
	FetchStore(ctx context.Context) (models.Store, error)
	ReplaceStore(ctx context.Context, store models.Store) error
}

// Controller owns the in-memory store and keeps it in lockstep with the
// remote copy: every mutation computes a new store value from the current
// one, persists it remotely, and only then commits it locally. A failed
// persist leaves the local store untouched.
//
// Operations are serialized by a single mutex held across the whole
// compute-persist-commit sequence, so a mutation always starts from the
// previous one's committed state and lost updates are impossible.
type Controller struct {
	log    *slog.Logger
	remote Remote

	mu      sync.Mutex
	store   models.Store
	loading bool
	closed  bool
}

func New(log *slog.Logger, remote Remote) *Controller {
	return &Controller{
		log:     log,
		remote:  remote,
		store:   models.Store{},
		loading: true,
	}
}

// Load fetches the remote store once, on activation. On failure the store
// stays empty and the controller stays in its loading state; there is no
// automatic retry.
func (c *Controller) Load(ctx context.Context) error {
	const op = "store.Load"

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return fmt.Errorf("%s: %w", op, ErrClosed)
	}

	log := c.log.With(slog.String("op", op))

	st, err := c.remote.FetchStore(ctx)
	if err != nil {
		log.Error("failed to fetch store", sl.Err(err))

		return fmt.Errorf("%s: %w", op, err)
	}

	if st == nil {
		st = models.Store{}
	}

	c.store = st
	c.loading = false

	log.Info("store loaded", slog.Int("presentations", len(st)))

	return nil
}

// IsLoading reports whether the initial fetch has completed successfully.
func (c *Controller) IsLoading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.loading
}

// Snapshot returns a deep copy of the current store. Callers may mutate the
// result freely; changes only reach the store through the named operations.
func (c *Controller) Snapshot() models.Store {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.store.Clone()
}

// Presentation returns a deep copy of one presentation.
func (c *Controller) Presentation(id string) (models.Presentation, error) {
	const op = "store.Presentation"

	c.mu.Lock()
	defer c.mu.Unlock()

	cur, ok := c.store[id]
	if !ok {
		return models.Presentation{}, fmt.Errorf("%s: %w", op, ErrPresentationNotFound)
	}

	return cur.Clone(), nil
}

// Presentations lists all presentations newest first (by CreateAt).
func (c *Controller) Presentations() []models.Presentation {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]models.Presentation, 0, len(c.store))
	for _, p := range c.store {
		out = append(out, p.Clone())
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreateAt > out[j].CreateAt
	})

	return out
}

// CreatePresentation adds a presentation with the caller-generated id, a
// solid white background and exactly one default slide.
func (c *Controller) CreatePresentation(ctx context.Context, id, name, description string) error {
	const op = "store.CreatePresentation"

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return fmt.Errorf("%s: %w", op, ErrClosed)
	}

	log := c.log.With(slog.String("op", op), slog.String("presentation_id", id))

	next := c.cloneWith(models.Presentation{
		ID:          id,
		Name:        name,
		Description: description,
		Background:  models.SolidColorBackground(defaultPresentationColor),
		CreateAt:    time.Now().UnixMilli(),
		Slides:      []models.Slide{defaultSlide()},
	})

	if err := c.persist(ctx, op, next); err != nil {
		return err
	}

	log.Info("presentation created", slog.String("name", name))

	return nil
}

// DeletePresentation removes the presentation and everything it contains.
func (c *Controller) DeletePresentation(ctx context.Context, id string) error {
	const op = "store.DeletePresentation"

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return fmt.Errorf("%s: %w", op, ErrClosed)
	}

	log := c.log.With(slog.String("op", op), slog.String("presentation_id", id))

	if _, ok := c.store[id]; !ok {
		log.Warn("presentation not found")

		return fmt.Errorf("%s: %w", op, ErrPresentationNotFound)
	}

	next := make(models.Store, len(c.store))
	for pid, p := range c.store {
		if pid != id {
			next[pid] = p
		}
	}

	if err := c.persist(ctx, op, next); err != nil {
		return err
	}

	log.Info("presentation deleted")

	return nil
}

// UpdatePresentation replaces the addressed presentation wholesale. The id
// and the original creation time are preserved regardless of what the
// replacement value carries.
func (c *Controller) UpdatePresentation(ctx context.Context, id string, p models.Presentation) error {
	const op = "store.UpdatePresentation"

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return fmt.Errorf("%s: %w", op, ErrClosed)
	}

	cur, ok := c.store[id]
	if !ok {
		return fmt.Errorf("%s: %w", op, ErrPresentationNotFound)
	}

	p.ID = id
	p.CreateAt = cur.CreateAt

	return c.persist(ctx, op, c.cloneWith(p))
}

// CreateSlide appends one default slide to the presentation.
func (c *Controller) CreateSlide(ctx context.Context, presentationID string) (string, error) {
	const op = "store.CreateSlide"

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return "", fmt.Errorf("%s: %w", op, ErrClosed)
	}

	cur, ok := c.store[presentationID]
	if !ok {
		return "", fmt.Errorf("%s: %w", op, ErrPresentationNotFound)
	}

	slide := defaultSlide()

	p := cur.Clone()
	p.Slides = append(p.Slides, slide)

	if err := c.persist(ctx, op, c.cloneWith(p)); err != nil {
		return "", err
	}

	return slide.ID, nil
}

// DeleteSlide removes the slide with the given id. Deleting the last
// remaining slide is rejected: a presentation always keeps at least one.
func (c *Controller) DeleteSlide(ctx context.Context, presentationID, slideID string) error {
	const op = "store.DeleteSlide"

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return fmt.Errorf("%s: %w", op, ErrClosed)
	}

	cur, ok := c.store[presentationID]
	if !ok {
		return fmt.Errorf("%s: %w", op, ErrPresentationNotFound)
	}

	idx := cur.SlideIndex(slideID)
	if idx < 0 {
		return fmt.Errorf("%s: %w", op, ErrSlideNotFound)
	}

	if len(cur.Slides) == 1 {
		return fmt.Errorf("%s: %w", op, ErrLastSlide)
	}

	p := cur.Clone()
	p.Slides = append(p.Slides[:idx], p.Slides[idx+1:]...)

	return c.persist(ctx, op, c.cloneWith(p))
}

// UpdateSlide replaces the addressed slide wholesale, keeping its id.
func (c *Controller) UpdateSlide(ctx context.Context, presentationID, slideID string, slide models.Slide) error {
	const op = "store.UpdateSlide"

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return fmt.Errorf("%s: %w", op, ErrClosed)
	}

	cur, ok := c.store[presentationID]
	if !ok {
		return fmt.Errorf("%s: %w", op, ErrPresentationNotFound)
	}

	idx := cur.SlideIndex(slideID)
	if idx < 0 {
		return fmt.Errorf("%s: %w", op, ErrSlideNotFound)
	}

	slide.ID = slideID

	p := cur.Clone()
	p.Slides[idx] = slide.Clone()

	return c.persist(ctx, op, c.cloneWith(p))
}

// CreateSlideElement appends the element to the addressed slide, assigning a
// fresh id and the default position (0,0). The returned id identifies the
// new element for later updates.
func (c *Controller) CreateSlideElement(ctx context.Context, presentationID, slideID string, el models.SlideElement) (string, error) {
	const op = "store.CreateSlideElement"

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return "", fmt.Errorf("%s: %w", op, ErrClosed)
	}

	cur, ok := c.store[presentationID]
	if !ok {
		return "", fmt.Errorf("%s: %w", op, ErrPresentationNotFound)
	}

	idx := cur.SlideIndex(slideID)
	if idx < 0 {
		return "", fmt.Errorf("%s: %w", op, ErrSlideNotFound)
	}

	el.ID = uuid.NewString()
	el.X = 0
	el.Y = 0
	if el.ElementType == models.ElementVideo {
		el.EmbedURL = models.EmbedWatchURL(el.WatchURL)
	}

	p := cur.Clone()
	p.Slides[idx].Elements = append(p.Slides[idx].Elements, el)

	if err := c.persist(ctx, op, c.cloneWith(p)); err != nil {
		return "", err
	}

	return el.ID, nil
}

// DeleteSlideElement removes one element from the addressed slide.
func (c *Controller) DeleteSlideElement(ctx context.Context, presentationID, slideID, elementID string) error {
	const op = "store.DeleteSlideElement"

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return fmt.Errorf("%s: %w", op, ErrClosed)
	}

	cur, ok := c.store[presentationID]
	if !ok {
		return fmt.Errorf("%s: %w", op, ErrPresentationNotFound)
	}

	sidx := cur.SlideIndex(slideID)
	if sidx < 0 {
		return fmt.Errorf("%s: %w", op, ErrSlideNotFound)
	}

	eidx := cur.Slides[sidx].ElementIndex(elementID)
	if eidx < 0 {
		return fmt.Errorf("%s: %w", op, ErrElementNotFound)
	}

	p := cur.Clone()
	p.Slides[sidx].Elements = append(p.Slides[sidx].Elements[:eidx], p.Slides[sidx].Elements[eidx+1:]...)

	return c.persist(ctx, op, c.cloneWith(p))
}

// UpdateSlideElement replaces one element wholesale, keeping its id.
func (c *Controller) UpdateSlideElement(ctx context.Context, presentationID, slideID, elementID string, el models.SlideElement) error {
	const op = "store.UpdateSlideElement"

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return fmt.Errorf("%s: %w", op, ErrClosed)
	}

	cur, ok := c.store[presentationID]
	if !ok {
		return fmt.Errorf("%s: %w", op, ErrPresentationNotFound)
	}

	sidx := cur.SlideIndex(slideID)
	if sidx < 0 {
		return fmt.Errorf("%s: %w", op, ErrSlideNotFound)
	}

	eidx := cur.Slides[sidx].ElementIndex(elementID)
	if eidx < 0 {
		return fmt.Errorf("%s: %w", op, ErrElementNotFound)
	}

	el.ID = elementID
	if el.ElementType == models.ElementVideo {
		el.EmbedURL = models.EmbedWatchURL(el.WatchURL)
	}

	p := cur.Clone()
	p.Slides[sidx].Elements[eidx] = el

	return c.persist(ctx, op, c.cloneWith(p))
}

// ClearLocalStore drops the local copy without touching the remote one.
// Used on logout.
func (c *Controller) ClearLocalStore() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.store = models.Store{}
}

// Close marks the controller dead. Any operation still waiting on the mutex
// completes normally; everything after Close fails with ErrClosed, so no
// commit can land once the owning session has gone away.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
}

// persist ships the candidate store to the remote collaborator and commits
// it locally only after the remote write succeeded. Must be called with the
// mutex held.
func (c *Controller) persist(ctx context.Context, op string, next models.Store) error {
	if err := c.remote.ReplaceStore(ctx, next); err != nil {
		c.log.Error("failed to persist store", slog.String("op", op), sl.Err(err))

		return fmt.Errorf("%s: %w", op, err)
	}

	c.store = next

	return nil
}

// cloneWith returns a copy of the current store with one presentation
// replaced. Untouched presentations are shared by reference; they are never
// mutated in place. Must be called with the mutex held.
func (c *Controller) cloneWith(p models.Presentation) models.Store {
	next := make(models.Store, len(c.store)+1)
	for id, cur := range c.store {
		next[id] = cur
	}
	next[p.ID] = p

	return next
}

func defaultSlide() models.Slide {
	return models.Slide{
		ID:         uuid.NewString(),
		Elements:   []models.SlideElement{},
		FontFamily: models.FontRoboto,
		Background: models.DefaultBackground(),
	}
}
