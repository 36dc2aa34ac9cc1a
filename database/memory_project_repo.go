package database

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lejapetric/simon/models"
)

type memoryEntry struct {
	project models.Project
	seq     uint64
}

// MemoryProjectRepo keeps projects in process memory
type MemoryProjectRepo struct {
	mu       sync.RWMutex
	projects map[string]memoryEntry
	seq      uint64
	now      func() time.Time
}

func NewMemoryProjectRepo() *MemoryProjectRepo {
	return &MemoryProjectRepo{
		projects: make(map[string]memoryEntry),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (r *MemoryProjectRepo) FindAll(ctx context.Context, filter models.ProjectFilter) ([]models.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]memoryEntry, 0, len(r.projects))
	for _, e := range r.projects {
		if filter.Matches(e.project) {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i].project.CompletionDate, entries[j].project.CompletionDate
		if a != b {
			return a.After(b)
		}
		return entries[i].seq > entries[j].seq
	})

	projects := make([]models.Project, len(entries))
	for i, e := range entries {
		projects[i] = clone(e.project)
	}
	return projects, nil
}

func (r *MemoryProjectRepo) FindByID(ctx context.Context, id string) (*models.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidID
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.projects[id]
	if !ok {
		return nil, ErrNotFound
	}
	p := clone(e.project)
	return &p, nil
}

func (r *MemoryProjectRepo) Add(ctx context.Context, project *models.Project) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	prepareForWrite(project)

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	project.ID = uuid.NewString()
	project.CreatedAt = now
	project.UpdatedAt = now
	r.seq++
	r.projects[project.ID] = memoryEntry{project: clone(*project), seq: r.seq}
	return nil
}

func (r *MemoryProjectRepo) Replace(ctx context.Context, id string, project *models.Project) (*models.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidID
	}
	prepareForWrite(project)

	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.projects[id]
	if !ok {
		return nil, ErrNotFound
	}
	updated := clone(*project)
	updated.ID = id
	updated.CreatedAt = e.project.CreatedAt
	updated.UpdatedAt = r.now()
	r.projects[id] = memoryEntry{project: updated, seq: e.seq}

	out := clone(updated)
	return &out, nil
}

func (r *MemoryProjectRepo) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := uuid.Parse(id); err != nil {
		return ErrInvalidID
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.projects[id]; !ok {
		return ErrNotFound
	}
	delete(r.projects, id)
	return nil
}

func (r *MemoryProjectRepo) Categories(ctx context.Context) ([]string, error) {
	counts, err := r.categoryCounts(ctx)
	if err != nil {
		return nil, err
	}
	categories := make([]string, 0, len(counts))
	for _, c := range counts {
		categories = append(categories, c.Category)
	}
	sort.Strings(categories)
	return categories, nil
}

func (r *MemoryProjectRepo) Years(ctx context.Context) ([]int, error) {
	counts, err := r.yearCounts(ctx)
	if err != nil {
		return nil, err
	}
	years := make([]int, 0, len(counts))
	for _, y := range counts {
		years = append(years, y.Year)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years, nil
}

func (r *MemoryProjectRepo) Stats(ctx context.Context) (*models.ProjectStats, error) {
	byCategory, err := r.categoryCounts(ctx)
	if err != nil {
		return nil, err
	}
	byYear, err := r.yearCounts(ctx)
	if err != nil {
		return nil, err
	}
	r.mu.RLock()
	total := int64(len(r.projects))
	r.mu.RUnlock()
	return models.NewProjectStats(total, byCategory, byYear), nil
}

func (r *MemoryProjectRepo) Details(ctx context.Context, category string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	details := []string{}
	for _, e := range r.projects {
		if e.project.Category != category || e.project.Details == nil {
			continue
		}
		d := *e.project.Details
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		details = append(details, d)
	}
	sort.Strings(details)
	return details, nil
}

func (r *MemoryProjectRepo) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (r *MemoryProjectRepo) Close(context.Context) error {
	return nil
}

func (r *MemoryProjectRepo) categoryCounts(ctx context.Context) ([]models.CategoryCount, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[string]int64)
	for _, e := range r.projects {
		counts[e.project.Category]++
	}
	out := make([]models.CategoryCount, 0, len(counts))
	for c, n := range counts {
		out = append(out, models.CategoryCount{Category: c, Count: n})
	}
	return out, nil
}

func (r *MemoryProjectRepo) yearCounts(ctx context.Context) ([]models.YearCount, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[int]int64)
	for _, e := range r.projects {
		counts[e.project.CompletionDate.Year]++
	}
	out := make([]models.YearCount, 0, len(counts))
	for y, n := range counts {
		out = append(out, models.YearCount{Year: y, Count: n})
	}
	return out, nil
}

// clone copies the reference fields so callers never share store memory
func clone(p models.Project) models.Project {
	if p.Details != nil {
		d := *p.Details
		p.Details = &d
	}
	images := make([]string, len(p.Images))
	copy(images, p.Images)
	p.Images = images
	return p
}
