package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lejapetric/simon/models"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const projectOrder = "completion_year DESC, completion_month DESC, created_at DESC, id DESC"

type PostgresProjectRepo struct {
	db    *gorm.DB
	pools []*sql.DB
}

// NewPostgresProjectRepo wraps an open GORM handle. The pools are pinged by
// Ping and closed by Close.
func NewPostgresProjectRepo(db *gorm.DB, pools ...*sql.DB) *PostgresProjectRepo {
	return &PostgresProjectRepo{db: db, pools: pools}
}

func (r *PostgresProjectRepo) FindAll(ctx context.Context, filter models.ProjectFilter) ([]models.Project, error) {
	q := r.db.WithContext(ctx).Model(&models.Project{})
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Year != nil {
		q = q.Where("completion_year = ?", *filter.Year)
	}
	if terms := models.SearchTerms(filter.Search); len(terms) > 0 {
		q = q.Where("to_tsvector('simple', name) @@ to_tsquery('simple', ?)", strings.Join(terms, " | "))
	}

	projects := []models.Project{}
	if err := q.Order(projectOrder).Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("find projects: %w", err)
	}
	return projects, nil
}

func (r *PostgresProjectRepo) FindByID(ctx context.Context, id string) (*models.Project, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidID
	}
	var project models.Project
	res := r.db.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&project)
	if res.Error != nil {
		return nil, fmt.Errorf("find project %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return &project, nil
}

func (r *PostgresProjectRepo) Add(ctx context.Context, project *models.Project) error {
	prepareForWrite(project)
	now := time.Now().UTC().Truncate(time.Microsecond)
	project.ID = uuid.NewString()
	project.CreatedAt = now
	project.UpdatedAt = now

	if err := r.db.WithContext(ctx).Create(project).Error; err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

func (r *PostgresProjectRepo) Replace(ctx context.Context, id string, project *models.Project) (*models.Project, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidID
	}
	prepareForWrite(project)

	var updated models.Project
	res := r.db.WithContext(ctx).
		Model(&updated).
		Clauses(clause.Returning{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"name":             project.Name,
			"work_description": project.WorkDescription,
			"category":         project.Category,
			"completion_month": project.CompletionDate.Month,
			"completion_year":  project.CompletionDate.Year,
			"details":          project.Details,
			"images":           project.Images,
			"updated_at":       time.Now().UTC().Truncate(time.Microsecond),
		})
	if res.Error != nil {
		return nil, fmt.Errorf("update project %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return &updated, nil
}

func (r *PostgresProjectRepo) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrInvalidID
	}
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Project{})
	if res.Error != nil {
		return fmt.Errorf("delete project %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresProjectRepo) Categories(ctx context.Context) ([]string, error) {
	categories := []string{}
	err := r.db.WithContext(ctx).Model(&models.Project{}).
		Distinct().Order("category ASC").
		Pluck("category", &categories).Error
	if err != nil {
		return nil, fmt.Errorf("distinct categories: %w", err)
	}
	return categories, nil
}

func (r *PostgresProjectRepo) Years(ctx context.Context) ([]int, error) {
	years := []int{}
	err := r.db.WithContext(ctx).Model(&models.Project{}).
		Distinct().Order("completion_year DESC").
		Pluck("completion_year", &years).Error
	if err != nil {
		return nil, fmt.Errorf("distinct years: %w", err)
	}
	return years, nil
}

func (r *PostgresProjectRepo) Stats(ctx context.Context) (*models.ProjectStats, error) {
	var (
		total      int64
		byCategory []models.CategoryCount
		byYear     []models.YearCount
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := r.db.WithContext(ctx).Model(&models.Project{}).Count(&total).Error; err != nil {
			return fmt.Errorf("count projects: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		err := r.db.WithContext(ctx).Model(&models.Project{}).
			Select("category, count(*) AS count").
			Group("category").
			Scan(&byCategory).Error
		if err != nil {
			return fmt.Errorf("group projects by category: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		err := r.db.WithContext(ctx).Model(&models.Project{}).
			Select("completion_year AS year, count(*) AS count").
			Group("completion_year").
			Scan(&byYear).Error
		if err != nil {
			return fmt.Errorf("group projects by year: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return models.NewProjectStats(total, byCategory, byYear), nil
}

func (r *PostgresProjectRepo) Details(ctx context.Context, category string) ([]string, error) {
	details := []string{}
	err := r.db.WithContext(ctx).Model(&models.Project{}).
		Where("category = ? AND details IS NOT NULL AND details <> ''", category).
		Distinct().Order("details ASC").
		Pluck("details", &details).Error
	if err != nil {
		return nil, fmt.Errorf("distinct details: %w", err)
	}
	return details, nil
}

func (r *PostgresProjectRepo) Ping(ctx context.Context) error {
	for _, p := range r.pools {
		if err := p.PingContext(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (r *PostgresProjectRepo) Close(context.Context) error {
	return closeAll(r.pools)
}
