package database

import (
	"context"
	"testing"

	"github.com/lejapetric/simon/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func newProject(name, category string, month, year int) *models.Project {
	return &models.Project{
		Name:            name,
		WorkDescription: "work on " + name,
		Category:        category,
		CompletionDate:  models.CompletionDate{Month: month, Year: year},
	}
}

// testProjectRepo runs the behaviour every backend shares against an empty store
func testProjectRepo(t *testing.T, repo ProjectRepo, missingID, malformedID string) {
	ctx := context.Background()

	t.Run("round trip", func(t *testing.T) {
		p := newProject("Roof A", "Tile Roofing", 5, 2021)
		p.Details = strPtr("  Tondach tiles ")
		p.Images = []string{"a.jpg", "b.jpg"}
		require.NoError(t, repo.Add(ctx, p))
		require.NotEmpty(t, p.ID)

		got, err := repo.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "Roof A", got.Name)
		assert.Equal(t, models.CompletionDate{Month: 5, Year: 2021}, got.CompletionDate)
		require.NotNil(t, got.Details)
		assert.Equal(t, "Tondach tiles", *got.Details)
		assert.Equal(t, []string{"a.jpg", "b.jpg"}, []string(got.Images))
		assert.Equal(t, got.CreatedAt, got.UpdatedAt)

		require.NoError(t, repo.Delete(ctx, p.ID))
	})

	t.Run("missing and malformed ids", func(t *testing.T) {
		_, err := repo.FindByID(ctx, missingID)
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = repo.FindByID(ctx, malformedID)
		assert.ErrorIs(t, err, ErrInvalidID)

		_, err = repo.Replace(ctx, missingID, newProject("x", "y", 1, 2000))
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = repo.Replace(ctx, malformedID, newProject("x", "y", 1, 2000))
		assert.ErrorIs(t, err, ErrInvalidID)

		assert.ErrorIs(t, repo.Delete(ctx, missingID), ErrNotFound)
		assert.ErrorIs(t, repo.Delete(ctx, malformedID), ErrInvalidID)
	})

	t.Run("replace clears omitted fields", func(t *testing.T) {
		p := newProject("Shed", "Flat Roofs", 3, 2019)
		p.Details = strPtr("bitumen")
		p.Images = []string{"shed.jpg"}
		require.NoError(t, repo.Add(ctx, p))
		t.Cleanup(func() { _ = repo.Delete(ctx, p.ID) })

		replacement := newProject("Shed v2", "Flat Roofs", 4, 2020)
		updated, err := repo.Replace(ctx, p.ID, replacement)
		require.NoError(t, err)
		assert.Equal(t, p.ID, updated.ID)
		assert.Equal(t, "Shed v2", updated.Name)
		assert.Nil(t, updated.Details)
		assert.Empty(t, updated.Images)
		assert.True(t, updated.CreatedAt.Equal(p.CreatedAt))
		assert.False(t, updated.UpdatedAt.Before(p.UpdatedAt))

		again, err := repo.Replace(ctx, p.ID, newProject("Shed v2", "Flat Roofs", 4, 2020))
		require.NoError(t, err)
		assert.Equal(t, updated.Name, again.Name)
		assert.Equal(t, updated.CompletionDate, again.CompletionDate)
	})

	t.Run("filters sort and aggregates", func(t *testing.T) {
		seed := []*models.Project{
			newProject("Roof A", "Tile Roofing", 5, 2021),
			newProject("Roof B", "Tile Roofing", 11, 2021),
			newProject("Garage", "Flat Roofs", 2, 2019),
			newProject("Church Roof", "Tile Roofing", 7, 2023),
		}
		seed[0].Details = strPtr("Tondach")
		seed[3].Details = strPtr("Bramac")
		for _, p := range seed {
			require.NoError(t, repo.Add(ctx, p))
		}
		t.Cleanup(func() {
			for _, p := range seed {
				_ = repo.Delete(ctx, p.ID)
			}
		})

		all, err := repo.FindAll(ctx, models.ProjectFilter{})
		require.NoError(t, err)
		require.Len(t, all, 4)
		assert.Equal(t, []string{"Church Roof", "Roof B", "Roof A", "Garage"}, names(all))

		tile2021, err := repo.FindAll(ctx, models.ProjectFilter{Category: "Tile Roofing", Year: intPtr(2021)})
		require.NoError(t, err)
		assert.Equal(t, []string{"Roof B", "Roof A"}, names(tile2021))

		search, err := repo.FindAll(ctx, models.ProjectFilter{Search: "garage church"})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"Church Roof", "Garage"}, names(search))

		none, err := repo.FindAll(ctx, models.ProjectFilter{Category: "Chimneys"})
		require.NoError(t, err)
		assert.NotNil(t, none)
		assert.Empty(t, none)

		categories, err := repo.Categories(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"Flat Roofs", "Tile Roofing"}, categories)

		years, err := repo.Years(ctx)
		require.NoError(t, err)
		assert.Equal(t, []int{2023, 2021, 2019}, years)

		stats, err := repo.Stats(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 4, stats.TotalProjects)
		assert.Equal(t, 2, stats.TotalCategories)
		assert.Equal(t, 3, stats.TotalYears)
		assert.EqualValues(t, 3, stats.Categories["Tile Roofing"])
		assert.Equal(t, models.CategoryCount{Category: "Tile Roofing", Count: 3}, stats.ByCategory[0])
		assert.Equal(t, models.YearCount{Year: 2021, Count: 2}, stats.ByYear[1])

		details, err := repo.Details(ctx, "Tile Roofing")
		require.NoError(t, err)
		assert.Equal(t, []string{"Bramac", "Tondach"}, details)
	})

	t.Run("delete is final", func(t *testing.T) {
		p := newProject("Temporary", "Chimneys", 1, 2022)
		require.NoError(t, repo.Add(ctx, p))
		require.NoError(t, repo.Delete(ctx, p.ID))

		_, err := repo.FindByID(ctx, p.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		all, err := repo.FindAll(ctx, models.ProjectFilter{Category: "Chimneys"})
		require.NoError(t, err)
		assert.Empty(t, all)
		categories, err := repo.Categories(ctx)
		require.NoError(t, err)
		assert.NotContains(t, categories, "Chimneys")
	})

	assert.NoError(t, repo.Ping(ctx))
}

func names(projects []models.Project) []string {
	out := make([]string, len(projects))
	for i, p := range projects {
		out[i] = p.Name
	}
	return out
}

func TestMemoryProjectRepo(t *testing.T) {
	testProjectRepo(t, NewMemoryProjectRepo(), "3f0c2b8e-9f7a-4a53-8d3e-0a1b2c3d4e5f", "not-a-uuid")
}

func TestMemoryProjectRepo_EqualDatesNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryProjectRepo()
	first := newProject("First", "Tile Roofing", 6, 2020)
	second := newProject("Second", "Tile Roofing", 6, 2020)
	require.NoError(t, repo.Add(ctx, first))
	require.NoError(t, repo.Add(ctx, second))

	all, err := repo.FindAll(ctx, models.ProjectFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Second", "First"}, names(all))
}

func TestMemoryProjectRepo_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryProjectRepo()
	p := newProject("Roof", "Tile Roofing", 6, 2020)
	p.Images = []string{"a.jpg"}
	require.NoError(t, repo.Add(ctx, p))

	got, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	got.Images[0] = "changed.jpg"

	again, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "a.jpg", again.Images[0])
}

func TestMemoryProjectRepo_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMemoryProjectRepo().FindAll(ctx, models.ProjectFilter{})
	assert.ErrorIs(t, err, context.Canceled)
}
