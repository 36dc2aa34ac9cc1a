package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthFromName(t *testing.T) {
	m, ok := MonthFromName("maj")
	require.True(t, ok)
	assert.Equal(t, 5, m)

	m, ok = MonthFromName(" December ")
	require.True(t, ok)
	assert.Equal(t, 12, m)

	_, ok = MonthFromName("may")
	assert.False(t, ok)
}

func TestSearchTerms(t *testing.T) {
	assert.Equal(t, []string{"streha", "hiša", "2022"}, SearchTerms("Streha, HIŠA-2022!"))
	assert.Empty(t, SearchTerms("  ,. "))
}

func TestProjectFilter_Matches(t *testing.T) {
	year := 2022
	p := Project{
		Name:           "Roof A renovation",
		Category:       "Tile Roofing",
		CompletionDate: CompletionDate{Month: 5, Year: 2022},
	}

	assert.True(t, ProjectFilter{}.Matches(p))
	assert.True(t, ProjectFilter{Category: "Tile Roofing", Year: &year}.Matches(p))
	assert.False(t, ProjectFilter{Category: "Tile"}.Matches(p))

	other := 2021
	assert.False(t, ProjectFilter{Year: &other}.Matches(p))

	// Whole tokens only, any term may match.
	assert.True(t, ProjectFilter{Search: "chimney renovation"}.Matches(p))
	assert.False(t, ProjectFilter{Search: "renov"}.Matches(p))
}

func TestNewProjectStats(t *testing.T) {
	stats := NewProjectStats(6,
		[]CategoryCount{{"Flat Roofs", 2}, {"Tile Roofing", 3}, {"Chimneys", 1}},
		[]YearCount{{2019, 1}, {2023, 3}, {2022, 2}},
	)

	assert.Equal(t, int64(6), stats.TotalProjects)
	assert.Equal(t, 3, stats.TotalCategories)
	assert.Equal(t, 3, stats.TotalYears)
	assert.Equal(t, []string{"Chimneys", "Flat Roofs", "Tile Roofing"}, stats.CategoryList)
	assert.Equal(t, []int{2023, 2022, 2019}, stats.Years)
	assert.Equal(t, "Tile Roofing", stats.ByCategory[0].Category)
	assert.Equal(t, int64(2), stats.Categories["Flat Roofs"])
}

func TestNewProjectStats_Empty(t *testing.T) {
	stats := NewProjectStats(0, nil, nil)

	assert.NotNil(t, stats.ByCategory)
	assert.NotNil(t, stats.Years)
	assert.Empty(t, stats.Categories)
	assert.Zero(t, stats.TotalCategories)
}
