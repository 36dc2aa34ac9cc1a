package models

import "sort"

// CategoryCount is the number of projects in one category
type CategoryCount struct {
	Category string `json:"category" bson:"_id"`
	Count    int64  `json:"count" bson:"count"`
}

// YearCount is the number of projects completed in one year
type YearCount struct {
	Year  int   `json:"year" bson:"_id"`
	Count int64 `json:"count" bson:"count"`
}

// ProjectStats is the aggregate view of the catalog returned by /stats
type ProjectStats struct {
	TotalProjects   int64            `json:"totalProjects"`
	TotalCategories int              `json:"totalCategories"`
	TotalYears      int              `json:"totalYears"`
	Categories      map[string]int64 `json:"categories"`
	ByCategory      []CategoryCount  `json:"byCategory"`
	ByYear          []YearCount      `json:"byYear"`
	CategoryList    []string         `json:"categoryList"`
	Years           []int            `json:"years"`
	// Details is set, possibly empty, only when a details category was asked for
	Details         *[]string        `json:"details,omitempty"`
}

// NewProjectStats derives the full statistics view from the grouped counts
// a store produced. Input order does not matter.
func NewProjectStats(total int64, byCategory []CategoryCount, byYear []YearCount) *ProjectStats {
	if byCategory == nil {
		byCategory = []CategoryCount{}
	}
	if byYear == nil {
		byYear = []YearCount{}
	}

	sort.Slice(byCategory, func(i, j int) bool {
		if byCategory[i].Count != byCategory[j].Count {
			return byCategory[i].Count > byCategory[j].Count
		}
		return byCategory[i].Category < byCategory[j].Category
	})
	sort.Slice(byYear, func(i, j int) bool {
		return byYear[i].Year > byYear[j].Year
	})

	stats := &ProjectStats{
		TotalProjects: total,
		Categories:    make(map[string]int64, len(byCategory)),
		ByCategory:    byCategory,
		ByYear:        byYear,
		CategoryList:  make([]string, 0, len(byCategory)),
		Years:         make([]int, 0, len(byYear)),
	}
	for _, c := range byCategory {
		stats.Categories[c.Category] = c.Count
		stats.CategoryList = append(stats.CategoryList, c.Category)
	}
	for _, y := range byYear {
		stats.Years = append(stats.Years, y.Year)
	}
	sort.Strings(stats.CategoryList)

	stats.TotalCategories = len(stats.CategoryList)
	stats.TotalYears = len(stats.Years)
	return stats
}
