package models

import (
	"strings"
	"time"
	"unicode"

	"gorm.io/datatypes"
)

// Project represents a completed reference job shown in the portfolio
type Project struct {
	ID              string                      `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid();not null"`
	Name            string                      `json:"name" gorm:"type:text;not null"`
	WorkDescription string                      `json:"workDescription" gorm:"type:text;not null"`
	Category        string                      `json:"category" gorm:"type:text;not null"`
	CompletionDate  CompletionDate              `json:"completionDate" gorm:"embedded;embeddedPrefix:completion_"`
	Details         *string                     `json:"details" gorm:"type:text"`
	Images          datatypes.JSONSlice[string] `json:"images" gorm:"type:jsonb;not null"`
	CreatedAt       time.Time                   `json:"createdAt" gorm:"not null"`
	UpdatedAt       time.Time                   `json:"updatedAt" gorm:"not null"`
}

func (Project) TableName() string {
	return "projects"
}

// CompletionDate is the month and year a job was finished. Month is 1-12.
type CompletionDate struct {
	Month int `json:"month" gorm:"not null"`
	Year  int `json:"year" gorm:"not null"`
}

// After reports whether d is later than o.
func (d CompletionDate) After(o CompletionDate) bool {
	if d.Year != o.Year {
		return d.Year > o.Year
	}
	return d.Month > o.Month
}

// Bounds of a valid completion date.
const (
	MinMonth = 1
	MaxMonth = 12
	MinYear  = 1990
	MaxYear  = 2100
)

// MonthNames are the month names used by the legacy schema, indexed from January.
var MonthNames = [12]string{
	"januar", "februar", "marec", "april", "maj", "junij",
	"julij", "avgust", "september", "oktober", "november", "december",
}

// MonthFromName maps a legacy month name to its number.
func MonthFromName(name string) (int, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range MonthNames {
		if n == name {
			return i + 1, true
		}
	}
	return 0, false
}

// ProjectFilter selects projects for a listing. Zero fields do not filter.
type ProjectFilter struct {
	Category string
	Year     *int
	Search   string
}

// Matches reports whether p passes every set filter. Stores with native
// query support only use it for their in-process fallback.
func (f ProjectFilter) Matches(p Project) bool {
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.Year != nil && p.CompletionDate.Year != *f.Year {
		return false
	}
	if terms := SearchTerms(f.Search); len(terms) > 0 {
		nameTerms := SearchTerms(p.Name)
		for _, t := range terms {
			for _, n := range nameTerms {
				if t == n {
					return true
				}
			}
		}
		return false
	}
	return true
}

// SearchTerms splits free text into lowercase letter/digit tokens, the unit
// the text search operates on.
func SearchTerms(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return fields
}
