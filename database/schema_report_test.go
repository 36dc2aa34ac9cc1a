package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindColumnMismatches(t *testing.T) {
	have := []string{"id", "name", "legacy_flag", "category"}
	want := []string{"category", "id", "name"}

	assert.Equal(t, []string{"legacy_flag"}, findColumnMismatches(have, want))
	assert.Empty(t, findColumnMismatches(want, have))
}

func TestSchemaReportClean(t *testing.T) {
	assert.True(t, SchemaReport{Table: "projects"}.Clean())
	assert.False(t, SchemaReport{Table: "projects", MissingColumns: []string{"details"}}.Clean())
}
