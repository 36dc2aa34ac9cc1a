package database

import (
	"context"
	"fmt"
	"sort"

	"github.com/lejapetric/simon/models"
	"gorm.io/gorm"
)

// SchemaReport lists the differences between the projects table and the
// Project model
type SchemaReport struct {
	Table string
	// UnmappedColumns exist in the table but no model field maps to them
	UnmappedColumns []string
	// MissingColumns are mapped by the model but absent from the table
	MissingColumns []string
}

func (s SchemaReport) Clean() bool {
	return len(s.UnmappedColumns) == 0 && len(s.MissingColumns) == 0
}

// SchemaReport compares the live projects table with the columns GORM maps
// the Project model to.
func (r *PostgresProjectRepo) SchemaReport(ctx context.Context) (*SchemaReport, error) {
	db := r.db.WithContext(ctx)

	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(&models.Project{}); err != nil {
		return nil, fmt.Errorf("parse project model: %w", err)
	}
	table := stmt.Schema.Table

	dbColumns, err := getTableColumns(db, table)
	if err != nil {
		return nil, err
	}

	modelColumns := make([]string, 0, len(stmt.Schema.DBNames))
	modelColumns = append(modelColumns, stmt.Schema.DBNames...)

	return &SchemaReport{
		Table:           table,
		UnmappedColumns: findColumnMismatches(dbColumns, modelColumns),
		MissingColumns:  findColumnMismatches(modelColumns, dbColumns),
	}, nil
}

// getTableColumns retrieves column names from a database table
func getTableColumns(db *gorm.DB, tableName string) ([]string, error) {
	var columns []string
	query := `
		SELECT column_name
		FROM information_schema.columns
		WHERE table_name = ?
		AND table_schema = CURRENT_SCHEMA()
		ORDER BY ordinal_position
	`
	if err := db.Raw(query, tableName).Scan(&columns).Error; err != nil {
		return nil, fmt.Errorf("error querying columns for table %s: %w", tableName, err)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("table %s does not exist", tableName)
	}
	return columns, nil
}

// findColumnMismatches returns the columns of have that want does not contain
func findColumnMismatches(have, want []string) []string {
	wantSet := make(map[string]bool, len(want))
	for _, c := range want {
		wantSet[c] = true
	}

	var mismatches []string
	for _, c := range have {
		if !wantSet[c] {
			mismatches = append(mismatches, c)
		}
	}
	sort.Strings(mismatches)
	return mismatches
}
