package database

import (
	"context"
	"fmt"
	"regexp"

	"github.com/lejapetric/simon/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// legacyFieldNames maps the field names of the first schema to the current ones
var legacyFieldNames = bson.D{
	{Key: "ime_projekta", Value: "name"},
	{Key: "opravljena_dela", Value: "workDescription"},
	{Key: "kategorija", Value: "category"},
	{Key: "datum_izdelave.mesec", Value: "completionDate.month"},
	{Key: "datum_izdelave.leto", Value: "completionDate.year"},
	{Key: "podrobnosti", Value: "details"},
	{Key: "slike", Value: "images"},
}

// LegacyMigrationReport counts the documents each step touched
type LegacyMigrationReport struct {
	Renamed          int64
	MonthsConverted  int64
	YearsConverted   int64
	ImagesDefaulted  int64
	TimestampsFilled int64
}

// MigrateLegacy rewrites documents stored with the legacy schema in place.
// Every step only matches documents still needing it, so running it again
// is a no-op.
func (r *MongoProjectRepo) MigrateLegacy(ctx context.Context) (*LegacyMigrationReport, error) {
	report := &LegacyMigrationReport{}

	legacyKeys := make(bson.A, 0, len(legacyFieldNames))
	for _, f := range legacyFieldNames {
		legacyKeys = append(legacyKeys, bson.D{{Key: f.Key, Value: bson.D{{Key: "$exists", Value: true}}}})
	}
	res, err := r.collection.UpdateMany(ctx,
		bson.D{{Key: "$or", Value: legacyKeys}},
		bson.D{{Key: "$rename", Value: legacyFieldNames}},
	)
	if err != nil {
		return nil, fmt.Errorf("rename legacy fields: %w", err)
	}
	report.Renamed = res.ModifiedCount

	if _, err := r.collection.UpdateMany(ctx,
		bson.D{{Key: "datum_izdelave", Value: bson.D{{Key: "$exists", Value: true}}}},
		bson.D{{Key: "$unset", Value: bson.D{{Key: "datum_izdelave", Value: ""}}}},
	); err != nil {
		return nil, fmt.Errorf("drop legacy date: %w", err)
	}

	for i, name := range models.MonthNames {
		res, err := r.collection.UpdateMany(ctx,
			bson.D{{Key: "completionDate.month", Value: bson.D{
				{Key: "$regex", Value: "^\\s*" + regexp.QuoteMeta(name) + "\\s*$"},
				{Key: "$options", Value: "i"},
			}}},
			bson.D{{Key: "$set", Value: bson.D{{Key: "completionDate.month", Value: i + 1}}}},
		)
		if err != nil {
			return nil, fmt.Errorf("convert month %s: %w", name, err)
		}
		report.MonthsConverted += res.ModifiedCount
	}

	res, err = r.collection.UpdateMany(ctx,
		bson.D{{Key: "completionDate.year", Value: bson.D{{Key: "$type", Value: "string"}}}},
		mongo.Pipeline{{{Key: "$set", Value: bson.D{
			{Key: "completionDate.year", Value: bson.D{{Key: "$toInt", Value: bson.D{{Key: "$trim", Value: bson.D{{Key: "input", Value: "$completionDate.year"}}}}}}},
		}}}},
	)
	if err != nil {
		return nil, fmt.Errorf("convert years: %w", err)
	}
	report.YearsConverted = res.ModifiedCount

	res, err = r.collection.UpdateMany(ctx,
		bson.D{{Key: "$or", Value: bson.A{
			bson.D{{Key: "images", Value: bson.D{{Key: "$exists", Value: false}}}},
			bson.D{{Key: "images", Value: nil}},
		}}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "images", Value: bson.A{}}}}},
	)
	if err != nil {
		return nil, fmt.Errorf("default images: %w", err)
	}
	report.ImagesDefaulted = res.ModifiedCount

	// the creation time of a legacy document is the one encoded in its ObjectID
	res, err = r.collection.UpdateMany(ctx,
		bson.D{{Key: "createdAt", Value: bson.D{{Key: "$exists", Value: false}}}},
		mongo.Pipeline{{{Key: "$set", Value: bson.D{
			{Key: "createdAt", Value: bson.D{{Key: "$toDate", Value: "$_id"}}},
			{Key: "updatedAt", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$updatedAt", bson.D{{Key: "$toDate", Value: "$_id"}}}}}},
		}}}},
	)
	if err != nil {
		return nil, fmt.Errorf("fill timestamps: %w", err)
	}
	report.TimestampsFilled = res.ModifiedCount

	return report, nil
}
