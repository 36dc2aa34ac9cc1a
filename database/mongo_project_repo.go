package database

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/lejapetric/simon/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"golang.org/x/sync/errgroup"
)

type projectDocument struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	Name            string             `bson:"name"`
	WorkDescription string             `bson:"workDescription"`
	Category        string             `bson:"category"`
	CompletionDate  dateDocument       `bson:"completionDate"`
	Details         *string            `bson:"details"`
	Images          []string           `bson:"images"`
	CreatedAt       time.Time          `bson:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt"`
}

type dateDocument struct {
	Month int `bson:"month"`
	Year  int `bson:"year"`
}

func newProjectDocument(p *models.Project) projectDocument {
	return projectDocument{
		Name:            p.Name,
		WorkDescription: p.WorkDescription,
		Category:        p.Category,
		CompletionDate:  dateDocument{Month: p.CompletionDate.Month, Year: p.CompletionDate.Year},
		Details:         p.Details,
		Images:          p.Images,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func (d projectDocument) toModel() models.Project {
	images := d.Images
	if images == nil {
		images = []string{}
	}
	return models.Project{
		ID:              d.ID.Hex(),
		Name:            d.Name,
		WorkDescription: d.WorkDescription,
		Category:        d.Category,
		CompletionDate:  models.CompletionDate{Month: d.CompletionDate.Month, Year: d.CompletionDate.Year},
		Details:         d.Details,
		Images:          images,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

// MongoProjectRepo stores projects as documents in one collection
type MongoProjectRepo struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// OpenMongo connects, verifies the connection and ensures the indexes the
// queries rely on.
func OpenMongo(ctx context.Context, uri, database, collection string) (*MongoProjectRepo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	r := NewMongoProjectRepo(client, client.Database(database).Collection(collection))
	if err := r.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return r, nil
}

func NewMongoProjectRepo(client *mongo.Client, collection *mongo.Collection) *MongoProjectRepo {
	return &MongoProjectRepo{client: client, collection: collection}
}

func (r *MongoProjectRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: "text"}},
			Options: options.Index().SetName("name_text").SetDefaultLanguage("none"),
		},
		{
			Keys:    bson.D{{Key: "category", Value: 1}},
			Options: options.Index().SetName("category_1"),
		},
		{
			Keys:    bson.D{{Key: "completionDate.year", Value: -1}, {Key: "completionDate.month", Value: -1}},
			Options: options.Index().SetName("completion_date_desc"),
		},
	})
	if err != nil {
		return fmt.Errorf("create project indexes: %w", err)
	}
	return nil
}

func (r *MongoProjectRepo) FindAll(ctx context.Context, filter models.ProjectFilter) ([]models.Project, error) {
	query := bson.D{}
	if filter.Category != "" {
		query = append(query, bson.E{Key: "category", Value: filter.Category})
	}
	if filter.Year != nil {
		query = append(query, bson.E{Key: "completionDate.year", Value: *filter.Year})
	}
	if terms := models.SearchTerms(filter.Search); len(terms) > 0 {
		query = append(query, bson.E{Key: "$text", Value: bson.D{{Key: "$search", Value: strings.Join(terms, " ")}}})
	}

	opts := options.Find().SetSort(bson.D{
		{Key: "completionDate.year", Value: -1},
		{Key: "completionDate.month", Value: -1},
		{Key: "_id", Value: -1},
	})
	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("find projects: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []projectDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode projects: %w", err)
	}
	projects := make([]models.Project, 0, len(docs))
	for _, d := range docs {
		projects = append(projects, d.toModel())
	}
	return projects, nil
}

func (r *MongoProjectRepo) FindByID(ctx context.Context, id string) (*models.Project, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}
	var doc projectDocument
	err = r.collection.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find project %s: %w", id, err)
	}
	p := doc.toModel()
	return &p, nil
}

func (r *MongoProjectRepo) Add(ctx context.Context, project *models.Project) error {
	prepareForWrite(project)
	now := time.Now().UTC().Truncate(time.Millisecond)
	project.CreatedAt = now
	project.UpdatedAt = now

	doc := newProjectDocument(project)
	doc.ID = primitive.NewObjectID()
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	project.ID = doc.ID.Hex()
	return nil
}

func (r *MongoProjectRepo) Replace(ctx context.Context, id string, project *models.Project) (*models.Project, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}
	prepareForWrite(project)

	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "name", Value: project.Name},
		{Key: "workDescription", Value: project.WorkDescription},
		{Key: "category", Value: project.Category},
		{Key: "completionDate", Value: dateDocument{Month: project.CompletionDate.Month, Year: project.CompletionDate.Year}},
		{Key: "details", Value: project.Details},
		{Key: "images", Value: project.Images},
		{Key: "updatedAt", Value: time.Now().UTC().Truncate(time.Millisecond)},
	}}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc projectDocument
	err = r.collection.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: oid}}, update, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update project %s: %w", id, err)
	}
	p := doc.toModel()
	return &p, nil
}

func (r *MongoProjectRepo) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}
	res, err := r.collection.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return fmt.Errorf("delete project %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoProjectRepo) Categories(ctx context.Context) ([]string, error) {
	values, err := r.collection.Distinct(ctx, "category", bson.D{})
	if err != nil {
		return nil, fmt.Errorf("distinct categories: %w", err)
	}
	categories := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			categories = append(categories, s)
		}
	}
	sort.Strings(categories)
	return categories, nil
}

func (r *MongoProjectRepo) Years(ctx context.Context) ([]int, error) {
	values, err := r.collection.Distinct(ctx, "completionDate.year", bson.D{})
	if err != nil {
		return nil, fmt.Errorf("distinct years: %w", err)
	}
	years := make([]int, 0, len(values))
	for _, v := range values {
		if y, ok := asInt(v); ok {
			years = append(years, y)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years, nil
}

func (r *MongoProjectRepo) Stats(ctx context.Context) (*models.ProjectStats, error) {
	var (
		total      int64
		byCategory []models.CategoryCount
		byYear     []models.YearCount
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := r.collection.CountDocuments(ctx, bson.D{})
		if err != nil {
			return fmt.Errorf("count projects: %w", err)
		}
		total = n
		return nil
	})
	g.Go(func() error {
		return r.groupCount(ctx, "$category", &byCategory)
	})
	g.Go(func() error {
		return r.groupCount(ctx, "$completionDate.year", &byYear)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return models.NewProjectStats(total, byCategory, byYear), nil
}

func (r *MongoProjectRepo) groupCount(ctx context.Context, field string, out any) error {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: field},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return fmt.Errorf("group projects by %s: %w", strings.TrimPrefix(field, "$"), err)
	}
	defer cursor.Close(ctx)
	if err := cursor.All(ctx, out); err != nil {
		return fmt.Errorf("decode project groups: %w", err)
	}
	return nil
}

func (r *MongoProjectRepo) Details(ctx context.Context, category string) ([]string, error) {
	query := bson.D{
		{Key: "category", Value: category},
		{Key: "details", Value: bson.D{{Key: "$nin", Value: bson.A{nil, ""}}}},
	}
	values, err := r.collection.Distinct(ctx, "details", query)
	if err != nil {
		return nil, fmt.Errorf("distinct details: %w", err)
	}
	details := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			details = append(details, s)
		}
	}
	sort.Strings(details)
	return details, nil
}

func (r *MongoProjectRepo) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, readpref.Primary())
}

func (r *MongoProjectRepo) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case int:
		return n, true
	case float64:
		return int(n), true
	}
	return 0, false
}
