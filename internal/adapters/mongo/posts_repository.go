package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/philly/imageblog/internal/posts/domain"
	"github.com/philly/imageblog/internal/posts/ports"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const postsCollection = "posts"

// postDocument is the stored shape of a post. The UUID is kept as its
// string form in _id.
type postDocument struct {
	ID          string    `bson:"_id"`
	Title       string    `bson:"title"`
	Description string    `bson:"description"`
	Image       string    `bson:"image"`
	ImageKey    string    `bson:"imageKey"`
	CreatedAt   time.Time `bson:"createdAt"`
}

// PostRepository implements ports.PostRepository on a MongoDB collection
type PostRepository struct {
	client *mongo.Client
	posts  *mongo.Collection
}

// NewPostRepository creates a repository over the database's posts collection
func NewPostRepository(db *mongo.Database) *PostRepository {
	return &PostRepository{
		client: db.Client(),
		posts:  db.Collection(postsCollection),
	}
}

// EnsureIndexes creates the index that backs creation-order listing
func (r *PostRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.posts.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("PostRepository.EnsureIndexes: %w", err)
	}
	return nil
}

// Create inserts a new post document
func (r *PostRepository) Create(ctx context.Context, post *domain.Post) error {
	if _, err := r.posts.InsertOne(ctx, toDocument(post)); err != nil {
		return fmt.Errorf("PostRepository.Create: %w", err)
	}
	return nil
}

// FindByID retrieves a post by its ID
func (r *PostRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	var doc postDocument
	err := r.posts.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ports.ErrPostNotFound
		}
		return nil, fmt.Errorf("PostRepository.FindByID: %w", err)
	}
	return fromDocument(doc)
}

// List retrieves posts in creation order
func (r *PostRepository) List(ctx context.Context, filter ports.ListFilter) ([]*domain.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}
	if filter.Offset > 0 {
		opts.SetSkip(int64(filter.Offset))
	}

	cursor, err := r.posts.Find(ctx, searchFilter(filter.Search), opts)
	if err != nil {
		return nil, fmt.Errorf("PostRepository.List: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []postDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("PostRepository.List: decode: %w", err)
	}

	posts := make([]*domain.Post, 0, len(docs))
	for _, doc := range docs {
		post, err := fromDocument(doc)
		if err != nil {
			return nil, fmt.Errorf("PostRepository.List: %w", err)
		}
		posts = append(posts, post)
	}
	return posts, nil
}

// Count returns the number of posts matching the search term
func (r *PostRepository) Count(ctx context.Context, filter ports.ListFilter) (int, error) {
	n, err := r.posts.CountDocuments(ctx, searchFilter(filter.Search))
	if err != nil {
		return 0, fmt.Errorf("PostRepository.Count: %w", err)
	}
	return int(n), nil
}

// Update applies the patch atomically and returns the updated document
func (r *PostRepository) Update(ctx context.Context, id uuid.UUID, patch domain.Patch) (*domain.Post, error) {
	set := patchSet(patch)
	if len(set) == 0 {
		return r.FindByID(ctx, id)
	}

	var doc postDocument
	err := r.posts.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id.String()},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ports.ErrPostNotFound
		}
		return nil, fmt.Errorf("PostRepository.Update: %w", err)
	}
	return fromDocument(doc)
}

// Delete removes a post document
func (r *PostRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.posts.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return fmt.Errorf("PostRepository.Delete: %w", err)
	}
	if result.DeletedCount == 0 {
		return ports.ErrPostNotFound
	}
	return nil
}

// Ping checks the primary is reachable
func (r *PostRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, nil)
}

// Helper functions

func toDocument(post *domain.Post) postDocument {
	return postDocument{
		ID:          post.ID.String(),
		Title:       post.Title,
		Description: post.Description,
		Image:       post.Image,
		ImageKey:    post.ImageKey,
		CreatedAt:   post.CreatedAt,
	}
}

func fromDocument(doc postDocument) (*domain.Post, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid post id %q: %w", doc.ID, err)
	}
	return &domain.Post{
		ID:          id,
		Title:       doc.Title,
		Description: doc.Description,
		Image:       doc.Image,
		ImageKey:    doc.ImageKey,
		CreatedAt:   doc.CreatedAt.UTC(),
	}, nil
}

// searchFilter matches the term as a literal, case-insensitive substring
func searchFilter(search string) bson.M {
	if search == "" {
		return bson.M{}
	}
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(search), Options: "i"}
	return bson.M{"$or": bson.A{
		bson.M{"title": pattern},
		bson.M{"description": pattern},
	}}
}

func patchSet(patch domain.Patch) bson.M {
	set := bson.M{}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Image != nil {
		set["image"] = *patch.Image
		set["imageKey"] = ""
		if patch.ImageKey != nil {
			set["imageKey"] = *patch.ImageKey
		}
	}
	return set
}
