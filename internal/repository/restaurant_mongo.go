package repository

import (
	"context"

	"github.com/cockroachdb/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ahmednasr/restaurant-autocomplete/internal/models"
)

// RestaurantMongo stores restaurants in a MongoDB collection.
type RestaurantMongo struct {
	col *mongo.Collection // "restaurants" (one doc per restaurant)
}

// NewRestaurantMongo wires the collection.
//
// Expected schema:
//
//	restaurants
//	  { _id: ObjectId, display_name: string, user_rating_count: int }
func NewRestaurantMongo(db *mongo.Database) *RestaurantMongo {
	return &RestaurantMongo{
		col: db.Collection("restaurants"),
	}
}

// -------------------------- public API --------------------------------------

// All returns every restaurant in insertion order.
func (r *RestaurantMongo) All(ctx context.Context) ([]models.Restaurant, error) {
	return r.find(ctx, options.Find())
}

// List returns one window of restaurants in insertion order. A limit of zero
// or less selects nothing, matching the file store; Mongo itself reads 0 as
// unlimited.
func (r *RestaurantMongo) List(ctx context.Context, limit, offset int) ([]models.Restaurant, error) {
	if limit <= 0 {
		return []models.Restaurant{}, nil
	}
	if offset < 0 {
		offset = 0
	}
	opts := options.Find().
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	return r.find(ctx, opts)
}

// Count returns the number of stored restaurants.
func (r *RestaurantMongo) Count(ctx context.Context) (int, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, errors.Wrap(err, "count restaurants")
	}
	return int(n), nil
}

// Insert appends a restaurant.
func (r *RestaurantMongo) Insert(ctx context.Context, rest models.Restaurant) error {
	if _, err := r.col.InsertOne(ctx, rest); err != nil {
		return errors.Wrapf(err, "insert restaurant %q", rest.DisplayName)
	}
	return nil
}

func (r *RestaurantMongo) find(ctx context.Context, opts *options.FindOptions) ([]models.Restaurant, error) {
	opts.SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetProjection(bson.D{{Key: "_id", Value: 0}}) // omit ObjectId

	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "find restaurants")
	}
	defer cur.Close(ctx)

	out := []models.Restaurant{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, errors.Wrap(err, "decode restaurants")
	}
	return out, nil
}
