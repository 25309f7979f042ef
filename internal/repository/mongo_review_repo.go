package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"review-sentiment/internal/models"
)

const (
	reviewsCollection  = "reviews"
	countersCollection = "counters"
	reviewsCounterID   = "reviews"
)

// reviewDocument keeps created_at as Unix microseconds since BSON datetimes
// only carry milliseconds.
type reviewDocument struct {
	ID              int64  `bson:"_id"`
	Text            string `bson:"text"`
	Sentiment       string `bson:"sentiment"`
	CreatedAtMicros int64  `bson:"created_at_us"`
}

func (d reviewDocument) toModel() (models.Review, error) {
	sentiment, err := models.ParseSentiment(d.Sentiment)
	if err != nil {
		return models.Review{}, fmt.Errorf("review %d: %w", d.ID, err)
	}
	return models.Review{
		ID:        d.ID,
		Text:      d.Text,
		Sentiment: sentiment,
		CreatedAt: models.NewTimestamp(time.UnixMicro(d.CreatedAtMicros)),
	}, nil
}

type counterDocument struct {
	ID  string `bson:"_id"`
	Seq int64  `bson:"seq"`
}

// MongoReviewRepo stores reviews in MongoDB. Ids come from an atomically
// incremented counter document so they stay unique across processes; a failed
// insert leaves a gap but never a duplicate.
type MongoReviewRepo struct {
	client     *mongo.Client
	collection *mongo.Collection
	counters   *mongo.Collection
	logger     *slog.Logger

	mu    sync.Mutex
	clock *monotonicClock
}

func NewMongoReviewRepo(ctx context.Context, client *mongo.Client, dbName string, clock clockwork.Clock, logger *slog.Logger) (*MongoReviewRepo, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db := client.Database(dbName)
	r := &MongoReviewRepo{
		client:     client,
		collection: db.Collection(reviewsCollection),
		counters:   db.Collection(countersCollection),
		logger:     logger.With("component", "mongo_review_repo"),
		clock:      newMonotonicClock(clock),
	}

	if err := r.EnsureIndexes(ctx); err != nil {
		return nil, err
	}

	var latest reviewDocument
	err := r.collection.FindOne(ctx, bson.M{}, options.FindOne().SetSort(bson.D{{Key: "_id", Value: -1}})).Decode(&latest)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
	case err != nil:
		return nil, fmt.Errorf("failed to read latest review: %w", err)
	default:
		r.clock.seed(time.UnixMicro(latest.CreatedAtMicros).UTC())
	}

	return r, nil
}

// EnsureIndexes creates the index backing sentiment-filtered listing.
func (r *MongoReviewRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "sentiment", Value: 1}, {Key: "_id", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create review indexes: %w", err)
	}
	return nil
}

func (r *MongoReviewRepo) nextID(ctx context.Context) (int64, error) {
	var counter counterDocument
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": reviewsCounterID},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate review id: %w", err)
	}
	return counter.Seq, nil
}

func (r *MongoReviewRepo) Insert(ctx context.Context, text string, sentiment models.Sentiment) (models.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, err := r.nextID(ctx)
	if err != nil {
		return models.Review{}, err
	}

	doc := reviewDocument{
		ID:              id,
		Text:            text,
		Sentiment:       string(sentiment),
		CreatedAtMicros: r.clock.next().UnixMicro(),
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return models.Review{}, fmt.Errorf("failed to insert review: %w", err)
	}

	r.logger.DebugContext(ctx, "Review saved", "review_id", id, "sentiment", doc.Sentiment)
	return doc.toModel()
}

func (r *MongoReviewRepo) List(ctx context.Context, filter *models.Sentiment) ([]models.Review, error) {
	query := bson.M{}
	if filter != nil {
		query["sentiment"] = string(*filter)
	}

	cursor, err := r.collection.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}

	var docs []reviewDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode reviews: %w", err)
	}

	out := make([]models.Review, 0, len(docs))
	for _, doc := range docs {
		review, err := doc.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, review)
	}
	return out, nil
}

func (r *MongoReviewRepo) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, nil)
}

func (r *MongoReviewRepo) Close(ctx context.Context) error {
	if err := r.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect from MongoDB: %w", err)
	}
	return nil
}
