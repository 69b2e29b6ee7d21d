package mongodb

import (
	"context"
	"errors"

	"DeepHabitat/internal/archive"
	"DeepHabitat/modules/kit/errx"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const defaultCollectionName = "matches"

type MatchRepository struct {
	coll *mongo.Collection
}

func NewMatchRepository(db *mongo.Database) *MatchRepository {
	return &MatchRepository{
		coll: db.Collection(defaultCollectionName),
	}
}

func (r *MatchRepository) Load(ctx context.Context, id int64) (*archive.MatchRecord, error) {
	if r == nil || r.coll == nil {
		return nil, errx.ErrUnavailable.WithCause(errors.New("mongodb match collection is nil"))
	}

	var doc matchDoc
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err == nil {
		return docToRecord(doc), nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errx.ErrNotFound.WithData("match_id", id)
	}
	return nil, errx.ErrUnavailable.WithCause(err)
}

// Save 按 id upsert。
func (r *MatchRepository) Save(ctx context.Context, rec *archive.MatchRecord) error {
	if rec == nil {
		return nil
	}
	if r == nil || r.coll == nil {
		return errx.ErrUnavailable.WithCause(errors.New("mongodb match collection is nil"))
	}

	doc := recordToDoc(rec)
	_, err := r.coll.ReplaceOne(
		ctx,
		bson.M{"_id": doc.ID},
		doc,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return errx.ErrUnavailable.WithCause(err).WithData("match_id", rec.ID)
	}
	return nil
}
