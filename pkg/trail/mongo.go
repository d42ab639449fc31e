package trail

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// MongoStore keeps each trail as one document holding a capped array.
type MongoStore struct {
	coll *mongo.Collection
}

type trailDocument struct {
	Key   string   `bson:"_id"`
	Lines []string `bson:"lines"`
}

func NewMongoStore(coll *mongo.Collection) *MongoStore {
	return &MongoStore{coll: coll}
}

func (s *MongoStore) Push(ctx context.Context, key, line string, limit int) error {
	_, err := s.coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: key}},
		pushUpdate(line, limit),
		options.UpdateOne().SetUpsert(true),
	)
	return err
}

func (s *MongoStore) List(ctx context.Context, key string) ([]string, error) {
	var doc trailDocument
	err := s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: key}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	return doc.Lines, nil
}

// pushUpdate appends line and keeps the newest limit elements.
func pushUpdate(line string, limit int) bson.D {
	each := bson.D{{Key: "$each", Value: bson.A{line}}}
	if limit > 0 {
		each = append(each, bson.E{Key: "$slice", Value: -limit})
	}
	return bson.D{{Key: "$push", Value: bson.D{{Key: "lines", Value: each}}}}
}
