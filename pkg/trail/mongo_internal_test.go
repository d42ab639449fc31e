package trail

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestPushUpdate(t *testing.T) {
	t.Parallel()

	got := pushUpdate("line", 1000)
	want := bson.D{{Key: "$push", Value: bson.D{{Key: "lines", Value: bson.D{
		{Key: "$each", Value: bson.A{"line"}},
		{Key: "$slice", Value: -1000},
	}}}}}
	assert.Equal(t, want, got)

	unbounded := pushUpdate("line", 0)
	assert.Equal(t, bson.D{{Key: "$push", Value: bson.D{{Key: "lines", Value: bson.D{
		{Key: "$each", Value: bson.A{"line"}},
	}}}}}, unbounded)
}
