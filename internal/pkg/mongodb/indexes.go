package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateIndexes 批量创建索引
func CreateIndexes(ctx context.Context, coll *mongo.Collection, indexes []mongo.IndexModel) error {
	if len(indexes) == 0 {
		return nil
	}
	_, err := coll.Indexes().CreateMany(ctx, indexes)
	return err
}

// UpdatedAtIndex 按更新时间倒序的索引
func UpdatedAtIndex() mongo.IndexModel {
	return mongo.IndexModel{
		Keys:    bson.D{bson.E{Key: "updated_at", Value: -1}},
		Options: options.Index().SetName("idx_updated"),
	}
}
