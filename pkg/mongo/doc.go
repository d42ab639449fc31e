// Package mongo connects the MongoDB trail backend using the v2 driver.
//
//	client, err := mongo.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	store := trail.NewMongoStore(mongo.TrailCollection(client, cfg))
package mongo
