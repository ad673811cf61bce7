// Package mongo implements store.Store on MongoDB using the official
// driver v2. Suitable for deployments that want the job record kept as a
// single document with server-assigned timestamps.
//
// The caller owns the *mongo.Client lifecycle; this package never
// disconnects it. Pass the client through the constructor:
//
//	import (
//	    mongod "go.mongodb.org/mongo-driver/v2/mongo"
//	    "go.mongodb.org/mongo-driver/v2/mongo/options"
//
//	    "github.com/xraph/wayfarer/store/mongo"
//	)
//
//	client, _ := mongod.Connect(options.Client().ApplyURI(uri))
//	store := mongo.New(client, "wayfarer")
//	store.Migrate(ctx)
package mongo
