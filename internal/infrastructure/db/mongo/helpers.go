package mongo

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func returnAfter() *options.FindOneAndUpdateOptions {
	return options.FindOneAndUpdate().SetReturnDocument(options.After)
}

// parseID converts a hex id. Malformed ids cannot match any document, so they
// are reported as notFound.
func parseID(id string, notFound error) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, notFound
	}
	return oid, nil
}

// embeddedID returns the ObjectID for an embedded document, minting a new one
// when id is empty or malformed.
func embeddedID(id string) primitive.ObjectID {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return oid
	}
	return primitive.NewObjectID()
}

func insertedID(res *mongo.InsertOneResult) string {
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		return oid.Hex()
	}
	return ""
}
