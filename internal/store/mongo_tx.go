package store

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
)

// MongoTxRunner exécute une fonction dans une transaction MongoDB.
// Le contexte de session est propagé à fn : toute opération de store
// faite avec ce contexte rejoint la transaction.
type MongoTxRunner struct {
	client *mongo.Client
}

func NewMongoTxRunner(client *mongo.Client) *MongoTxRunner {
	return &MongoTxRunner{client: client}
}

func (r *MongoTxRunner) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := r.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}
