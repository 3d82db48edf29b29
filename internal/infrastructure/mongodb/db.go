// Package mongodb implements the repositories on a MongoDB database.
// Atomicity is per document, which matches the storage contract; no
// multi-document transactions are used.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	usersCollection = "users"
	tasksCollection = "tasks"
)

type DB struct {
	client   *mongo.Client
	database *mongo.Database
}

// Connect dials the server, verifies it is reachable, and creates the
// indexes the repositories rely on (unique users.email, tasks user_id +
// created_at).
func Connect(ctx context.Context, uri, database string) (*DB, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(5 * time.Second).
		SetServerSelectionTimeout(5 * time.Second)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	db := &DB{client: client, database: client.Database(database)}
	if err := db.ensureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("create indexes: %w", err)
	}
	return db, nil
}

func (db *DB) ensureIndexes(ctx context.Context) error {
	_, err := db.database.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = db.database.Collection(tasksCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	return err
}

// Ping satisfies the health checker's Pinger interface.
func (db *DB) Ping(ctx context.Context) error {
	return db.client.Ping(ctx, readpref.Primary())
}

// Drop removes the whole database. Used by tests.
func (db *DB) Drop(ctx context.Context) error {
	return db.database.Drop(ctx)
}

func (db *DB) Close(ctx context.Context) error {
	return db.client.Disconnect(ctx)
}
