package database

import (
	"context"
	"fmt"
	"time"

	"github.com/grocerscan/tesco_scraper/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoClient struct {
	Client *mongo.Client
	DB     *mongo.Database
	cfg    *config.MongoConfig
}

func NewMongoClient(ctx context.Context, cfg *config.MongoConfig) (*MongoClient, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err = client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	fmt.Println("Connected to MongoDB")
	db := client.Database(cfg.DBName)

	return &MongoClient{
		Client: client,
		DB:     db,
		cfg:    cfg,
	}, nil
}

// AddRecord inserts one emitted record as an independent document. Records
// are never batched or updated after emission.
func (m *MongoClient) AddRecord(ctx context.Context, record interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	coll := m.DB.Collection(m.cfg.RecordsColl)
	if _, err := coll.InsertOne(ctx, record); err != nil {
		return fmt.Errorf("failed to insert record: %w", err)
	}
	return nil
}

func (m *MongoClient) Disconnect() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := m.Client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect from MongoDB: %w", err)
	}

	fmt.Println("MongoDB connection closed")
	return nil
}
