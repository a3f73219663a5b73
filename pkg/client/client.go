package client

import (
	"context"
	"time"

	"aula/pkg/logger"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoClient wraps the driver client so callers can reach the underlying
// connection pool while keeping lifecycle management here.
type MongoClient struct {
	Client *mongo.Client
	log    *logger.Logger
}

// Client aggregates the external connections a service owns. The engine
// never opens connections per call; the pool lives for the process.
type Client struct {
	Mongo *MongoClient
}

func NewClient() *Client {
	return &Client{}
}

func (c *Client) SetMongo(log *logger.Logger, mongoURI string, connTimeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), connTimeout)
	defer cancel()

	mc, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", "error", err)
	}

	if err := mc.Ping(ctx, readpref.Primary()); err != nil {
		log.Fatal("Failed to ping MongoDB", "error", err)
	}

	log.Info("Successfully connected to MongoDB")
	c.Mongo = &MongoClient{Client: mc, log: log}
}

// GracefulShutdown closes every connection held by the client.
func (c *Client) GracefulShutdown() {
	if c.Mongo == nil || c.Mongo.Client == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := c.Mongo.Client.Disconnect(ctx); err != nil && c.Mongo.log != nil {
		c.Mongo.log.Warn("Failed to disconnect from MongoDB", "error", err)
	}
}
