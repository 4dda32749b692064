// Copyright (c) 2026 The skhctl Authors.
// SPDX-License-Identifier: Apache-2.0

package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/smartkitchen/skhctl/internal/config"
	"github.com/smartkitchen/skhctl/internal/log"
)

// Collection is the subset of *mongo.Collection used by seed and enrich.
type Collection interface {
	InsertOne(ctx context.Context, document any, opts ...options.Lister[options.InsertOneOptions]) (*mongo.InsertOneResult, error)
	InsertMany(ctx context.Context, documents any, opts ...options.Lister[options.InsertManyOptions]) (*mongo.InsertManyResult, error)
	DeleteMany(ctx context.Context, filter any, opts ...options.Lister[options.DeleteManyOptions]) (*mongo.DeleteResult, error)
	Find(ctx context.Context, filter any, opts ...options.Lister[options.FindOptions]) (*mongo.Cursor, error)
	UpdateOne(ctx context.Context, filter any, update any, opts ...options.Lister[options.UpdateOneOptions]) (*mongo.UpdateResult, error)
}

var _ Collection = (*mongo.Collection)(nil)

// Server is what Setup, seed and enrich need from a deployment.
type Server interface {
	DatabaseNames(ctx context.Context) ([]string, error)
	DropDatabase(ctx context.Context, db string) error
	CreateCollection(ctx context.Context, db, name string, validator bson.D) error
	Collection(db, name string) Collection
}

var _ Server = (*Client)(nil)

// Client adapts *mongo.Client to Server.
type Client struct {
	*mongo.Client
}

func (c *Client) DatabaseNames(ctx context.Context) ([]string, error) {
	return c.ListDatabaseNames(ctx, bson.D{})
}

func (c *Client) DropDatabase(ctx context.Context, db string) error {
	return c.Database(db).Drop(ctx)
}

func (c *Client) CreateCollection(ctx context.Context, db, name string, validator bson.D) error {
	opts := options.CreateCollection()
	if validator != nil {
		opts.SetValidator(validator)
	}
	return c.Database(db).CreateCollection(ctx, name, opts)
}

func (c *Client) Collection(db, name string) Collection {
	return c.Database(db).Collection(name)
}

// ConnParams are the parts of a connection URI.
type ConnParams struct {
	Username    string
	Password    string
	Host        string
	DBName      string
	URITemplate string
}

// URI expands the template (or the default one) with the params.
func (c ConnParams) URI() (string, error) {
	tmpl := c.URITemplate
	if tmpl == "" {
		tmpl = config.DefaultMongoURITemplate
	}
	return config.ExpandURITemplate(tmpl, map[string]string{
		"username": c.Username,
		"password": c.Password,
		"host":     c.Host,
		"dbname":   c.DBName,
	})
}

// Connect opens a client and pings the primary.
func Connect(ctx context.Context, params ConnParams) (*Client, error) {
	if params.Host == "" {
		return nil, fmt.Errorf("mongo host is not set (MONGO_HOST)")
	}
	if params.DBName == "" {
		return nil, fmt.Errorf("mongo database is not set (MONGO_DB)")
	}
	uri, err := params.URI()
	if err != nil {
		return nil, err
	}

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo at %s: %w", params.Host, err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongo at %s: %w", params.Host, err)
	}

	log.Infof("Connected to MongoDB %s/%s", params.Host, params.DBName)
	return &Client{Client: client}, nil
}
