// Copyright (c) 2026 The skhctl Authors.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package mongotest provides an in-memory mongo.Server for tests. Filters are
// ignored except for an _id equality in UpdateOne.
package mongotest

import (
	"context"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/v2/bson"
	driver "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/smartkitchen/skhctl/internal/mongo"
)

// Server holds collections keyed by "db.name".
type Server struct {
	mu          sync.Mutex
	collections map[string]*Collection
	Databases   []string
}

var _ mongo.Server = (*Server)(nil)

// NewServer returns an empty server.
func NewServer() *Server {
	return &Server{collections: map[string]*Collection{}}
}

func (s *Server) DatabaseNames(context.Context) ([]string, error) {
	return s.Databases, nil
}

func (s *Server) DropDatabase(_ context.Context, db string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.collections {
		if len(k) > len(db) && k[:len(db)+1] == db+"." {
			delete(s.collections, k)
		}
	}
	return nil
}

func (s *Server) CreateCollection(_ context.Context, db, name string, _ bson.D) error {
	s.C(db, name)
	return nil
}

func (s *Server) Collection(db, name string) mongo.Collection {
	return s.C(db, name)
}

// C returns the concrete collection, creating it if needed.
func (s *Server) C(db, name string) *Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := db + "." + name
	c, ok := s.collections[key]
	if !ok {
		c = &Collection{}
		s.collections[key] = c
	}
	return c
}

// Collection is an in-memory mongo.Collection.
type Collection struct {
	Docs []bson.D

	// InsertErr, when set, is returned by every insert.
	InsertErr error
	// UpdateErr, when set, is returned by every update.
	UpdateErr error

	Updates int
	nextID  int
}

var _ mongo.Collection = (*Collection)(nil)

func (c *Collection) withID(doc bson.D) (bson.D, any) {
	for _, e := range doc {
		if e.Key == "_id" {
			return doc, e.Value
		}
	}
	c.nextID++
	id := fmt.Sprintf("id-%d", c.nextID)
	return append(bson.D{{Key: "_id", Value: id}}, doc...), id
}

func toDoc(v any) (bson.D, error) {
	if d, ok := v.(bson.D); ok {
		return d, nil
	}
	b, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	var d bson.D
	err = bson.Unmarshal(b, &d)
	return d, err
}

func (c *Collection) InsertOne(_ context.Context, document any, _ ...options.Lister[options.InsertOneOptions]) (*driver.InsertOneResult, error) {
	if c.InsertErr != nil {
		return nil, c.InsertErr
	}
	d, err := toDoc(document)
	if err != nil {
		return nil, err
	}
	d, id := c.withID(d)
	c.Docs = append(c.Docs, d)
	return &driver.InsertOneResult{InsertedID: id}, nil
}

func (c *Collection) InsertMany(ctx context.Context, documents any, _ ...options.Lister[options.InsertManyOptions]) (*driver.InsertManyResult, error) {
	if c.InsertErr != nil {
		return &driver.InsertManyResult{}, c.InsertErr
	}
	docs, ok := documents.([]bson.D)
	if !ok {
		return nil, fmt.Errorf("mongotest: InsertMany wants []bson.D, got %T", documents)
	}
	res := &driver.InsertManyResult{}
	for _, d := range docs {
		r, err := c.InsertOne(ctx, d)
		if err != nil {
			return res, err
		}
		res.InsertedIDs = append(res.InsertedIDs, r.InsertedID)
	}
	return res, nil
}

func (c *Collection) DeleteMany(context.Context, any, ...options.Lister[options.DeleteManyOptions]) (*driver.DeleteResult, error) {
	n := int64(len(c.Docs))
	c.Docs = nil
	return &driver.DeleteResult{DeletedCount: n}, nil
}

func (c *Collection) Find(context.Context, any, ...options.Lister[options.FindOptions]) (*driver.Cursor, error) {
	docs := make([]any, len(c.Docs))
	for i, d := range c.Docs {
		docs[i] = d
	}
	return driver.NewCursorFromDocuments(docs, nil, nil)
}

// UpdateOne applies a {$set: {...}} update to the document whose _id equals
// the filter's _id.
func (c *Collection) UpdateOne(_ context.Context, filter any, update any, _ ...options.Lister[options.UpdateOneOptions]) (*driver.UpdateResult, error) {
	if c.UpdateErr != nil {
		return nil, c.UpdateErr
	}
	f, err := toDoc(filter)
	if err != nil {
		return nil, err
	}
	u, err := toDoc(update)
	if err != nil {
		return nil, err
	}

	var id any
	for _, e := range f {
		if e.Key == "_id" {
			id = e.Value
		}
	}

	for i, d := range c.Docs {
		if Get(d, "_id") != id {
			continue
		}
		for _, op := range u {
			if op.Key != "$set" {
				continue
			}
			set, err := toDoc(op.Value)
			if err != nil {
				return nil, err
			}
			for _, kv := range set {
				c.Docs[i] = setField(c.Docs[i], kv.Key, kv.Value)
			}
		}
		c.Updates++
		return &driver.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
	}
	return &driver.UpdateResult{}, nil
}

// Get returns the value of key in d, or nil.
func Get(d bson.D, key string) any {
	for _, e := range d {
		if e.Key == key {
			return e.Value
		}
	}
	return nil
}

func setField(d bson.D, key string, v any) bson.D {
	for i, e := range d {
		if e.Key == key {
			d[i].Value = v
			return d
		}
	}
	return append(d, bson.E{Key: key, Value: v})
}
