// Copyright (c) 2026 The skhctl Authors.
// SPDX-License-Identifier: Apache-2.0

package enrich

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/smartkitchen/skhctl/internal/log"
	"github.com/smartkitchen/skhctl/internal/mongo"
)

// Kind describes what is looked up and where it is stored.
type Kind struct {
	Name       string
	Collection string
	// QueryField holds the search text, URLField receives the URL.
	QueryField string
	URLField   string
	// fileNeeds decides, for JSON files, whether the current URL is replaced.
	fileNeeds func(current string) bool
}

var (
	// Videos puts a YouTube link on recipes.
	Videos = Kind{
		Name:       "videos",
		Collection: mongo.RecipesCollection,
		QueryField: "recipe_name",
		URLField:   "video_url",
		fileNeeds:  func(cur string) bool { return cur == "" },
	}
	// Images puts a photo link on ingredients. In JSON files a link already
	// pointing at a search provider is kept.
	Images = Kind{
		Name:       "images",
		Collection: mongo.IngredientsCollection,
		QueryField: "name",
		URLField:   "image_url",
		fileNeeds:  func(cur string) bool { return !IsSearchURL(cur) },
	}
)

// IsSearchURL reports whether u came from Unsplash or Google.
func IsSearchURL(u string) bool {
	l := strings.ToLower(u)
	return strings.Contains(l, "unsplash") || strings.Contains(l, "google")
}

// Result counts what happened to the documents of one target.
type Result struct {
	Target  string `json:"target" yaml:"target"`
	Updated int    `json:"updated" yaml:"updated"`
	Missing int    `json:"missing" yaml:"missing"`
	Failed  int    `json:"failed" yaml:"failed"`
	Skipped int    `json:"skipped" yaml:"skipped"`
}

func (r Result) log() {
	log.Infof("%s: %s updated, %s without result, %s failed, %s skipped",
		r.Target,
		humanize.Comma(int64(r.Updated)),
		humanize.Comma(int64(r.Missing)),
		humanize.Comma(int64(r.Failed)),
		humanize.Comma(int64(r.Skipped)))
}

// lookup searches for one document. ok is false when the document was
// counted as failed or missing.
func lookup(ctx context.Context, s Searcher, res *Result, label, query string) (string, bool) {
	u, err := s.Search(ctx, query)
	switch {
	case err != nil:
		res.Failed++
		if errors.Is(err, ErrQuotaExceeded) {
			log.Debugf("No lookup for %s: %v", label, err)
		} else {
			log.Warnf("Lookup for %s failed: %v", label, err)
		}
		return "", false
	case u == "":
		res.Missing++
		log.Infof("No %s found for %s", strings.TrimSuffix(res.Target, "s"), label)
		return "", false
	}
	return u, true
}

// EnrichMongo sets kind.URLField on every document of kind.Collection that
// has none. One UpdateOne per document.
func EnrichMongo(ctx context.Context, srv mongo.Server, db string, kind Kind, s Searcher) (Result, error) {
	res := Result{Target: kind.Name}
	coll := srv.Collection(db, kind.Collection)

	filter := bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: kind.URLField, Value: bson.D{{Key: "$exists", Value: false}}}},
		bson.D{{Key: kind.URLField, Value: ""}},
	}}}
	cur, err := coll.Find(ctx, filter)
	if err != nil {
		return res, fmt.Errorf("failed to query %s: %w", kind.Collection, err)
	}
	var docs []bson.D
	if err := cur.All(ctx, &docs); err != nil {
		return res, fmt.Errorf("failed to read %s: %w", kind.Collection, err)
	}
	log.Infof("%d documents in %s need %s", len(docs), kind.Collection, kind.URLField)

	for _, doc := range docs {
		if str(doc, kind.URLField) != "" {
			res.Skipped++
			continue
		}
		query := str(doc, kind.QueryField)
		if query == "" {
			res.Skipped++
			log.Warnf("Document %v in %s has no %s", field(doc, "_id"), kind.Collection, kind.QueryField)
			continue
		}

		u, ok := lookup(ctx, s, &res, fmt.Sprintf("'%s'", query), query)
		if !ok {
			continue
		}

		_, err := coll.UpdateOne(ctx,
			bson.D{{Key: "_id", Value: field(doc, "_id")}},
			bson.D{{Key: "$set", Value: bson.D{{Key: kind.URLField, Value: u}}}})
		if err != nil {
			res.Failed++
			log.WithError(err).Errorf("Could not update '%s' in %s", query, kind.Collection)
			continue
		}
		res.Updated++
		log.Infof("Updated '%s' with %s: %s", query, kind.URLField, u)
	}

	res.log()
	return res, nil
}

func field(d bson.D, key string) any {
	for _, e := range d {
		if e.Key == key {
			return e.Value
		}
	}
	return nil
}

func str(d bson.D, key string) string {
	s, _ := field(d, key).(string)
	return s
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
