// Copyright (c) 2026 The skhctl Authors.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package enrich

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/smartkitchen/skhctl/internal/mongo"
	"github.com/smartkitchen/skhctl/internal/mongo/mongotest"
)

func TestEnrichMongoVideos(t *testing.T) {
	srv := mongotest.NewServer()
	coll := srv.C("skh", mongo.RecipesCollection)
	coll.Docs = []bson.D{
		{{Key: "_id", Value: "r1"}, {Key: "recipe_name", Value: "Soup"}},
		{{Key: "_id", Value: "r2"}, {Key: "recipe_name", Value: "Stew"}, {Key: "video_url", Value: "https://youtu.be/old"}},
		{{Key: "_id", Value: "r3"}, {Key: "recipe_name", Value: "Gruel"}},
		{{Key: "_id", Value: "r4"}},
	}

	s := &stubSearcher{urls: map[string]string{"Soup": WatchURL + "soup"}}
	res, err := EnrichMongo(context.Background(), srv, "skh", Videos, s)
	require.NoError(t, err)
	assert.Equal(t, Result{Target: "videos", Updated: 1, Missing: 1, Skipped: 2}, res)

	assert.Equal(t, WatchURL+"soup", mongotest.Get(coll.Docs[0], "video_url"))
	assert.Equal(t, "https://youtu.be/old", mongotest.Get(coll.Docs[1], "video_url"))
	assert.Nil(t, mongotest.Get(coll.Docs[2], "video_url"))
	assert.Equal(t, 2, s.calls)
}

func TestEnrichMongoImagesFailures(t *testing.T) {
	srv := mongotest.NewServer()
	coll := srv.C("skh", mongo.IngredientsCollection)
	coll.Docs = []bson.D{
		{{Key: "_id", Value: "i1"}, {Key: "name", Value: "salt"}, {Key: "image_url", Value: ""}},
	}

	res, err := EnrichMongo(context.Background(), srv, "skh", Images, &stubSearcher{err: ErrQuotaExceeded})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)

	coll.UpdateErr = errors.New("write concern")
	res, err = EnrichMongo(context.Background(), srv, "skh", Images, &stubSearcher{urls: map[string]string{"salt": "u"}})
	require.NoError(t, err)
	assert.Equal(t, Result{Target: "images", Failed: 1}, res)
}

const ingredientsJSON = `[
  {"name": "salt", "category": "Spice", "value": 1.5, "image_url": "https://images.unsplash.com/salt"},
  {"name": "milk", "category": "Dairy", "value": 2.5, "image_url": "https://cdn.example/placeholder.png"},
  {"name": "rock", "category": "Mineral", "value": 0.5},
  {"name": "basil", "category": "Herb", "value": 3.5}
]`

func TestEnrichFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "ingredients.json")
	require.NoError(t, os.WriteFile(p, []byte(ingredientsJSON), 0o600))

	s := &stubSearcher{urls: map[string]string{
		"milk":  "https://images.unsplash.com/milk",
		"basil": "https://google.example/basil.png",
	}}
	res, err := EnrichFile(context.Background(), p, Images, s, FileOptions{})
	require.NoError(t, err)
	assert.Equal(t, Result{Target: "images", Updated: 2, Missing: 1, Skipped: 1}, res)

	data, err := os.ReadFile(p)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "\n    {\n        \"name\": \"salt\"")
	assert.Equal(t, "https://images.unsplash.com/salt", gjson.Get(out, "0.image_url").String())
	assert.Equal(t, "https://images.unsplash.com/milk", gjson.Get(out, "1.image_url").String())
	assert.False(t, gjson.Get(out, "2.image_url").Exists())
	assert.Equal(t, "https://google.example/basil.png", gjson.Get(out, "3.image_url").String())
	assert.Equal(t, 3.5, gjson.Get(out, "3.value").Float())

	fi, err := os.Stat(p)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())
}

func TestEnrichFileDryRun(t *testing.T) {
	p := filepath.Join(t.TempDir(), "ingredients.json")
	require.NoError(t, os.WriteFile(p, []byte(ingredientsJSON), 0o600))

	var buf bytes.Buffer
	s := &stubSearcher{urls: map[string]string{"rock": "https://images.unsplash.com/rock"}}
	res, err := EnrichFile(context.Background(), p, Images, s, FileOptions{DryRun: true, Out: &buf})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Updated)
	assert.Contains(t, buf.String(), "https://images.unsplash.com/rock")

	data, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, ingredientsJSON, string(data), "dry run leaves the file alone")
}

func TestEnrichFileVideos(t *testing.T) {
	p := filepath.Join(t.TempDir(), "recipes.json")
	require.NoError(t, os.WriteFile(p, []byte(`[{"recipe_name":"Soup"},{"recipe_name":"Stew","video_url":"x"}]`), 0o644))

	res, err := EnrichFile(context.Background(), p, Videos, &stubSearcher{urls: map[string]string{"Soup": WatchURL + "s"}}, FileOptions{})
	require.NoError(t, err)
	assert.Equal(t, Result{Target: "videos", Updated: 1, Skipped: 1}, res)
}

func TestEnrichFileRejectsObject(t *testing.T) {
	p := filepath.Join(t.TempDir(), "one.json")
	require.NoError(t, os.WriteFile(p, []byte(`{"name":"salt"}`), 0o644))
	_, err := EnrichFile(context.Background(), p, Images, &stubSearcher{}, FileOptions{})
	assert.ErrorContains(t, err, "array")
}

func TestIsSearchURL(t *testing.T) {
	assert.True(t, IsSearchURL("https://images.UNSPLASH.com/x"))
	assert.True(t, IsSearchURL("https://lh3.googleusercontent.com/x"))
	assert.False(t, IsSearchURL("https://cdn.example/x.png"))
	assert.False(t, IsSearchURL(""))
}
