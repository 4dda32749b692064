// Copyright (c) 2026 The skhctl Authors.
// SPDX-License-Identifier: Apache-2.0

package mongo

import "go.mongodb.org/mongo-driver/v2/bson"

// CollectionSpec is a collection and its $jsonSchema validator.
type CollectionSpec struct {
	Name      string
	Validator bson.D
}

// Collection names.
const (
	RecipesCollection         = "recipes_mongo"
	IngredientsCollection     = "ingredients_mongo"
	IngredientUsageCollection = "household_ingredient_usage"
	RecipeRatingsCollection   = "recipe_ratings"
	UserPreferencesCollection = "user_preferences"
)

// Collections is created by Setup in this order.
var Collections = []CollectionSpec{
	{RecipesCollection, jsonSchema(
		[]string{"recipe_name", "ingredients", "steps"},
		bson.D{
			{Key: "recipe_name", Value: typed("string")},
			{Key: "cuisine", Value: typed("string")},
			{Key: "preparation_time", Value: ranged("int", 0, -1)},
			{Key: "system_rating", Value: ranged("double", 0, 5)},
			{Key: "is_rated", Value: typed("bool")},
			{Key: "expiration_date", Value: typed("date")},
			{Key: "ingredients", Value: arrayOf(object(
				[]string{"ingredient_id", "name", "quantity", "unit"},
				bson.D{
					{Key: "ingredient_id", Value: typed("objectId")},
					{Key: "name", Value: typed("string")},
					{Key: "quantity", Value: ranged("double", 0, -1)},
					{Key: "unit", Value: typed("string")},
				},
			))},
			{Key: "steps", Value: arrayOf(typed("string"))},
			{Key: "images", Value: arrayOf(typed("string"))},
			{Key: "video_url", Value: typed("string")},
			{Key: "ratings", Value: arrayOf(object(
				[]string{"user_id", "rating"},
				bson.D{
					{Key: "user_id", Value: typed("objectId")},
					{Key: "rating", Value: ranged("double", 0, 5)},
					{Key: "review", Value: typed("string")},
				},
			))},
		},
	)},
	{IngredientsCollection, jsonSchema(
		[]string{"name", "category", "unit", "value"},
		bson.D{
			{Key: "name", Value: typed("string")},
			{Key: "category", Value: typed("string")},
			{Key: "unit", Value: typed("string")},
			{Key: "value", Value: ranged("double", 0, -1)},
			{Key: "image_url", Value: typed("string")},
			{Key: "nutritional_info", Value: object(nil, bson.D{
				{Key: "calories", Value: typed("double")},
				{Key: "protein", Value: typed("string")},
				{Key: "fat", Value: typed("string")},
				{Key: "carbohydrates", Value: typed("string")},
			})},
		},
	)},
	{IngredientUsageCollection, jsonSchema(
		[]string{"household_id", "ingredient_id", "used_quantity", "unit", "used_at"},
		bson.D{
			{Key: "household_id", Value: typed("objectId")},
			{Key: "ingredient_id", Value: typed("objectId")},
			{Key: "used_quantity", Value: ranged("double", 0, -1)},
			{Key: "unit", Value: typed("string")},
			{Key: "used_at", Value: typed("date")},
		},
	)},
	{RecipeRatingsCollection, jsonSchema(
		[]string{"user_id", "recipe_id", "rating"},
		bson.D{
			{Key: "user_id", Value: typed("objectId")},
			{Key: "recipe_id", Value: typed("objectId")},
			{Key: "rating", Value: ranged("double", 0, 5)},
			{Key: "review", Value: typed("string")},
		},
	)},
	{UserPreferencesCollection, jsonSchema(
		[]string{"user_id"},
		bson.D{
			{Key: "user_id", Value: typed("objectId")},
			{Key: "dietary_restrictions", Value: arrayOf(typed("string"))},
			{Key: "preferred_cuisines", Value: arrayOf(typed("string"))},
		},
	)},
}

// LookupCollection returns the collection definition for name.
func LookupCollection(name string) (CollectionSpec, bool) {
	for _, c := range Collections {
		if c.Name == name {
			return c, true
		}
	}
	return CollectionSpec{}, false
}

func jsonSchema(required []string, props bson.D) bson.D {
	return bson.D{{Key: "$jsonSchema", Value: object(required, props)}}
}

func object(required []string, props bson.D) bson.D {
	d := bson.D{{Key: "bsonType", Value: "object"}}
	if len(required) > 0 {
		d = append(d, bson.E{Key: "required", Value: required})
	}
	return append(d, bson.E{Key: "properties", Value: props})
}

func typed(bsonType string) bson.D {
	return bson.D{{Key: "bsonType", Value: bsonType}}
}

// ranged adds minimum and, when max is not negative, maximum.
func ranged(bsonType string, lo, hi int) bson.D {
	d := append(typed(bsonType), bson.E{Key: "minimum", Value: lo})
	if hi >= 0 {
		d = append(d, bson.E{Key: "maximum", Value: hi})
	}
	return d
}

func arrayOf(items bson.D) bson.D {
	return bson.D{{Key: "bsonType", Value: "array"}, {Key: "items", Value: items}}
}
