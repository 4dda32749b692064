// Copyright (c) 2026 The skhctl Authors.
// SPDX-License-Identifier: Apache-2.0

package seed

// Lookup resolves a CSV column holding a natural key (a name) to the id of
// the referenced row. The id is inserted into ID, the referenced table's
// primary key column, which is also the foreign key column name.
type Lookup struct {
	Column string
	Table  string
	Key    string
	ID     string
}

var (
	byUsername   = Lookup{"username", "users", "username", "user_id"}
	byHousehold  = Lookup{"household_name", "households", "household_name", "household_id"}
	byCategory   = Lookup{"category_name", "ingredient_categories", "category_name", "category_id"}
	byIngredient = Lookup{"ingredient_name", "ingredients", "name", "ingredient_id"}
	byStore      = Lookup{"store_name", "stores", "store_name", "store_id"}
	byRecipe     = Lookup{"recipe_name", "recipes", "recipe_name", "recipe_id"}
)

// Lookups lists, per table, the CSV columns resolved by name.
var Lookups = map[string][]Lookup{
	"household_users":       {byHousehold, byUsername},
	"ingredients":           {byCategory},
	"ingredient_prices":     {byIngredient, byStore},
	"household_ingredients": {byHousehold, byIngredient},
	"recipe_ingredients":    {byRecipe, byIngredient},
	"user_recipe_history":   {byUsername, byRecipe},
	"user_ratings":          {byUsername, byRecipe},
}

func lookupFor(table, column string) (Lookup, bool) {
	for _, l := range Lookups[table] {
		if l.Column == column {
			return l, true
		}
	}
	return Lookup{}, false
}
