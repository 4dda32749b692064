// Copyright (c) 2026 The skhctl Authors.
// SPDX-License-Identifier: Apache-2.0

package pg

// Statement is one named DDL statement.
type Statement struct {
	Name string
	SQL  string
}

// Table names a table and its serial primary key.
type Table struct {
	Name       string
	PrimaryKey string
}

// Tables lists every table in creation order, parents before children.
var Tables = []Table{
	{"users", "user_id"},
	{"households", "household_id"},
	{"household_users", "household_user_id"},
	{"ingredient_categories", "category_id"},
	{"ingredients", "ingredient_id"},
	{"stores", "store_id"},
	{"ingredient_prices", "price_id"},
	{"household_ingredients", "household_ingredient_id"},
	{"recipes", "recipe_id"},
	{"recipe_ingredients", "recipe_ingredient_id"},
	{"user_recipe_history", "history_id"},
	{"user_ratings", "rating_id"},
}

// LookupTable returns the table named name.
func LookupTable(name string) (Table, bool) {
	for _, t := range Tables {
		if t.Name == name {
			return t, true
		}
	}
	return Table{}, false
}

// Schema is every statement ApplySchema runs, in order. Each one is safe to
// re-run.
var Schema = append(append(append(tableStatements, indexStatements...), functionStatements...), triggerStatements...)

var tableStatements = []Statement{
	{"table users", `
CREATE TABLE IF NOT EXISTS users (
    user_id SERIAL PRIMARY KEY,
    username VARCHAR(50) UNIQUE NOT NULL,
    email VARCHAR(255) UNIQUE NOT NULL CHECK (email LIKE '%@%.%'),
    password_hash TEXT NOT NULL,
    role VARCHAR(20) NOT NULL CHECK (role IN ('Admin', 'Owner', 'Member', 'Guest')),
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
)`},
	{"table households", `
CREATE TABLE IF NOT EXISTS households (
    household_id SERIAL PRIMARY KEY,
    household_name VARCHAR(100) UNIQUE NOT NULL,
    address TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
)`},
	{"table household_users", `
CREATE TABLE IF NOT EXISTS household_users (
    household_user_id SERIAL PRIMARY KEY,
    household_id INTEGER NOT NULL REFERENCES households(household_id),
    user_id INTEGER NOT NULL REFERENCES users(user_id),
    role VARCHAR(20) DEFAULT 'member'
)`},
	{"table ingredient_categories", `
CREATE TABLE IF NOT EXISTS ingredient_categories (
    category_id SERIAL PRIMARY KEY,
    category_name VARCHAR(100) UNIQUE NOT NULL
)`},
	{"table ingredients", `
CREATE TABLE IF NOT EXISTS ingredients (
    ingredient_id SERIAL PRIMARY KEY,
    name VARCHAR(100) NOT NULL,
    category_id INTEGER REFERENCES ingredient_categories(category_id) ON DELETE SET NULL
)`},
	{"table stores", `
CREATE TABLE IF NOT EXISTS stores (
    store_id SERIAL PRIMARY KEY,
    store_name VARCHAR(100) NOT NULL,
    address TEXT NOT NULL,
    rating DECIMAL(2,1) CHECK (rating >= 0 AND rating <= 5),
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
)`},
	{"table ingredient_prices", `
CREATE TABLE IF NOT EXISTS ingredient_prices (
    price_id SERIAL PRIMARY KEY,
    ingredient_id INTEGER NOT NULL REFERENCES ingredients(ingredient_id),
    store_id INTEGER NOT NULL REFERENCES stores(store_id),
    price DECIMAL(10,2) NOT NULL CHECK (price >= 0),
    unit VARCHAR(50) NOT NULL,
    last_updated TIMESTAMP DEFAULT CURRENT_TIMESTAMP
)`},
	{"table household_ingredients", `
CREATE TABLE IF NOT EXISTS household_ingredients (
    household_ingredient_id SERIAL PRIMARY KEY,
    household_id INTEGER NOT NULL REFERENCES households(household_id),
    ingredient_id INTEGER NOT NULL REFERENCES ingredients(ingredient_id),
    quantity DECIMAL(10,2) NOT NULL CHECK (quantity >= 0),
    unit VARCHAR(50) NOT NULL,
    expiration_date DATE CHECK (expiration_date > CURRENT_DATE),
    is_expired BOOLEAN DEFAULT FALSE
)`},
	{"table recipes", `
CREATE TABLE IF NOT EXISTS recipes (
    recipe_id SERIAL PRIMARY KEY,
    recipe_name VARCHAR(100) NOT NULL,
    cuisine VARCHAR(50),
    preparation_time INTEGER CHECK (preparation_time >= 0),
    system_rating DECIMAL(2,1) CHECK (system_rating >= 0 AND system_rating <= 5),
    is_rated BOOLEAN DEFAULT FALSE,
    expiration_date DATE CHECK (expiration_date > CURRENT_DATE),
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
)`},
	{"table recipe_ingredients", `
CREATE TABLE IF NOT EXISTS recipe_ingredients (
    recipe_ingredient_id SERIAL PRIMARY KEY,
    recipe_id INTEGER NOT NULL REFERENCES recipes(recipe_id),
    ingredient_id INTEGER NOT NULL REFERENCES ingredients(ingredient_id),
    quantity DECIMAL(10,2) NOT NULL CHECK (quantity >= 0),
    unit VARCHAR(50) NOT NULL
)`},
	{"table user_recipe_history", `
CREATE TABLE IF NOT EXISTS user_recipe_history (
    history_id SERIAL PRIMARY KEY,
    user_id INTEGER NOT NULL REFERENCES users(user_id),
    recipe_id INTEGER NOT NULL REFERENCES recipes(recipe_id),
    cooked_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
)`},
	{"table user_ratings", `
CREATE TABLE IF NOT EXISTS user_ratings (
    rating_id SERIAL PRIMARY KEY,
    user_id INTEGER NOT NULL REFERENCES users(user_id),
    recipe_id INTEGER NOT NULL REFERENCES recipes(recipe_id),
    rating DECIMAL(2,1) CHECK (rating >= 0 AND rating <= 5),
    review TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
)`},
}

var indexStatements = []Statement{
	{"index household_users(household_id)", `CREATE INDEX IF NOT EXISTS idx_household_users_household_id ON household_users (household_id)`},
	{"index household_users(user_id)", `CREATE INDEX IF NOT EXISTS idx_household_users_user_id ON household_users (user_id)`},
	{"index ingredients(category_id)", `CREATE INDEX IF NOT EXISTS idx_ingredients_category_id ON ingredients (category_id)`},
	{"index ingredients(name)", `CREATE INDEX IF NOT EXISTS idx_ingredients_name ON ingredients (name)`},
	{"index ingredient_prices(ingredient_id)", `CREATE INDEX IF NOT EXISTS idx_ingredient_prices_ingredient_id ON ingredient_prices (ingredient_id)`},
	{"index ingredient_prices(store_id)", `CREATE INDEX IF NOT EXISTS idx_ingredient_prices_store_id ON ingredient_prices (store_id)`},
	{"index household_ingredients(household_id)", `CREATE INDEX IF NOT EXISTS idx_household_ingredients_household_id ON household_ingredients (household_id)`},
	{"index household_ingredients(ingredient_id)", `CREATE INDEX IF NOT EXISTS idx_household_ingredients_ingredient_id ON household_ingredients (ingredient_id)`},
	{"index recipes(recipe_name)", `CREATE INDEX IF NOT EXISTS idx_recipes_recipe_name ON recipes (recipe_name)`},
	{"index recipe_ingredients(recipe_id)", `CREATE INDEX IF NOT EXISTS idx_recipe_ingredients_recipe_id ON recipe_ingredients (recipe_id)`},
	{"index recipe_ingredients(ingredient_id)", `CREATE INDEX IF NOT EXISTS idx_recipe_ingredients_ingredient_id ON recipe_ingredients (ingredient_id)`},
	{"index user_recipe_history(user_id)", `CREATE INDEX IF NOT EXISTS idx_user_recipe_history_user_id ON user_recipe_history (user_id)`},
	{"index user_recipe_history(recipe_id)", `CREATE INDEX IF NOT EXISTS idx_user_recipe_history_recipe_id ON user_recipe_history (recipe_id)`},
	{"index user_ratings(user_id)", `CREATE INDEX IF NOT EXISTS idx_user_ratings_user_id ON user_ratings (user_id)`},
	{"index user_ratings(recipe_id)", `CREATE INDEX IF NOT EXISTS idx_user_ratings_recipe_id ON user_ratings (recipe_id)`},
}

var functionStatements = []Statement{
	{"function set_updated_at", `
CREATE OR REPLACE FUNCTION set_updated_at() RETURNS TRIGGER AS $$
BEGIN
    NEW.updated_at := CURRENT_TIMESTAMP;
    RETURN NEW;
END;
$$ LANGUAGE plpgsql`},
	// A recipe whose expiration_date has passed fails its CHECK on any
	// update, so the recompute downgrades that to a warning instead of
	// rejecting the rating.
	{"function recompute_recipe_rating", `
CREATE OR REPLACE FUNCTION recompute_recipe_rating(target INTEGER) RETURNS VOID AS $$
BEGIN
    UPDATE recipes
       SET system_rating = (SELECT ROUND(AVG(rating), 1) FROM user_ratings WHERE recipe_id = target),
           is_rated = EXISTS (SELECT 1 FROM user_ratings WHERE recipe_id = target AND rating IS NOT NULL)
     WHERE recipe_id = target;
EXCEPTION WHEN check_violation THEN
    RAISE WARNING 'rating for recipe % not refreshed: %', target, SQLERRM;
END;
$$ LANGUAGE plpgsql`},
	{"function refresh_recipe_rating", `
CREATE OR REPLACE FUNCTION refresh_recipe_rating() RETURNS TRIGGER AS $$
BEGIN
    IF TG_OP IN ('UPDATE', 'DELETE') THEN
        PERFORM recompute_recipe_rating(OLD.recipe_id);
    END IF;
    IF TG_OP IN ('INSERT', 'UPDATE') THEN
        PERFORM recompute_recipe_rating(NEW.recipe_id);
    END IF;
    RETURN NULL;
END;
$$ LANGUAGE plpgsql`},
}

var triggerStatements = []Statement{
	{"drop trigger users_set_updated_at", `DROP TRIGGER IF EXISTS users_set_updated_at ON users`},
	{"trigger users_set_updated_at", `
CREATE TRIGGER users_set_updated_at
    BEFORE UPDATE ON users
    FOR EACH ROW EXECUTE FUNCTION set_updated_at()`},
	{"drop trigger households_set_updated_at", `DROP TRIGGER IF EXISTS households_set_updated_at ON households`},
	{"trigger households_set_updated_at", `
CREATE TRIGGER households_set_updated_at
    BEFORE UPDATE ON households
    FOR EACH ROW EXECUTE FUNCTION set_updated_at()`},
	{"drop trigger user_ratings_refresh_recipe_rating", `DROP TRIGGER IF EXISTS user_ratings_refresh_recipe_rating ON user_ratings`},
	{"trigger user_ratings_refresh_recipe_rating", `
CREATE TRIGGER user_ratings_refresh_recipe_rating
    AFTER INSERT OR UPDATE OR DELETE ON user_ratings
    FOR EACH ROW EXECUTE FUNCTION refresh_recipe_rating()`},
}
