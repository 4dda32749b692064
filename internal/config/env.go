// Copyright (c) 2026 The skhctl Authors.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/apex/log"
	"github.com/joho/godotenv"
)

// Default connection URI templates. Placeholders use {name} syntax.
const (
	DefaultPostgresURITemplate = "postgres://{username}:{password}@{host}:{port}/{dbname}"
	DefaultMongoURITemplate    = "mongodb://{username}:{password}@{host}/{dbname}?authSource=admin"
)

// DefaultEnvFile is the dotenv file read at startup and updated after
// provisioning.
const DefaultEnvFile = ".env"

var placeholderRE = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// LoadDotEnv loads path into the process environment, overriding variables
// that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = DefaultEnvFile
	}
	err := godotenv.Overload(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Debugf("no dotenv file at %s", path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	log.Debugf("loaded dotenv file %s", path)
	return nil
}

// SetEnvKey sets key=value in the dotenv file at path, keeping every other
// entry. The file is created when it does not exist. The process environment
// is updated too so later stages in the same run see the new value.
func SetEnvKey(path, key, value string) error {
	if path == "" {
		path = DefaultEnvFile
	}

	env, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		env = map[string]string{}
	} else if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	env[key] = value
	if err := godotenv.Write(env, path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return os.Setenv(key, value)
}

// ExpandURITemplate substitutes {name} placeholders in template with values.
// The password is query-escaped. When username is empty the
// "{username}:{password}@" userinfo segment is dropped so the URI carries no
// credentials. An unknown placeholder is an error.
func ExpandURITemplate(template string, values map[string]string) (string, error) {
	if values["username"] == "" {
		template = strings.Replace(template, "{username}:{password}@", "", 1)
	}

	var missing []string
	out := placeholderRE.ReplaceAllStringFunc(template, func(m string) string {
		name := m[1 : len(m)-1]
		v, ok := values[name]
		if !ok {
			missing = append(missing, name)
			return m
		}
		if name == "password" {
			return url.QueryEscape(v)
		}
		return v
	})

	if len(missing) > 0 {
		return "", fmt.Errorf("uri template has no value for %s", strings.Join(missing, ", "))
	}

	return out, nil
}
