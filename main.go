// Copyright (c) 2026 The skhctl Authors.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	shlex "github.com/anmitsu/go-shlex"

	"github.com/smartkitchen/skhctl/internal/command"
	"github.com/smartkitchen/skhctl/internal/config"
	"github.com/smartkitchen/skhctl/internal/log"
	"github.com/smartkitchen/skhctl/internal/version"
)

var ctx = context.Background()

func main() {
	os.Exit(realMain())
}

// handleVersion checks for --version/-v and returns whether it was handled.
func handleVersion(args []string) bool {
	for _, a := range args {
		if a == "--version" || a == "-v" {
			fmt.Println(version.String())
			return true
		}
	}
	return false
}

// handleNakedCommand appends --help if no command is provided.
func handleNakedCommand(args []string) []string {
	if len(args) <= 1 {
		return append(args, "--help")
	}
	return args
}

// injectConfigSet replaces an @name argument with the entries of the
// "<command>.<name>" string list from the config file. Each entry may hold
// several words, e.g. "--output json".
func injectConfigSet(args []string, lookup func(key string) []string) []string {
	if len(args) < 2 {
		return args
	}
	idx := slices.IndexFunc(args[1:], func(a string) bool {
		return strings.HasPrefix(a, "@")
	})
	if idx < 0 {
		return args
	}
	idx++

	key := args[1] + "." + args[idx][1:]
	var expanded []string
	for _, entry := range lookup(key) {
		expanded = append(expanded, splitFields(entry)...)
	}
	log.Debugf("expanded %s: %v", key, expanded)

	out := append([]string{}, args[:idx]...)
	out = append(out, expanded...)
	return append(out, args[idx+1:]...)
}

// splitFields splits a config set entry into words with shell quoting rules.
// An entry that does not parse, e.g. an unclosed quote, splits on whitespace.
func splitFields(s string) []string {
	words, err := shlex.Split(s, true)
	if err != nil {
		log.Warnf("config set entry %q: %v", s, err)
		return strings.Fields(s)
	}
	return words
}

// deduplicateFlags keeps only the last occurrence of each flag so that flags
// typed on the command line override those injected from a config set. A
// flag followed by a non-flag word takes it as its value.
func deduplicateFlags(args []string) []string {
	if len(args) <= 2 {
		return args
	}

	var groups [][]string
	var names []string
	for i := 1; i < len(args); i++ {
		a := args[i]
		if !strings.HasPrefix(a, "-") || a == "-" {
			groups = append(groups, []string{a})
			names = append(names, "")
			continue
		}
		name := strings.TrimLeft(a, "-")
		if k := strings.IndexByte(name, '='); k >= 0 {
			groups = append(groups, []string{a})
			names = append(names, name[:k])
			continue
		}
		g := []string{a}
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			g = append(g, args[i+1])
			i++
		}
		groups = append(groups, g)
		names = append(names, name)
	}

	last := map[string]int{}
	for j, n := range names {
		if n != "" {
			last[n] = j
		}
	}

	out := []string{args[0]}
	for j, g := range groups {
		if names[j] != "" && last[names[j]] != j {
			continue
		}
		out = append(out, g...)
	}
	return out
}

// configSet reads a string list from the config file.
func configSet(key string) []string {
	v, err := config.GetStringSlice(key)
	if err != nil {
		log.Debugf("config set %s: %v", key, err)
	}
	return v
}

// initAndRunApp initializes the app and runs it, returning the exit code.
func initAndRunApp(args []string) int {
	app, err := command.InitApp(ctx, args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		log.Debugf("app init err: err=%v", err)
		return 1
	}

	if err := app.Run(ctx, args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		log.Debugf("app run err: err=%v", err)
		return 2
	}

	return 0
}

func realMain() int {
	// .env values win over the inherited environment, so they are loaded
	// before anything reads it, the logger included.
	if err := config.LoadDotEnv(config.DefaultEnvFile); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	log.InitLogger()

	args := os.Args
	log.Debugf("args captured: args=%v", args)

	if handleVersion(args) {
		return 0
	}

	args = handleNakedCommand(args)

	// If --help appears anywhere, skip arg processing and let the CLI handle it.
	if !slices.Contains(args, "--help") && !slices.Contains(args, "-h") {
		args = deduplicateFlags(injectConfigSet(args, configSet))
		log.Debugf("args after set processing: args=%v", args)
	}

	return initAndRunApp(args)
}
