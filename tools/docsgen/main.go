// Copyright (c) 2026 The skhctl Authors.
// SPDX-License-Identifier: Apache-2.0

// docsgen writes one markdown page per leaf command, built from the live
// command tree so flags and env vars never drift from the code.
//
//	go run ./tools/docsgen docs
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/smartkitchen/skhctl/internal/command"
	"github.com/smartkitchen/skhctl/internal/version"
)

type Flag struct {
	ID          string   `yaml:"id"`
	Syntax      string   `yaml:"syntax"`
	Description string   `yaml:"description"`
	Default     string   `yaml:"default,omitempty"`
	Env         []string `yaml:"env,omitempty"`
}

type Subcommand struct {
	ID          string `yaml:"id"`
	Path        string `yaml:"path"`
	Short       string `yaml:"short"`
	Usage       string `yaml:"usage"`
	Flags       []Flag `yaml:"flags"`
	Date        string `yaml:"-"`
	Version     string `yaml:"-"`
	Description string `yaml:"description,omitempty"`
}

const pageTemplate = `# skhctl {{.Path}}

{{.Short}}

    {{.Usage}}

## Options

| Flag | Env | Default | Description |
| ---- | --- | ------- | ----------- |
{{- range .Flags}}
| ` + "`{{.Syntax}}`" + ` | {{join .Env ", "}} | {{.Default}} | {{.Description}} |
{{- end}}

Values are taken from the flag, then the env var, then the config file
(` + "`{{.ID}}`" + ` namespace first, then the global key), then the default.

_Generated {{.Date}} for {{.Version}}._
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: docsgen <docs-dir>")
		os.Exit(1)
	}
	docs := os.Args[1]

	app, err := command.InitApp(context.Background(), []string{"skhctl"})
	if err != nil {
		panic(err)
	}

	subs := collect("", app.Commands)

	tmpl := template.Must(template.New("page").Funcs(template.FuncMap{
		"join": strings.Join,
	}).Parse(pageTemplate))

	folder := filepath.Join(docs, "commands")
	if err := os.MkdirAll(folder, 0o755); err != nil {
		panic(err)
	}

	for _, sub := range subs {
		name := filepath.Join(folder, strings.ReplaceAll(sub.Path, " ", "-")+".md")
		fmt.Println("Generating", name)
		file, err := os.Create(name)
		if err != nil {
			panic(err)
		}
		if err := tmpl.Execute(file, sub); err != nil {
			panic(err)
		}
		file.Close()
	}

	// The index is machine readable so other tooling can list the commands.
	index, err := yaml.Marshal(map[string][]Subcommand{"subcommands": subs})
	if err != nil {
		panic(err)
	}
	if err := os.WriteFile(filepath.Join(folder, "index.yaml"), index, 0o644); err != nil {
		panic(err)
	}
}

// collect walks the tree and returns every leaf command.
func collect(prefix string, cmds []*cli.Command) []Subcommand {
	var out []Subcommand
	for _, c := range cmds {
		path := strings.TrimSpace(prefix + " " + c.Name)
		if len(c.Commands) > 0 {
			out = append(out, collect(path, c.Commands)...)
			continue
		}

		sub := Subcommand{
			ID:      strings.Fields(path)[0],
			Path:    path,
			Short:   c.Usage,
			Usage:   c.UsageText,
			Date:    time.Now().Format("January 2, 2006"),
			Version: version.String(),
		}
		for _, f := range c.Flags {
			sub.Flags = append(sub.Flags, describe(f))
		}
		sort.Slice(sub.Flags, func(i, j int) bool {
			return sub.Flags[i].ID < sub.Flags[j].ID
		})
		out = append(out, sub)
	}
	return out
}

func describe(f cli.Flag) Flag {
	names := f.Names()
	var syntax []string
	for _, n := range names {
		if len(n) == 1 {
			syntax = append(syntax, "-"+n)
		} else {
			syntax = append(syntax, "--"+n)
		}
	}

	out := Flag{ID: names[0], Syntax: strings.Join(syntax, ", ")}
	if df, ok := f.(cli.DocGenerationFlag); ok {
		out.Description = df.GetUsage()
		out.Env = df.GetEnvVars()
		if df.TakesValue() {
			out.Default = df.GetDefaultText()
		}
	}
	return out
}
