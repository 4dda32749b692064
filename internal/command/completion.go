// Copyright (c) 2026 The skhctl Authors.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/smartkitchen/skhctl/internal/meta"
	"github.com/smartkitchen/skhctl/internal/provision"
)

const bashCompletionScript = `# bash completion for skhctl
_skhctl()
{
    local cur prev words
    COMPREPLY=()
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}

    case "$prev" in
    --output|-o)
        COMPREPLY=( $(compgen -W "text json yaml" -- "$cur") )
        return 0
        ;;
    --skip)
        if [[ ${COMP_WORDS[1]} == all ]]; then
            COMPREPLY=( $(compgen -W "{{stages}}" -- "$cur") )
        else
            COMPREPLY=( $(compgen -W "{{steps}}" -- "$cur") )
        fi
        return 0
        ;;
    --skip-steps)
        COMPREPLY=( $(compgen -W "{{steps}}" -- "$cur") )
        return 0
        ;;
    --csv-dir|--json-dir)
        COMPREPLY=( $(compgen -o dirnames -- "$cur") )
        return 0
        ;;
    --file|-f|--state|--env-file)
        COMPREPLY=( $(compgen -f -- "$cur") )
        return 0
        ;;
    esac

    case "${COMP_WORDS[1]}" in
{{cases}}    *)
        words="{{commands}} --help --version"
        ;;
    esac

    COMPREPLY=( $(compgen -W "$words" -- "$cur") )
    return 0
}

complete -F _skhctl skhctl
`

const zshCompletionScript = `#compdef skhctl

_skhctl() {
  local -a cmds
  cmds=(
{{described}}  )

  if (( CURRENT == 2 )); then
    _describe -t commands 'skhctl commands' cmds
    return
  fi

  local -a words_
  case $words[2] in
{{zcases}}  esac
  compadd -- $words_
}

if ! typeset -f compdef >/dev/null 2>&1; then
  autoload -Uz compinit && compinit -i
fi
compdef _skhctl skhctl
`

// completionWords maps each command path ("aws", "aws up") to the words
// that may follow it.
func completionWords(cmds []*cli.Command) map[string][]string {
	words := map[string][]string{}
	var walk func(prefix string, c *cli.Command)
	walk = func(prefix string, c *cli.Command) {
		path := strings.TrimSpace(prefix + " " + c.Name)
		var w []string
		for _, sub := range c.Commands {
			w = append(w, sub.Name)
			walk(path, sub)
		}
		for _, f := range c.Flags {
			for _, n := range f.Names() {
				if len(n) == 1 {
					w = append(w, "-"+n)
				} else {
					w = append(w, "--"+n)
				}
			}
		}
		words[path] = w
	}
	for _, c := range cmds {
		if c.Name != "completion" {
			walk("", c)
		}
	}
	return words
}

// renderCompletion fills a script template from the live command tree so the
// scripts never drift from the flags.
func renderCompletion(script string, root *cli.Command, stages, steps []string) string {
	words := completionWords(root.Commands)
	paths := make([]string, 0, len(words))
	for p := range words {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var names, cases, zcases, described strings.Builder
	for _, c := range root.Commands {
		fmt.Fprintf(&names, "%s ", c.Name)
		fmt.Fprintf(&described, "    '%s:%s'\n", c.Name, c.Usage)
	}
	for _, p := range paths {
		parts := strings.Fields(p)
		if len(parts) > 1 {
			continue
		}
		subs := []string{}
		for _, q := range paths {
			if strings.HasPrefix(q, p+" ") {
				subs = append(subs, q)
			}
		}
		if len(subs) == 0 {
			fmt.Fprintf(&cases, "    %s)\n        words=\"%s\"\n        ;;\n", p, strings.Join(words[p], " "))
			fmt.Fprintf(&zcases, "    %s) words_=(%s) ;;\n", p, strings.Join(words[p], " "))
			continue
		}
		// Group: complete the subcommand first, then its flags.
		fmt.Fprintf(&cases, "    %s)\n        case \"${COMP_WORDS[2]}\" in\n", p)
		fmt.Fprintf(&zcases, "    %s)\n      case $words[3] in\n", p)
		for _, q := range subs {
			leaf := strings.Fields(q)[1]
			fmt.Fprintf(&cases, "        %s) words=\"%s\" ;;\n", leaf, strings.Join(words[q], " "))
			fmt.Fprintf(&zcases, "        %s) words_=(%s) ;;\n", leaf, strings.Join(words[q], " "))
		}
		fmt.Fprintf(&cases, "        *) words=\"%s\" ;;\n        esac\n        ;;\n", strings.Join(words[p], " "))
		fmt.Fprintf(&zcases, "        *) words_=(%s) ;;\n      esac\n      ;;\n", strings.Join(words[p], " "))
	}

	r := strings.NewReplacer(
		"{{commands}}", strings.TrimSpace(names.String()),
		"{{cases}}", cases.String(),
		"{{zcases}}", zcases.String(),
		"{{described}}", described.String(),
		"{{stages}}", strings.Join(stages, " "),
		"{{steps}}", strings.Join(steps, " "),
	)
	return r.Replace(script)
}

func completionCommandAction(ctx context.Context, cmd *cli.Command) error {
	shell := ""
	if args := cmd.Args().Slice(); len(args) > 0 {
		shell = args[0]
	}
	if shell == "" {
		// Try to detect from SHELL.
		sh := os.Getenv("SHELL")
		switch {
		case strings.HasSuffix(sh, "zsh"):
			shell = "zsh"
		case strings.HasSuffix(sh, "bash"):
			shell = "bash"
		}
	}

	w := cmd.Root().Writer
	switch shell {
	case "bash":
		fmt.Fprint(w, renderCompletion(bashCompletionScript, cmd.Root(), StageNames, provision.StepNames))
	case "zsh":
		fmt.Fprint(w, renderCompletion(zshCompletionScript, cmd.Root(), StageNames, provision.StepNames))
	default:
		fmt.Fprintln(cmd.Root().ErrWriter, "usage: skhctl completion [bash|zsh]")
	}
	return nil
}

func completionCommandBuilder(m meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: "skhctl completion [bash|zsh]",
		Metadata: map[string]any{
			"meta": m,
		},
		Action: completionCommandAction,
	}
}
