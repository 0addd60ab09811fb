package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/urfave/cli/v3"

	"github.com/e-schultz/floativerse/internal/docctx"
	"github.com/e-schultz/floativerse/internal/editorservice"
	"github.com/e-schultz/floativerse/internal/textedit"
)

func formatCommand() *cli.Command {
	return &cli.Command{
		Name:      "format",
		Usage:     "Apply a Markdown format to a range of a file (offsets in UTF-16 code units)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "File to edit", Required: true},
			&cli.StringFlag{Name: "format", Usage: "bold, italic, underline, code, link, image, bullet, number, h1..h6", Required: true},
			&cli.IntFlag{Name: "start", Usage: "Selection start"},
			&cli.IntFlag{Name: "end", Usage: "Selection end"},
			&cli.BoolFlag{Name: "diff", Usage: "Print a unified diff instead of the result"},
			&cli.BoolFlag{Name: "write", Aliases: []string{"w"}, Usage: "Write the result back to the file"},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			path := cmd.String("file")
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			sel := textedit.Selection{Start: int(cmd.Int("start")), End: int(cmd.Int("end"))}
			edit, err := editorservice.New(nil, nil).Format(string(data), sel, cmd.String("format"))
			if err != nil {
				return err
			}

			if cmd.Bool("write") && edit.Changed {
				if err := os.WriteFile(path, []byte(edit.Text), 0o644); err != nil {
					return err
				}
			}
			if cmd.Bool("diff") {
				return writeDiff(cmd.Root().Writer, path, string(data), edit.Text)
			}
			if !cmd.Bool("write") {
				_, err = io.WriteString(cmd.Root().Writer, edit.Text)
			}
			return err
		},
	}
}

func writeDiff(w io.Writer, name, before, after string) error {
	s, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: "a/" + name,
		ToFile:   "b/" + name,
		Context:  3,
	})
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, s)
	return err
}

func contextCommand() *cli.Command {
	return &cli.Command{
		Name:  "context",
		Usage: "Print the prompt built from a query that references headings of a file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "Markdown document", Required: true},
			&cli.StringFlag{Name: "query", Aliases: []string{"q"}, Usage: "Query, e.g. \"summarize h2\"", Required: true},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			data, err := os.ReadFile(cmd.String("file"))
			if err != nil {
				return err
			}
			res := docctx.Extract(string(data), cmd.String("query"))
			w := cmd.Root().Writer
			if s := res.Summary(); s != "" {
				fmt.Fprintln(w, s)
				fmt.Fprintln(w)
			}
			_, err = fmt.Fprintln(w, res.Prompt)
			return err
		},
	}
}
