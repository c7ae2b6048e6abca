package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/glamour"
	"github.com/simontreanor/fsharpstyle"
	"github.com/simontreanor/fsharpstyle/internal/config"
	"github.com/simontreanor/fsharpstyle/internal/watch"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (a *app) tagsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "List the rule tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, t := range fsharpstyle.AllTags() {
				fmt.Fprintf(out, "%-22s %s\n", t, t.Title())
			}
			return nil
		},
	}
}

func (a *app) listCmd() *cobra.Command {
	var tagName string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the rules of the active catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.catalog()
			if err != nil {
				return err
			}
			rules := c.AllRules()
			if tagName != "" {
				tag, err := fsharpstyle.ParseTag(tagName)
				if err != nil {
					return err
				}
				if rules, err = c.RulesByTag(tag); err != nil {
					return err
				}
			}
			out := cmd.OutOrStdout()
			for _, r := range rules {
				fmt.Fprintf(out, "%s\t%s\n", r.Tag(), r.Text())
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&tagName, "tag", "t", "", "only rules with this tag")
	return cmd
}

func (a *app) composeCmd() *cobra.Command {
	var (
		format string
		render bool
	)
	cmd := &cobra.Command{
		Use:   "compose [tag...]",
		Short: "Print the instruction block for the given tags",
		Long: `Prints the rules of each tag, in the order the tags are given, one per
line. Without tags the configured default tags are used.`,
		Example: `  fsharpstyle compose structural-modelling exhaustiveness
  fsharpstyle compose error-handling --format xml
  fsharpstyle compose --render`,
		RunE: func(cmd *cobra.Command, args []string) error {
			tags, err := a.tags(args)
			if err != nil {
				return err
			}
			c, err := a.catalog()
			if err != nil {
				return err
			}
			if format == "" {
				format = a.cfg.Compose.Format
			}
			if render {
				format = "markdown"
			}
			block, err := a.composer(c).Render(format, tags...)
			if err != nil {
				return err
			}
			if render {
				if block, err = renderMarkdown(block); err != nil {
					return err
				}
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), block)
			return err
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: plain, markdown or xml")
	cmd.Flags().BoolVar(&render, "render", false, "render as styled markdown for the terminal")
	cmd.MarkFlagsMutuallyExclusive("format", "render")
	return cmd
}

func (a *app) promptCmd() *cobra.Command {
	var requestPath string
	cmd := &cobra.Command{
		Use:   "prompt [tag...]",
		Short: "Print the instruction block followed by a code-generation request",
		RunE: func(cmd *cobra.Command, args []string) error {
			tags, err := a.tags(args)
			if err != nil {
				return err
			}
			request, err := readInput(cmd, requestPath)
			if err != nil {
				return err
			}
			c, err := a.catalog()
			if err != nil {
				return err
			}
			prompt, err := a.composer(c).Prompt(request, tags...)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), prompt)
			return err
		},
	}
	cmd.Flags().StringVarP(&requestPath, "request", "r", "-", "file holding the request, - for stdin")
	return cmd
}

func (a *app) importCmd() *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "import <file.md>",
		Short: "Convert a markdown list of prompts into a YAML catalog",
		Long: `Reads a markdown document with one heading per tag and the rules as
bullet points, and writes the equivalent YAML catalog to stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			policy := fsharpstyle.UnknownDrop
			if strict {
				policy = fsharpstyle.UnknownFail
			}
			validators := fsharpstyle.NewValidatorRegistry()
			if n := a.cfg.Catalog.MaxRuleLength; n > 0 {
				validators.RegisterAll(fsharpstyle.MaxLength(n))
			}
			c, err := fsharpstyle.NewImporter(
				fsharpstyle.WithUnknownHeadingPolicy(policy),
				fsharpstyle.WithImportValidators(validators),
				fsharpstyle.WithImporterLogger(a.logger),
			).Import(f)
			if err != nil {
				return fmt.Errorf("import %s: %w", args[0], err)
			}
			a.logger.Info("Imported rules", zap.String("file", args[0]), zap.Int("rules", c.Len()))
			return fsharpstyle.WriteYAML(cmd.OutOrStdout(), c)
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "fail on section headings that name no tag")
	return cmd
}

func (a *app) exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Write the active catalog as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.catalog()
			if err != nil {
				return err
			}
			return fsharpstyle.WriteYAML(cmd.OutOrStdout(), c)
		},
	}
}

func (a *app) watchCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "watch [tag...]",
		Short: "Recompose every time a catalog file changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(a.cfg.Catalog.Paths) == 0 {
				return fmt.Errorf("watch needs at least one --catalog file or configured catalog.paths")
			}
			tags, err := a.tags(args)
			if err != nil {
				return err
			}
			if format == "" {
				format = a.cfg.Compose.Format
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.watch(ctx, cmd.OutOrStdout(), format, tags)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: plain, markdown or xml")
	return cmd
}

// watch prints the composed block once, then again after every change.
// Load errors are logged and the previous output stands.
func (a *app) watch(ctx context.Context, out io.Writer, format string, tags []fsharpstyle.Tag) error {
	w, err := watch.New(watch.Config{Patterns: a.cfg.Catalog.Paths, Logger: a.logger})
	if err != nil {
		return err
	}

	emit := func() {
		c, err := a.catalog()
		if err != nil {
			a.logger.Error("Failed to load catalog", zap.Error(err))
			return
		}
		block, err := a.composer(c).Render(format, tags...)
		if err != nil {
			a.logger.Error("Failed to compose", zap.Error(err))
			return
		}
		fmt.Fprintln(out, block)
		fmt.Fprintln(out, "---")
	}

	errc := make(chan error, 1)
	go func() { errc <- w.Run(ctx) }()

	emit()
	for ev := range w.Events() {
		a.logger.Info("Catalog changed", zap.Strings("paths", ev.Paths))
		emit()
	}
	return <-errc
}

func (a *app) initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the user config file with defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.NewLoader(a.logger).EnsureUserConfig()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), path)
			return err
		},
	}
}

func readInput(cmd *cobra.Command, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" || path == "" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read request: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func renderMarkdown(md string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return "", fmt.Errorf("markdown renderer: %w", err)
	}
	return r.Render(md)
}
