package main

import (
	"fmt"

	"github.com/simontreanor/fsharpstyle"
	"github.com/simontreanor/fsharpstyle/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// app holds the state shared by every subcommand.
type app struct {
	verbose    bool
	configPath string
	catalogs   []string
	noDefault  bool

	logger *zap.Logger
	level  zap.AtomicLevel
	cfg    *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:     appName,
		Short:   "Compose F#-style prompt rules for AI code generators",
		Version: Version,
		Long: `fsharpstyle holds a catalog of short directives that steer a code
generator toward F# idioms in TypeScript: discriminated unions, exhaustive
matching, branded types, Option/Result, pipelines and module organisation.

Select rules by tag and paste the composed block in front of your request.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	flags.StringVar(&a.configPath, "config", "", "config file (default: fsharpstyle.yaml in the project, then ~/.config/fsharpstyle/config.yaml)")
	flags.StringArrayVar(&a.catalogs, "catalog", nil, "catalog file or glob, repeatable")
	flags.BoolVar(&a.noDefault, "no-default", false, "leave out the built-in golden prompts")

	root.AddCommand(
		a.tagsCmd(),
		a.listCmd(),
		a.composeCmd(),
		a.promptCmd(),
		a.importCmd(),
		a.exportCmd(),
		a.watchCmd(),
		a.initCmd(),
	)
	return root
}

// setup initializes the logger and loads configuration.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	zc := zap.NewProductionConfig()
	zc.Encoding = "console"
	zc.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if a.verbose {
		zc.Level.SetLevel(zapcore.DebugLevel)
	}
	logger, err := zc.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = logger
	a.level = zc.Level

	cfg, err := config.NewLoader(logger).Load(a.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.Catalog.Paths = append(cfg.Catalog.Paths, a.catalogs...)
	if a.noDefault {
		cfg.Catalog.ExcludeDefault = true
	}
	if !a.verbose {
		if lvl, err := zapcore.ParseLevel(cfg.Log.Level); err == nil {
			a.level.SetLevel(lvl)
		}
	}
	a.cfg = cfg
	return nil
}

// catalog builds the active catalog: the golden prompts unless excluded,
// followed by every configured catalog file.
func (a *app) catalog() (*fsharpstyle.Catalog, error) {
	base := fsharpstyle.MustCatalog()
	if !a.cfg.Catalog.ExcludeDefault {
		base = fsharpstyle.Default()
	}
	if len(a.cfg.Catalog.Paths) == 0 {
		return base, nil
	}

	validators := fsharpstyle.NewValidatorRegistry()
	if n := a.cfg.Catalog.MaxRuleLength; n > 0 {
		validators.RegisterAll(fsharpstyle.MaxLength(n))
	}
	loaded, err := fsharpstyle.NewLoader(
		fsharpstyle.WithValidators(validators),
		fsharpstyle.WithLoaderLogger(a.logger),
	).LoadGlob(a.cfg.Catalog.Paths...)
	if err != nil {
		return nil, err
	}
	return base.Concat(loaded), nil
}

func (a *app) composer(c *fsharpstyle.Catalog) *fsharpstyle.Composer {
	policy := fsharpstyle.DuplicateSkip
	if a.cfg.Compose.RepeatDuplicates {
		policy = fsharpstyle.DuplicateRepeat
	}
	return fsharpstyle.NewComposer(c,
		fsharpstyle.WithDuplicatePolicy(policy),
		fsharpstyle.WithLogger(a.logger))
}

// tags parses args, falling back to the configured default tags.
func (a *app) tags(args []string) ([]fsharpstyle.Tag, error) {
	if len(args) == 0 {
		return a.cfg.Tags()
	}
	return fsharpstyle.ParseTags(args)
}
