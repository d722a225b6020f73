package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	staticlib "github.com/contriboss/staticlib-go"
	"github.com/contriboss/staticlib-go/internal/config"
)

type cliOptions struct {
	packageDir string
	planPath   string
	outDir     string
	destPath   string
	jobs       int
	verbose    bool
	always     bool
}

// buildRootCmd constructs the Cobra command tree.
func buildRootCmd(logger *zerolog.Logger) *cobra.Command {
	opts := &cliOptions{}

	root := &cobra.Command{
		Use:           "staticlib",
		Short:         "Compile bundled C sources into static archives",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&opts.packageDir, "chdir", "C", ".", "Package root directory the plan's paths resolve against")
	root.PersistentFlags().StringVar(&opts.planPath, "plan", "", "Build plan file (yaml/json/toml); defaults to the built-in libsmack step")
	root.PersistentFlags().StringVar(&opts.outDir, "out", "", "Output directory for objects and archives (default PACKAGE/build)")
	root.PersistentFlags().StringVar(&opts.destPath, "dest", "", "Extra directory the finished archives are copied into")
	root.PersistentFlags().IntVarP(&opts.jobs, "jobs", "j", 0, "Concurrent object compilations per step (0 = serial)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Record the exact tool commands in the output")
	root.PersistentFlags().BoolVar(&opts.always, "always", false, "Ignore rebuild triggers and recompile unconditionally")

	buildCmd := &cobra.Command{
		Use:   "build",
		Short: "Build every step of the plan",
		Example: "  staticlib build\n" +
			"  staticlib -C path/to/pkg --plan build.yaml -j4 build",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, logger, opts)
		},
	}

	cleanCmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove objects, depfiles and archives for every step",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClean(cmd, logger, opts)
		},
	}

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Verify the host toolchain is usable",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(logger)
		},
	}

	directivesCmd := &cobra.Command{
		Use:   "directives",
		Short: "Print rerun-if-changed directives for the enclosing build system",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDirectives(opts)
		},
	}

	root.AddCommand(buildCmd, cleanCmd, checkCmd, directivesCmd)
	return root
}

// loadPlan resolves the build config and steps from flags, falling back
// to the built-in libsmack step when no plan file is given.
func loadPlan(opts *cliOptions) (*staticlib.BuildConfig, []*staticlib.Step, error) {
	cfg := &staticlib.BuildConfig{
		PackageDir:    opts.packageDir,
		OutDir:        opts.outDir,
		DestPath:      opts.destPath,
		Verbose:       opts.verbose,
		AlwaysBuild:   opts.always,
		Parallel:      opts.jobs,
		StopOnFailure: true,
	}

	if opts.planPath == "" {
		return cfg, []*staticlib.Step{staticlib.LibsmackStep()}, nil
	}

	plan, err := config.Load(opts.planPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading plan %s: %w", opts.planPath, err)
	}
	if cfg.OutDir == "" {
		cfg.OutDir = plan.OutDir
	}

	steps, err := plan.ToSteps()
	if err != nil {
		return nil, nil, err
	}
	if len(steps) == 0 {
		return nil, nil, fmt.Errorf("plan %s declares no steps", opts.planPath)
	}

	return cfg, steps, nil
}

func runBuild(cmd *cobra.Command, logger *zerolog.Logger, opts *cliOptions) error {
	cfg, steps, err := loadPlan(opts)
	if err != nil {
		return err
	}

	factory := staticlib.NewToolchainFactory()
	toolchain, err := factory.HostToolchain()
	if err != nil {
		return err
	}
	logger.Info().Str("toolchain", toolchain.Name()).Int("steps", len(steps)).Msg("building")

	results, err := factory.BuildAllSteps(cmd.Context(), cfg, steps)
	for i, result := range results {
		step := "?"
		if i < len(steps) {
			step = steps[i].Name
		}
		switch {
		case result.Skipped:
			logger.Info().Str("step", step).Str("archive", result.Archive).Msg("up to date")
		case result.Success:
			logger.Info().Str("step", step).Str("archive", result.Archive).Msg("built")
		default:
			logger.Error().Str("step", step).Msg("failed")
			if len(result.Output) > 0 {
				fmt.Fprintln(os.Stderr, strings.Join(result.Output, "\n"))
			}
		}
	}

	return err
}

func runClean(cmd *cobra.Command, logger *zerolog.Logger, opts *cliOptions) error {
	cfg, steps, err := loadPlan(opts)
	if err != nil {
		return err
	}

	factory := staticlib.NewToolchainFactory()
	toolchain, err := factory.HostToolchain()
	if err != nil {
		return err
	}

	for _, step := range steps {
		if err := toolchain.Clean(cmd.Context(), cfg, step); err != nil {
			return fmt.Errorf("cleaning %s: %w", step.Name, err)
		}
		logger.Info().Str("step", step.Name).Msg("cleaned")
	}

	return nil
}

func runCheck(logger *zerolog.Logger) error {
	factory := staticlib.NewToolchainFactory()

	for _, toolchain := range factory.ListToolchains() {
		checker, ok := toolchain.(staticlib.ToolChecker)
		if !ok {
			continue
		}
		if err := checker.CheckTools(); err != nil {
			logger.Warn().Str("toolchain", toolchain.Name()).Err(err).Msg("unavailable")
			continue
		}
		logger.Info().Str("toolchain", toolchain.Name()).Msg("available")
	}

	_, err := factory.HostToolchain()
	return err
}

func runDirectives(opts *cliOptions) error {
	_, steps, err := loadPlan(opts)
	if err != nil {
		return err
	}

	for _, step := range steps {
		if err := staticlib.Directives(os.Stdout, step); err != nil {
			return err
		}
	}

	return nil
}
