package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"romrelease/internal/app"
	"romrelease/internal/config"
	"romrelease/internal/coordinator"
	"romrelease/internal/estimate"
	"romrelease/internal/file"
	"romrelease/internal/release"
	"romrelease/internal/reporter"
	"romrelease/internal/ui"
	"romrelease/pkg/utils"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

// ErrNotATerminal is returned when interactive mode runs without a terminal
var ErrNotATerminal = errors.New("interactive mode requires a terminal; use -a, -i or -z to run non-interactively")

type RootFlags struct {
	All       bool
	Img       bool
	Zip       bool
	Notes     []string
	Yes       bool
	Dir       string
	Checksums bool
	DryRun    bool
}

var (
	cfg       *config.Config
	cfgFile   string
	rootFlags RootFlags
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "romrelease",
	Short: "Create GitHub releases for ROM build artifacts",
	Long: `romrelease publishes the .zip archives and .img images of a ROM build as a
GitHub release through the gh CLI.

The release tag and title are taken from the first archive name, e.g.
"lineage-21.0-20240101-UNOFFICIAL-device.zip" becomes tag "lineage-21.0-20240101".
Files are uploaded one at a time with an estimated progress bar, since gh does not
report upload progress.

Usage:
  Interactive menu:       romrelease
  Release everything:     romrelease -a -y
  Only images, with notes: romrelease -i -n "Fixed wifi" -n "Updated kernel"`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		initConfig()

		loaded, err := config.Load(viper.GetViper())
		if err != nil {
			return err
		}
		cfg = loaded
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRelease(cmd, &rootFlags)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.romrelease.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")

	flags := rootCmd.Flags()
	flags.BoolVarP(&rootFlags.All, "all", "a", false, "Release all files without prompting")
	flags.BoolVarP(&rootFlags.Img, "img", "i", false, "Release only image files")
	flags.BoolVarP(&rootFlags.Zip, "zip", "z", false, "Release only archive files")
	flags.StringArrayVarP(&rootFlags.Notes, "notes", "n", nil, "Release note line (repeatable)")
	flags.BoolVarP(&rootFlags.Yes, "yes", "y", false, "Auto-confirm release creation")
	flags.StringVar(&rootFlags.Dir, "dir", "", "Directory to search for artifacts (default is the working directory)")
	flags.BoolVar(&rootFlags.Checksums, "checksums", false, "Upload a SHA256SUMS manifest after the artifacts")
	flags.BoolVar(&rootFlags.DryRun, "dry-run", false, "Show the release that would be created and exit")

	// Bind flags to viper so config files and env variables share the keys
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("release.dir", flags.Lookup("dir"))
	viper.BindPFlag("release.checksums", flags.Lookup("checksums"))
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Warn("could not find home directory", "error", err)
			return
		}

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".romrelease")
	}

	if err := viper.ReadInConfig(); err == nil {
		log.Debug("using config file", "path", viper.ConfigFileUsed())
	}
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, app.ErrReleaseCreationFailed) &&
			!errors.Is(err, app.ErrFileUploadFailed) &&
			!errors.Is(err, app.ErrInterrupted) {
			// publish failures were already reported with their diagnostic
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// runRelease wires the services and runs one release
func runRelease(cmd *cobra.Command, flags *RootFlags) error {
	ctx, stop := createContext()
	defer stop()

	logger := newLogger(cfg.Log.Level)
	ctx = log.WithContext(ctx, logger)

	dir, err := utils.ResolveSearchDir(cfg.Release.Dir)
	if err != nil {
		return err
	}
	cfg.Release.Dir = dir

	opts := coordinator.Options{
		Interactive: !flags.All && !flags.Img && !flags.Zip && len(flags.Notes) == 0 && !flags.Yes,
		Notes:       flags.Notes,
		AssumeYes:   flags.Yes,
		Checksums:   cfg.Release.Checksums,
		DryRun:      flags.DryRun,
		Mode:        selectionMode(flags),
	}

	if opts.Interactive && !term.IsTerminal(int(os.Stdin.Fd())) {
		return ErrNotATerminal
	}

	return createCoordinator(cmd).Run(ctx, opts)
}

// selectionMode maps the selection flags to a mode. They may be combined:
// -i wins over -z, and -a or no flag selects everything.
func selectionMode(flags *RootFlags) file.Mode {
	switch {
	case flags.Img:
		return file.ModeImages
	case flags.Zip:
		return file.ModeArchives
	default:
		return file.ModeAll
	}
}

// createContext creates a context that cancels on interrupt signals
func createContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// newLogger creates the stderr logger; stdout is reserved for progress output
func newLogger(level string) *log.Logger {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		Level:           lvl,
		ReportTimestamp: lvl == log.DebugLevel,
		Prefix:          "romrelease",
	})
}

// createCoordinator creates and wires up all the application services
func createCoordinator(cmd *cobra.Command) *coordinator.ReleaseCoordinator {
	out := cmd.OutOrStdout()

	adapter := release.NewGhAdapter(cfg.GH.Path, cfg.GH.Repo, cfg.Release.Dir)
	model := estimate.Model{
		BaseSpeed:          cfg.Estimate.BaseSpeed,
		LargeFileSpeed:     cfg.Estimate.LargeFileSpeed,
		LargeFileThreshold: cfg.Estimate.LargeFileThreshold,
		DecayWindow:        cfg.Estimate.DecayWindow,
		DecayFloor:         cfg.Estimate.DecayFloor,
		PercentCap:         cfg.Estimate.PercentCap,
		ETAMargin:          cfg.Estimate.ETAMargin,
	}

	publisher := app.NewPublisher(
		adapter,
		ui.NewProgressRenderer(out, cfg.Upload.RenderInterval),
		reporter.NewSummaryReporter(out),
		model,
		cfg.Upload.PollInterval,
	)

	return coordinator.NewReleaseCoordinator(
		cfg,
		file.NewFileService(cmd.ErrOrStderr()),
		adapter,
		publisher,
		ui.NewConsoleUI(cmd.InOrStdin(), out),
	)
}
