package coordinator

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"romrelease/internal/app"
	"romrelease/internal/config"
	"romrelease/internal/file"
	"romrelease/internal/release"
	"romrelease/internal/ui"
	"romrelease/pkg/types"

	"github.com/charmbracelet/log"
)

var (
	ErrNoArtifacts     = errors.New("no artifacts found for release")
	ErrNoTag           = errors.New("could not extract tag from archive filename")
	ErrNoMatchingFiles = errors.New("no matching files found for selected option")
	ErrNoFilesSelected = errors.New("no files selected for release")
)

const bannerTitle = "GitHub ROM Release Creator"

// Options are the user's choices for one run
type Options struct {
	Interactive bool
	Mode        file.Mode // flag mode only; zero means all files
	Notes       []string  // flag mode only
	AssumeYes   bool
	Checksums   bool
	DryRun      bool
}

// plan is a release request before its files are resolved
type plan struct {
	tag   string
	title string
	notes string
	paths []string
}

// ReleaseCoordinator plans a release from the artifacts on disk and hands it
// to the publisher
type ReleaseCoordinator struct {
	config    *config.Config
	files     file.Service
	checker   release.TagChecker
	publisher app.ReleasePublisher
	prompt    ui.Prompter
}

// NewReleaseCoordinator creates a new coordinator
func NewReleaseCoordinator(
	cfg *config.Config,
	files file.Service,
	checker release.TagChecker,
	publisher app.ReleasePublisher,
	prompt ui.Prompter,
) *ReleaseCoordinator {
	return &ReleaseCoordinator{
		config:    cfg,
		files:     files,
		checker:   checker,
		publisher: publisher,
		prompt:    prompt,
	}
}

// Run plans and publishes one release. A declined confirmation or a dry run
// returns nil without publishing.
func (c *ReleaseCoordinator) Run(ctx context.Context, opts Options) error {
	logger := log.FromContext(ctx)

	if opts.Interactive {
		ui.Banner(c.prompt.Writer(), bannerTitle)
	}

	artifacts, err := c.files.Discover(ctx, c.config.Release.Dir, c.config.Extensions())
	if err != nil {
		return fmt.Errorf("failed to discover artifacts: %w", err)
	}
	if artifacts.Empty() {
		return fmt.Errorf("%w in %s", ErrNoArtifacts, c.config.Release.Dir)
	}

	var p *plan
	if opts.Interactive {
		p, err = c.planInteractive(ctx, artifacts)
	} else {
		p, err = c.planFromFlags(ctx, artifacts, opts)
	}
	if err != nil {
		return err
	}

	refs, err := c.files.Resolve(ctx, p.paths)
	if err != nil {
		return fmt.Errorf("failed to resolve artifacts: %w", err)
	}
	c.files.Inspect(ctx, refs)

	req := types.ReleaseRequest{
		Tag:   p.tag,
		Title: p.title,
		Notes: p.notes,
		Files: refs,
	}

	c.prompt.ShowMessage("\nSelected files for release:")
	for _, ref := range refs {
		c.prompt.ShowMessage("  - " + ref.Name)
	}
	ui.CommandBlock(c.prompt.Writer(), release.CreateCommand(c.config.GH.Path, c.config.GH.Repo, req))

	if opts.DryRun {
		c.prompt.ShowMessage("Dry run: nothing was published.")
		return nil
	}

	if !opts.AssumeYes {
		ok, err := c.prompt.Confirm(ctx, "Execute this command? (Y/N): ")
		if err != nil {
			return err
		}
		if !ok {
			c.prompt.ShowMessage("Operation cancelled by user.")
			return nil
		}
	}

	if opts.Checksums || c.config.Release.Checksums {
		manifest, err := c.files.WriteChecksums(ctx, c.config.Release.Dir, refs)
		if err != nil {
			return fmt.Errorf("failed to generate checksums: %w", err)
		}
		req.Files = append(req.Files, manifest)
	}

	c.prompt.ShowMessage("Executing command...")
	result, err := c.publisher.Publish(ctx, req)
	if err != nil {
		diag := err.Error()
		if result != nil && result.Diagnostic != "" {
			diag = result.Diagnostic
		}
		if errors.Is(err, app.ErrInterrupted) {
			diag = "Interrupted by user"
		}
		c.prompt.ShowMessage(fmt.Sprintf("Error: Failed to create release\n%s", diag))
		return err
	}

	logger.Debug("publish finished", "session", result.Session.ID, "files", len(result.Uploaded))
	c.prompt.ShowMessage("Release created successfully.")
	return nil
}

// planFromFlags derives the release from the first archive without prompting
func (c *ReleaseCoordinator) planFromFlags(ctx context.Context, artifacts file.Artifacts, opts Options) (*plan, error) {
	archives := artifacts.Of(c.config.Release.ArchiveExt)
	if len(archives) == 0 {
		return nil, ErrNoTag
	}
	title := filepath.Base(archives[0])
	tag, ok := release.ExtractTag(title)
	if !ok {
		return nil, ErrNoTag
	}

	c.prompt.ShowMessage("Tag: " + tag)
	c.prompt.ShowMessage("Title: " + title)

	tag, err := c.uniqueTag(ctx, tag)
	if err != nil {
		return nil, err
	}

	mode := opts.Mode
	if mode == 0 || mode == file.ModeIndividual {
		mode = file.ModeAll
	}
	paths := file.Select(artifacts, c.config.Release.ArchiveExt, c.config.Release.ImageExt, mode)
	if len(paths) == 0 {
		return nil, ErrNoMatchingFiles
	}

	return &plan{
		tag:   tag,
		title: title,
		notes: release.FormatNotes(opts.Notes, c.config.Release.DefaultNotes),
		paths: paths,
	}, nil
}

// planInteractive walks the user through tag, title, notes and selection
func (c *ReleaseCoordinator) planInteractive(ctx context.Context, artifacts file.Artifacts) (*plan, error) {
	out := c.prompt.Writer()

	c.prompt.ShowMessage("\nAvailable files:")
	for _, ext := range artifacts.Exts {
		ui.NumberedList(out, strings.ToUpper(ext)+" files:", baseNames(artifacts.Of(ext)), 0)
	}

	var tag, title string
	var err error
	if archives := artifacts.Of(c.config.Release.ArchiveExt); len(archives) > 0 {
		title = filepath.Base(archives[0])
		extracted, ok := release.ExtractTag(title)
		if ok {
			c.prompt.ShowMessage("\nExtracted tag: " + extracted)
			tag = extracted
			change, err := c.prompt.YesNo(ctx, "Do you want to use a different tag? (Y/N): ")
			if err != nil {
				return nil, err
			}
			if change {
				if tag, err = c.askNonEmpty(ctx, "Enter release tag: "); err != nil {
					return nil, err
				}
			}
		} else {
			c.prompt.ShowMessage("Could not extract tag from archive filename.")
			if tag, err = c.askNonEmpty(ctx, "Enter release tag: "); err != nil {
				return nil, err
			}
		}
	} else {
		c.prompt.ShowMessage("No archive files found. Please enter release information manually:")
		if tag, err = c.askNonEmpty(ctx, "Enter release tag: "); err != nil {
			return nil, err
		}
		if title, err = c.askNonEmpty(ctx, "Enter release title: "); err != nil {
			return nil, err
		}
	}

	change, err := c.prompt.YesNo(ctx, fmt.Sprintf("Current title: %s\nDo you want to change it? (Y/N): ", title))
	if err != nil {
		return nil, err
	}
	if change {
		if title, err = c.askNonEmpty(ctx, "Enter release title: "); err != nil {
			return nil, err
		}
	}

	c.prompt.ShowMessage(fmt.Sprintf("\nChecking if tag %q already exists...", tag))
	if tag, err = c.uniqueTag(ctx, tag); err != nil {
		return nil, err
	}

	notes, err := c.askNotes(ctx)
	if err != nil {
		return nil, err
	}

	paths, err := c.askSelection(ctx, artifacts)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, ErrNoFilesSelected
	}

	return &plan{tag: tag, title: title, notes: notes, paths: paths}, nil
}

func (c *ReleaseCoordinator) uniqueTag(ctx context.Context, tag string) (string, error) {
	unique, err := release.UniqueTag(ctx, c.checker, tag)
	if err != nil {
		return "", err
	}
	if unique != tag {
		c.prompt.ShowMessage(fmt.Sprintf("Warning: A release with tag %q already exists.", tag))
		c.prompt.ShowMessage("Using new tag: " + unique)
	}
	return unique, nil
}

// askNotes reads up to MaxNotes lines, stopping at an empty line or "done"
func (c *ReleaseCoordinator) askNotes(ctx context.Context) (string, error) {
	c.prompt.ShowMessage(fmt.Sprintf("\nEnter up to %d release notes (press Enter after each, type 'done' when finished):", c.config.Release.MaxNotes))
	c.prompt.ShowMessage("Do not start with '-', bullets will be added automatically")

	var lines []string
	for i := 1; i <= c.config.Release.MaxNotes; i++ {
		note, err := c.prompt.Ask(ctx, fmt.Sprintf("Note %d: ", i))
		if err != nil {
			return "", err
		}
		if note == "" || strings.EqualFold(note, "done") {
			break
		}
		lines = append(lines, note)
	}
	return release.FormatNotes(lines, c.config.Release.DefaultNotes), nil
}

func (c *ReleaseCoordinator) askSelection(ctx context.Context, artifacts file.Artifacts) ([]string, error) {
	archiveExt, imageExt := c.config.Release.ArchiveExt, c.config.Release.ImageExt

	c.prompt.ShowMessage("\nRelease options:")
	c.prompt.ShowMessage("1. Release all files")
	c.prompt.ShowMessage(fmt.Sprintf("2. Release only .%s files", imageExt))
	c.prompt.ShowMessage(fmt.Sprintf("3. Release only .%s files", archiveExt))
	c.prompt.ShowMessage("4. Select files individually")

	choice, err := c.prompt.Choose(ctx, "Choose release option (1-4): ", []string{"1", "2", "3", "4"})
	if err != nil {
		return nil, err
	}

	switch choice {
	case "2":
		return file.Select(artifacts, archiveExt, imageExt, file.ModeImages), nil
	case "3":
		return file.Select(artifacts, archiveExt, imageExt, file.ModeArchives), nil
	case "4":
		return c.askIndividual(ctx, artifacts)
	default:
		return file.Select(artifacts, archiveExt, imageExt, file.ModeAll), nil
	}
}

func (c *ReleaseCoordinator) askIndividual(ctx context.Context, artifacts file.Artifacts) ([]string, error) {
	c.prompt.ShowMessage("\nSelect files to include (comma-separated numbers, e.g. 1,3,5):")
	offset := 0
	for _, ext := range artifacts.Exts {
		files := artifacts.Of(ext)
		ui.NumberedList(c.prompt.Writer(), strings.ToUpper(ext)+" files:", baseNames(files), offset)
		offset += len(files)
	}

	input, err := c.prompt.Ask(ctx, "Enter file numbers: ")
	if err != nil {
		return nil, err
	}
	all := artifacts.All()
	selected, err := file.ParseSelection(input, all)
	if err != nil {
		log.FromContext(ctx).Debug("falling back to all files", "error", err)
		c.prompt.ShowMessage("Invalid input. Using all files.")
		return all, nil
	}
	return selected, nil
}

func (c *ReleaseCoordinator) askNonEmpty(ctx context.Context, prompt string) (string, error) {
	for {
		answer, err := c.prompt.Ask(ctx, prompt)
		if err != nil {
			return "", err
		}
		if answer != "" {
			return answer, nil
		}
	}
}

func baseNames(paths []string) []string {
	names := make([]string, len(paths))
	for i, p := range paths {
		names[i] = filepath.Base(p)
	}
	return names
}
