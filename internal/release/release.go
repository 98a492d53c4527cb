// Package release runs the relnotes pipeline: resolve the tag, find the
// previous tag, fetch generated notes, normalize them and splice a dated
// entry into the changelog.
package release

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/ariel-frischer/relnotes/internal/changelog"
	"github.com/ariel-frischer/relnotes/internal/git"
	"github.com/ariel-frischer/relnotes/internal/github"
	"github.com/ariel-frischer/relnotes/internal/manifest"
	"github.com/ariel-frischer/relnotes/internal/notes"
	"github.com/ariel-frischer/relnotes/internal/output"
)

// Stage names a step of the pipeline. They run strictly in order.
type Stage string

const (
	StageTagResolution Stage = "tag resolution"
	StageFetch         Stage = "fetch"
	StageNormalize     Stage = "normalize"
	StageSplice        Stage = "splice"
	StageFormat        Stage = "format"
)

// StageError records the stage a run failed in.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// debugLogger is an optional function for debug logging.
var debugLogger func(format string, args ...any)

// SetDebugLogger sets the debug logging function for pipeline stages.
func SetDebugLogger(logger func(format string, args ...any)) {
	debugLogger = logger
}

func logDebug(format string, args ...any) {
	if debugLogger != nil {
		debugLogger(format, args...)
	}
}

// NotesSource produces release notes for a repository.
type NotesSource interface {
	Repository(ctx context.Context) (github.Repository, error)
	GenerateNotes(ctx context.Context, repo github.Repository, req github.NotesRequest) (*github.Notes, error)
}

// Formatter rewrites a changelog file in place.
type Formatter interface {
	Format(ctx context.Context, path string) error
}

// Activity shows that a long-running step is in progress.
type Activity interface {
	Begin(message string)
	End()
}

// Pipeline holds the collaborators and settings of a run.
type Pipeline struct {
	// ResolveManifest locates the project manifest governing a directory.
	ResolveManifest func(dir string) (*manifest.ProjectInfo, error)
	// ListTags returns the tag history of a directory, newest first.
	ListTags func(dir string) ([]string, error)
	Notes    NotesSource
	// Formatter is optional; nil skips formatting.
	Formatter Formatter
	// Activity is optional.
	Activity Activity
	Now      func() time.Time
	Out      io.Writer

	Anchor           changelog.Anchor
	CreateMissing    bool
	NormalizeBullets bool
	// Host is the web host compare links point at.
	Host string
}

// Options are the per-run inputs.
type Options struct {
	// Dir is the working directory; relative changelog paths resolve against it.
	Dir string
	// Tag is used verbatim when set; otherwise it is derived from the manifest.
	Tag           string
	ChangelogFile string
	// Target is the commitish the tag will be created from, if it does not exist yet.
	Target string
	// DryRun prints the entry instead of writing it.
	DryRun bool
}

// Result describes a completed run.
type Result struct {
	Tag         string
	PreviousTag string
	CompareURL  string
	Block       []string
	// Path is the changelog path that was (or would have been) written.
	Path string
}

// Run executes the pipeline. Nothing is written unless every stage up to
// and including the splice succeeds.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Result, error) {
	res := &Result{Path: opts.ChangelogFile}

	logDebug("stage: %s", StageTagResolution)
	if err := p.resolveTags(opts, res); err != nil {
		return nil, &StageError{Stage: StageTagResolution, Err: err}
	}

	logDebug("stage: %s", StageFetch)
	output.PrintGenerating(p.Out, res.Tag, res.PreviousTag)
	repo, raw, err := p.fetch(ctx, res, opts.Target)
	if err != nil {
		return nil, &StageError{Stage: StageFetch, Err: err}
	}

	logDebug("stage: %s", StageNormalize)
	body := notes.Normalize(raw, notes.Options{Tag: res.Tag, NormalizeBullets: p.NormalizeBullets})

	logDebug("stage: %s", StageSplice)
	res.CompareURL = changelog.CompareURL(repo.URL(p.Host), res.PreviousTag, res.Tag)
	entry := changelog.Entry{Tag: res.Tag, URL: res.CompareURL, Date: p.now(), Notes: body}
	res.Block = entry.Block()

	path := opts.ChangelogFile
	if !filepath.IsAbs(path) {
		path = filepath.Join(opts.Dir, path)
	}
	doc, err := changelog.Load(path, p.Anchor.Header, p.CreateMissing)
	if err != nil {
		return nil, &StageError{Stage: StageSplice, Err: err}
	}
	if err := doc.Insert(entry, p.Anchor); err != nil {
		return nil, &StageError{Stage: StageSplice, Err: err}
	}

	if opts.DryRun {
		output.PrintDryRun(p.Out, opts.ChangelogFile, res.Block)
		return res, nil
	}

	if err := doc.Save(path); err != nil {
		return nil, &StageError{Stage: StageSplice, Err: err}
	}
	if doc.Created {
		output.PrintInfo(p.Out, "Created %s", opts.ChangelogFile)
	}

	if p.Formatter != nil {
		logDebug("stage: %s", StageFormat)
		if err := p.Formatter.Format(ctx, path); err != nil {
			return res, &StageError{Stage: StageFormat, Err: err}
		}
	}

	output.PrintSuccess(p.Out, "Release notes added to "+opts.ChangelogFile)
	return res, nil
}

// resolveTags fills in the tag and the previous tag.
func (p *Pipeline) resolveTags(opts Options, res *Result) error {
	res.Tag = opts.Tag
	if res.Tag == "" {
		info, err := p.ResolveManifest(opts.Dir)
		if err != nil {
			return err
		}
		res.Tag = info.Tag()
		logDebug("derived %s from %s", res.Tag, info.Path)
		output.PrintVersionSource(p.Out, res.Tag)
	}

	history, err := p.ListTags(opts.Dir)
	if err != nil {
		return fmt.Errorf("listing tags: %w", err)
	}
	if prev, ok := git.PreviousTag(res.Tag, history); ok {
		res.PreviousTag = prev
	}
	logDebug("tag %s, previous %q, %d tags in history", res.Tag, res.PreviousTag, len(history))
	return nil
}

func (p *Pipeline) fetch(ctx context.Context, res *Result, target string) (github.Repository, string, error) {
	if p.Activity != nil {
		p.Activity.Begin("Fetching release notes from GitHub")
		defer p.Activity.End()
	}

	repo, err := p.Notes.Repository(ctx)
	if err != nil {
		return repo, "", err
	}
	generated, err := p.Notes.GenerateNotes(ctx, repo, github.NotesRequest{
		TagName:         res.Tag,
		PreviousTagName: res.PreviousTag,
		TargetCommitish: target,
	})
	if err != nil {
		return repo, "", err
	}
	return repo, generated.Body, nil
}

func (p *Pipeline) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}
