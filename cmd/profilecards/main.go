package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/profilecards/internal/client"
	"github.com/dshills/profilecards/internal/config"
	"github.com/dshills/profilecards/internal/layout"
	"github.com/dshills/profilecards/internal/patch"
	"github.com/dshills/profilecards/internal/query"
	"github.com/dshills/profilecards/internal/redact"
	"github.com/dshills/profilecards/internal/region"
	"github.com/dshills/profilecards/internal/render"
	"github.com/dshills/profilecards/internal/schema"
)

// version is set at build time via -ldflags "-X main.version=x.y.z".
var version = "dev"

// exitErr carries a numeric exit code through the cobra error path.
type exitErr struct {
	code int
	msg  string
}

func (e *exitErr) Error() string { return e.msg }

// codeError returns an exitErr for the given code.
func codeError(code int, format string, args ...any) error {
	return &exitErr{code: code, msg: fmt.Sprintf(format, args...)}
}

// Exit codes.
const (
	exitUsage  = 3
	exitOutput = 4
	exitFetch  = 5
)

// sourceFlags are shared by every command that loads profiles.
type sourceFlags struct {
	backend      string
	timeout      time.Duration
	strictStatus bool
	layoutName   string
	skill        string
	search       string
	verbose      bool
}

// renderFlags holds the parsed flags for the render command.
type renderFlags struct {
	sourceFlags
	format   string
	out      string
	patchOut string
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitUsage)
	}
	os.Exit(execute(context.Background(), newRootCmd(cfg, os.Stdout, os.Stderr), os.Stderr))
}

// execute runs root and returns the process exit code. Errors whose message
// is empty were already logged by the component that produced them.
func execute(ctx context.Context, root *cobra.Command, stderr io.Writer) int {
	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	var ee *exitErr
	if errors.As(err, &ee) {
		if ee.msg != "" {
			fmt.Fprintln(stderr, "Error:", ee.msg)
		}
		return ee.code
	}
	fmt.Fprintln(stderr, "Error:", err)
	return 1
}

// newRootCmd builds the command tree with flag defaults taken from cfg.
func newRootCmd(cfg config.Config, stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "profilecards",
		Short:         "Render profile cards from a profiles backend",
		Long:          "profilecards fetches GET <backend>/profiles and renders one card per profile into the profiles-container region of a page.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	var rf renderFlags
	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "Fetch profiles once and write the rendered page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd.Context(), rf, stdout, stderr)
		},
	}
	addSourceFlags(renderCmd, &rf.sourceFlags, cfg)
	f := renderCmd.Flags()
	f.StringVar(&rf.format, "format", "html", "Output format: html, md, or json")
	f.StringVar(&rf.out, "out", "", "Write output to file instead of stdout")
	f.StringVar(&rf.patchOut, "patch-out", "", "Write a diff-match-patch diff between the previous --out file and the new output to this file")

	var sf serveFlags
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the rendered page over HTTP, reloading on demand or on an interval",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), sf, stderr)
		},
	}
	addSourceFlags(serveCmd, &sf.sourceFlags, cfg)
	serveCmd.Flags().StringVar(&sf.addr, "addr", cfg.Addr, "HTTP listen address (env PROFILECARDS_ADDR)")
	serveCmd.Flags().DurationVar(&sf.interval, "interval", 0, "Reload profiles on this interval; 0 disables periodic reloads")

	var qf queryFlags
	topSkillsCmd := &cobra.Command{
		Use:   "top-skills",
		Short: "List the most common skills across all profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTopSkills(cmd.Context(), qf, stdout, stderr)
		},
	}
	addQueryFlags(topSkillsCmd, &qf, cfg)
	topSkillsCmd.Flags().IntVar(&qf.limit, "limit", query.DefaultTopSkillsLimit, "Maximum number of skills to list; 0 lists all")

	projectsCmd := &cobra.Command{
		Use:   "projects",
		Short: "List projects, optionally only those of profiles with a given skill",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProjects(cmd.Context(), qf, stdout, stderr)
		},
	}
	addQueryFlags(projectsCmd, &qf, cfg)

	root.AddCommand(renderCmd, serveCmd, topSkillsCmd, projectsCmd)
	return root
}

// addSourceFlags registers the shared loading flags, defaulting to cfg.
func addSourceFlags(cmd *cobra.Command, sf *sourceFlags, cfg config.Config) {
	f := cmd.Flags()
	f.StringVar(&sf.backend, "backend", cfg.BackendURL, "Backend base URL, or file:<path> (env PROFILECARDS_BACKEND_URL)")
	f.DurationVar(&sf.timeout, "timeout", cfg.Timeout, "Request timeout (env PROFILECARDS_TIMEOUT)")
	f.BoolVar(&sf.strictStatus, "strict-status", cfg.StrictStatus, "Treat non-2xx responses as failures even when the body parses (env PROFILECARDS_STRICT_STATUS)")
	f.StringVar(&sf.layoutName, "layout", cfg.Layout, "Card layout: standard, detailed, or compact (env PROFILECARDS_LAYOUT)")
	f.StringVar(&sf.skill, "skill", "", "Only render profiles listing this skill (case-insensitive)")
	f.StringVar(&sf.search, "search", "", "Only render profiles whose name or projects match this text")
	f.BoolVar(&sf.verbose, "verbose", false, "Print processing steps to stderr")
}

func runRender(ctx context.Context, flags renderFlags, stdout, stderr io.Writer) error {
	// --- Step 1: Validate flags ---
	if err := validateSourceFlags(flags.sourceFlags); err != nil {
		return codeError(exitUsage, "invalid flags: %s", err)
	}
	renderer, err := render.NewRenderer(flags.format)
	if err != nil {
		return codeError(exitUsage, "invalid format: %s", err)
	}
	if flags.patchOut != "" && flags.out == "" {
		return codeError(exitUsage, "invalid flags: --patch-out requires --out")
	}

	// --- Step 2: Build loader ---
	loader, err := newLoader(flags.sourceFlags, stderr)
	if err != nil {
		return err
	}

	// --- Step 3: Load profiles into the region ---
	logVerbose(stderr, flags.verbose, "Loading profiles from %s", redact.Redact(flags.backend))
	// The loader logs its own failure; report only the exit status.
	if err := loader.LoadProfiles(ctx); err != nil {
		return codeError(exitFetch, "")
	}

	// --- Step 4: Render ---
	logVerbose(stderr, flags.verbose, "Rendering %d card(s) (format: %s)", loader.Region().Len(), flags.format)
	outputBytes, err := renderer.Render(loader.Region().Cards())
	if err != nil {
		return codeError(exitOutput, "rendering output: %s", err)
	}

	// --- Step 5: Diff against the previous output ---
	if flags.patchOut != "" {
		writePatch(flags.out, flags.patchOut, string(outputBytes), stderr, flags.verbose)
	}

	// --- Step 6: Write output ---
	if flags.out != "" {
		if err := os.WriteFile(flags.out, outputBytes, 0o644); err != nil {
			return codeError(exitOutput, "writing output file: %s", err)
		}
		return nil
	}
	if _, err := stdout.Write(outputBytes); err != nil {
		return codeError(exitOutput, "writing output: %s", err)
	}
	if len(outputBytes) > 0 && outputBytes[len(outputBytes)-1] != '\n' {
		fmt.Fprintln(stdout)
	}
	return nil
}

// writePatch diffs the existing contents of outPath against next and writes
// the result to patchPath. A missing previous file diffs against empty.
// Failures are advisory and only warned about.
func writePatch(outPath, patchPath, next string, stderr io.Writer, verbose bool) {
	prev, err := os.ReadFile(outPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(stderr, "WARN: reading previous output for diff: %s\n", err)
		return
	}
	stats := patch.Summarize(string(prev), next)
	logVerbose(stderr, verbose, "Generating patch → %s (+%d/-%d chars)", patchPath, stats.Inserted, stats.Deleted)
	diffText := patch.GenerateDiff(outPath, string(prev), next)
	if err := os.WriteFile(patchPath, []byte(diffText), 0o644); err != nil {
		fmt.Fprintf(stderr, "WARN: patch write failed: %s\n", err)
	}
}

// newLoader builds the source, layout and filters described by flags.
func newLoader(flags sourceFlags, stderr io.Writer) (*region.Loader, error) {
	src, err := newSource(flags)
	if err != nil {
		return nil, err
	}
	l, err := layout.Get(flags.layoutName)
	if err != nil {
		return nil, codeError(exitUsage, "loading layout: %s", err)
	}
	opts := []region.Option{region.WithLayout(l), region.WithVerbose(flags.verbose)}
	if flags.skill != "" || flags.search != "" {
		skill, search := flags.skill, flags.search
		opts = append(opts, region.WithFilter(func(ps []schema.Profile) []schema.Profile {
			return query.Search(query.FilterBySkill(ps, skill), search)
		}))
	}
	return region.NewLoader(src, region.New(), stderr, opts...), nil
}

func newSource(flags sourceFlags) (client.Source, error) {
	src, err := client.NewSource(flags.backend, client.Options{
		Timeout:     flags.timeout,
		CheckStatus: flags.strictStatus,
	})
	if err != nil {
		return nil, codeError(exitUsage, "creating profile source: %s", err)
	}
	return src, nil
}

// validateSourceFlags returns an error if any shared flag value is invalid.
func validateSourceFlags(flags sourceFlags) error {
	if flags.backend == "" {
		return fmt.Errorf("--backend must not be empty")
	}
	if flags.timeout <= 0 {
		return fmt.Errorf("--timeout must be > 0, got %s", flags.timeout)
	}
	return nil
}

// logVerbose writes an INFO line to w when verbose mode is enabled.
func logVerbose(w io.Writer, verbose bool, format string, args ...any) {
	if verbose {
		fmt.Fprintf(w, "INFO: "+format+"\n", args...)
	}
}
