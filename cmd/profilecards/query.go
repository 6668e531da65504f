package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dshills/profilecards/internal/config"
	"github.com/dshills/profilecards/internal/query"
	"github.com/dshills/profilecards/internal/redact"
	"github.com/dshills/profilecards/internal/schema"
)

// queryFlags holds the parsed flags for top-skills and projects.
type queryFlags struct {
	sourceFlags
	limit  int
	format string
}

func addQueryFlags(cmd *cobra.Command, qf *queryFlags, cfg config.Config) {
	f := cmd.Flags()
	f.StringVar(&qf.backend, "backend", cfg.BackendURL, "Backend base URL, or file:<path> (env PROFILECARDS_BACKEND_URL)")
	f.DurationVar(&qf.timeout, "timeout", cfg.Timeout, "Request timeout (env PROFILECARDS_TIMEOUT)")
	f.BoolVar(&qf.strictStatus, "strict-status", cfg.StrictStatus, "Treat non-2xx responses as failures even when the body parses (env PROFILECARDS_STRICT_STATUS)")
	f.StringVar(&qf.format, "format", "text", "Output format: text or json")
	f.BoolVar(&qf.verbose, "verbose", false, "Print processing steps to stderr")
	if cmd.Name() == "projects" {
		f.StringVar(&qf.skill, "skill", "", "Only list projects of profiles with this skill (case-insensitive)")
	}
}

func runTopSkills(ctx context.Context, flags queryFlags, stdout, stderr io.Writer) error {
	if flags.limit < 0 {
		return codeError(exitUsage, "invalid flags: --limit must be >= 0, got %d", flags.limit)
	}
	profiles, err := fetchProfiles(ctx, flags, stderr)
	if err != nil {
		return err
	}
	skills := query.TopSkills(profiles, flags.limit)

	if flags.format == "json" {
		return writeJSONOutput(stdout, skills)
	}
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	for _, s := range skills {
		fmt.Fprintf(tw, "%d.\t%s\t%d\n", s.Rank, s.Name, s.Count)
	}
	if err := tw.Flush(); err != nil {
		return codeError(exitOutput, "writing output: %s", err)
	}
	return nil
}

func runProjects(ctx context.Context, flags queryFlags, stdout, stderr io.Writer) error {
	profiles, err := fetchProfiles(ctx, flags, stderr)
	if err != nil {
		return err
	}
	projects := query.ProjectsBySkill(profiles, flags.skill)
	if projects == nil {
		projects = []schema.ProjectRef{}
	}

	if flags.format == "json" {
		return writeJSONOutput(stdout, projects)
	}
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	for _, p := range projects {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Title, p.Owner, p.Link)
	}
	if err := tw.Flush(); err != nil {
		return codeError(exitOutput, "writing output: %s", err)
	}
	return nil
}

// fetchProfiles validates flags and lists profiles from the configured source.
func fetchProfiles(ctx context.Context, flags queryFlags, stderr io.Writer) ([]schema.Profile, error) {
	if err := validateSourceFlags(flags.sourceFlags); err != nil {
		return nil, codeError(exitUsage, "invalid flags: %s", err)
	}
	switch flags.format {
	case "text", "json":
	default:
		return nil, codeError(exitUsage, "invalid flags: --format must be text or json, got %q", flags.format)
	}
	src, err := newSource(flags.sourceFlags)
	if err != nil {
		return nil, err
	}
	logVerbose(stderr, flags.verbose, "Loading profiles from %s", redact.Redact(flags.backend))
	profiles, err := src.ListProfiles(ctx)
	if err != nil {
		return nil, codeError(exitFetch, "fetching profiles: %s", redact.Error(err))
	}
	return profiles, nil
}

func writeJSONOutput(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return codeError(exitOutput, "writing output: %s", err)
	}
	return nil
}
