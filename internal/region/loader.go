package region

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/dshills/profilecards/internal/client"
	"github.com/dshills/profilecards/internal/layout"
	"github.com/dshills/profilecards/internal/query"
	"github.com/dshills/profilecards/internal/redact"
	"github.com/dshills/profilecards/internal/schema"
)

// Filter narrows the fetched profiles before they are rendered.
type Filter func([]schema.Profile) []schema.Profile

// Loader fetches profiles from a Source and renders them into a Region.
type Loader struct {
	source  client.Source
	region  *Region
	layout  *layout.Layout
	log     io.Writer
	filter  Filter
	verbose bool
}

// Option configures a Loader.
type Option func(*Loader)

// WithLayout selects the card layout. The default is the standard layout.
func WithLayout(l *layout.Layout) Option {
	return func(ld *Loader) { ld.layout = l }
}

// WithFilter installs a filter applied after parsing.
func WithFilter(f Filter) Option {
	return func(ld *Loader) { ld.filter = f }
}

// WithVerbose enables INFO lines for successful loads.
func WithVerbose(v bool) Option {
	return func(ld *Loader) { ld.verbose = v }
}

// NewLoader returns a Loader writing log lines to logw (may be nil).
func NewLoader(src client.Source, r *Region, logw io.Writer, opts ...Option) *Loader {
	if logw == nil {
		logw = io.Discard
	}
	std, _ := layout.Get("standard")
	ld := &Loader{
		source: src,
		region: r,
		layout: std,
		log:    logw,
	}
	for _, opt := range opts {
		opt(ld)
	}
	return ld
}

// Region returns the region the loader writes to.
func (l *Loader) Region() *Region { return l.region }

// LoadProfiles fetches the profile list and replaces the region's cards with
// one card per profile, in response order. The region is touched only after
// the whole body has been parsed: on any failure the error is logged once and
// the region keeps its previous cards. The error is also returned so callers
// can choose an exit status.
func (l *Loader) LoadProfiles(ctx context.Context) error {
	loadID := uuid.NewString()

	profiles, err := l.source.ListProfiles(ctx)
	if err != nil {
		fmt.Fprintf(l.log, "ERROR: load %s: fetching profiles: %s\n", loadID, redact.Error(err))
		return fmt.Errorf("load %s: %w", loadID, err)
	}

	fetched := len(profiles)
	if l.filter != nil {
		profiles = l.filter(profiles)
	}

	l.region.Replace(l.layout.Cards(profiles))

	if l.verbose {
		_, noEdu, noSkills, noProjects := query.Counts(profiles)
		fmt.Fprintf(l.log, "INFO: load %s: rendered %d of %d profile(s); N/A education=%d skills=%d projects=%d\n",
			loadID, len(profiles), fetched, noEdu, noSkills, noProjects)
	}
	return nil
}
