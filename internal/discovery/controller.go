// Package discovery keeps the internship listing view consistent while three
// independent producers (full listing, recommendations and the active
// search/domain query) complete in any order.
//
// Every active request is tagged with the generation of the query that
// spawned it. Changing the query bumps the generation, so any result still in
// flight for an older query is discarded on arrival instead of being applied.
package discovery

import (
	"context"
	"strings"

	"internpath/internal/api"
	"internpath/internal/logging"
)

// Producer identifies which query a request belongs to.
type Producer int

const (
	ProducerAll Producer = iota
	ProducerRecommendations
	ProducerActive
)

func (p Producer) String() string {
	switch p {
	case ProducerAll:
		return "all"
	case ProducerRecommendations:
		return "recommendations"
	}
	return "active"
}

// DefaultTopN is the size of the recommendation strip.
const DefaultTopN = 5

// Source is the slice of the API client discovery needs.
type Source interface {
	ListInternships(ctx context.Context) ([]api.Internship, error)
	SearchInternships(ctx context.Context, q string) ([]api.Internship, error)
	FilterInternships(ctx context.Context, domain string) ([]api.Internship, error)
	Recommendations(ctx context.Context) ([]api.RecommendationEntry, error)
}

// StaleRecorder is told about every discarded result.
type StaleRecorder interface {
	RecordStale(producer string)
}

// Request is a tagged outbound query. Gen is only meaningful for ProducerActive.
type Request struct {
	Producer Producer
	Gen      uint64
	Query    Query
}

// Result is the completion of a Request.
type Result struct {
	Request         Request
	Internships     []api.Internship
	Recommendations []api.RecommendationEntry
	Err             error
}

// Do performs the request. It blocks; run it off the update loop.
func (r Request) Do(ctx context.Context, src Source) Result {
	res := Result{Request: r}
	switch r.Producer {
	case ProducerAll:
		res.Internships, res.Err = src.ListInternships(ctx)
	case ProducerRecommendations:
		res.Recommendations, res.Err = src.Recommendations(ctx)
	case ProducerActive:
		switch r.Query.Kind {
		case QuerySearch:
			res.Internships, res.Err = src.SearchInternships(ctx, r.Query.Text)
		case QueryDomain:
			res.Internships, res.Err = src.FilterInternships(ctx, string(r.Query.Domain))
		}
	}
	return res
}

// Annotated is an internship with its match and band.
type Annotated struct {
	api.Internship
	Match float64
	Band  Band
}

// Snapshot is a render-ready copy of the controller state.
type Snapshot struct {
	Query      Query
	SearchText string
	Items      []Annotated // displayed result, annotated
	Top        []Annotated // best recommendations
	MaxMatch   float64

	LoadingAll             bool
	LoadingRecommendations bool
	LoadingActive          bool

	AllErr             error
	RecommendationsErr error
	ActiveErr          error
}

// Option configures a Controller.
type Option func(*Controller)

// WithTopN sets the recommendation strip size.
func WithTopN(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.topN = n
		}
	}
}

// WithStaleRecorder reports discarded results.
func WithStaleRecorder(r StaleRecorder) Option {
	return func(c *Controller) { c.stale = r }
}

// Controller owns the discovery view state. It is not safe for concurrent
// use; drive it from a single goroutine.
type Controller struct {
	mounted bool

	all     []api.Internship // last-known unfiltered listing
	result  []api.Internship // displayed result
	query   Query
	gen     uint64
	search  string
	pending map[Producer]bool

	recs     []api.RecommendationEntry
	matches  map[int64]float64
	maxMatch float64

	errs       map[Producer]error
	staleCount int
	topN       int
	stale      StaleRecorder
	log        *logging.Logger
}

// NewController returns an unmounted controller with no active query.
func NewController(opts ...Option) *Controller {
	c := &Controller{
		pending: make(map[Producer]bool),
		matches: make(map[int64]float64),
		errs:    make(map[Producer]error),
		topN:    DefaultTopN,
		log:     logging.Get(logging.CategoryDiscovery),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Mount returns the listing and recommendation requests. Only the first
// call returns anything.
func (c *Controller) Mount() []Request {
	if c.mounted {
		return nil
	}
	c.mounted = true
	c.pending[ProducerAll] = true
	c.pending[ProducerRecommendations] = true
	return []Request{
		{Producer: ProducerAll},
		{Producer: ProducerRecommendations},
	}
}

// Query returns the active query.
func (c *Controller) Query() Query {
	return c.query
}

// MaxMatch returns the best recommendation score, 0 without recommendations.
func (c *Controller) MaxMatch() float64 {
	return c.maxMatch
}

// Match returns the score for an internship, 0 when it was not recommended.
func (c *Controller) Match(id int64) float64 {
	return c.matches[id]
}

// StaleDiscarded counts results dropped because their query was superseded.
func (c *Controller) StaleDiscarded() int {
	return c.staleCount
}

// SetSearchText is called on every keystroke. Non-blank text makes a search
// the active query; blank text clears it. An active domain filter does not
// suppress the search.
func (c *Controller) SetSearchText(text string) (Request, bool) {
	c.search = text
	if trimmed := strings.TrimSpace(text); trimmed != "" {
		return c.SetQuery(SearchQuery(trimmed))
	}
	return c.SetQuery(NoQuery())
}

// ToggleDomain selects d, or clears the filter if d is already selected.
// Unknown domains are ignored.
func (c *Controller) ToggleDomain(d Domain) (Request, bool) {
	if !d.Valid() {
		c.log.Warn("ignoring unknown domain %q", d)
		return Request{}, false
	}
	if c.query.Kind == QueryDomain && c.query.Domain == d {
		return c.SetQuery(NoQuery())
	}
	return c.SetQuery(DomainQuery(d))
}

// SetQuery makes q the active query. Re-setting the current query does
// nothing. Clearing to none shows the last-known listing immediately and
// issues no request; anything else returns the request to run.
func (c *Controller) SetQuery(q Query) (Request, bool) {
	if q.Equal(c.query) {
		return Request{}, false
	}

	c.gen++
	c.query = q
	delete(c.errs, ProducerActive)
	c.log.Debug("query -> %s (gen=%d)", q, c.gen)

	if q.Kind == QueryNone {
		c.pending[ProducerActive] = false
		c.result = cloneInternships(c.all)
		return Request{}, false
	}

	c.pending[ProducerActive] = true
	return Request{Producer: ProducerActive, Gen: c.gen, Query: q}, true
}

// Resolve applies a completed request. It returns false when the result was
// discarded as stale. Failures are logged and leave the producer's state
// untouched.
func (c *Controller) Resolve(res Result) bool {
	req := res.Request

	if req.Producer == ProducerActive && (req.Gen != c.gen || !req.Query.Equal(c.query)) {
		c.staleCount++
		if c.stale != nil {
			c.stale.RecordStale(req.Producer.String())
		}
		c.log.Debug("discarding stale %s result (gen=%d current=%d)", req.Query, req.Gen, c.gen)
		return false
	}

	c.pending[req.Producer] = false

	if res.Err != nil {
		c.errs[req.Producer] = res.Err
		c.log.Error("%s fetch failed: %v", req.Producer, res.Err)
		return true
	}
	delete(c.errs, req.Producer)

	switch req.Producer {
	case ProducerAll:
		c.all = cloneInternships(res.Internships)
		if c.query.Kind == QueryNone {
			c.result = cloneInternships(c.all)
		}
		c.log.Info("loaded %d internships", len(c.all))

	case ProducerRecommendations:
		c.setRecommendations(res.Recommendations)

	case ProducerActive:
		c.result = cloneInternships(res.Internships)
		c.log.Info("%s returned %d internships", req.Query, len(c.result))
	}
	return true
}

func (c *Controller) setRecommendations(entries []api.RecommendationEntry) {
	c.recs = make([]api.RecommendationEntry, len(entries))
	copy(c.recs, entries)
	c.matches = make(map[int64]float64, len(entries))
	c.maxMatch = 0
	for _, e := range entries {
		if _, seen := c.matches[e.ID]; seen {
			continue
		}
		c.matches[e.ID] = e.MatchPercentage
		if e.MatchPercentage > c.maxMatch {
			c.maxMatch = e.MatchPercentage
		}
	}
	c.log.Info("loaded %d recommendations (max match %.1f)", len(entries), c.maxMatch)
}

// Snapshot returns the displayed result annotated with matches and bands.
func (c *Controller) Snapshot() Snapshot {
	snap := Snapshot{
		Query:                  c.query,
		SearchText:             c.search,
		MaxMatch:               c.maxMatch,
		LoadingAll:             c.pending[ProducerAll],
		LoadingRecommendations: c.pending[ProducerRecommendations],
		LoadingActive:          c.pending[ProducerActive],
		AllErr:                 c.errs[ProducerAll],
		RecommendationsErr:     c.errs[ProducerRecommendations],
		ActiveErr:              c.errs[ProducerActive],
	}

	snap.Items = make([]Annotated, 0, len(c.result))
	for _, in := range c.result {
		snap.Items = append(snap.Items, c.annotate(in))
	}

	for _, e := range Top(c.recs, c.topN) {
		snap.Top = append(snap.Top, Annotated{
			Internship: e.Internship,
			Match:      e.MatchPercentage,
			Band:       Classify(e.MatchPercentage, c.maxMatch),
		})
	}
	return snap
}

func (c *Controller) annotate(in api.Internship) Annotated {
	match := c.matches[in.ID]
	return Annotated{Internship: in, Match: match, Band: Classify(match, c.maxMatch)}
}

func cloneInternships(src []api.Internship) []api.Internship {
	if src == nil {
		return nil
	}
	dst := make([]api.Internship, len(src))
	copy(dst, src)
	return dst
}
