package risk

import (
	"time"

	"github.com/open-sspm/oauth-risk/internal/scopelib"
)

// Engine runs the five dimension calculators, aggregates them and derives
// factors, recommendations and anomalies. It holds no per-assessment state
// and is safe for concurrent use.
type Engine struct {
	ref      scopelib.Reference
	weights  Weights
	location *time.Location
	matcher  *Matcher

	spikeMinEvents int
}

type Option func(*Engine)

func WithWeights(w Weights) Option {
	return func(e *Engine) { e.weights = w }
}

// WithLocation sets the timezone for off-hours and weekend checks.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.location = loc
		}
	}
}

// WithSpikeMinEvents requires a peak day of at least n events before a usage
// spike is reported. The default, zero, reports any peak above three times
// the daily average.
func WithSpikeMinEvents(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.spikeMinEvents = n
		}
	}
}

func WithMatcher(m *Matcher) Option {
	return func(e *Engine) {
		if m != nil {
			e.matcher = m
		}
	}
}

func New(ref scopelib.Reference, opts ...Option) (*Engine, error) {
	e := &Engine{
		ref:      ref,
		weights:  DefaultWeights,
		location: time.UTC,
		matcher:  NewMatcher(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.weights.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// Input is one app to assess. Now is the evaluation instant and must be set:
// the engine never reads a clock, and a zero Now is an invalid input.
type Input struct {
	App    AppMetadata  `json:"app"`
	Events []AuditEvent `json:"events"`
	Now    time.Time    `json:"now"`
}

type Assessment struct {
	AppID           string           `json:"app_id"`
	AppName         string           `json:"app_name"`
	RiskScore       RiskScore        `json:"risk_score"`
	RiskFactors     []RiskFactor     `json:"risk_factors"`
	Recommendations []Recommendation `json:"recommendations"`
	Anomalies       []AnomalyMatch   `json:"anomalies"`
	Details         DimensionResults `json:"details"`
}

// Assess is a pure function of its input and the engine configuration.
func (e *Engine) Assess(in Input) Assessment {
	now := in.Now
	app := in.App
	app.Scopes = scopelib.NormalizeScopes(app.Scopes)
	events := prepareEvents(in.Events, now)

	dims := DimensionResults{
		AIPlatform: CalculateAIPlatformRisk(app.IsAIPlatform, app.AIPlatformVendor, app.AIPlatformConfidence),
		Permission: CalculatePermissionRisk(app.Scopes, e.ref),
		Activity:   calculateActivityRisk(events, app.FirstAuthorized, now, e.location, e.spikeMinEvents),
		User:       CalculateUserRisk(app.AuthorizedBy),
		Temporal:   CalculateTemporalRisk(app, events, e.ref, now),
	}
	score := Aggregate(dims, e.weights, ConfidenceInput{
		HasAuditData:    len(events) > 0,
		HasScopeData:    len(app.Scopes) > 0,
		HasUserData:     app.AuthorizedBy.Email != "",
		HasTemporalData: !app.FirstAuthorized.IsZero(),
		FirstAuthorized: app.FirstAuthorized,
	}, now)

	factors := GenerateFactors(dims)
	recs := Recommend(app, score, dims)
	anomalies := e.matcher.Detect(BuildMetrics(app, dims))
	if factors == nil {
		factors = []RiskFactor{}
	}
	if recs == nil {
		recs = []Recommendation{}
	}
	if anomalies == nil {
		anomalies = []AnomalyMatch{}
	}

	return Assessment{
		AppID:           app.ClientID,
		AppName:         app.Name,
		RiskScore:       score,
		RiskFactors:     factors,
		Recommendations: recs,
		Anomalies:       anomalies,
		Details:         dims,
	}
}
