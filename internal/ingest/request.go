// Package ingest decodes and validates assessment requests supplied by the
// connector layer and turns them into engine inputs.
package ingest

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/open-sspm/oauth-risk/internal/risk"
	"github.com/open-sspm/oauth-risk/internal/scopelib"
)

var (
	ErrMissingScopes   = errors.New("app.scopes is required")
	ErrMissingClientID = errors.New("app.client_id is required")
	// ErrMissingNow means no evaluation instant was given by the caller,
	// the request, or a default clock.
	ErrMissingNow = errors.New("evaluation instant (now) is required")
)

// Request is the wire form of one assessment. Pointer fields distinguish
// "absent" from the zero value.
type Request struct {
	App    App        `json:"app"`
	Events []Event    `json:"events"`
	Now    *time.Time `json:"now,omitempty"`
}

type App struct {
	ClientID             string     `json:"client_id"`
	Name                 string     `json:"name"`
	Scopes               []string   `json:"scopes"`
	IsAIPlatform         bool       `json:"is_ai_platform"`
	AIPlatformVendor     string     `json:"ai_platform_vendor"`
	AIPlatformConfidence int        `json:"ai_platform_confidence"`
	FirstAuthorized      *time.Time `json:"first_authorized"`
	AuthorizedBy         User       `json:"authorized_by"`
}

type User struct {
	Email        string `json:"email"`
	IsAdmin      bool   `json:"is_admin"`
	IsSuperAdmin bool   `json:"is_super_admin"`
	IsExternal   *bool  `json:"is_external"`
	Role         string `json:"role"`
	Department   string `json:"department"`
}

type Event struct {
	Timestamp  time.Time `json:"timestamp"`
	EventType  string    `json:"event_type"`
	Scopes     []string  `json:"scopes"`
	ActorEmail string    `json:"actor_email"`
}

// Validate rejects contract violations. Everything else is left to the
// engine, which degrades instead of failing.
func (r Request) Validate() error {
	var errs []error
	if strings.TrimSpace(r.App.ClientID) == "" {
		errs = append(errs, ErrMissingClientID)
	}
	if r.App.Scopes == nil {
		errs = append(errs, ErrMissingScopes)
	}
	if c := r.App.AIPlatformConfidence; c < 0 || c > 100 {
		errs = append(errs, fmt.Errorf("app.ai_platform_confidence %d out of range 0..100", c))
	}
	return errors.Join(errs...)
}

// Options tune how requests become engine inputs.
type Options struct {
	// OrgDomain derives authorized_by.is_external when the request omits it.
	OrgDomain string
	// Now overrides the request's evaluation instant when non-zero.
	Now time.Time
	// DefaultNow applies when neither Now nor the request sets the instant.
	// Callers reading the wall clock set it here, never in the engine.
	DefaultNow time.Time
}

// ToInput validates r and maps it onto a risk.Input.
func (r Request) ToInput(opts Options) (risk.Input, error) {
	if err := r.Validate(); err != nil {
		return risk.Input{}, err
	}

	user := r.App.AuthorizedBy
	external := false
	if user.IsExternal != nil {
		external = *user.IsExternal
	} else if opts.OrgDomain != "" {
		external = IsExternalEmail(user.Email, opts.OrgDomain)
	}

	app := risk.AppMetadata{
		ClientID:             strings.TrimSpace(r.App.ClientID),
		Name:                 strings.TrimSpace(r.App.Name),
		Scopes:               scopelib.NormalizeScopes(r.App.Scopes),
		IsAIPlatform:         r.App.IsAIPlatform,
		AIPlatformConfidence: r.App.AIPlatformConfidence,
		AuthorizedBy: risk.UserContext{
			Email:        strings.ToLower(strings.TrimSpace(user.Email)),
			IsAdmin:      user.IsAdmin,
			IsSuperAdmin: user.IsSuperAdmin,
			IsExternal:   external,
			Role:         strings.TrimSpace(user.Role),
			Department:   strings.TrimSpace(user.Department),
		},
	}
	if app.Scopes == nil {
		app.Scopes = []string{}
	}
	if r.App.IsAIPlatform {
		app.AIPlatformVendor = risk.ParseVendor(r.App.AIPlatformVendor)
	}
	if r.App.FirstAuthorized != nil {
		app.FirstAuthorized = r.App.FirstAuthorized.UTC()
	}

	events := make([]risk.AuditEvent, 0, len(r.Events))
	for _, e := range r.Events {
		events = append(events, risk.AuditEvent{
			Timestamp:  e.Timestamp.UTC(),
			EventType:  risk.EventType(strings.ToLower(strings.TrimSpace(e.EventType))),
			Scopes:     e.Scopes,
			ActorEmail: e.ActorEmail,
		})
	}

	in := risk.Input{App: app, Events: events}
	switch {
	case !opts.Now.IsZero():
		in.Now = opts.Now.UTC()
	case r.Now != nil && !r.Now.IsZero():
		in.Now = r.Now.UTC()
	case !opts.DefaultNow.IsZero():
		in.Now = opts.DefaultNow.UTC()
	default:
		return risk.Input{}, ErrMissingNow
	}
	return in, nil
}
