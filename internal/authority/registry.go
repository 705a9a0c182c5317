package authority

import (
	"regexp"

	"careguard/internal/platform/config"
)

// Registry maps jurisdictions to their registry clients. It is built once at
// startup from configuration, which makes "jurisdiction not configured" an
// explicit, injectable condition instead of an environment lookup at call
// time. Not every jurisdiction needs to be wired up; missing ones degrade to
// manual review.
type Registry struct {
	clients map[Jurisdiction]Client
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{clients: make(map[Jurisdiction]Client)}
}

// FromConfig builds a registry of HTTP clients for every jurisdiction with a
// configured endpoint.
func FromConfig(cfg config.Config) *Registry {
	r := NewRegistry()
	for state, ac := range cfg.WWCC {
		j, err := ParseJurisdiction(state)
		if err != nil {
			continue
		}
		r.Register(j, NewHTTPClient(j, ac.Endpoint, ac.APIKey, cfg.ExternalTimeout))
	}
	return r
}

// Register adds or replaces the client for a jurisdiction.
func (r *Registry) Register(j Jurisdiction, c Client) {
	r.clients[j] = c
}

// Lookup returns the client for a jurisdiction, if one is configured.
func (r *Registry) Lookup(j Jurisdiction) (Client, bool) {
	c, ok := r.clients[j]
	return c, ok
}

// Configured reports whether a jurisdiction has a registry client.
func (r *Registry) Configured(j Jurisdiction) bool {
	_, ok := r.clients[j]
	return ok
}

// manualVerificationURLs are the public registers where a card can be checked
// by hand. Surfaced to users when automated verification is unavailable.
var manualVerificationURLs = map[Jurisdiction]string{
	NSW: "https://www.kidsguardian.nsw.gov.au/child-safe-organisations/working-with-children-check/verify-wwcc",
	VIC: "https://www.workingwithchildren.vic.gov.au/home/applications+and+renewals/check+the+status+of+a+check",
	QLD: "https://www.bluecard.qld.gov.au/blue-card-register",
	WA:  "https://www.workingwithchildren.wa.gov.au/check-registration/online-register",
}

// ManualVerificationURL returns the public register URL for a jurisdiction,
// or empty if none is published.
func ManualVerificationURL(j Jurisdiction) string {
	return manualVerificationURLs[j]
}

// Card number formats differ per state; only the four largest jurisdictions
// publish a stable format. The table is advisory: a mismatch is logged by
// the handler, never rejected, because registries accept renumbered legacy
// cards that predate these formats.
var numberFormats = map[Jurisdiction]*regexp.Regexp{
	NSW: regexp.MustCompile(`^WWC\d{7}[A-Z]$`),
	VIC: regexp.MustCompile(`^\d{8}$`),
	QLD: regexp.MustCompile(`^\d{6}/\d{2}$`),
	WA:  regexp.MustCompile(`^HCW\d{7}$`),
}

// KnownNumberFormat reports whether a card number matches the jurisdiction's
// published format. Returns true for jurisdictions without a published
// format.
func KnownNumberFormat(j Jurisdiction, number string) bool {
	re, ok := numberFormats[j]
	if !ok {
		return true
	}
	return re.MatchString(number)
}
