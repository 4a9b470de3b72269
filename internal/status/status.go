// Package status classifies certificates into a validity status from date
// rules. The engine is a pure function of (certificate, today): no clock
// reads, no mutation, safe for concurrent use.
package status

import (
	"time"

	"github.com/mariner-tools/certtrack/constants"
	"github.com/mariner-tools/certtrack/internal/entity"
)

const isoDate = "2006-01-02"

// Config holds thresholds and the renewal-category tags. The thresholds are
// configuration, not constants: the intended windows differ per renewal type
// (annual renewals are actioned closer to the deadline than five-year ones).
type Config struct {
	ExpiringWindowDays    int      // default 182 (~6 months)
	AnnualLookaheadDays   int      // default 60 (~2 months)
	FiveYearLookaheadDays int      // default 182
	AnnualTags            []string // name substrings marking annual renewal
	FiveYearCategory      constants.Category
}

// DefaultConfig returns the production thresholds.
func DefaultConfig() Config {
	return Config{
		ExpiringWindowDays:    182,
		AnnualLookaheadDays:   60,
		FiveYearLookaheadDays: 182,
		AnnualTags:            constants.DefaultAnnualTags,
		FiveYearCategory:      constants.STCW,
	}
}

type Engine struct {
	cfg Config
}

func NewEngine(cfg Config) *Engine {
	if cfg.ExpiringWindowDays <= 0 {
		cfg.ExpiringWindowDays = 182
	}
	if cfg.AnnualLookaheadDays <= 0 {
		cfg.AnnualLookaheadDays = 60
	}
	if cfg.FiveYearLookaheadDays <= 0 {
		cfg.FiveYearLookaheadDays = 182
	}
	if cfg.AnnualTags == nil {
		cfg.AnnualTags = constants.DefaultAnnualTags
	}
	if cfg.FiveYearCategory == "" {
		cfg.FiveYearCategory = constants.STCW
	}
	return &Engine{cfg: cfg}
}

// Evaluate classifies cert for the given day. Today is truncated to date
// granularity first: time-of-day never affects the result. Rules are an
// ordered decision list; the first match wins.
func (e *Engine) Evaluate(cert entity.Certificate, today time.Time) constants.CertificateStatus {
	day := truncateToDay(today)

	expiry, hasExpiry := parseDate(cert.ExpiryDate)
	issued, hasIssued := parseDate(cert.IssuanceDate)

	if hasExpiry {
		if expiry.Before(day) {
			return constants.StatusExpired
		}
		if !expiry.After(day.AddDate(0, 0, e.cfg.ExpiringWindowDays)) {
			return constants.StatusExpiring
		}
	}

	rule := constants.ResolveRenewalRule(cert.Name, cert.Category, e.cfg.AnnualTags)

	if rule == constants.RenewalAnnual && hasIssued {
		nextDue := issued.AddDate(1, 0, 0)
		if nextDue.Before(day) {
			return constants.StatusRenewalSuggested
		}
		if !nextDue.After(day.AddDate(0, 0, e.cfg.AnnualLookaheadDays)) {
			return constants.StatusRenewalSuggested
		}
	}

	// Certificates in the general competency category without a printed
	// expiry follow an unofficial five-year validity convention. The result
	// is a suggestion, never a hard expiry.
	if rule == constants.RenewalFiveYear && !hasExpiry && hasIssued {
		fiveYearDue := issued.AddDate(5, 0, 0)
		if fiveYearDue.Before(day) {
			return constants.StatusRenewalSuggested
		}
		if !fiveYearDue.After(day.AddDate(0, 0, e.cfg.FiveYearLookaheadDays)) {
			return constants.StatusRenewalSuggested
		}
	}

	return constants.StatusValid
}

// EvaluateNow is a convenience for callers that want wall-clock "today".
func (e *Engine) EvaluateNow(cert entity.Certificate) constants.CertificateStatus {
	return e.Evaluate(cert, time.Now())
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func parseDate(s *string) (time.Time, bool) {
	if s == nil || *s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(isoDate, *s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
