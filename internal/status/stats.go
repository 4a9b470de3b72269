package status

import (
	"time"

	"github.com/mariner-tools/certtrack/constants"
	"github.com/mariner-tools/certtrack/internal/entity"
)

// Summary holds per-status counts for the dashboard stat cards.
type Summary struct {
	Total            int `json:"total"`
	Valid            int `json:"valid"`
	Expiring         int `json:"expiring"`
	Expired          int `json:"expired"`
	RenewalSuggested int `json:"renewal_suggested"`
}

// Summarize evaluates every certificate for the given day and tallies the
// results.
func (e *Engine) Summarize(certs []entity.Certificate, today time.Time) Summary {
	s := Summary{Total: len(certs)}
	for _, c := range certs {
		switch e.Evaluate(c, today) {
		case constants.StatusValid:
			s.Valid++
		case constants.StatusExpiring:
			s.Expiring++
		case constants.StatusExpired:
			s.Expired++
		case constants.StatusRenewalSuggested:
			s.RenewalSuggested++
		}
	}
	return s
}
