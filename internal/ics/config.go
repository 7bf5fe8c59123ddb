package ics

import "schedscan/internal/config"

// TermFromConfig resolves the configured export term in the configured
// timezone.
func TermFromConfig(cfg *config.Config) (Term, error) {
	loc := cfg.Location()
	start, end, err := cfg.Export.Term(loc)
	if err != nil {
		return Term{}, err
	}
	return Term{Start: start, End: end, Location: loc}, nil
}
