package audit

import (
	"context"
	"regexp"

	"github.com/unifecaf/triagebot/pkg/domain"
	"github.com/unifecaf/triagebot/pkg/ports"
)

// Mask replaces redacted values.
const Mask = "***"

type redactor struct {
	next     ports.AuditExporter
	patterns []*regexp.Regexp
}

// Redact wraps next so that attributes whose key matches any pattern are
// exported as Mask. The live session is not modified.
func Redact(next ports.AuditExporter, patterns []string) ports.AuditExporter {
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		compiled[i] = regexp.MustCompile(p)
	}
	return &redactor{next: next, patterns: compiled}
}

func (r *redactor) Export(ctx context.Context, s *domain.Session) (string, error) {
	masked := s.Clone()
	for _, a := range s.Attributes.Entries() {
		for _, p := range r.patterns {
			if p.MatchString(a.Key) {
				masked.Attributes.Set(a.Key, Mask)
				break
			}
		}
	}
	return r.next.Export(ctx, masked)
}
