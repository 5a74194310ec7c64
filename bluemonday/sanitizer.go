// Package bluemonday strips active and presentational markup from
// filing documents before conversion.
package bluemonday

import (
	"github.com/fwojciec/edgarscan"
	"github.com/microcosm-cc/bluemonday"
)

var _ edgarscan.Sanitizer = (*Sanitizer)(nil)

// Sanitizer cleans filing HTML with a user-generated-content policy.
// Tables, headings, lists and links survive; scripts, styles and
// inline formatting attributes do not.
type Sanitizer struct {
	policy *bluemonday.Policy
}

// NewSanitizer creates a new Sanitizer.
func NewSanitizer() *Sanitizer {
	p := bluemonday.UGCPolicy()
	p.RequireNoFollowOnLinks(false)
	return &Sanitizer{policy: p}
}

// Sanitize returns html with disallowed elements and attributes removed.
func (s *Sanitizer) Sanitize(html string) string {
	return s.policy.Sanitize(html)
}
