package mock

import "github.com/fwojciec/edgarscan"

var _ edgarscan.Converter = (*Converter)(nil)

// Converter is a mock implementation of edgarscan.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}

var _ edgarscan.Sanitizer = (*Sanitizer)(nil)

// Sanitizer is a mock implementation of edgarscan.Sanitizer.
type Sanitizer struct {
	SanitizeFn func(html string) string
}

func (s *Sanitizer) Sanitize(html string) string {
	return s.SanitizeFn(html)
}
