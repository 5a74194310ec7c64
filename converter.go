package edgarscan

// Converter converts HTML to Markdown.
type Converter interface {
	// Convert transforms HTML content into Markdown.
	// The input should be sanitised HTML (e.g., from a Sanitizer).
	Convert(html string) (string, error)
}

// Sanitizer strips active and presentational markup from HTML.
type Sanitizer interface {
	Sanitize(html string) string
}
