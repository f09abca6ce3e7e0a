package model

import "time"

// Content represents a stored media file and its keyword tags.
// This is a pure domain model with no database-specific dependencies or tags.
// It can be used across layers (HTTP, service, storage) without coupling to persistence.
type Content struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	StoragePath string    `json:"-"`
	AccessCount int64     `json:"access_count"`
	Keywords    []Keyword `json:"keywords"`
	CreatedAt   time.Time `json:"created_at"`
}

// KeywordNames returns the keyword names in association order.
func (c *Content) KeywordNames() []string {
	names := make([]string, 0, len(c.Keywords))
	for _, k := range c.Keywords {
		names = append(names, k.Name)
	}
	return names
}

// Keyword is a canonical (normalized) tag shared by many contents.
// The name is never raw user input.
type Keyword struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
