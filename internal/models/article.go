package models

import (
	"fmt"
	"strings"
)

// Article represents a single fetched Wikipedia page during pipeline
// execution. It is transient: built from one search-and-fetch round trip
// and discarded once a Context has been accepted or rejected.
type Article struct {
	Title    string `json:"title"`
	HTML     string `json:"html"`     // Rendered page body
	Wikitext string `json:"wikitext"` // Raw markup source
}

// Context is the retrieval pipeline's output unit: the article title, a
// capped relevance summary, structured infobox facts (possibly augmented
// with recovered date fields), and the canonical article URL. Constructed
// once per accepted article and immutable afterwards.
type Context struct {
	Title   string   `json:"title"`
	Summary string   `json:"summary"`
	Infobox *Infobox `json:"infobox"`
	URL     string   `json:"url"`
}

// ArticleURL builds the canonical Wikipedia URL for a page title.
func ArticleURL(title string) string {
	return fmt.Sprintf("https://en.wikipedia.org/wiki/%s", strings.ReplaceAll(title, " ", "_"))
}

// Infobox holds cleaned key/value facts extracted from an article's
// infobox markup. Keys are free-form Wikipedia field names, preserved in
// first-occurrence order. Empty keys and empty values are never stored.
type Infobox struct {
	keys   []string
	values map[string]string
}

// NewInfobox creates an empty infobox.
func NewInfobox() *Infobox {
	return &Infobox{values: make(map[string]string)}
}

// Set stores a fact, preserving insertion order for new keys. Setting an
// existing key overwrites its value without changing its position. Empty
// keys or values are ignored.
func (ib *Infobox) Set(key, value string) {
	if key == "" || value == "" {
		return
	}
	if _, exists := ib.values[key]; !exists {
		ib.keys = append(ib.keys, key)
	}
	ib.values[key] = value
}

// Get returns the value for a key and whether it exists.
func (ib *Infobox) Get(key string) (string, bool) {
	if ib == nil {
		return "", false
	}
	v, ok := ib.values[key]
	return v, ok
}

// Has reports whether a key is present.
func (ib *Infobox) Has(key string) bool {
	_, ok := ib.Get(key)
	return ok
}

// Keys returns the field names in first-occurrence order.
func (ib *Infobox) Keys() []string {
	if ib == nil {
		return nil
	}
	return ib.keys
}

// Len returns the number of stored facts.
func (ib *Infobox) Len() int {
	if ib == nil {
		return 0
	}
	return len(ib.keys)
}

// Merge copies all facts from other into ib. Facts in other overwrite
// same-named facts already present.
func (ib *Infobox) Merge(other *Infobox) {
	if other == nil {
		return
	}
	for _, k := range other.keys {
		ib.Set(k, other.values[k])
	}
}
