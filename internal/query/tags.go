package query

import "strings"

// TagSet is the ordered, deduplicated set of tags pending submission with
// a question. Entries are trimmed and lower-cased on the way in; order of
// first occurrence is preserved.
type TagSet struct {
	tags []string
}

// Normalize trims and lower-cases a raw tag.
func Normalize(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// Add inserts a normalized tag. Empty and duplicate tags are ignored;
// the return value reports whether the set changed.
func (t *TagSet) Add(raw string) bool {
	tag := Normalize(raw)
	if tag == "" {
		return false
	}
	for _, existing := range t.tags {
		if existing == tag {
			return false
		}
	}
	t.tags = append(t.tags, tag)
	return true
}

// Remove deletes a tag by exact match.
func (t *TagSet) Remove(tag string) bool {
	for i, existing := range t.tags {
		if existing == tag {
			t.tags = append(t.tags[:i], t.tags[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveLast drops the most recently added tag.
func (t *TagSet) RemoveLast() bool {
	if len(t.tags) == 0 {
		return false
	}
	t.tags = t.tags[:len(t.tags)-1]
	return true
}

// List returns the tags in insertion order.
func (t *TagSet) List() []string {
	out := make([]string, len(t.tags))
	copy(out, t.tags)
	return out
}

func (t *TagSet) Len() int { return len(t.tags) }

// Clear empties the set.
func (t *TagSet) Clear() { t.tags = nil }
