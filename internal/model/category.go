package model

import "strings"

// DefaultSentinel is the label every unmatched row falls back to.
const DefaultSentinel = "🔴 未分類"

// DefaultCategories is the category list a fresh workspace starts with.
var DefaultCategories = []string{
	DefaultSentinel,
	"旅費・交通費",
	"燃料費",
	"福利厚生費",
	"通信費",
	"材料費",
	"消耗品",
	"会費",
	"書籍",
	"交際費",
	"修繕費",
	"その他",
}

// CategorySet is an ordered list of category labels that always contains
// its sentinel label.
type CategorySet struct {
	sentinel string
	labels   []string
}

// NewCategorySet builds a category set from user supplied labels.
// Labels are trimmed, blanks dropped and duplicates collapsed to their first
// occurrence. The sentinel is inserted at the front when it is missing.
func NewCategorySet(sentinel string, labels []string) CategorySet {
	sentinel = strings.TrimSpace(sentinel)
	if sentinel == "" {
		sentinel = DefaultSentinel
	}

	seen := make(map[string]struct{}, len(labels)+1)
	cleaned := make([]string, 0, len(labels)+1)
	for _, label := range labels {
		label = strings.TrimSpace(label)
		if label == "" {
			continue
		}
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		cleaned = append(cleaned, label)
	}

	if _, ok := seen[sentinel]; !ok {
		cleaned = append([]string{sentinel}, cleaned...)
	}

	return CategorySet{sentinel: sentinel, labels: cleaned}
}

// Sentinel returns the "unclassified" label.
func (c CategorySet) Sentinel() string {
	if c.sentinel == "" {
		return DefaultSentinel
	}
	return c.sentinel
}

// Labels returns a copy of the labels in canonical order.
func (c CategorySet) Labels() []string {
	if len(c.labels) == 0 {
		return []string{c.Sentinel()}
	}
	out := make([]string, len(c.labels))
	copy(out, c.labels)
	return out
}

// Assignable returns every label except the sentinel.
func (c CategorySet) Assignable() []string {
	out := make([]string, 0, len(c.labels))
	for _, label := range c.labels {
		if label != c.Sentinel() {
			out = append(out, label)
		}
	}
	return out
}

// Contains reports whether label is part of the set.
func (c CategorySet) Contains(label string) bool {
	if label == c.Sentinel() {
		return true
	}
	for _, l := range c.labels {
		if l == label {
			return true
		}
	}
	return false
}

// IsSentinel reports whether label is the sentinel.
func (c CategorySet) IsSentinel(label string) bool {
	return label == c.Sentinel()
}

// Index returns the position of label, or -1.
func (c CategorySet) Index(label string) int {
	for i, l := range c.Labels() {
		if l == label {
			return i
		}
	}
	return -1
}

// Len returns the number of labels.
func (c CategorySet) Len() int {
	return len(c.Labels())
}
