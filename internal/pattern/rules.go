package pattern

// UpsertRule appends {keyword, category}, first removing every rule whose
// normalised keyword equals the new one. A keyword that normalises to the
// empty string is refused and the original slice is returned with false.
func UpsertRule(rules []Rule, keyword, category string) ([]Rule, bool) {
	key := Normalize(keyword)
	if key == "" {
		return rules, false
	}

	out := make([]Rule, 0, len(rules)+1)
	for _, r := range rules {
		if Normalize(r.Keyword) != key {
			out = append(out, r)
		}
	}

	return append(out, Rule{Keyword: keyword, Category: category}), true
}

// DeleteRule removes every rule whose normalised keyword equals keyword.
// The second return value reports whether anything was removed.
func DeleteRule(rules []Rule, keyword string) ([]Rule, bool) {
	key := Normalize(keyword)

	out := make([]Rule, 0, len(rules))
	for _, r := range rules {
		if Normalize(r.Keyword) != key {
			out = append(out, r)
		}
	}

	return out, len(out) != len(rules)
}

// ReplaceRules returns a cleaned copy of a bulk-edited rule table. Rules with
// an empty keyword are dropped; when several rules share a normalised keyword
// the later one wins and keeps its own position.
func ReplaceRules(rules []Rule) []Rule {
	last := make(map[string]int, len(rules))
	for i, r := range rules {
		key := Normalize(r.Keyword)
		if key == "" {
			continue
		}
		last[key] = i
	}

	out := make([]Rule, 0, len(last))
	for i, r := range rules {
		key := Normalize(r.Keyword)
		if key == "" || last[key] != i {
			continue
		}
		out = append(out, r)
	}

	return out
}

// HasDuplicates reports whether two rules share a normalised keyword.
func HasDuplicates(rules []Rule) bool {
	seen := make(map[string]struct{}, len(rules))
	for _, r := range rules {
		key := Normalize(r.Keyword)
		if _, ok := seen[key]; ok {
			return true
		}
		seen[key] = struct{}{}
	}
	return false
}
