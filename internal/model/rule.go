// Package model defines the core data structures for the meisai application.
package model

// Rule maps a keyword fragment to a category. Rules are kept in an ordered
// slice; the first rule whose keyword occurs in a transaction wins.
type Rule struct {
	Keyword  string `json:"keyword"`
	Category string `json:"category"`
}
