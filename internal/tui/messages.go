package tui

import "github.com/Veraticus/meisai/internal/model"

// reclassifiedMsg carries the dataset after rules were rerun.
type reclassifiedMsg struct {
	err     error
	rows    []model.Row
	changed int
}

// savedMsg reports how many edits were written back.
type savedMsg struct {
	err   error
	saved int
}
