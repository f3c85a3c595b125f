package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuggestColumns(t *testing.T) {
	tests := []struct {
		name            string
		columns         []string
		wantDescription string
		wantAmount      string
	}{
		{
			name:            "english headers",
			columns:         []string{"Date", "Transaction Details", "Amount", SourceFileColumn},
			wantDescription: "Transaction Details",
			wantAmount:      "Amount",
		},
		{
			name:            "description preferred over details",
			columns:         []string{"Details", "Description", "Amount"},
			wantDescription: "Description",
			wantAmount:      "Amount",
		},
		{
			name:            "japanese card export",
			columns:         []string{"利用日", "利用店名・商品名", "支払方法", "利用金額"},
			wantDescription: "利用店名・商品名",
			wantAmount:      "利用金額",
		},
		{
			name:            "nothing matches",
			columns:         []string{"a", "b"},
			wantDescription: "a",
			wantAmount:      "a",
		},
		{
			name:            "source column is never suggested",
			columns:         []string{SourceFileColumn, "x"},
			wantDescription: "x",
			wantAmount:      "x",
		},
		{
			name:    "no columns",
			columns: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			desc, amount := SuggestColumns(tt.columns)
			assert.Equal(t, tt.wantDescription, desc)
			assert.Equal(t, tt.wantAmount, amount)
		})
	}
}
