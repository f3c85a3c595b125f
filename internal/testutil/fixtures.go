package testutil

import (
	"testing"

	"golang.org/x/text/encoding/japanese"

	"github.com/Veraticus/meisai/internal/model"
)

// TestCategories is a small English category list used across tests.
var TestCategories = []string{"Travel", "Fuel", "Food", "Books"}

// TestRules classifies the rows of StatementCSV.
var TestRules = []model.Rule{
	{Keyword: "ETC", Category: "Travel"},
	{Keyword: "ENEOS", Category: "Fuel"},
}

// StatementCSV is a small card statement export in UTF-8.
const StatementCSV = "Date,Description,Amount\n" +
	"2024-01-15,ETC TOLL ROAD,1500\n" +
	"2024-01-16,ＥＮＥＯＳ Shibuya,\"4,200\"\n" +
	"2024-01-17,STARBUCKS,480.50\n"

// JapaneseStatement is a card statement export with Japanese headers.
const JapaneseStatement = "利用日,利用店名・商品名,利用金額\n" +
	"2024/01/15,ＥＴＣ　首都高速,1500\n" +
	"2024/01/16,紀伊國屋書店,2000\n"

// ShiftJIS encodes s as Shift_JIS, as exported by most Japanese card issuers.
func ShiftJIS(t *testing.T, s string) []byte {
	t.Helper()

	out, err := japanese.ShiftJIS.NewEncoder().String(s)
	if err != nil {
		t.Fatalf("failed to encode Shift_JIS: %v", err)
	}
	return []byte(out)
}
