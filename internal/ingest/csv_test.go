package ingest

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/japanese"
)

func TestReadCSV_UTF8WithBOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Description,Amount\nETC TOLL ROAD,1500\nSTARBUCKS,\"1,234.56\"\n")...)

	table, err := ReadCSV("card.csv", bytes.NewReader(data), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"Description", "Amount", SourceFileColumn}, table.Columns)
	require.Equal(t, 2, table.Len())
	assert.Equal(t, "ETC TOLL ROAD", table.Value(0, "Description"))
	assert.Equal(t, "1,234.56", table.Value(1, "Amount"))
	assert.Equal(t, "card.csv", table.Value(1, SourceFileColumn))
}

func TestReadCSV_SourceFileHeaderIsReserved(t *testing.T) {
	data := "Description,Amount,source_file\nETC,1500,exported.csv\n"

	table, err := ReadCSV("jan.csv", strings.NewReader(data), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"Description", "Amount", "source_file.1", SourceFileColumn}, table.Columns)
	assert.Equal(t, "jan.csv", table.Value(0, SourceFileColumn))
	assert.Equal(t, "exported.csv", table.Value(0, "source_file.1"))
}

func TestReadCSV_ShiftJISFallback(t *testing.T) {
	text := "利用日,利用店名・商品名,利用金額\n2024/01/15,ＥＴＣ　首都高速,1500\n2024/01/16,ｴﾈｵｽ ｶﾞｿﾘﾝ,-500\n"
	data, err := japanese.ShiftJIS.NewEncoder().String(text)
	require.NoError(t, err)

	table, err := ReadCSV("sjis.csv", strings.NewReader(data), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"利用日", "利用店名・商品名", "利用金額", SourceFileColumn}, table.Columns)
	assert.Equal(t, "ＥＴＣ　首都高速", table.Value(0, "利用店名・商品名"))
	assert.Equal(t, "ｴﾈｵｽ ｶﾞｿﾘﾝ", table.Value(1, "利用店名・商品名"))
	assert.Equal(t, "-500", table.Value(1, "利用金額"))
}

func TestReadCSV_ConfiguredOrder(t *testing.T) {
	text := "内容,金額\n書籍代,2000\n"
	data, err := japanese.EUCJP.NewEncoder().String(text)
	require.NoError(t, err)

	table, err := ReadCSV("euc.csv", strings.NewReader(data), []string{"utf-8", "eucjp"})
	require.NoError(t, err)
	assert.Equal(t, "書籍代", table.Value(0, "内容"))
}

func TestReadCSV_Unreadable(t *testing.T) {
	tests := []struct {
		name      string
		data      []byte
		encodings []string
	}{
		{
			name: "bytes invalid in every encoding",
			data: []byte("a,b\n\xff\xff,1\n"),
		},
		{
			name: "empty file",
			data: nil,
		},
		{
			name:      "unknown encoding names only",
			data:      []byte("a,b\n1,2\n"),
			encodings: []string{"klingon"},
		},
		{
			name: "broken quoting",
			data: []byte("a,b\n\"unterminated,1\n"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV("bad.csv", bytes.NewReader(tt.data), tt.encodings)
			assert.ErrorIs(t, err, ErrUnreadableFile)
		})
	}
}

func TestReadCSV_RaggedRowsAndHeaders(t *testing.T) {
	data := "Amount,,Amount\n100,x\n200,y,300,extra\n"

	table, err := ReadCSV("ragged.csv", strings.NewReader(data), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"Amount", "column_2", "Amount.1", "column_4", SourceFileColumn}, table.Columns)
	for _, rec := range table.Records {
		assert.Len(t, rec, len(table.Columns))
	}
	assert.Equal(t, "", table.Value(0, "Amount.1"))
	assert.Equal(t, "extra", table.Value(1, "column_4"))
}

func TestMerge(t *testing.T) {
	a := &Table{
		Columns: []string{"Description", "Amount", SourceFileColumn},
		Records: [][]string{{"ETC", "1500", "a.csv"}},
	}
	b := &Table{
		Columns: []string{"Amount", "Memo", SourceFileColumn},
		Records: [][]string{{"200", "note", "b.csv"}},
	}

	merged := Merge(a, nil, b)

	assert.Equal(t, []string{"Description", "Amount", SourceFileColumn, "Memo"}, merged.Columns)
	assert.Equal(t, [][]string{
		{"ETC", "1500", "a.csv", ""},
		{"", "200", "b.csv", "note"},
	}, merged.Records)
}

func TestTable_NilSafe(t *testing.T) {
	var table *Table

	assert.Equal(t, 0, table.Len())
	assert.Equal(t, -1, table.ColumnIndex("x"))
	assert.Equal(t, "", table.Value(0, "x"))
}

func TestKnownEncoding(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{name: "utf-8", want: true},
		{name: "UTF8", want: true},
		{name: "cp932", want: true},
		{name: "shift_jis", want: true},
		{name: " euc-jp ", want: true},
		{name: "klingon", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KnownEncoding(tt.name))
		})
	}
}
