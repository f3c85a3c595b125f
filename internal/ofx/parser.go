// Package ofx reads OFX and QFX statements into ingest tables.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"regexp"
	"strings"

	"github.com/aclindsa/ofxgo"

	"github.com/Veraticus/meisai/internal/ingest"
)

// Columns produced for every OFX transaction, before ingest.SourceFileColumn.
const (
	ColumnDate        = "Date"
	ColumnDescription = "Description"
	ColumnMemo        = "Memo"
	ColumnAmount      = "Amount"
	ColumnType        = "Type"
	ColumnFITID       = "FITID"
	ColumnAccount     = "Account"
)

var columns = []string{
	ColumnDate, ColumnDescription, ColumnMemo, ColumnAmount,
	ColumnType, ColumnFITID, ColumnAccount, ingest.SourceFileColumn,
}

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	tagFixRegex   = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// Parser implements ingest.StatementParser for OFX/QFX files.
type Parser struct{}

// NewParser creates a new OFX parser.
func NewParser() *Parser {
	return &Parser{}
}

// preprocessOFX fixes common formatting issues in OFX files.
func (p *Parser) preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")

	// SEVERITY must be upper case
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	// SGML-style files sometimes drop the closing bracket of a bare tag
	return tagFixRegex.ReplaceAllString(content, "$1>")
}

// ParseTable parses an OFX/QFX statement. Amounts are expressed as spending:
// debits are positive and refunds or payments negative.
func (p *Parser) ParseTable(ctx context.Context, name string, reader io.Reader) (*ingest.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	table := &ingest.Table{Columns: append([]string(nil), columns...)}
	var bankStmts, ccStmts int

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			bankStmts++
			p.appendTransactions(table, stmt.BankTranList, string(stmt.BankAcctFrom.AcctID), name)
		}
	}

	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			ccStmts++
			p.appendTransactions(table, stmt.BankTranList, string(stmt.CCAcctFrom.AcctID), name)
		}
	}

	if bankStmts+ccStmts == 0 {
		return nil, fmt.Errorf("failed to parse OFX file: no bank or credit card statements")
	}

	slog.Info("Parsed OFX file",
		"file", name,
		"total_transactions", table.Len(),
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return table, nil
}

func (p *Parser) appendTransactions(table *ingest.Table, list *ofxgo.TransactionList, accountID, source string) {
	if list == nil {
		return
	}
	for _, tx := range list.Transactions {
		table.Records = append(table.Records, p.convertTransaction(tx, accountID, source))
	}
}

// convertTransaction turns one OFX transaction into a table record.
func (p *Parser) convertTransaction(tx ofxgo.Transaction, accountID, source string) []string {
	spent := new(big.Rat).Neg(&tx.TrnAmt.Rat)

	return []string{
		tx.DtPosted.Format("2006-01-02"),
		p.extractMerchantName(tx),
		strings.TrimSpace(string(tx.Memo)),
		spent.FloatString(2),
		tx.TrnType.String(),
		string(tx.FiTID),
		accountID,
		source,
	}
}

// extractMerchantName tries to get a clean merchant name from OFX data.
func (p *Parser) extractMerchantName(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}

	name := string(tx.Name)

	// MEMO often has the merchant when NAME is generic
	if tx.Memo != "" && isGenericDescription(name) {
		name = string(tx.Memo)
	}

	name = strings.TrimSpace(name)

	prefixes := []string{
		"POS PURCHASE ",
		"PURCHASE AUTHORIZED ON ",
		"DEBIT CARD PURCHASE ",
		"ACH DEBIT ",
		"CHECK CARD ",
		"VISA PURCHASE ",
		"MC PURCHASE ",
		"DEBIT PURCHASE ",
	}

	for _, prefix := range prefixes {
		// Prefixes are ASCII, so comparing the same byte span is safe.
		if len(name) >= len(prefix) && strings.EqualFold(name[:len(prefix)], prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// "MM/DD " date prefix
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	return name
}

// isGenericDescription checks if a transaction name is too generic.
func isGenericDescription(name string) bool {
	generic := []string{
		"DEBIT",
		"CREDIT",
		"PURCHASE",
		"PAYMENT",
		"POS TRANSACTION",
		"CARD PURCHASE",
	}

	upperName := strings.ToUpper(strings.TrimSpace(name))
	for _, g := range generic {
		if upperName == g {
			return true
		}
	}
	return false
}
