// Package ofx imports bank and credit card statements from OFX/QFX files.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/aclindsa/ofxgo"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/runway/internal/model"
	"github.com/Veraticus/runway/internal/money"
)

// StatementKind distinguishes bank statements from credit card statements.
type StatementKind string

// Statement kinds.
const (
	KindBank       StatementKind = "BANK"
	KindCreditCard StatementKind = "CREDIT_CARD"
)

// idNamespace scopes deterministic transaction IDs derived from FITIDs.
var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("runway/ofx"))

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	tagFixRegex   = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// Statement is one account's worth of imported transactions.
type Statement struct {
	AccountID    string
	CurrencyCode string
	Kind         StatementKind
	Transactions []model.Transaction
}

// Parser implements OFX/QFX file parsing.
type Parser struct {
	defaultCurrency string
}

// NewParser creates a parser that assumes USD when a statement has no CURDEF.
func NewParser() *Parser {
	return NewParserWithCurrency("USD")
}

// NewParserWithCurrency creates a parser with a custom fallback currency.
func NewParserWithCurrency(code string) *Parser {
	code = money.NormalizeCode(code)
	if code == "" {
		code = "USD"
	}
	return &Parser{defaultCurrency: code}
}

// preprocessOFX fixes common formatting issues in OFX files.
func (p *Parser) preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")

	// SEVERITY must be upper case
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	// SGML exports sometimes drop the closing bracket of a bare tag line
	return tagFixRegex.ReplaceAllString(content, "$1>")
}

func (p *Parser) parse(ctx context.Context, reader io.Reader) (*ofxgo.Response, error) {
	if ctx == nil {
		return nil, fmt.Errorf("context cannot be nil")
	}
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
	return resp, nil
}

// ParseStatements parses an OFX/QFX file into one Statement per account.
func (p *Parser) ParseStatements(ctx context.Context, reader io.Reader) ([]Statement, error) {
	resp, err := p.parse(ctx, reader)
	if err != nil {
		return nil, err
	}

	var statements []Statement

	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok {
			continue
		}
		statements = append(statements, p.statement(
			KindBank, string(stmt.BankAcctFrom.AcctID), stmt.CurDef.String(), stmt.BankTranList))
	}

	for _, msg := range resp.CreditCard {
		stmt, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok {
			continue
		}
		statements = append(statements, p.statement(
			KindCreditCard, string(stmt.CCAcctFrom.AcctID), stmt.CurDef.String(), stmt.BankTranList))
	}

	var total int
	for _, s := range statements {
		total += len(s.Transactions)
	}
	slog.Info("Parsed OFX file",
		"statements", len(statements),
		"total_transactions", total)

	return statements, nil
}

// ParseFile parses an OFX/QFX file and returns the transactions of every statement.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader) ([]model.Transaction, error) {
	statements, err := p.ParseStatements(ctx, reader)
	if err != nil {
		return nil, err
	}
	var transactions []model.Transaction
	for _, s := range statements {
		transactions = append(transactions, s.Transactions...)
	}
	return transactions, nil
}

func (p *Parser) statement(kind StatementKind, accountID, curDef string, list *ofxgo.TransactionList) Statement {
	code := money.NormalizeCode(curDef)
	if code == "" || code == "XXX" {
		code = p.defaultCurrency
	}

	s := Statement{AccountID: accountID, CurrencyCode: code, Kind: kind}
	if list == nil {
		return s
	}

	for _, ofxTx := range list.Transactions {
		tx, ok := p.convertTransaction(ofxTx, accountID, code)
		if !ok {
			continue
		}
		s.Transactions = append(s.Transactions, tx)
	}
	return s
}

// convertTransaction maps an OFX transaction onto the ledger model. The sign of
// TRNAMT decides between income and expense; zero amounts are dropped.
func (p *Parser) convertTransaction(ofxTx ofxgo.Transaction, accountID, currencyCode string) (model.Transaction, bool) {
	amount, err := decimal.NewFromString(ofxTx.TrnAmt.FloatString(8))
	if err != nil {
		slog.Warn("Skipping OFX transaction with unreadable amount",
			"account", accountID,
			"fitid", string(ofxTx.FiTID),
			"error", err)
		return model.Transaction{}, false
	}
	if amount.IsZero() {
		slog.Debug("Skipping zero-amount OFX transaction",
			"account", accountID,
			"fitid", string(ofxTx.FiTID))
		return model.Transaction{}, false
	}

	txType := model.TransactionTypeExpense
	if amount.IsPositive() {
		txType = model.TransactionTypeIncome
	}

	posted := ofxTx.DtPosted.Time
	return model.Transaction{
		ID:           transactionID(accountID, string(ofxTx.FiTID)),
		Date:         time.Date(posted.Year(), posted.Month(), posted.Day(), 0, 0, 0, 0, time.UTC),
		Type:         txType,
		Amount:       amount.Abs(),
		CurrencyCode: currencyCode,
		AccountID:    accountID,
		Note:         p.extractMerchantName(ofxTx),
	}, true
}

// transactionID is stable across re-imports of the same FITID so saving a
// statement twice replaces rather than duplicates.
func transactionID(accountID, fitID string) string {
	if fitID == "" {
		return uuid.NewString()
	}
	return uuid.NewSHA1(idNamespace, []byte(accountID+"/"+fitID)).String()
}

// extractMerchantName tries to get a clean merchant name from OFX data.
func (p *Parser) extractMerchantName(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return string(tx.Payee.Name)
	}

	name := string(tx.Name)
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
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// Leading "MM/DD "
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	return name
}

func isGenericDescription(name string) bool {
	switch strings.ToUpper(name) {
	case "DEBIT", "CREDIT", "PURCHASE", "PAYMENT", "POS TRANSACTION", "CARD PURCHASE":
		return true
	}
	return false
}

// GetAccounts extracts unique account IDs from the OFX file.
func (p *Parser) GetAccounts(ctx context.Context, reader io.Reader) ([]string, error) {
	resp, err := p.parse(ctx, reader)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var accounts []string
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			accounts = append(accounts, id)
		}
	}

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			add(string(stmt.BankAcctFrom.AcctID))
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			add(string(stmt.CCAcctFrom.AcctID))
		}
	}

	return accounts, nil
}
