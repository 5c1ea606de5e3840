package snapshot

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/Veraticus/runway/internal/common"
	"github.com/Veraticus/runway/internal/model"
	"github.com/Veraticus/runway/internal/money"
)

// Document is the YAML form of a ledger. Amounts and dates are written as
// strings ("12.50", "2024-01-31"). References between entities may use either
// the target's id or its name.
type Document struct {
	Accounts     []AccountEntry     `yaml:"accounts"`
	Categories   []CategoryEntry    `yaml:"categories"`
	Transactions []TransactionEntry `yaml:"transactions"`
	Rules        []RuleEntry        `yaml:"recurring_rules"`
	Investments  []InvestmentEntry  `yaml:"investments"`
	Projects     []ProjectEntry     `yaml:"projects"`
}

// AccountEntry is an account in a Document.
type AccountEntry struct {
	ID             string `yaml:"id"`
	Name           string `yaml:"name"`
	Type           string `yaml:"type"`
	Currency       string `yaml:"currency"`
	InitialBalance string `yaml:"initial_balance"`
}

// CategoryEntry is a category in a Document.
type CategoryEntry struct {
	ID     string `yaml:"id"`
	Name   string `yaml:"name"`
	Type   string `yaml:"type"`
	System bool   `yaml:"system"`
}

// TransactionEntry is a transaction in a Document.
type TransactionEntry struct {
	ID           string `yaml:"id"`
	Date         string `yaml:"date"`
	Type         string `yaml:"type"`
	Amount       string `yaml:"amount"`
	Currency     string `yaml:"currency"`
	Account      string `yaml:"account"`
	ToAccount    string `yaml:"to_account"`
	TargetAmount string `yaml:"target_amount"`
	Category     string `yaml:"category"`
	Investment   string `yaml:"investment"`
	Project      string `yaml:"project"`
	Note         string `yaml:"note"`
}

// RuleEntry is a recurring rule in a Document.
type RuleEntry struct {
	Active    *bool  `yaml:"active"`
	ID        string `yaml:"id"`
	Name      string `yaml:"name"`
	Type      string `yaml:"type"`
	Amount    string `yaml:"amount"`
	Currency  string `yaml:"currency"`
	Frequency string `yaml:"frequency"`
	StartDate string `yaml:"start_date"`
	EndDate   string `yaml:"end_date"`
	Account   string `yaml:"account"`
	Category  string `yaml:"category"`
	Interval  int    `yaml:"interval"`
}

// InvestmentEntry is an investment in a Document.
type InvestmentEntry struct {
	ID            string `yaml:"id"`
	Name          string `yaml:"name"`
	Type          string `yaml:"type"`
	Status        string `yaml:"status"`
	Currency      string `yaml:"currency"`
	InitialAmount string `yaml:"initial_amount"`
	CurrentAmount string `yaml:"current_amount"`
	PurchasePrice string `yaml:"purchase_price"`
	SalvageValue  string `yaml:"salvage_value"`
	UsefulLife    string `yaml:"useful_life"`
	Depreciation  string `yaml:"depreciation"`
	InterestRate  string `yaml:"interest_rate"`
	StartDate     string `yaml:"start_date"`
	EndDate       string `yaml:"end_date"`
	Project       string `yaml:"project"`
}

// ProjectEntry is a project in a Document.
type ProjectEntry struct {
	ID        string `yaml:"id"`
	Owner     string `yaml:"owner"`
	Name      string `yaml:"name"`
	Type      string `yaml:"type"`
	Status    string `yaml:"status"`
	StartDate string `yaml:"start_date"`
	EndDate   string `yaml:"end_date"`
	Budget    string `yaml:"budget"`
	Currency  string `yaml:"currency"`
}

// Decode reads a YAML document. Unknown keys are rejected.
func Decode(r io.Reader) (*Document, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return &doc, nil
		}
		return nil, fmt.Errorf("failed to decode ledger document: %w", err)
	}
	return &doc, nil
}

// Parse decodes a YAML document and converts it into a ledger.
func Parse(r io.Reader) (Ledger, error) {
	doc, err := Decode(r)
	if err != nil {
		return Ledger{}, err
	}
	return doc.Ledger()
}

// Ledger converts the document into model entities. Entries without an id get a
// random UUID. Every problem found is reported, joined into one error.
func (d *Document) Ledger() (Ledger, error) {
	c := newConverter(d)

	var l Ledger
	for i := range d.Categories {
		l.Categories = append(l.Categories, c.category(i, &d.Categories[i]))
	}
	for i := range d.Accounts {
		l.Accounts = append(l.Accounts, c.account(i, &d.Accounts[i]))
	}
	for i := range d.Transactions {
		l.Transactions = append(l.Transactions, c.transaction(i, &d.Transactions[i]))
	}
	for i := range d.Rules {
		l.Rules = append(l.Rules, c.rule(i, &d.Rules[i]))
	}
	for i := range d.Investments {
		l.Investments = append(l.Investments, c.investment(i, &d.Investments[i]))
	}
	for i := range d.Projects {
		l.Projects = append(l.Projects, c.project(i, &d.Projects[i]))
	}

	if err := errors.Join(c.errs...); err != nil {
		return Ledger{}, err
	}
	return l, nil
}

// refs resolves references of one entity kind by id or name.
type refs struct {
	byID   map[string]bool
	byName map[string]string
}

func (r refs) add(id, name string) {
	r.byID[id] = true
	if name != "" {
		r.byName[name] = id
	}
}

func (r refs) resolve(ref string) (string, bool) {
	if ref == "" || r.byID[ref] {
		return ref, true
	}
	if id, ok := r.byName[ref]; ok {
		return id, true
	}
	return ref, false
}

type converter struct {
	accounts    refs
	categories  refs
	investments refs
	projects    refs
	currencies  map[string]string // account id -> currency
	errs        []error
}

func newRefs() refs {
	return refs{byID: map[string]bool{}, byName: map[string]string{}}
}

// newConverter assigns IDs up front so entries can reference entities declared
// later in the document.
func newConverter(d *Document) *converter {
	c := &converter{
		accounts:    newRefs(),
		categories:  newRefs(),
		investments: newRefs(),
		projects:    newRefs(),
		currencies:  map[string]string{},
	}
	for i := range d.Accounts {
		a := &d.Accounts[i]
		a.ID = orNewID(a.ID)
		c.accounts.add(a.ID, a.Name)
		c.currencies[a.ID] = money.NormalizeCode(a.Currency)
	}
	for i := range d.Categories {
		d.Categories[i].ID = orNewID(d.Categories[i].ID)
		c.categories.add(d.Categories[i].ID, d.Categories[i].Name)
	}
	for i := range d.Investments {
		d.Investments[i].ID = orNewID(d.Investments[i].ID)
		c.investments.add(d.Investments[i].ID, d.Investments[i].Name)
	}
	for i := range d.Projects {
		d.Projects[i].ID = orNewID(d.Projects[i].ID)
		c.projects.add(d.Projects[i].ID, d.Projects[i].Name)
	}
	return c
}

func orNewID(id string) string {
	if id = strings.TrimSpace(id); id != "" {
		return id
	}
	return uuid.NewString()
}

func (c *converter) fail(section string, i int, format string, args ...any) {
	c.errs = append(c.errs, fmt.Errorf("%s[%d]: %w", section, i, fmt.Errorf(format, args...)))
}

func (c *converter) ref(r refs, kind, ref, section string, i int) string {
	id, ok := r.resolve(strings.TrimSpace(ref))
	if !ok {
		common.LogWarn("Unresolved reference in ledger document", common.Fields{
			"section": section,
			"index":   i,
			"kind":    kind,
			"ref":     ref,
		})
	}
	return id
}

func (c *converter) currency(code, section string, i int) string {
	code = money.NormalizeCode(code)
	if !money.IsKnownCurrency(code) {
		c.fail(section, i, "%w: %q", common.ErrInvalidCurrency, code)
	}
	return code
}

func (c *converter) amount(s, field, section string, i int) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		c.fail(section, i, "%w: %s %q", common.ErrInvalidInput, field, s)
		return decimal.Zero
	}
	return d
}

func (c *converter) optionalAmount(s, field, section string, i int) decimal.NullDecimal {
	if strings.TrimSpace(s) == "" {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(c.amount(s, field, section, i))
}

func (c *converter) date(s, field, section string, i int) time.Time {
	t, err := parseDate(s)
	if err != nil {
		c.fail(section, i, "%w: %s %q", common.ErrInvalidInput, field, s)
	}
	return t
}

func (c *converter) optionalDate(s, field, section string, i int) *time.Time {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	t := c.date(s, field, section, i)
	return &t
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(model.DateFormat, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return model.Day(t), nil
}

func upper(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func (c *converter) account(i int, e *AccountEntry) model.Account {
	const section = "accounts"
	balance := decimal.Zero
	if strings.TrimSpace(e.InitialBalance) != "" {
		balance = c.amount(e.InitialBalance, "initial_balance", section, i)
	}
	typ := model.AccountType(upper(e.Type))
	if typ == "" {
		typ = model.AccountTypeBank
	}
	return model.Account{
		ID:             e.ID,
		Name:           e.Name,
		Type:           typ,
		CurrencyCode:   c.currency(e.Currency, section, i),
		InitialBalance: balance,
		CurrentBalance: balance,
	}
}

func (c *converter) category(i int, e *CategoryEntry) model.Category {
	return model.Category{
		ID:                e.ID,
		Name:              e.Name,
		Type:              model.CategoryType(upper(e.Type)),
		IsSystemGenerated: e.System,
	}
}

func (c *converter) transaction(i int, e *TransactionEntry) model.Transaction {
	const section = "transactions"

	tx := model.Transaction{
		ID:                  orNewID(e.ID),
		Date:                c.date(e.Date, "date", section, i),
		Type:                model.TransactionType(upper(e.Type)),
		Amount:              c.amount(e.Amount, "amount", section, i),
		TargetAmount:        c.optionalAmount(e.TargetAmount, "target_amount", section, i),
		AccountID:           c.ref(c.accounts, "account", e.Account, section, i),
		TransferToAccountID: c.ref(c.accounts, "account", e.ToAccount, section, i),
		CategoryID:          c.ref(c.categories, "category", e.Category, section, i),
		InvestmentID:        c.ref(c.investments, "investment", e.Investment, section, i),
		ProjectID:           c.ref(c.projects, "project", e.Project, section, i),
		Note:                e.Note,
	}

	if !tx.Type.IsValid() {
		c.fail(section, i, "%w: type %q", common.ErrInvalidInput, e.Type)
	}
	if tx.Amount.IsNegative() {
		c.fail(section, i, "%w: negative amount", common.ErrInvalidInput)
	}

	code := e.Currency
	if strings.TrimSpace(code) == "" {
		code = c.currencies[tx.AccountID]
	}
	tx.CurrencyCode = c.currency(code, section, i)
	return tx
}

func (c *converter) rule(i int, e *RuleEntry) model.RecurringRule {
	const section = "recurring_rules"

	active := true
	if e.Active != nil {
		active = *e.Active
	}
	interval := e.Interval
	if interval < 1 {
		interval = 1
	}

	r := model.RecurringRule{
		ID:         orNewID(e.ID),
		Name:       e.Name,
		Type:       model.TransactionType(upper(e.Type)),
		Amount:     c.amount(e.Amount, "amount", section, i),
		Frequency:  model.Frequency(upper(e.Frequency)),
		Interval:   interval,
		StartDate:  c.date(e.StartDate, "start_date", section, i),
		EndDate:    c.optionalDate(e.EndDate, "end_date", section, i),
		AccountID:  c.ref(c.accounts, "account", e.Account, section, i),
		CategoryID: c.ref(c.categories, "category", e.Category, section, i),
		Active:     active,
	}

	code := e.Currency
	if strings.TrimSpace(code) == "" {
		code = c.currencies[r.AccountID]
	}
	r.CurrencyCode = c.currency(code, section, i)
	return r
}

func (c *converter) investment(i int, e *InvestmentEntry) model.Investment {
	const section = "investments"

	status := model.InvestmentStatus(upper(e.Status))
	if status == "" {
		status = model.InvestmentStatusActive
	}

	return model.Investment{
		ID:               e.ID,
		Name:             e.Name,
		Type:             model.InvestmentType(upper(e.Type)),
		Status:           status,
		CurrencyCode:     c.currency(e.Currency, section, i),
		InitialAmount:    c.amount(e.InitialAmount, "initial_amount", section, i),
		CurrentAmount:    c.optionalAmount(e.CurrentAmount, "current_amount", section, i),
		PurchasePrice:    c.optionalAmount(e.PurchasePrice, "purchase_price", section, i),
		SalvageValue:     c.optionalAmount(e.SalvageValue, "salvage_value", section, i),
		UsefulLife:       c.optionalAmount(e.UsefulLife, "useful_life", section, i),
		InterestRate:     c.optionalAmount(e.InterestRate, "interest_rate", section, i),
		DepreciationType: model.DepreciationMethod(upper(e.Depreciation)),
		StartDate:        c.date(e.StartDate, "start_date", section, i),
		EndDate:          c.optionalDate(e.EndDate, "end_date", section, i),
		ProjectID:        c.ref(c.projects, "project", e.Project, section, i),
	}
}

func (c *converter) project(i int, e *ProjectEntry) model.Project {
	const section = "projects"

	status := model.ProjectStatus(upper(e.Status))
	if status == "" {
		status = model.ProjectStatusPlanning
	}

	p := model.Project{
		ID:          e.ID,
		OwnerID:     e.Owner,
		Name:        e.Name,
		Type:        model.ProjectType(upper(e.Type)),
		Status:      status,
		StartDate:   c.date(e.StartDate, "start_date", section, i),
		EndDate:     c.optionalDate(e.EndDate, "end_date", section, i),
		TotalBudget: c.optionalAmount(e.Budget, "budget", section, i),
	}
	if strings.TrimSpace(e.Currency) != "" {
		p.CurrencyCode = c.currency(e.Currency, section, i)
	}
	return p
}
