package csvconvert

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"moneylens/internal/models"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "1,234.56", want: "1234.56"},
		{in: "  50.25  ", want: "50.25"},
		{in: "(100.00)", want: "-100"},
		{in: "( 7 )", want: "-7"},
		{in: "0", want: "0"},
		{in: "", wantErr: true},
		{in: "()", wantErr: true},
		{in: "12abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %s", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.String() != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestBankAccountForCode(t *testing.T) {
	for code, want := range map[string]string{
		"": "NatWest", "B": "Barclays", "W": "Wise Virtual Card",
		"A": "Wise Virtual Card", "X": "AmEx", "M": "Monzo",
	} {
		got, err := BankAccountForCode(code)
		if err != nil || got != want {
			t.Errorf("code %q: got %q, %v", code, got, err)
		}
	}
	if _, err := BankAccountForCode("Z"); err == nil {
		t.Error("expected error for unknown code")
	}
}

func TestParseTags(t *testing.T) {
	if got := ParseTags(" home , , trip "); len(got) != 2 || got[0] != "home" || got[1] != "trip" {
		t.Errorf("unexpected tags %v", got)
	}
	if got := ParseTags("  ,  "); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}

func TestPayloadBuilder(t *testing.T) {
	b := NewPayloadBuilder().
		AddCategory(models.TransactionTypeSpend, "Food").
		AddCategory(models.TransactionTypeSpend, "Food").
		AddCategory(models.TransactionTypeEarn, "Food").
		AddBankAccount("Monzo").
		AddBankAccount("Monzo").
		AddTags("home", "trip", "home")

	tx := models.BulkTransaction{Type: models.TransactionTypeSpend, Date: models.MustParseDate("2024-03-01")}
	b.AddTransaction(tx).AddTransaction(tx)

	p := b.Build()
	if len(p.Categories) != 2 {
		t.Errorf("expected Food per type, got %+v", p.Categories)
	}
	if len(p.BankAccounts) != 1 || len(p.Tags) != 2 {
		t.Errorf("unexpected references %+v %+v", p.BankAccounts, p.Tags)
	}
	if len(p.Transactions) != 2 {
		t.Errorf("transactions must not be deduped, got %d", len(p.Transactions))
	}
}

const savingsCSV = `Savings,,,,,
,,,,,
,,Date,Amount,Category,Notes
,,,,,
,,2024-03-01,"1,000.00",Emergency,first deposit
,,02/03/2024,250,Holiday,
,,,,Holiday,no date
,,2024-03-05,10,,no category
`

func TestSavingsConverter(t *testing.T) {
	c := NewSavingsConverter()
	if err := c.Convert(strings.NewReader(savingsCSV)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p := c.Payload()

	if len(p.Transactions) != 2 {
		t.Fatalf("expected 2 transactions, got %+v", p.Transactions)
	}
	first, second := p.Transactions[0], p.Transactions[1]
	if first.Type != models.TransactionTypeSave || first.Amount.String() != "1000" {
		t.Errorf("unexpected first %+v", first)
	}
	if first.Notes == nil || *first.Notes != "first deposit" {
		t.Errorf("expected notes, got %v", first.Notes)
	}
	if second.Notes != nil {
		t.Errorf("empty notes should be nil, got %q", *second.Notes)
	}
	if second.Date.String() != "2024-03-02" {
		t.Errorf("day-first date parsed as %s", second.Date)
	}
	if *second.BankAccount != "Savings Account" {
		t.Errorf("bank account = %s", *second.BankAccount)
	}
	if len(p.Categories) != 2 || len(p.BankAccounts) != 1 {
		t.Errorf("unexpected references %+v %+v", p.Categories, p.BankAccounts)
	}
}

func TestSavingsConverter_shortFile(t *testing.T) {
	c := NewSavingsConverter()
	if err := c.Convert(strings.NewReader("only,one,line\n")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(c.Payload().Transactions) != 0 {
		t.Error("expected no transactions")
	}
}

// transactionsCSV builds a sheet with the earn date on line 2, spends from
// line 3 and earnings from line 15.
func transactionsCSV(extra ...string) string {
	lines := []string{
		"Earn,Amount,,Pay date,,Date,Category,Amount,Bank,Tags",
		",,,2024-03-28,,,,,,",
		",,,,,2024-03-01,Food,12.50,M,\"home, weekly\"",
		",,,,,2024-03-02,Travel,(3.00),,trip",
		",,,,,2024-03-03,Food,8,B,",
	}
	for len(lines) < 14 {
		lines = append(lines, ",,,,,,,,,")
	}
	lines = append(lines, "Salary,\"2,000\",,,,,,,,", "Bonus,,,,,,,,,")
	lines = append(lines, extra...)
	return strings.Join(lines, "\n") + "\n"
}

func TestTransactionsConverter(t *testing.T) {
	c := NewTransactionsConverter()
	if err := c.Convert(strings.NewReader(transactionsCSV())); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p := c.Payload()

	if len(p.Transactions) != 4 {
		t.Fatalf("expected 3 spends and 1 earning, got %d", len(p.Transactions))
	}
	food := p.Transactions[0]
	if *food.BankAccount != "Monzo" || len(food.Tags) != 2 || food.Tags[1] != "weekly" {
		t.Errorf("unexpected spend %+v", food)
	}
	if travel := p.Transactions[1]; *travel.BankAccount != "NatWest" || travel.Amount.String() != "-3" {
		t.Errorf("unexpected spend %+v", travel)
	}
	earn := p.Transactions[3]
	if earn.Type != models.TransactionTypeEarn || earn.Date.String() != "2024-03-28" ||
		*earn.BankAccount != "Barclays" || earn.Amount.String() != "2000" {
		t.Errorf("unexpected earning %+v", earn)
	}

	if len(p.Categories) != 3 {
		t.Errorf("expected Food, Travel and Salary, got %+v", p.Categories)
	}
	if len(p.BankAccounts) != 3 {
		t.Errorf("expected Monzo, NatWest and Barclays once each, got %+v", p.BankAccounts)
	}
	if len(p.Tags) != 3 {
		t.Errorf("expected home, weekly and trip, got %+v", p.Tags)
	}
}

func TestTransactionsConverter_unknownBankCode(t *testing.T) {
	c := NewTransactionsConverter()
	err := c.Convert(strings.NewReader(transactionsCSV(",,,,,2024-03-09,Food,1,Q,")))
	if err == nil || !strings.Contains(err.Error(), "unknown bank account code") {
		t.Fatalf("expected unknown code error, got %v", err)
	}
}

func TestPayloadJSON_omitsNulls(t *testing.T) {
	c := NewSavingsConverter()
	if err := c.Convert(strings.NewReader(savingsCSV)); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c.Payload()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if strings.Contains(out, "null") {
		t.Errorf("expected nulls omitted, got %s", out)
	}
	if !strings.Contains(out, `"bank_account": "Savings Account"`) {
		t.Errorf("unexpected document %s", out)
	}
}

func TestNew(t *testing.T) {
	if _, err := New("savings"); err != nil {
		t.Error(err)
	}
	if _, err := New("transactions"); err != nil {
		t.Error(err)
	}
	if _, err := New("budget"); err == nil {
		t.Error("expected error for unknown type")
	}
}
