package domain

import "strings"

// ============================================================
// Treasury
// ============================================================

// Transaction types and accounts as the backend enums spell them.
const (
	TransactionIncome  = "INCOME"
	TransactionExpense = "EXPENSE"

	AccountCaisse = "CAISSE"
	AccountBanque = "BANQUE"
)

// Transaction is one ledger line. The ledger is append-mostly: the console
// creates and reads, it never edits amounts.
type Transaction struct {
	ID          int64   `json:"id,omitempty"`
	Date        string  `json:"date"`
	Category    string  `json:"category,omitempty"`
	Description string  `json:"description,omitempty"`
	Amount      float64 `json:"amount"`
	Type        string  `json:"type"`
	Account     string  `json:"account"`
	Reference   string  `json:"reference,omitempty"`
	Beneficiary string  `json:"beneficiary,omitempty"`
	AddedBy     string  `json:"addedBy,omitempty"`
}

// IncomeDraft is the "recette" form.
type IncomeDraft struct {
	Date        string  `json:"date" validate:"required,datetime=2006-01-02"`
	Category    string  `json:"category" validate:"required,min=2"`
	Amount      float64 `json:"amount" validate:"gt=0"`
	Account     string  `json:"account" validate:"required,oneof=Caisse Banque CAISSE BANQUE"`
	Description string  `json:"description"`
	Reference   string  `json:"reference"`
}

// Transaction converts the form to the wire record.
func (d IncomeDraft) Transaction() Transaction {
	return Transaction{
		Date:        d.Date,
		Category:    d.Category,
		Description: d.Description,
		Amount:      d.Amount,
		Type:        TransactionIncome,
		Account:     strings.ToUpper(d.Account),
		Reference:   d.Reference,
	}
}

// ExpenseDraft is the "dépense" form. Unlike income, a description is mandatory.
type ExpenseDraft struct {
	Date        string  `json:"date" validate:"required,datetime=2006-01-02"`
	Category    string  `json:"category" validate:"required,min=2"`
	Amount      float64 `json:"amount" validate:"gt=0"`
	Account     string  `json:"account" validate:"required,oneof=Caisse Banque CAISSE BANQUE"`
	Description string  `json:"description" validate:"required,min=2"`
	Beneficiary string  `json:"beneficiary"`
	Reference   string  `json:"reference"`
}

// Transaction converts the form to the wire record.
func (d ExpenseDraft) Transaction() Transaction {
	return Transaction{
		Date:        d.Date,
		Category:    d.Category,
		Description: d.Description,
		Amount:      d.Amount,
		Type:        TransactionExpense,
		Account:     strings.ToUpper(d.Account),
		Reference:   d.Reference,
		Beneficiary: d.Beneficiary,
	}
}

// TreasuryStats is the server-computed read model behind the finance view.
// currentBalance = opening + incomes - expenses per account, computed by the
// backend only.
type TreasuryStats struct {
	TotalIncome          float64 `json:"totalIncome"`
	TotalExpense         float64 `json:"totalExpense"`
	OpeningCaisseBalance float64 `json:"soldeCaisseAnterieur"`
	OpeningBanqueBalance float64 `json:"soldeBanqueAnterieur"`
	CurrentCaisseBalance float64 `json:"currentCaisseBalance"`
	CurrentBanqueBalance float64 `json:"currentBanqueBalance"`
	TotalBalance         float64 `json:"totalBalance"`
}

// MonthlyStat is one bar of the dashboard chart.
type MonthlyStat struct {
	Month   int     `json:"month"`
	Year    int     `json:"year"`
	Name    string  `json:"name"`
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
}
