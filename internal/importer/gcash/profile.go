package gcash

// amountMode determines how amounts are extracted from a row.
type amountMode int

const (
	// amountSingle means one signed column (e.g. "Amount" with value "-150.00").
	amountSingle amountMode = iota
	// amountSplit means separate debit and credit columns.
	amountSplit
)

// Profile describes the column layout of a GCash CSV export.
type Profile struct {
	Name       string
	DateCol    string
	DescCol    string
	RefCol     string // optional
	AmountMode amountMode
	AmountCol  string // used when AmountMode == amountSingle
	DebitCol   string // used when AmountMode == amountSplit
	CreditCol  string // used when AmountMode == amountSplit
}

// requiredCols returns the column names that must be present for this profile to match.
func (p Profile) requiredCols() []string {
	cols := []string{p.DateCol, p.DescCol}

	switch p.AmountMode {
	case amountSingle:
		cols = append(cols, p.AmountCol)
	case amountSplit:
		cols = append(cols, p.DebitCol, p.CreditCol)
	}

	return cols
}

// profiles is tried in order during auto-detection.
var profiles = []Profile{
	{
		Name:       "history",
		DateCol:    "date and time",
		DescCol:    "description",
		RefCol:     "reference no.",
		AmountMode: amountSplit,
		DebitCol:   "debit",
		CreditCol:  "credit",
	},
	{
		Name:       "business",
		DateCol:    "transaction date",
		DescCol:    "description",
		RefCol:     "reference no.",
		AmountMode: amountSingle,
		AmountCol:  "amount",
	},
}
