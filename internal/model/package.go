package model

// CreditPackage is a static catalog entry. Purchasing a package only
// credits the ledger; there is no payment processing behind it.
// Price is in minor currency units.
type CreditPackage struct {
	ID          int
	Name        string
	Credits     int64
	Price       int64
	Currency    string
	Description string
	Popular     bool
	Savings     int
}
