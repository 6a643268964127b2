// backend/src/models/category.go
package models

// Category is the fixed spending taxonomy. Every transaction carries exactly one.
// Unknown merchants map to CategoryUncategorized rather than an open string so the
// core/non-consumption partition below stays exhaustive.
type Category string

const (
	// Consumption categories.
	CategoryGroceries      Category = "groceries"
	CategoryDining         Category = "dining"
	CategorySubscriptions  Category = "subscriptions"
	CategoryTransport      Category = "transport"
	CategoryUtilities      Category = "utilities"
	CategoryRent           Category = "rent"
	CategoryShopping       Category = "shopping"
	CategoryHealthcare     Category = "healthcare"
	CategoryCashWithdrawal Category = "cash_withdrawal"
	CategoryLoanInterest   Category = "loan_interest"

	// Non-consumption categories: money movement, not spending.
	CategoryTransfers      Category = "transfers"
	CategorySavingsDeposit Category = "savings_deposit"
	CategoryLoanPrincipal  Category = "loan_principal"
	CategoryCardPayment    Category = "card_payment"

	// Income categories.
	CategorySalary         Category = "salary"
	CategoryBenefitsIncome Category = "benefits_income"

	CategoryUncategorized Category = "uncategorized"
)

// AllCategories lists every taxonomy member in a stable order.
var AllCategories = []Category{
	CategoryGroceries,
	CategoryDining,
	CategorySubscriptions,
	CategoryTransport,
	CategoryUtilities,
	CategoryRent,
	CategoryShopping,
	CategoryHealthcare,
	CategoryCashWithdrawal,
	CategoryLoanInterest,
	CategoryTransfers,
	CategorySavingsDeposit,
	CategoryLoanPrincipal,
	CategoryCardPayment,
	CategorySalary,
	CategoryBenefitsIncome,
	CategoryUncategorized,
}

// IsNonConsumption reports whether the category represents money movement
// (transfers, savings, loan principal, card payments) rather than consumption.
// Debits in these categories are excluded from core expenses.
func (c Category) IsNonConsumption() bool {
	switch c {
	case CategoryTransfers, CategorySavingsDeposit, CategoryLoanPrincipal, CategoryCardPayment:
		return true
	}
	return false
}

// IsValid reports whether c is a member of the taxonomy.
func (c Category) IsValid() bool {
	for _, known := range AllCategories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory maps a stored string back onto the taxonomy, falling back to
// CategoryUncategorized for anything unknown.
func ParseCategory(s string) Category {
	c := Category(s)
	if c.IsValid() {
		return c
	}
	return CategoryUncategorized
}
