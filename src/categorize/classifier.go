// backend/src/categorize/classifier.go
//
// Pure keyword classifier for the fixed category taxonomy. Rules are ordered
// slices and the first matching keyword wins, so re-classifying the same
// transaction always yields the same category.
package categorize

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/username/finsight/backend/src/models"
)

type rule struct {
	category models.Category
	keywords []string
}

// Non-consumption rules run first for either amount sign: a transfer is money
// movement whether it enters or leaves the account.
var moneyMovementRules = []rule{
	{models.CategoryCardPayment, []string{"mastercard", "visa", "amex", "credit card", "card payment"}},
	{models.CategoryTransfers, []string{"bank transfer", "wire transfer", "zelle", "venmo", "transfer"}},
	{models.CategorySavingsDeposit, []string{"savings deposit", "savings account", "term deposit"}},
	{models.CategoryLoanPrincipal, []string{"loan principal", "principal payment"}},
}

var expenseRules = []rule{
	{models.CategoryCashWithdrawal, []string{"atm withdrawal", "cash withdrawal", "atm"}},
	{models.CategoryLoanInterest, []string{"loan interest", "interest charge"}},
	{models.CategoryRent, []string{"rent", "landlord", "property management"}},
	{models.CategoryUtilities, []string{"electric", "water bill", "gas bill", "internet", "utility"}},
	{models.CategoryGroceries, []string{"whole foods", "trader joe", "kroger", "safeway", "aldi", "grocery", "supermarket"}},
	{models.CategoryDining, []string{"restaurant", "cafe", "coffee", "mcdonald", "starbucks", "doordash", "deliveroo"}},
	{models.CategorySubscriptions, []string{"netflix", "spotify", "apple.com", "adobe", "youtube premium", "subscription"}},
	{models.CategoryTransport, []string{"shell", "uber", "lyft", "chevron", "fuel", "parking", "metro", "transit"}},
	{models.CategoryHealthcare, []string{"pharmacy", "clinic", "dental", "hospital", "cvs", "walgreens"}},
	{models.CategoryShopping, []string{"amazon", "ebay", "target", "walmart", "ikea", "zara"}},
}

var incomeRules = []rule{
	{models.CategoryBenefitsIncome, []string{"social security", "unemployment", "benefit", "stipend", "grant"}},
	{models.CategorySalary, []string{"payroll", "salary", "employer", "wages", "direct deposit"}},
}

// Classify assigns a taxonomy category from transaction content alone. It
// holds no state and never fails; anything unmatched is uncategorized.
func Classify(merchant, description, rawType string, amount decimal.Decimal) models.Category {
	haystack := normalizeText(merchant + " " + description + " " + rawType)

	if c, ok := match(moneyMovementRules, haystack); ok {
		return c
	}

	if amount.IsPositive() {
		if c, ok := match(incomeRules, haystack); ok {
			return c
		}
		return models.CategoryUncategorized
	}

	if c, ok := match(expenseRules, haystack); ok {
		return c
	}
	return models.CategoryUncategorized
}

// ClassifyTransaction is a convenience wrapper over Classify.
func ClassifyTransaction(t models.Transaction) models.Category {
	return Classify(t.Merchant, t.Description, t.RawType, t.Amount)
}

func match(rules []rule, haystack string) (models.Category, bool) {
	for _, r := range rules {
		for _, keyword := range r.keywords {
			if strings.Contains(haystack, keyword) {
				return r.category, true
			}
		}
	}
	return models.CategoryUncategorized, false
}

// normalizeText lower-cases and collapses internal whitespace.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
