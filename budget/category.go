package budget

import (
	"strings"
)

// Category is an uppercase expense category label.
type Category string

const (
	Housing         Category = "HOUSING"
	Transportation  Category = "TRANSPORTATION"
	Insurance       Category = "INSURANCE"
	School          Category = "SCHOOL"
	Food            Category = "FOOD"
	PersonalCare    Category = "PERSONAL CARE"
	Subscriptions   Category = "SUBSCRIPTIONS"
	HolidayExpenses Category = "HOLIDAY EXPENSES"
	Miscellaneous   Category = "MISCELLANEOUS"
)

var categories = []Category{
	Housing,
	Transportation,
	Insurance,
	School,
	Food,
	PersonalCare,
	Subscriptions,
	HolidayExpenses,
	Miscellaneous,
}

// AllCategories returns every registered category in display order.
func AllCategories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// NormalizeCategory trims and uppercases a raw label.
func NormalizeCategory(s string) Category {
	return Category(strings.ToUpper(strings.TrimSpace(s)))
}

// ParseCategory normalizes s and reports whether it names a registered category.
func ParseCategory(s string) (Category, bool) {
	c := NormalizeCategory(s)
	return c, c.Registered()
}

// Registered reports whether c is part of the fixed category set.
func (c Category) Registered() bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

func (c Category) String() string {
	return string(c)
}

// Title returns the label in title case ("PERSONAL CARE" -> "Personal Care"),
// which is how categories are named as workbook sheets.
func (c Category) Title() string {
	words := strings.Fields(strings.ToLower(string(c)))
	for i, w := range words {
		r := []rune(w)
		r[0] = []rune(strings.ToUpper(string(r[0])))[0]
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
