// Package taxonomy holds the fixed two-level category tree and the
// normalisation helpers that coerce category strings from every producer
// (persisted legacy values, AI output, user selections) into canonical
// Title Case values.
package taxonomy

import (
	"strings"

	"github.com/forPelevin/gomoji"
)

// Subcategory is a single assignable category beneath a parent.
type Subcategory struct {
	Value string
	Label string
}

// Parent groups subcategories for high-level reporting. Colour is used by
// consumers rendering spend breakdowns.
type Parent struct {
	Value         string
	Label         string
	Colour        string
	Subcategories []Subcategory
}

// FallbackParent is returned by ParentOf for values the tree doesn't know.
const FallbackParent = "Discretionary"

const fallbackColour = "#64748b"

// Tree is the process-wide taxonomy. It is initialized once and never
// mutated at runtime.
var Tree = []Parent{
	{
		Value:  "Income",
		Label:  "Income",
		Colour: "#34d399",
		Subcategories: []Subcategory{
			{Value: "Salary", Label: "Salary"},
			{Value: "Freelance", Label: "Freelance"},
			{Value: "Benefits", Label: "Benefits"},
			{Value: "Refund", Label: "Refund"},
			{Value: "Investment Income", Label: "Investment Income"},
			{Value: "Other Income", Label: "Other Income"},
		},
	},
	{
		Value:  "Essential",
		Label:  "Essential",
		Colour: "#60a5fa",
		Subcategories: []Subcategory{
			{Value: "Rent/Mortgage", Label: "Rent / Mortgage"},
			{Value: "Utilities", Label: "Utilities"},
			{Value: "Groceries", Label: "Groceries"},
			{Value: "Insurance", Label: "Insurance"},
			{Value: "Medical", Label: "Medical / Health"},
			{Value: "Childcare", Label: "Childcare"},
			{Value: "Council Tax", Label: "Council Tax"},
			{Value: "Phone/Internet", Label: "Phone / Internet"},
			{Value: "Transport", Label: "Transport / Fuel"},
		},
	},
	{
		Value:  "Discretionary",
		Label:  "Discretionary",
		Colour: "#fb923c",
		Subcategories: []Subcategory{
			{Value: "Eating Out", Label: "Eating Out"},
			{Value: "Entertainment", Label: "Entertainment"},
			{Value: "Shopping", Label: "Shopping"},
			{Value: "Subscriptions", Label: "Subscriptions"},
			{Value: "Hobbies", Label: "Hobbies"},
			{Value: "Travel/Holidays", Label: "Travel / Holidays"},
			{Value: "Personal Care", Label: "Personal Care"},
			{Value: "Gifts", Label: "Gifts"},
		},
	},
	{
		Value:  "Business",
		Label:  "Business",
		Colour: "#a78bfa",
		Subcategories: []Subcategory{
			{Value: "Office/Equipment", Label: "Office / Equipment"},
			{Value: "Software/Tools", Label: "Software / Tools"},
			{Value: "Professional Services", Label: "Professional Services"},
			{Value: "Business Travel", Label: "Business Travel"},
			{Value: "Marketing", Label: "Marketing"},
		},
	},
	{
		Value:  "Debt Repayment",
		Label:  "Debt Repayment",
		Colour: "#f87171",
		Subcategories: []Subcategory{
			{Value: "Credit Card", Label: "Credit Card"},
			{Value: "Loan", Label: "Loan"},
			{Value: "Student Loan", Label: "Student Loan"},
		},
	},
	{
		Value:  "Savings",
		Label:  "Savings",
		Colour: "#a3e635",
		Subcategories: []Subcategory{
			{Value: "Emergency Fund", Label: "Emergency Fund"},
			{Value: "Pension", Label: "Pension"},
			{Value: "Investments", Label: "Investments"},
			{Value: "General Savings", Label: "General Savings"},
		},
	},
	{
		Value:  "Transfer",
		Label:  "Transfer",
		Colour: "#94a3b8",
		Subcategories: []Subcategory{
			{Value: "Internal Transfer", Label: "Internal Transfer"},
			{Value: "Person-to-Person", Label: "Person-to-Person"},
		},
	},
}

var (
	subToParent  = make(map[string]string)
	parentColour = make(map[string]string)
	parents      = make(map[string]struct{})
)

// Legacy snake_case / lowercase values that predate canonical Title Case.
var legacyValues = map[string]string{
	"income":         "Income",
	"essential":      "Essential",
	"discretionary":  "Discretionary",
	"business":       "Business",
	"debt_repayment": "Debt Repayment",
	"savings":        "Savings",
	"transfer":       "Transfer",
}

func init() {
	for _, p := range Tree {
		parents[p.Value] = struct{}{}
		parentColour[p.Value] = p.Colour
		for _, s := range p.Subcategories {
			subToParent[s.Value] = p.Value
		}
	}
}

// Subcategories returns the subcategory values of every parent, used to
// validate values and build the AI prompt.
func Subcategories() []string {
	var all []string
	for _, p := range Tree {
		for _, s := range p.Subcategories {
			all = append(all, s.Value)
		}
	}
	return all
}

// Normalise coerces a raw category value into its canonical Title Case form.
// Known legacy tokens map directly, recognised values pass through unchanged,
// and anything else falls back to a generic Title Case transform. It never
// fails; an empty input yields "Uncategorised".
func Normalise(raw string) string {
	cleaned := strings.TrimSpace(gomoji.RemoveEmojis(raw))
	if cleaned == "" {
		return "Uncategorised"
	}
	if canonical, ok := legacyValues[strings.ToLower(cleaned)]; ok {
		return canonical
	}
	if _, ok := parents[cleaned]; ok {
		return cleaned
	}
	if _, ok := subToParent[cleaned]; ok {
		return cleaned
	}
	return titleCase(cleaned)
}

func titleCase(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '_' || r == '\t'
	})
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}

// ParentOf resolves a category or subcategory value to its parent. A parent
// value resolves to itself; unknown values resolve to FallbackParent.
func ParentOf(value string) string {
	normalised := Normalise(value)
	if _, ok := parents[normalised]; ok {
		return normalised
	}
	if parent, ok := subToParent[normalised]; ok {
		return parent
	}
	return FallbackParent
}

// ColourOf returns the display colour for a category or subcategory.
func ColourOf(value string) string {
	normalised := Normalise(value)
	if colour, ok := parentColour[normalised]; ok {
		return colour
	}
	if parent, ok := subToParent[normalised]; ok {
		return parentColour[parent]
	}
	return fallbackColour
}

// IsSubcategory reports whether the value normalises to a known subcategory.
func IsSubcategory(value string) bool {
	_, ok := subToParent[Normalise(value)]
	return ok
}

// IsParent reports whether the value normalises to a known parent category.
func IsParent(value string) bool {
	_, ok := parents[Normalise(value)]
	return ok
}
