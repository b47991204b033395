package categorize

import "strings"

// Rule maps a lowercase merchant substring to a subcategory. The rule list
// runs before the AI so common UK merchants resolve instantly, with no API
// cost.
type Rule struct {
	Pattern     string
	Subcategory string
	Confidence  float64
}

// merchantRules is scanned in order and the first match wins, so specific
// patterns must stay above the shorter substrings they contain ("uber eats"
// before "uber *", "amazon prime" before "amazon").
var merchantRules = []Rule{
	// Groceries (Essential)
	{Pattern: "sainsbury", Subcategory: "Groceries", Confidence: 0.95},
	{Pattern: "tesco", Subcategory: "Groceries", Confidence: 0.95},
	{Pattern: "co-op", Subcategory: "Groceries", Confidence: 0.95},
	{Pattern: "morrisons", Subcategory: "Groceries", Confidence: 0.95},
	{Pattern: "aldi", Subcategory: "Groceries", Confidence: 0.95},
	{Pattern: "lidl", Subcategory: "Groceries", Confidence: 0.95},
	{Pattern: "asda", Subcategory: "Groceries", Confidence: 0.95},
	{Pattern: "waitrose", Subcategory: "Groceries", Confidence: 0.95},
	{Pattern: "m&s food", Subcategory: "Groceries", Confidence: 0.95},
	{Pattern: "iceland", Subcategory: "Groceries", Confidence: 0.90},
	{Pattern: "ocado", Subcategory: "Groceries", Confidence: 0.95},
	{Pattern: "farmfoods", Subcategory: "Groceries", Confidence: 0.95},

	// Eating out (Discretionary)
	{Pattern: "mcdonalds", Subcategory: "Eating Out", Confidence: 0.95},
	{Pattern: "nandos", Subcategory: "Eating Out", Confidence: 0.95},
	{Pattern: "nando", Subcategory: "Eating Out", Confidence: 0.95},
	{Pattern: "pret a manger", Subcategory: "Eating Out", Confidence: 0.95},
	{Pattern: "costa", Subcategory: "Eating Out", Confidence: 0.90},
	{Pattern: "starbucks", Subcategory: "Eating Out", Confidence: 0.95},
	{Pattern: "caffe nero", Subcategory: "Eating Out", Confidence: 0.95},
	{Pattern: "greggs", Subcategory: "Eating Out", Confidence: 0.95},
	{Pattern: "subway", Subcategory: "Eating Out", Confidence: 0.95},
	{Pattern: "kfc", Subcategory: "Eating Out", Confidence: 0.95},
	{Pattern: "burger king", Subcategory: "Eating Out", Confidence: 0.95},
	{Pattern: "five guys", Subcategory: "Eating Out", Confidence: 0.95},
	{Pattern: "pizza", Subcategory: "Eating Out", Confidence: 0.85},
	{Pattern: "wetherspoon", Subcategory: "Eating Out", Confidence: 0.90},
	{Pattern: "wagamama", Subcategory: "Eating Out", Confidence: 0.95},
	{Pattern: "tortilla", Subcategory: "Eating Out", Confidence: 0.95},
	{Pattern: "itsu", Subcategory: "Eating Out", Confidence: 0.95},
	{Pattern: "uber eats", Subcategory: "Eating Out", Confidence: 0.95},
	{Pattern: "deliveroo", Subcategory: "Eating Out", Confidence: 0.95},
	{Pattern: "just eat", Subcategory: "Eating Out", Confidence: 0.95},
	{Pattern: "leon ", Subcategory: "Eating Out", Confidence: 0.85},
	{Pattern: "prezzo", Subcategory: "Eating Out", Confidence: 0.95},
	{Pattern: "slim chicken", Subcategory: "Eating Out", Confidence: 0.95},

	// Subscriptions (Discretionary)
	{Pattern: "netflix", Subcategory: "Subscriptions", Confidence: 0.95},
	{Pattern: "spotify", Subcategory: "Subscriptions", Confidence: 0.95},
	{Pattern: "youtube", Subcategory: "Subscriptions", Confidence: 0.95},
	{Pattern: "disney", Subcategory: "Subscriptions", Confidence: 0.95},
	{Pattern: "apple.com/bill", Subcategory: "Subscriptions", Confidence: 0.95},
	{Pattern: "dazn", Subcategory: "Subscriptions", Confidence: 0.95},
	{Pattern: "amazon prime", Subcategory: "Subscriptions", Confidence: 0.95},
	{Pattern: "prime video", Subcategory: "Subscriptions", Confidence: 0.90},
	{Pattern: "now tv", Subcategory: "Subscriptions", Confidence: 0.95},

	// Shopping (Discretionary)
	{Pattern: "amazon", Subcategory: "Shopping", Confidence: 0.80},
	{Pattern: "h&m", Subcategory: "Shopping", Confidence: 0.95},
	{Pattern: "primark", Subcategory: "Shopping", Confidence: 0.95},
	{Pattern: "zara", Subcategory: "Shopping", Confidence: 0.95},
	{Pattern: "hollister", Subcategory: "Shopping", Confidence: 0.95},
	{Pattern: "nike", Subcategory: "Shopping", Confidence: 0.95},
	{Pattern: "john lewis", Subcategory: "Shopping", Confidence: 0.90},
	{Pattern: "tk maxx", Subcategory: "Shopping", Confidence: 0.95},
	{Pattern: "argos", Subcategory: "Shopping", Confidence: 0.90},
	{Pattern: "ebay", Subcategory: "Shopping", Confidence: 0.85},
	{Pattern: "asos", Subcategory: "Shopping", Confidence: 0.95},
	{Pattern: "new balance", Subcategory: "Shopping", Confidence: 0.95},
	{Pattern: "card factory", Subcategory: "Shopping", Confidence: 0.90},
	{Pattern: "waterstones", Subcategory: "Shopping", Confidence: 0.90},

	// Transport (Essential)
	{Pattern: "tfl", Subcategory: "Transport", Confidence: 0.95},
	{Pattern: "trainline", Subcategory: "Transport", Confidence: 0.95},
	{Pattern: "uber trip", Subcategory: "Transport", Confidence: 0.90},
	{Pattern: "uber *", Subcategory: "Transport", Confidence: 0.85},
	{Pattern: "gwr ", Subcategory: "Transport", Confidence: 0.90},
	{Pattern: "national rail", Subcategory: "Transport", Confidence: 0.95},
	{Pattern: "shell", Subcategory: "Transport", Confidence: 0.85},
	{Pattern: "bp ", Subcategory: "Transport", Confidence: 0.85},
	{Pattern: "esso", Subcategory: "Transport", Confidence: 0.85},
	{Pattern: "mfg ", Subcategory: "Transport", Confidence: 0.85},

	// Personal care (Discretionary)
	{Pattern: "boots", Subcategory: "Personal Care", Confidence: 0.85},
	{Pattern: "superdrug", Subcategory: "Personal Care", Confidence: 0.90},

	// Travel / holidays (Discretionary)
	{Pattern: "easyjet", Subcategory: "Travel/Holidays", Confidence: 0.95},
	{Pattern: "ryanair", Subcategory: "Travel/Holidays", Confidence: 0.95},
	{Pattern: "booking.com", Subcategory: "Travel/Holidays", Confidence: 0.95},
	{Pattern: "airbnb", Subcategory: "Travel/Holidays", Confidence: 0.95},
	{Pattern: "expedia", Subcategory: "Travel/Holidays", Confidence: 0.95},
	{Pattern: "jet2", Subcategory: "Travel/Holidays", Confidence: 0.95},
	{Pattern: "british airways", Subcategory: "Travel/Holidays", Confidence: 0.95},

	// Utilities (Essential)
	{Pattern: "british gas", Subcategory: "Utilities", Confidence: 0.95},
	{Pattern: "octopus energy", Subcategory: "Utilities", Confidence: 0.95},
	{Pattern: "edf energy", Subcategory: "Utilities", Confidence: 0.95},
	{Pattern: "thames water", Subcategory: "Utilities", Confidence: 0.95},
	{Pattern: "severn trent", Subcategory: "Utilities", Confidence: 0.95},
	{Pattern: "wessex water", Subcategory: "Utilities", Confidence: 0.95},
	{Pattern: "scottish power", Subcategory: "Utilities", Confidence: 0.95},
	{Pattern: "bulb", Subcategory: "Utilities", Confidence: 0.90},

	// Phone / internet (Essential)
	{Pattern: "vodafone", Subcategory: "Phone/Internet", Confidence: 0.95},
	{Pattern: "three.co.uk", Subcategory: "Phone/Internet", Confidence: 0.95},
	{Pattern: "ee limited", Subcategory: "Phone/Internet", Confidence: 0.95},
	{Pattern: "o2", Subcategory: "Phone/Internet", Confidence: 0.85},
	{Pattern: "bt group", Subcategory: "Phone/Internet", Confidence: 0.90},
	{Pattern: "sky", Subcategory: "Phone/Internet", Confidence: 0.80},
	{Pattern: "virgin media", Subcategory: "Phone/Internet", Confidence: 0.95},

	// Insurance (Essential)
	{Pattern: "insurance", Subcategory: "Insurance", Confidence: 0.85},
	{Pattern: "aviva", Subcategory: "Insurance", Confidence: 0.90},
	{Pattern: "admiral", Subcategory: "Insurance", Confidence: 0.90},

	// Entertainment (Discretionary)
	{Pattern: "cineworld", Subcategory: "Entertainment", Confidence: 0.95},
	{Pattern: "odeon", Subcategory: "Entertainment", Confidence: 0.95},
	{Pattern: "vue cinema", Subcategory: "Entertainment", Confidence: 0.95},
	{Pattern: "cinema", Subcategory: "Entertainment", Confidence: 0.90},
	{Pattern: "ticketmaster", Subcategory: "Entertainment", Confidence: 0.90},

	// Income
	{Pattern: "salary", Subcategory: "Salary", Confidence: 0.95},
	{Pattern: "payroll", Subcategory: "Salary", Confidence: 0.95},
	{Pattern: "wages", Subcategory: "Salary", Confidence: 0.90},
	{Pattern: "refund", Subcategory: "Refund", Confidence: 0.85},

	// Transfers and credit card payments
	{Pattern: "payment received", Subcategory: "Internal Transfer", Confidence: 0.90},
	{Pattern: "thank you for your payment", Subcategory: "Internal Transfer", Confidence: 0.95},
	{Pattern: "payment - thank you", Subcategory: "Internal Transfer", Confidence: 0.95},
	{Pattern: "direct debit payment", Subcategory: "Internal Transfer", Confidence: 0.90},
	{Pattern: "internet payment", Subcategory: "Internal Transfer", Confidence: 0.85},
	{Pattern: "mobile app payment", Subcategory: "Internal Transfer", Confidence: 0.85},

	// Council tax (Essential)
	{Pattern: "council tax", Subcategory: "Council Tax", Confidence: 0.95},

	// Rent / mortgage (Essential)
	{Pattern: "rent", Subcategory: "Rent/Mortgage", Confidence: 0.80},
	{Pattern: "mortgage", Subcategory: "Rent/Mortgage", Confidence: 0.95},
	{Pattern: "nationwide", Subcategory: "Rent/Mortgage", Confidence: 0.70},

	// Gifts (Discretionary)
	{Pattern: "moonpig", Subcategory: "Gifts", Confidence: 0.90},
	{Pattern: "funky pigeon", Subcategory: "Gifts", Confidence: 0.90},
}

// matchRule returns the first rule whose pattern is a substring of the
// lowercased description.
func matchRule(description string) (Rule, bool) {
	lower := strings.ToLower(description)
	for _, rule := range merchantRules {
		if strings.Contains(lower, rule.Pattern) {
			return rule, true
		}
	}
	return Rule{}, false
}
