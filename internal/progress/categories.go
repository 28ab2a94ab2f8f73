package progress

import "strings"

// Category is a predefined task category with its display label.
type Category struct {
	Key   string
	Label string
}

// Categories lists the predefined task categories in menu order.
var Categories = []Category{
	{"solar_research", "🔋 Solar Panel Research"},
	{"innovation", "💡 Renewable Energy Innovation"},
	{"environmental", "🌍 Environmental Impact Analysis"},
	{"market_research", "📊 Market Research & Analysis"},
	{"partnerships", "🤝 Partnership Development"},
	{"funding", "💰 Funding & Investor Outreach"},
	{"product_dev", "⚙️ Product Development"},
	{"marketing", "📢 Marketing & Branding"},
	{"operations", "🏢 Operations & Logistics"},
	{"other", "📝 Other Tasks"},
}

// CategoryLabel returns the display label for key, or key itself for free-text
// categories.
func CategoryLabel(key string) string {
	for _, c := range Categories {
		if c.Key == key {
			return c.Label
		}
	}
	return key
}

// NormalizeCategory trims the input and falls back to "other" when blank.
// Known keys match case-insensitively; anything else is kept verbatim.
func NormalizeCategory(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "other"
	}
	for _, c := range Categories {
		if strings.EqualFold(c.Key, value) {
			return c.Key
		}
	}
	return value
}
