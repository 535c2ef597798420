package signals

// Category is the buy/sell label derived from the overall score
type Category string

const (
	CategoryStrongBuy  Category = "STRONG BUY"
	CategoryBuy        Category = "BUY"
	CategoryStrongSell Category = "STRONG SELL"
	CategorySell       Category = "SELL"
	CategoryNeutral    Category = "NEUTRAL"
)

// Categorize labels an overall score given the strong threshold
func Categorize(overall, strongThreshold int) Category {
	switch {
	case overall >= strongThreshold:
		return CategoryStrongBuy
	case overall > 0:
		return CategoryBuy
	case overall <= -strongThreshold:
		return CategoryStrongSell
	case overall < 0:
		return CategorySell
	default:
		return CategoryNeutral
	}
}

// IsBuy reports whether the category is BUY or STRONG BUY
func (c Category) IsBuy() bool {
	return c == CategoryBuy || c == CategoryStrongBuy
}

// IsSell reports whether the category is SELL or STRONG SELL
func (c Category) IsSell() bool {
	return c == CategorySell || c == CategoryStrongSell
}

// Marker returns the console marker for a per-indicator signal
func Marker(signal int) string {
	switch {
	case signal > 0:
		return "🟢 BUY"
	case signal < 0:
		return "🔴 SELL"
	default:
		return "⚪ NEUTRAL"
	}
}

// Marker returns the console marker for the category
func (c Category) Marker() string {
	switch c {
	case CategoryStrongBuy:
		return "🟢🟢 STRONG BUY"
	case CategoryBuy:
		return "🟢 BUY"
	case CategoryStrongSell:
		return "🔴🔴 STRONG SELL"
	case CategorySell:
		return "🔴 SELL"
	default:
		return "⚪ NEUTRAL"
	}
}
