package model

// Category is one of the fixed product categories.
type Category string

const (
	CategoryFruits     Category = "Fruits"
	CategoryVegetables Category = "Vegetables"
	CategoryDairy      Category = "Dairy"
	CategoryMeat       Category = "Meat"
	CategoryBakery     Category = "Bakery"
	CategoryBeverages  Category = "Beverages"
	CategorySnacks     Category = "Snacks"
	CategoryFrozen     Category = "Frozen"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryFruits,
	CategoryVegetables,
	CategoryDairy,
	CategoryMeat,
	CategoryBakery,
	CategoryBeverages,
	CategorySnacks,
	CategoryFrozen,
}

// CategoriesTag lists Categories separated by spaces.
const CategoriesTag = "Fruits Vegetables Dairy Meat Bakery Beverages Snacks Frozen"

// Valid reports whether c is one of Categories. Matching is case-sensitive.
func (c Category) Valid() bool {
	switch c {
	case CategoryFruits, CategoryVegetables, CategoryDairy, CategoryMeat,
		CategoryBakery, CategoryBeverages, CategorySnacks, CategoryFrozen:
		return true
	}
	return false
}

// Style is the rendering token for a category badge.
type Style string

const (
	StylePink    Style = "pink"
	StyleGreen   Style = "green"
	StyleBlue    Style = "blue"
	StyleRed     Style = "red"
	StyleAmber   Style = "amber"
	StylePurple  Style = "purple"
	StyleOrange  Style = "orange"
	StyleCyan    Style = "cyan"
	StyleNeutral Style = "gray"
)

// CategoryStyle maps any category string to a style token. Values outside
// the enumeration get StyleNeutral.
func CategoryStyle(category string) Style {
	switch Category(category) {
	case CategoryFruits:
		return StylePink
	case CategoryVegetables:
		return StyleGreen
	case CategoryDairy:
		return StyleBlue
	case CategoryMeat:
		return StyleRed
	case CategoryBakery:
		return StyleAmber
	case CategoryBeverages:
		return StylePurple
	case CategorySnacks:
		return StyleOrange
	case CategoryFrozen:
		return StyleCyan
	default:
		return StyleNeutral
	}
}

// LowStockThreshold is the quantity under which a product counts as low stock.
const LowStockThreshold = 30

const mediumStockThreshold = 60

// StockLevel classifies a quantity for the table badge.
type StockLevel string

const (
	StockLow     StockLevel = "low"
	StockMedium  StockLevel = "medium"
	StockHealthy StockLevel = "healthy"
)

func StockLevelOf(quantity int) StockLevel {
	switch {
	case quantity < LowStockThreshold:
		return StockLow
	case quantity < mediumStockThreshold:
		return StockMedium
	default:
		return StockHealthy
	}
}

// IsLowStock reports quantity < LowStockThreshold.
func (p Product) IsLowStock() bool {
	return p.Quantity < LowStockThreshold
}
