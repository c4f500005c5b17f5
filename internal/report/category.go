package report

// Category identifies the sourcing category a supplier or subtotal belongs to.
type Category string

const (
	CategoryMarket          Category = "market"
	CategoryLFC             Category = "lfc"
	CategorySaladClub       Category = "saladClub"
	CategoryProcessed       Category = "processed"
	CategoryDirectDelivery  Category = "directDelivery"
	CategoryFlowers         Category = "flowers"
	CategoryDirectProduce   Category = "directProduce"
	CategoryConsumables     Category = "consumables"
	CategoryInterStore      Category = "interStore"
	CategoryInterDepartment Category = "interDepartment"
	CategoryOther           Category = "other"
)

// Categories lists every declared category.
var Categories = []Category{
	CategoryMarket,
	CategoryLFC,
	CategorySaladClub,
	CategoryProcessed,
	CategoryDirectDelivery,
	CategoryFlowers,
	CategoryDirectProduce,
	CategoryConsumables,
	CategoryInterStore,
	CategoryInterDepartment,
	CategoryOther,
}

// Valid reports whether c is one of the declared categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}
