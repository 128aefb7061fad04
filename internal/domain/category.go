package domain

import "time"

// CategoryCode categories.code
type CategoryCode string

const (
	CategoryFood          CategoryCode = "food"
	CategoryNutrition     CategoryCode = "nutrition"
	CategoryWater         CategoryCode = "water"
	CategoryVulnerability CategoryCode = "vulnerability"
	CategoryAgriculture   CategoryCode = "agriculture"
	CategoryLivestock     CategoryCode = "livestock"
	CategoryMarket        CategoryCode = "market"
)

// DefaultCategories is the seed set, code -> display name.
var DefaultCategories = []struct {
	Code CategoryCode
	Name string
}{
	{CategoryFood, "Food Security"},
	{CategoryNutrition, "Nutrition"},
	{CategoryWater, "Water and Hygiene"},
	{CategoryVulnerability, "Vulnerability"},
	{CategoryAgriculture, "Agriculture"},
	{CategoryLivestock, "Livestock"},
	{CategoryMarket, "Market"},
}

func (c CategoryCode) Valid() bool {
	for _, d := range DefaultCategories {
		if d.Code == c {
			return true
		}
	}
	return false
}

// Category categories table
type Category struct {
	CategoryID  string       `db:"category_id"`
	Name        string       `db:"name"`
	Code        CategoryCode `db:"code"` // UNIQUE
	Description *string      `db:"description"`
	CreatedAt   time.Time    `db:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at"`
}
