package properties

import (
	"gorm.io/gorm"
)

// ListQuery carries the validated filter, sort, and pagination inputs for
// a property listing. A non-empty Location switches the execution
// strategy from the ORM filter path to the distance-ranked raw query.
type ListQuery struct {
	Page  int
	Limit int

	BedroomsMin  *int
	BedroomsMax  *int
	BathroomsMin *float64
	BathroomsMax *float64
	PriceMin     *float64
	PriceMax     *float64

	SortBy    string
	SortOrder string

	Location string
}

// applyRangeFilters adds each present range bound to an ORM query.
func applyRangeFilters(db *gorm.DB, q ListQuery) *gorm.DB {
	if q.BedroomsMin != nil {
		db = db.Where("bedrooms >= ?", *q.BedroomsMin)
	}
	if q.BedroomsMax != nil {
		db = db.Where("bedrooms <= ?", *q.BedroomsMax)
	}
	if q.BathroomsMin != nil {
		db = db.Where("bathrooms >= ?", *q.BathroomsMin)
	}
	if q.BathroomsMax != nil {
		db = db.Where("bathrooms <= ?", *q.BathroomsMax)
	}
	if q.PriceMin != nil {
		db = db.Where("price >= ?", *q.PriceMin)
	}
	if q.PriceMax != nil {
		db = db.Where("price <= ?", *q.PriceMax)
	}
	return db
}

// appendRangeConditions is the raw-SQL counterpart of applyRangeFilters.
// Every value travels as a bound parameter, never as query text.
func appendRangeConditions(conds []string, args []interface{}, q ListQuery) ([]string, []interface{}) {
	if q.BedroomsMin != nil {
		conds = append(conds, "bedrooms >= ?")
		args = append(args, *q.BedroomsMin)
	}
	if q.BedroomsMax != nil {
		conds = append(conds, "bedrooms <= ?")
		args = append(args, *q.BedroomsMax)
	}
	if q.BathroomsMin != nil {
		conds = append(conds, "bathrooms >= ?")
		args = append(args, *q.BathroomsMin)
	}
	if q.BathroomsMax != nil {
		conds = append(conds, "bathrooms <= ?")
		args = append(args, *q.BathroomsMax)
	}
	if q.PriceMin != nil {
		conds = append(conds, "price >= ?")
		args = append(args, *q.PriceMin)
	}
	if q.PriceMax != nil {
		conds = append(conds, "price <= ?")
		args = append(args, *q.PriceMax)
	}
	return conds, args
}

// orderClause maps the requested sort onto a whitelisted column and
// direction. Unrecognized or absent values fall back to created_at desc.
func orderClause(q ListQuery) string {
	var column string
	switch q.SortBy {
	case "price":
		column = "price"
	case "bedrooms":
		column = "bedrooms"
	case "createdAt":
		column = "created_at"
	default:
		column = "created_at"
	}

	direction := "DESC"
	if q.SortOrder == "asc" {
		direction = "ASC"
	}

	return column + " " + direction
}
