package returns

import (
	"strings"
	"time"
)

type Origin string

const (
	OriginForm            Origin = "Form"
	OriginNaturalLanguage Origin = "NaturalLanguage"
)

type Category string

const (
	CategoryElectronics Category = "Electronics"
	CategoryAppliances  Category = "Appliances"
	CategoryApparel     Category = "Apparel"
	CategoryHome        Category = "Home"
	CategoryToys        Category = "Toys"
	CategorySports      Category = "Sports"
	CategoryBeauty      Category = "Beauty"
	CategoryGrocery     Category = "Grocery"
	CategoryOther       Category = "Other"
	CategoryUnknown     Category = "Unknown"
)

var categories = []Category{
	CategoryElectronics,
	CategoryAppliances,
	CategoryApparel,
	CategoryHome,
	CategoryToys,
	CategorySports,
	CategoryBeauty,
	CategoryGrocery,
	CategoryOther,
	CategoryUnknown,
}

// Categories returns the closed category set in display order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

type ApprovedFlag string

const (
	ApprovedYes ApprovedFlag = "Yes"
	ApprovedNo  ApprovedFlag = "No"
)

// UnknownText is the sentinel stored for textual fields the extraction step could not supply.
const UnknownText = "Unknown"

// Candidate is an unvalidated submission with every field populated.
type Candidate struct {
	Product      string       `json:"product" validate:"required,min=2"`
	StoreName    string       `json:"store_name" validate:"required,min=2"`
	Category     Category     `json:"category" validate:"required,return_category"`
	Cost         float64      `json:"cost"`
	ReturnReason string       `json:"return_reason" validate:"required"`
	ApprovedFlag ApprovedFlag `json:"approved_flag" validate:"required,oneof=Yes No"`
	Origin       Origin       `json:"origin" validate:"required,oneof=Form NaturalLanguage"`
}

// ReturnRecord is a committed, immutable return event.
type ReturnRecord struct {
	OrderID      uint64
	Product      string
	StoreName    string
	Category     Category
	Cost         float64
	ReturnReason string
	ApprovedFlag ApprovedFlag
	Origin       Origin
	CreatedAt    time.Time
}

// NewRecord binds a validated candidate to its allocated key and commit time.
func NewRecord(c Candidate, orderID uint64, createdAt time.Time) ReturnRecord {
	return ReturnRecord{
		OrderID:      orderID,
		Product:      c.Product,
		StoreName:    c.StoreName,
		Category:     c.Category,
		Cost:         c.Cost,
		ReturnReason: c.ReturnReason,
		ApprovedFlag: c.ApprovedFlag,
		Origin:       c.Origin,
		CreatedAt:    createdAt.UTC(),
	}
}

// Approved reports whether the record carries approved_flag = Yes.
func (r ReturnRecord) Approved() bool {
	return r.ApprovedFlag == ApprovedYes
}

func normalizeCategory(raw string) Category {
	trimmed := strings.TrimSpace(raw)
	for _, c := range categories {
		if strings.EqualFold(trimmed, string(c)) {
			return c
		}
	}
	return Category(trimmed)
}

func normalizeApproved(raw string) ApprovedFlag {
	trimmed := strings.TrimSpace(raw)
	switch {
	case strings.EqualFold(trimmed, string(ApprovedYes)):
		return ApprovedYes
	case strings.EqualFold(trimmed, string(ApprovedNo)):
		return ApprovedNo
	default:
		return ApprovedFlag(trimmed)
	}
}

func isCategory(value string) bool {
	for _, c := range categories {
		if string(c) == value {
			return true
		}
	}
	return false
}
