package domain

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a product in the catalog
type Product struct {
	ID              uuid.UUID           `json:"id"`
	Title           string              `json:"title"`
	GrossPrice      decimal.Decimal     `json:"gross_price"`
	DiscountPrice   decimal.NullDecimal `json:"discount_price"`
	DiscountPercent int                 `json:"discount_percent"`
	Description     *string             `json:"description,omitempty"`
	Images          []string            `json:"images"`
	Active          bool                `json:"active"`
	Categories      []*Category         `json:"categories"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// Reprice recomputes the derived discount percentage from the two price fields.
// Every write path calls it so the percentage never drifts from the prices.
func (p *Product) Reprice() {
	p.DiscountPercent = DiscountPercent(p.GrossPrice, p.DiscountPrice)
}

// ProductPatch carries the fields of a partial product update. Nil fields are
// left untouched; RemoveDiscount clears the discounted price.
type ProductPatch struct {
	Title          *string
	GrossPrice     *decimal.Decimal
	DiscountPrice  *decimal.Decimal
	RemoveDiscount bool
	Description    *string
	Images         []string
	ReplaceImages  bool
	Active         *bool
}

// Apply merges the patch onto the product and reprices it. The discount
// percentage is derived from the merged pair, so a patch touching only one
// price still yields a consistent percentage.
func (patch ProductPatch) Apply(p *Product) {
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.GrossPrice != nil {
		p.GrossPrice = *patch.GrossPrice
	}
	if patch.RemoveDiscount {
		p.DiscountPrice = decimal.NullDecimal{}
	} else if patch.DiscountPrice != nil {
		p.DiscountPrice = decimal.NewNullDecimal(*patch.DiscountPrice)
	}
	if patch.Description != nil {
		p.Description = patch.Description
	}
	if patch.ReplaceImages {
		p.Images = append([]string{}, patch.Images...)
	}
	if patch.Active != nil {
		p.Active = *patch.Active
	}
	p.Reprice()
}

// ProductFilter narrows a product listing. All fields are optional and combine
// with AND; Query matches title OR id.
type ProductFilter struct {
	Query           string
	Page            int
	PageSize        int
	CollectionID    *uuid.UUID
	CategoryIDs     []uuid.UUID
	IncludeInactive bool
}

// ProductPage is one page of a product listing plus the unpaginated match count.
type ProductPage struct {
	Items    []*Product `json:"items"`
	Total    int        `json:"total"`
	Page     int        `json:"page"`
	PageSize int        `json:"page_size"`
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	// MaxPage keeps Offset within int32 for any page size.
	MaxPage = math.MaxInt32 / MaxPageSize
)

// Normalize applies the default page and clamps the page and page size.
func (f *ProductFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Page > MaxPage {
		f.Page = MaxPage
	}
	if f.PageSize <= 0 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
}

// Offset is the number of rows skipped for the current page.
func (f ProductFilter) Offset() int {
	return (f.Page - 1) * f.PageSize
}
