package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// DateLayout is the wire and storage format of an observation date.
const DateLayout = "2006-01-02"

// Category is the fixed product category of an entry.
type Category string

const (
	CategoryBeer      Category = "beer"
	CategoryWater     Category = "water"
	CategoryMeat      Category = "meat"
	CategoryBread     Category = "bread"
	CategoryDairy     Category = "dairy"
	CategoryFruitsVeg Category = "fruits_veg"
	CategoryOther     Category = "other"
)

// DefaultCategory is preselected when no remembered category is available.
const DefaultCategory = CategoryBeer

// Categories lists every category in picker order.
var Categories = []Category{
	CategoryBeer,
	CategoryMeat,
	CategoryWater,
	CategoryBread,
	CategoryDairy,
	CategoryFruitsVeg,
	CategoryOther,
}

var categoryLabels = map[Category]string{
	CategoryBeer:      "Бира",
	CategoryMeat:      "Месо",
	CategoryWater:     "Вода",
	CategoryBread:     "Хляб",
	CategoryDairy:     "Млечни",
	CategoryFruitsVeg: "Плодове и зеленчуци",
	CategoryOther:     "Други",
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// Label returns the display label of the category.
func (c Category) Label() string {
	return categoryLabels[c]
}

// ProductKey normalizes a product name for grouping and lookups.
func ProductKey(productName string) string {
	return strings.ToLower(strings.TrimSpace(productName))
}

// PriceEntry is a single observed price.
type PriceEntry struct {
	// ID is unique within the collection the entry was read from.
	ID string

	// UserID is the owner of the entry.
	UserID string

	Category    Category
	ProductName string

	// ProductKey is always ProductKey(ProductName).
	ProductKey string

	PackageSize string
	Store       string
	Price       float64

	// Date is the observation day at UTC midnight.
	Date time.Time

	Note string

	// CreatedAt and UpdatedAt are assigned by the store.
	CreatedAt time.Time
	UpdatedAt time.Time

	// GlobalEntryID is set on per-user records once the global copy exists.
	GlobalEntryID string

	// UserEntryID is set on global records and points at the per-user copy.
	UserEntryID string
}

// NewEntryInput is the user-supplied part of a PriceEntry.
type NewEntryInput struct {
	Category    Category  `validate:"required,oneof=beer water meat bread dairy fruits_veg other"`
	ProductName string    `validate:"required"`
	PackageSize string    `validate:"max=200"`
	Store       string    `validate:"max=200"`
	Price       float64   `validate:"gt=0"`
	Date        time.Time `validate:"required"`
	Note        string    `validate:"max=1000"`
}

// ErrInvalidEntry is returned when an entry input fails validation.
var ErrInvalidEntry = errors.New("invalid price entry")

var validate = validator.New()

// Validate checks the struct-level constraints of the input.
func (in *NewEntryInput) Validate() error {
	// "required" accepts whitespace-only strings
	if strings.TrimSpace(in.ProductName) == "" {
		return fmt.Errorf("%w: product name is required", ErrInvalidEntry)
	}
	if err := validate.Struct(in); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}
	return nil
}

// ToEntry builds the entry that is written for userID.
func (in *NewEntryInput) ToEntry(userID string) *PriceEntry {
	return &PriceEntry{
		UserID:      userID,
		Category:    in.Category,
		ProductName: in.ProductName,
		ProductKey:  ProductKey(in.ProductName),
		PackageSize: in.PackageSize,
		Store:       in.Store,
		Price:       in.Price,
		Date:        DateOnly(in.Date),
		Note:        in.Note,
	}
}

// DateOnly truncates t to midnight UTC of its calendar day.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
