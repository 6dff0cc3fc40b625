// Package forms turns raw entry form input into validated entry inputs and
// fills the form with remembered defaults.
package forms

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/mmynk/pricediary/internal/models"
	"github.com/mmynk/pricediary/internal/prefs"
)

var (
	ErrInvalidPrice     = errors.New("enter a valid price")
	ErrEmptyProductName = errors.New("enter a product name")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidCategory  = errors.New("unknown category")
)

// EntryForm is the raw, string-valued entry form.
type EntryForm struct {
	Category    string
	ProductName string
	PackageSize string
	Store       string
	Price       string
	Date        string
	Note        string
}

// IsInvalid reports whether err was caused by user input rather than by a
// failing dependency.
func IsInvalid(err error) bool {
	return errors.Is(err, ErrInvalidPrice) ||
		errors.Is(err, ErrEmptyProductName) ||
		errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidCategory) ||
		errors.Is(err, models.ErrInvalidEntry)
}

// ParseEntryForm validates the form and converts it to an entry input.
// Checks run in form order: price, product name, date, category.
func ParseEntryForm(f EntryForm) (models.NewEntryInput, error) {
	price, err := ParsePrice(f.Price)
	if err != nil {
		return models.NewEntryInput{}, err
	}

	name := strings.TrimSpace(f.ProductName)
	if name == "" {
		return models.NewEntryInput{}, ErrEmptyProductName
	}

	date, err := time.Parse(models.DateLayout, strings.TrimSpace(f.Date))
	if err != nil {
		return models.NewEntryInput{}, ErrInvalidDate
	}

	category := models.Category(strings.TrimSpace(f.Category))
	if !category.Valid() {
		return models.NewEntryInput{}, fmt.Errorf("%w: %q", ErrInvalidCategory, f.Category)
	}

	input := models.NewEntryInput{
		Category:    category,
		ProductName: name,
		PackageSize: strings.TrimSpace(f.PackageSize),
		Store:       strings.TrimSpace(f.Store),
		Price:       price,
		Date:        date,
		Note:        strings.TrimSpace(f.Note),
	}
	if err := input.Validate(); err != nil {
		return models.NewEntryInput{}, err
	}
	return input, nil
}

// ParsePrice accepts a decimal comma or point. The price must be a finite
// number above zero.
func ParsePrice(s string) (float64, error) {
	s = strings.Replace(strings.TrimSpace(s), ",", ".", 1)
	price, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return 0, ErrInvalidPrice
	}
	return price, nil
}

// Defaults returns the initial form for userID: the remembered category
// (or the default one), the remembered store and today's date.
func Defaults(ctx context.Context, store prefs.Store, userID string, today time.Time) (EntryForm, error) {
	form := EntryForm{
		Category: string(models.DefaultCategory),
		Date:     today.Format(models.DateLayout),
	}

	p, err := store.Get(ctx, userID)
	if err != nil {
		return form, fmt.Errorf("failed to load preferences: %w", err)
	}
	if p.Category.Valid() {
		form.Category = string(p.Category)
	}
	form.Store = p.Store
	return form, nil
}

// Remember stores the category and, when set, the store of a saved entry.
func Remember(ctx context.Context, store prefs.Store, userID string, input models.NewEntryInput) error {
	return store.Remember(ctx, userID, prefs.Preferences{
		Category: input.Category,
		Store:    input.Store,
	})
}

// Repeat returns a form for another entry of the same product: category,
// name, package size and date are kept, everything else is cleared.
func Repeat(input models.NewEntryInput) EntryForm {
	return EntryForm{
		Category:    string(input.Category),
		ProductName: input.ProductName,
		PackageSize: input.PackageSize,
		Date:        input.Date.Format(models.DateLayout),
	}
}

// Summary is the confirmation shown after an entry is saved.
func Summary(input models.NewEntryInput) string {
	store := input.Store
	if store == "" {
		store = "no store"
	}
	return fmt.Sprintf("Saved: %s – %.2f (%s)", input.ProductName, input.Price, store)
}
