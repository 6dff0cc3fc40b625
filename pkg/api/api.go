// Package api defines the request and response messages of the pricediary.v1
// Connect services. Messages travel as JSON; dates use the YYYY-MM-DD layout
// and timestamps RFC 3339.
package api

// User is a registered identity.
type User struct {
	Id        string `json:"id"`
	Email     string `json:"email"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// Profile is the per-user profile document.
type Profile struct {
	Id        string `json:"id"`
	Email     string `json:"email"`
	FamilyId  string `json:"familyId,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type LogoutRequest struct{}

type LogoutResponse struct{}

type GetCurrentUserRequest struct{}

type GetCurrentUserResponse struct {
	User    *User    `json:"user"`
	Profile *Profile `json:"profile,omitempty"`
}

// PriceEntry is one observed price.
type PriceEntry struct {
	Id            string  `json:"id"`
	UserId        string  `json:"userId"`
	Category      string  `json:"category"`
	ProductName   string  `json:"productName"`
	ProductKey    string  `json:"productKey"`
	PackageSize   string  `json:"packageSize,omitempty"`
	Store         string  `json:"store,omitempty"`
	Price         float64 `json:"price"`
	Date          string  `json:"date"`
	Note          string  `json:"note,omitempty"`
	CreatedAt     string  `json:"createdAt,omitempty"`
	GlobalEntryId string  `json:"globalEntryId,omitempty"`
}

// EntryForm is the raw entry form as typed by the user.
type EntryForm struct {
	Category    string `json:"category"`
	ProductName string `json:"productName"`
	PackageSize string `json:"packageSize"`
	Store       string `json:"store"`
	Price       string `json:"price"`
	Date        string `json:"date"`
	Note        string `json:"note"`
}

type AddEntryRequest struct {
	Form EntryForm `json:"form"`
}

type AddEntryResponse struct {
	EntryId string `json:"entryId"`
	Summary string `json:"summary"`

	// Repeat pre-fills another entry of the same product.
	Repeat EntryForm `json:"repeat"`
}

type DeleteEntryRequest struct {
	EntryId string `json:"entryId"`
}

type DeleteEntryResponse struct{}

// Sort orders of ListEntries.
const (
	SortByDate    = "date"
	SortByProduct = "product"
)

type ListEntriesRequest struct {
	// Scope is mine, family or all. Empty means mine.
	Scope        string `json:"scope,omitempty"`
	Category     string `json:"category,omitempty"`
	ProductQuery string `json:"productQuery,omitempty"`
	StoreQuery   string `json:"storeQuery,omitempty"`

	// Sort is SortByDate (default, newest first) or SortByProduct.
	Sort string `json:"sort,omitempty"`
}

type ListEntriesResponse struct {
	Entries []*PriceEntry `json:"entries"`

	// Scope is the scope served; Fallback explains a family query answered
	// with the caller's own entries.
	Scope    string `json:"scope"`
	Fallback string `json:"fallback,omitempty"`
}

type ProductStats struct {
	Min   float64     `json:"min"`
	Max   float64     `json:"max"`
	Avg   float64     `json:"avg"`
	Count int         `json:"count"`
	Last  *PriceEntry `json:"last"`
}

type ChartPoint struct {
	Date  string  `json:"date"`
	Price float64 `json:"price"`
}

type GetProductHistoryRequest struct {
	ProductKey string `json:"productKey"`
	Scope      string `json:"scope,omitempty"`
}

type GetProductHistoryResponse struct {
	ProductKey  string        `json:"productKey"`
	DisplayName string        `json:"displayName"`
	Entries     []*PriceEntry `json:"entries"`
	Stats       *ProductStats `json:"stats,omitempty"`
	Points      []*ChartPoint `json:"points"`
	ShowTrend   bool          `json:"showTrend"`
	Scope       string        `json:"scope"`
	Fallback    string        `json:"fallback,omitempty"`
}

type GetFormDefaultsRequest struct{}

type GetFormDefaultsResponse struct {
	Form EntryForm `json:"form"`
}

type Category struct {
	Id    string `json:"id"`
	Label string `json:"label"`
}

type ListCategoriesRequest struct{}

type ListCategoriesResponse struct {
	Categories []*Category `json:"categories"`
}

type CreateFamilyRequest struct{}

type CreateFamilyResponse struct {
	FamilyId  string `json:"familyId"`
	InviteUrl string `json:"inviteUrl"`
}

type JoinFamilyRequest struct {
	FamilyId string `json:"familyId"`
}

type JoinFamilyResponse struct {
	FamilyId string `json:"familyId"`
}

type GetProfileRequest struct{}

type GetProfileResponse struct {
	Profile   *Profile `json:"profile"`
	InviteUrl string   `json:"inviteUrl,omitempty"`
}
