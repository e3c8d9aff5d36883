package scraper

import "encoding/json"

// The raw payload tree is semi-typed: every nested object is a pointer so an
// absent field stays nil instead of failing the projection. Partial data is
// not a fetch error.

type apiResponse struct {
	Data   *apiData   `json:"data"`
	Errors []apiError `json:"errors"`
}

type apiError struct {
	Message string `json:"message"`
}

type apiData struct {
	ProductSearch  *productSearchData  `json:"productSearch"`
	Product        *rawProduct         `json:"product"`
	ProductReviews *productReviewsData `json:"productReviews"`
}

func (r *apiResponse) productSearch() *productSearchData {
	if r == nil || r.Data == nil {
		return nil
	}
	return r.Data.ProductSearch
}

func (r *apiResponse) product() *rawProduct {
	if r == nil || r.Data == nil {
		return nil
	}
	return r.Data.Product
}

func (r *apiResponse) productReviews() *productReviewsData {
	if r == nil || r.Data == nil {
		return nil
	}
	return r.Data.ProductReviews
}

type pageInformation struct {
	TotalCount  int `json:"totalCount"`
	PageCount   int `json:"pageCount"`
	CurrentPage int `json:"currentPage"`
}

type productSearchData struct {
	PageInformation *pageInformation `json:"pageInformation"`
	Results         []rawProduct     `json:"results"`
}

type productReviewsData struct {
	Total   int         `json:"total"`
	Reviews []rawReview `json:"reviews"`
}

type rawProduct struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"productId"`
	TPNB        string    `json:"tpnb"`
	TPNC        string    `json:"tpnc"`
	GTIN        string    `json:"gtin"`
	Title       string    `json:"title"`
	Name        string    `json:"name"`
	Brand       *rawBrand `json:"brand"`
	Description string    `json:"description"`

	DefaultImageUrl   string `json:"defaultImageUrl"`
	ImageUrl          string `json:"imageUrl"`
	ThumbnailImageUrl string `json:"thumbnailImageUrl"`

	SuperDepartment *rawTaxon `json:"superDepartment"`
	Department      *rawTaxon `json:"department"`
	Aisle           *rawTaxon `json:"aisle"`
	Shelf           *rawTaxon `json:"shelf"`

	IsInSeason *bool `json:"isInSeason"`
	IsNew      *bool `json:"isNew"`

	Price        *rawPrice        `json:"price"`
	Availability *rawAvailability `json:"availability"`

	Ingredients           *rawText          `json:"ingredients"`
	Nutrition             *rawNutrition     `json:"nutrition"`
	Allergens             []string          `json:"allergens"`
	Storage               string            `json:"storage"`
	Manufacturer          *rawManufacturer  `json:"manufacturer"`
	NetContents           string            `json:"netContents"`
	CatchWeight           *float64          `json:"catchWeight"`
	PackSize              string            `json:"packSize"`
	Restrictions          []string          `json:"restrictions"`
	AgeRestriction        *bool             `json:"ageRestriction"`
	MarketingDescriptions []string          `json:"marketingDescriptions"`
	Features              []string          `json:"features"`
	HealthClaims          []string          `json:"healthClaims"`
	Recycling             *rawText          `json:"recycling"`
	Promotions            []rawPromotion    `json:"promotions"`
	Reviews               *rawReviewSummary `json:"reviews"`
}

// rawBrand tolerates both shapes the API serves: {"name": "..."} on detail
// payloads and a bare string on some listing payloads.
type rawBrand struct {
	Name string `json:"name"`
}

func (b *rawBrand) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		b.Name = s
		return nil
	}
	type alias rawBrand
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	b.Name = a.Name
	return nil
}

type rawTaxon struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

type rawText struct {
	Text string `json:"text"`
}

type rawMoney struct {
	Price    *float64 `json:"price"`
	Currency string   `json:"currency"`
}

type rawPrice struct {
	Actual        *rawMoney `json:"actual"`
	Clubcard      *rawMoney `json:"clubcard"`
	Was           *rawMoney `json:"was"`
	Price         *float64  `json:"price"`
	Currency      string    `json:"currency"`
	UnitPrice     *float64  `json:"unitPrice"`
	UnitOfMeasure string    `json:"unitOfMeasure"`
}

type rawAvailability struct {
	Status      string `json:"status"`
	MaxQuantity *int   `json:"maxQuantity"`
	MinQuantity *int   `json:"minQuantity"`
}

type rawNutrition struct {
	Nutrients            []rawNutrient `json:"nutrients"`
	ServingSize          string        `json:"servingSize"`
	ServingsPerContainer string        `json:"servingsPerContainer"`
}

type rawNutrient struct {
	Name            string `json:"name"`
	ValuePer100g    string `json:"valuePer100g"`
	ValuePerServing string `json:"valuePerServing"`
	DailyValue      string `json:"dailyValue"`
}

type rawManufacturer struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

type rawPromotion struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Description string `json:"description"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
}

type rawReviewSummary struct {
	Count         int              `json:"count"`
	AverageRating *float64         `json:"averageRating"`
	Distribution  []rawRatingCount `json:"distribution"`
}

type rawRatingCount struct {
	Rating int `json:"rating"`
	Count  int `json:"count"`
}

type rawReview struct {
	ID        string             `json:"id"`
	Rating    float64            `json:"rating"`
	Title     string             `json:"title"`
	Text      string             `json:"text"`
	Author    string             `json:"author"`
	Date      string             `json:"date"`
	Verified  bool               `json:"verified"`
	Helpful   int                `json:"helpful"`
	Unhelpful int                `json:"unhelpful"`
	Response  *rawReviewResponse `json:"response"`
}

type rawReviewResponse struct {
	Text string `json:"text"`
	Date string `json:"date"`
}
