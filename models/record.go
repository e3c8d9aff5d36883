package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProductRecord is the flat output shape for one product. Summary records
// (from category/search pages) leave Details, Reviews and Promotions nil;
// detailed records fill them in.
type ProductRecord struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"-"`

	ProductID   string `bson:"product_id" json:"id"`
	TPNB        string `bson:"tpnb,omitempty" json:"tpnb,omitempty"`
	TPNC        string `bson:"tpnc,omitempty" json:"tpnc,omitempty"`
	GTIN        string `bson:"gtin,omitempty" json:"gtin,omitempty"`
	Title       string `bson:"title" json:"title"`
	Brand       string `bson:"brand,omitempty" json:"brand,omitempty"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`

	ProductURL   string `bson:"product_url,omitempty" json:"productUrl,omitempty"`
	ImageURL     string `bson:"image_url,omitempty" json:"imageUrl,omitempty"`
	ThumbnailURL string `bson:"thumbnail_url,omitempty" json:"thumbnailUrl,omitempty"`

	SuperDepartment string `bson:"super_department,omitempty" json:"superDepartment,omitempty"`
	Department      string `bson:"department,omitempty" json:"department,omitempty"`
	Aisle           string `bson:"aisle,omitempty" json:"aisle,omitempty"`
	Shelf           string `bson:"shelf,omitempty" json:"shelf,omitempty"`

	IsInSeason *bool `bson:"is_in_season,omitempty" json:"isInSeason,omitempty"`
	IsNew      *bool `bson:"is_new,omitempty" json:"isNew,omitempty"`

	Price        *Price          `bson:"price,omitempty" json:"price,omitempty"`
	Availability *Availability   `bson:"availability,omitempty" json:"availability,omitempty"`
	Details      *ProductDetails `bson:"details,omitempty" json:"details,omitempty"`
	Reviews      *ReviewSummary  `bson:"reviews,omitempty" json:"reviews,omitempty"`
	Promotions   []Promotion     `bson:"promotions,omitempty" json:"promotions,omitempty"`

	// Set on records emitted from category/search pages.
	QueryType  string `bson:"query_type,omitempty" json:"queryType,omitempty"`
	Query      string `bson:"query,omitempty" json:"query,omitempty"`
	PageNumber int    `bson:"page_number,omitempty" json:"pageNumber,omitempty"`

	Region         string    `bson:"region" json:"region"`
	IsDetailedData bool      `bson:"is_detailed_data,omitempty" json:"isDetailedData,omitempty"`
	ScrapedAt      time.Time `bson:"scraped_at" json:"scrapedAt"`
}

type Price struct {
	Value         *float64 `bson:"value,omitempty" json:"value,omitempty"`
	Currency      string   `bson:"currency,omitempty" json:"currency,omitempty"`
	ClubcardPrice *float64 `bson:"clubcard_price,omitempty" json:"clubcardPrice,omitempty"`
	WasPrice      *float64 `bson:"was_price,omitempty" json:"wasPrice,omitempty"`
	UnitPrice     *float64 `bson:"unit_price,omitempty" json:"unitPrice,omitempty"`
	UnitOfMeasure string   `bson:"unit_of_measure,omitempty" json:"unitOfMeasure,omitempty"`
}

type Availability struct {
	Status      string `bson:"status" json:"status"`
	IsAvailable bool   `bson:"is_available" json:"isAvailable"`
	MaxQuantity *int   `bson:"max_quantity,omitempty" json:"maxQuantity,omitempty"`
	MinQuantity *int   `bson:"min_quantity,omitempty" json:"minQuantity,omitempty"`
}

type ProductDetails struct {
	Ingredients           string        `bson:"ingredients,omitempty" json:"ingredients,omitempty"`
	Nutrition             *Nutrition    `bson:"nutrition,omitempty" json:"nutrition,omitempty"`
	Allergens             []string      `bson:"allergens,omitempty" json:"allergens,omitempty"`
	Storage               string        `bson:"storage,omitempty" json:"storage,omitempty"`
	Manufacturer          *Manufacturer `bson:"manufacturer,omitempty" json:"manufacturer,omitempty"`
	NetContents           string        `bson:"net_contents,omitempty" json:"netContents,omitempty"`
	CatchWeight           *float64      `bson:"catch_weight,omitempty" json:"catchWeight,omitempty"`
	PackSize              string        `bson:"pack_size,omitempty" json:"packSize,omitempty"`
	Restrictions          []string      `bson:"restrictions,omitempty" json:"restrictions,omitempty"`
	AgeRestriction        *bool         `bson:"age_restriction,omitempty" json:"ageRestriction,omitempty"`
	MarketingDescriptions []string      `bson:"marketing_descriptions,omitempty" json:"marketingDescriptions,omitempty"`
	Features              []string      `bson:"features,omitempty" json:"features,omitempty"`
	HealthClaims          []string      `bson:"health_claims,omitempty" json:"healthClaims,omitempty"`
	Recycling             string        `bson:"recycling,omitempty" json:"recycling,omitempty"`
}

type Nutrition struct {
	Nutrients            []Nutrient `bson:"nutrients,omitempty" json:"nutrients,omitempty"`
	ServingSize          string     `bson:"serving_size,omitempty" json:"servingSize,omitempty"`
	ServingsPerContainer string     `bson:"servings_per_container,omitempty" json:"servingsPerContainer,omitempty"`
}

type Nutrient struct {
	Name            string `bson:"name" json:"name"`
	ValuePer100g    string `bson:"value_per_100g,omitempty" json:"valuePer100g,omitempty"`
	ValuePerServing string `bson:"value_per_serving,omitempty" json:"valuePerServing,omitempty"`
	DailyValue      string `bson:"daily_value,omitempty" json:"dailyValue,omitempty"`
}

type Manufacturer struct {
	Name    string `bson:"name,omitempty" json:"name,omitempty"`
	Address string `bson:"address,omitempty" json:"address,omitempty"`
}

type ReviewSummary struct {
	Count         int            `bson:"count" json:"count"`
	AverageRating *float64       `bson:"average_rating,omitempty" json:"averageRating,omitempty"`
	Distribution  []RatingBucket `bson:"distribution,omitempty" json:"distribution,omitempty"`
}

type RatingBucket struct {
	Rating int `bson:"rating" json:"rating"`
	Count  int `bson:"count" json:"count"`
}

type Promotion struct {
	PromotionID string `bson:"promotion_id,omitempty" json:"id,omitempty"`
	Type        string `bson:"type,omitempty" json:"type,omitempty"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`
	StartDate   string `bson:"start_date,omitempty" json:"startDate,omitempty"`
	EndDate     string `bson:"end_date,omitempty" json:"endDate,omitempty"`
}

// ReviewPageRecord bundles all reviews of one pagination page into a single
// output record.
type ReviewPageRecord struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"-"`

	ProductID    string    `bson:"product_id" json:"productId"`
	Region       string    `bson:"region" json:"region"`
	Page         int       `bson:"page" json:"page"`
	TotalReviews int       `bson:"total_reviews" json:"totalReviews"`
	Reviews      []Review  `bson:"reviews" json:"reviews"`
	ScrapedAt    time.Time `bson:"scraped_at" json:"scrapedAt"`
}

type Review struct {
	ReviewID         string            `bson:"review_id,omitempty" json:"id,omitempty"`
	Rating           float64           `bson:"rating" json:"rating"`
	Title            string            `bson:"title,omitempty" json:"title,omitempty"`
	Text             string            `bson:"text,omitempty" json:"text,omitempty"`
	Author           string            `bson:"author,omitempty" json:"author,omitempty"`
	Date             string            `bson:"date,omitempty" json:"date,omitempty"`
	IsVerified       bool              `bson:"is_verified" json:"isVerified"`
	HelpfulCount     int               `bson:"helpful_count" json:"helpfulCount"`
	UnhelpfulCount   int               `bson:"unhelpful_count" json:"unhelpfulCount"`
	MerchantResponse *MerchantResponse `bson:"merchant_response,omitempty" json:"merchantResponse,omitempty"`
}

type MerchantResponse struct {
	Text string `bson:"text,omitempty" json:"text,omitempty"`
	Date string `bson:"date,omitempty" json:"date,omitempty"`
}
