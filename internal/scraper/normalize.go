package scraper

import (
	"time"

	"github.com/grocerscan/tesco_scraper/models"
)

const productUrlPrefix = "https://www.tesco.com/groceries/en-GB/products/"

// extractProduct projects a raw product payload into the output record.
// Summary mode (category/search results) leaves the detail block out; every
// lookup tolerates absent fields. The timestamp is generated here, not taken
// from the API.
func extractProduct(p *rawProduct, detailed bool) *models.ProductRecord {
	if p == nil {
		return nil
	}

	rec := &models.ProductRecord{
		ProductID:    firstNonEmpty(p.ID, p.ProductID),
		TPNB:         p.TPNB,
		TPNC:         p.TPNC,
		GTIN:         p.GTIN,
		Title:        firstNonEmpty(p.Title, p.Name),
		Description:  p.Description,
		ImageURL:     firstNonEmpty(p.DefaultImageUrl, p.ImageUrl),
		ThumbnailURL: p.ThumbnailImageUrl,
		IsInSeason:   p.IsInSeason,
		IsNew:        p.IsNew,
		ScrapedAt:    time.Now().UTC(),
	}
	if p.Brand != nil {
		rec.Brand = p.Brand.Name
	}
	if p.ID != "" {
		rec.ProductURL = productUrlPrefix + p.ID
	}
	if p.SuperDepartment != nil {
		rec.SuperDepartment = p.SuperDepartment.Name
	}
	if p.Department != nil {
		rec.Department = p.Department.Name
	}
	if p.Aisle != nil {
		rec.Aisle = p.Aisle.Name
	}
	if p.Shelf != nil {
		rec.Shelf = p.Shelf.Name
	}

	if p.Price != nil {
		price := &models.Price{
			Value:         p.Price.Price,
			Currency:      firstNonEmpty(p.Price.Currency, "GBP"),
			UnitPrice:     p.Price.UnitPrice,
			UnitOfMeasure: p.Price.UnitOfMeasure,
		}
		if p.Price.Actual != nil {
			if p.Price.Actual.Price != nil {
				price.Value = p.Price.Actual.Price
			}
			if p.Price.Actual.Currency != "" {
				price.Currency = p.Price.Actual.Currency
			}
		}
		if p.Price.Clubcard != nil {
			price.ClubcardPrice = p.Price.Clubcard.Price
		}
		if p.Price.Was != nil {
			price.WasPrice = p.Price.Was.Price
		}
		rec.Price = price
	}

	if p.Availability != nil {
		rec.Availability = &models.Availability{
			Status:      p.Availability.Status,
			IsAvailable: p.Availability.Status == "Available",
			MaxQuantity: p.Availability.MaxQuantity,
			MinQuantity: p.Availability.MinQuantity,
		}
	}

	if detailed {
		rec.IsDetailedData = true
		details := &models.ProductDetails{
			Allergens:             p.Allergens,
			Storage:               p.Storage,
			NetContents:           p.NetContents,
			CatchWeight:           p.CatchWeight,
			PackSize:              p.PackSize,
			Restrictions:          p.Restrictions,
			AgeRestriction:        p.AgeRestriction,
			MarketingDescriptions: p.MarketingDescriptions,
			Features:              p.Features,
			HealthClaims:          p.HealthClaims,
		}
		if p.Ingredients != nil {
			details.Ingredients = p.Ingredients.Text
		}
		if p.Recycling != nil {
			details.Recycling = p.Recycling.Text
		}
		if p.Manufacturer != nil {
			details.Manufacturer = &models.Manufacturer{
				Name:    p.Manufacturer.Name,
				Address: p.Manufacturer.Address,
			}
		}
		if p.Nutrition != nil {
			nutrition := &models.Nutrition{
				ServingSize:          p.Nutrition.ServingSize,
				ServingsPerContainer: p.Nutrition.ServingsPerContainer,
			}
			for _, n := range p.Nutrition.Nutrients {
				nutrition.Nutrients = append(nutrition.Nutrients, models.Nutrient{
					Name:            n.Name,
					ValuePer100g:    n.ValuePer100g,
					ValuePerServing: n.ValuePerServing,
					DailyValue:      n.DailyValue,
				})
			}
			details.Nutrition = nutrition
		}
		rec.Details = details

		if p.Reviews != nil {
			summary := &models.ReviewSummary{
				Count:         p.Reviews.Count,
				AverageRating: p.Reviews.AverageRating,
			}
			for _, d := range p.Reviews.Distribution {
				summary.Distribution = append(summary.Distribution, models.RatingBucket{
					Rating: d.Rating,
					Count:  d.Count,
				})
			}
			rec.Reviews = summary
		}
		for _, promo := range p.Promotions {
			rec.Promotions = append(rec.Promotions, models.Promotion{
				PromotionID: promo.ID,
				Type:        promo.Type,
				Description: promo.Description,
				StartDate:   promo.StartDate,
				EndDate:     promo.EndDate,
			})
		}
	}

	return rec
}

// extractReviewPage projects one reviews page 1:1 into a single output
// record; reviews are never aggregated across pages.
func extractReviewPage(productID, region string, page int, data *productReviewsData) *models.ReviewPageRecord {
	rec := &models.ReviewPageRecord{
		ProductID:    productID,
		Region:       region,
		Page:         page,
		TotalReviews: data.Total,
		Reviews:      make([]models.Review, 0, len(data.Reviews)),
		ScrapedAt:    time.Now().UTC(),
	}
	for _, r := range data.Reviews {
		review := models.Review{
			ReviewID:       r.ID,
			Rating:         r.Rating,
			Title:          r.Title,
			Text:           r.Text,
			Author:         r.Author,
			Date:           r.Date,
			IsVerified:     r.Verified,
			HelpfulCount:   r.Helpful,
			UnhelpfulCount: r.Unhelpful,
		}
		if r.Response != nil {
			review.MerchantResponse = &models.MerchantResponse{
				Text: r.Response.Text,
				Date: r.Response.Date,
			}
		}
		rec.Reviews = append(rec.Reviews, review)
	}
	return rec
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
