package scraper

import (
	"fmt"
	"net/http"
)

const apiEndpoint = "https://xapi.tesco.com/"

type OperationLabel string

const (
	LabelCategory OperationLabel = "CATEGORY"
	LabelProduct  OperationLabel = "PRODUCT"
	LabelReviews  OperationLabel = "REVIEWS"
)

// CategoryContext is the lineage state threaded through category/search
// pagination. Follow-up pages copy it with Page and ItemsScraped advanced.
type CategoryContext struct {
	Type                  QueryType `json:"type"`
	Query                 string    `json:"query,omitempty"`
	CategoryPath          string    `json:"category_path,omitempty"`
	Region                string    `json:"region"`
	MaxItems              int       `json:"max_items,omitempty"`
	IncludeProductDetails bool      `json:"include_product_details,omitempty"`
	IncludeReviews        bool      `json:"include_reviews,omitempty"`
	QueryIndex            int       `json:"query_index"`
	TotalQueries          int       `json:"total_queries"`
	Page                  int       `json:"page"`
	ItemsScraped          int       `json:"items_scraped"`
}

// Identifier is the query text for searches and the category path for
// category listings; it is the identifying part of the dedup key.
func (c *CategoryContext) Identifier() string {
	if c.Query != "" {
		return c.Query
	}
	return c.CategoryPath
}

// ProductContext describes one product-detail fetch. Detail fetches expanded
// out of a category page start fresh: no pagination state is inherited.
type ProductContext struct {
	ProductID      string `json:"product_id"`
	Region         string `json:"region"`
	IncludeReviews bool   `json:"include_reviews,omitempty"`
	QueryIndex     int    `json:"query_index"`
	TotalQueries   int    `json:"total_queries"`
	FromCategory   bool   `json:"from_category,omitempty"`
}

// ReviewsContext is the lineage state for review pagination of one product.
type ReviewsContext struct {
	ProductID    string `json:"product_id"`
	Region       string `json:"region"`
	Page         int    `json:"page"`
	TotalReviews int    `json:"total_reviews,omitempty"`
	QueryIndex   int    `json:"query_index"`
	TotalQueries int    `json:"total_queries"`
}

// RequestDescriptor is the unit of work held by the frontier. Exactly one of
// the context fields is set, matching Label. UniqueKey derives
// deterministically from (label, identifier, region, page), which is the sole
// defense against duplicate or infinite enqueue.
type RequestDescriptor struct {
	URL       string           `json:"url"`
	Method    string           `json:"method"`
	Label     OperationLabel   `json:"label"`
	UniqueKey string           `json:"unique_key"`
	Retries   int              `json:"retries,omitempty"`
	Category  *CategoryContext `json:"category,omitempty"`
	Product   *ProductContext  `json:"product,omitempty"`
	Reviews   *ReviewsContext  `json:"reviews,omitempty"`
}

// SeedOptions carries the per-run configuration stamped onto every seed
// query's initial context.
type SeedOptions struct {
	Region                string
	MaxItems              int
	IncludeProductDetails bool
	IncludeReviews        bool
	QueryIndex            int
	TotalQueries          int
}

// NewSeedRequest resolves a classified query intent into its initial request
// descriptor.
func NewSeedRequest(intent QueryIntent, opts SeedOptions) *RequestDescriptor {
	switch intent.Type {
	case QueryTypeProduct:
		return &RequestDescriptor{
			URL:       apiEndpoint,
			Method:    http.MethodPost,
			Label:     LabelProduct,
			UniqueKey: fmt.Sprintf("product-%s-%s", intent.ProductID, opts.Region),
			Product: &ProductContext{
				ProductID:      intent.ProductID,
				Region:         opts.Region,
				IncludeReviews: opts.IncludeReviews,
				QueryIndex:     opts.QueryIndex,
				TotalQueries:   opts.TotalQueries,
			},
		}
	case QueryTypeReviews:
		return &RequestDescriptor{
			URL:       apiEndpoint,
			Method:    http.MethodPost,
			Label:     LabelReviews,
			UniqueKey: fmt.Sprintf("reviews-%s-%s", intent.ProductID, opts.Region),
			Reviews: &ReviewsContext{
				ProductID:    intent.ProductID,
				Region:       opts.Region,
				Page:         1,
				QueryIndex:   opts.QueryIndex,
				TotalQueries: opts.TotalQueries,
			},
		}
	default:
		return NewCategoryPageRequest(CategoryContext{
			Type:                  intent.Type,
			Query:                 intent.Query,
			CategoryPath:          intent.CategoryPath,
			Region:                opts.Region,
			MaxItems:              opts.MaxItems,
			IncludeProductDetails: opts.IncludeProductDetails,
			IncludeReviews:        opts.IncludeReviews,
			QueryIndex:            opts.QueryIndex,
			TotalQueries:          opts.TotalQueries,
			Page:                  1,
		})
	}
}

// NewCategoryPageRequest builds the descriptor for one category/search page.
// Each page gets its own dedup key, so re-deriving the key for an
// already-fetched page is silently absorbed by the frontier.
func NewCategoryPageRequest(ctx CategoryContext) *RequestDescriptor {
	return &RequestDescriptor{
		URL:    apiEndpoint,
		Method: http.MethodPost,
		Label:  LabelCategory,
		UniqueKey: fmt.Sprintf("%s-%s-%s-page-%d",
			ctx.Type, ctx.Identifier(), ctx.Region, ctx.Page),
		Category: &ctx,
	}
}

// NewProductDetailRequest builds a detail fetch. Detail fetches expanded from
// a category page are keyed separately from seed-level product fetches.
func NewProductDetailRequest(ctx ProductContext) *RequestDescriptor {
	key := fmt.Sprintf("product-%s-%s", ctx.ProductID, ctx.Region)
	if ctx.FromCategory {
		key = fmt.Sprintf("product-detail-%s-%s", ctx.ProductID, ctx.Region)
	}
	return &RequestDescriptor{
		URL:       apiEndpoint,
		Method:    http.MethodPost,
		Label:     LabelProduct,
		UniqueKey: key,
		Product:   &ctx,
	}
}

func NewReviewsPageRequest(ctx ReviewsContext) *RequestDescriptor {
	return &RequestDescriptor{
		URL:    apiEndpoint,
		Method: http.MethodPost,
		Label:  LabelReviews,
		UniqueKey: fmt.Sprintf("reviews-%s-%s-page-%d",
			ctx.ProductID, ctx.Region, ctx.Page),
		Reviews: &ctx,
	}
}
