package scraper

import (
	"context"
	"fmt"
	"log"
)

// HandlerResult is what one processed response produces: records for the
// sink, in order, plus follow-up descriptors for the frontier. A follow-up
// page is only ever built here, after its predecessor was fully processed, so
// pagination within a lineage stays strictly sequential.
type HandlerResult struct {
	Records []interface{}
	Next    []*RequestDescriptor
}

type HandlerFunc func(ctx context.Context, desc *RequestDescriptor) (*HandlerResult, error)

// Router maps an operation label to its handler. It is built once at startup
// and passed down explicitly.
type Router map[OperationLabel]HandlerFunc

// Controller is the expansion state machine. Per response it decides how many
// records to emit, whether to enqueue the next page, and whether to expand
// into child detail/review fetches, respecting the per-query item cap.
type Controller struct {
	client *APIClient
	log    *log.Logger
}

func NewController(client *APIClient, logger *log.Logger) *Controller {
	return &Controller{client: client, log: logger}
}

func (c *Controller) Router() Router {
	return Router{
		LabelCategory: c.HandleCategory,
		LabelProduct:  c.HandleProduct,
		LabelReviews:  c.HandleReviews,
	}
}

func (c *Controller) HandleCategory(ctx context.Context, desc *RequestDescriptor) (*HandlerResult, error) {
	qctx := desc.Category
	if qctx == nil {
		return nil, fmt.Errorf("category request %s is missing its context", desc.UniqueKey)
	}
	c.log.Printf("[%d/%d] Processing %s page %d: %s",
		qctx.QueryIndex+1, qctx.TotalQueries, qctx.Type, qctx.Page, qctx.Identifier())

	resp, err := c.client.Do(ctx, desc, qctx.Region, CategoryPayload(qctx))
	if err != nil {
		return nil, err
	}

	search := resp.productSearch()
	if search == nil || search.PageInformation == nil || search.Results == nil {
		c.log.Printf("no search results found for %s: %s", qctx.Type, qctx.Identifier())
		return &HandlerResult{}, nil
	}

	result := &HandlerResult{}
	itemsScraped := qctx.ItemsScraped
	for i := range search.Results {
		if qctx.MaxItems > 0 && itemsScraped >= qctx.MaxItems {
			c.log.Printf("reached maximum items limit (%d) for query %d", qctx.MaxItems, qctx.QueryIndex+1)
			break
		}
		product := &search.Results[i]
		rec := extractProduct(product, false)
		rec.QueryType = string(qctx.Type)
		rec.Query = qctx.Identifier()
		rec.Region = qctx.Region
		rec.PageNumber = qctx.Page
		result.Records = append(result.Records, rec)
		itemsScraped++

		if qctx.IncludeProductDetails && product.ID != "" {
			result.Next = append(result.Next, NewProductDetailRequest(ProductContext{
				ProductID:      product.ID,
				Region:         qctx.Region,
				IncludeReviews: qctx.IncludeReviews,
				QueryIndex:     qctx.QueryIndex,
				TotalQueries:   qctx.TotalQueries,
				FromCategory:   true,
			}))
		}
	}

	c.log.Printf("Scraped %d products from page %d (Total: %d/%d)",
		len(result.Records), qctx.Page, itemsScraped, search.PageInformation.TotalCount)

	hasNextPage := qctx.Page < search.PageInformation.PageCount
	shouldContinue := qctx.MaxItems <= 0 || itemsScraped < qctx.MaxItems
	if hasNextPage && shouldContinue {
		next := *qctx
		next.Page = qctx.Page + 1
		next.ItemsScraped = itemsScraped
		result.Next = append(result.Next, NewCategoryPageRequest(next))
	}

	return result, nil
}

func (c *Controller) HandleProduct(ctx context.Context, desc *RequestDescriptor) (*HandlerResult, error) {
	pctx := desc.Product
	if pctx == nil {
		return nil, fmt.Errorf("product request %s is missing its context", desc.UniqueKey)
	}
	if pctx.FromCategory {
		c.log.Printf("Fetching product details for ID: %s", pctx.ProductID)
	} else {
		c.log.Printf("[%d/%d] Fetching product details for ID: %s",
			pctx.QueryIndex+1, pctx.TotalQueries, pctx.ProductID)
	}

	resp, err := c.client.Do(ctx, desc, pctx.Region, ProductPayload(pctx))
	if err != nil {
		return nil, err
	}

	product := resp.product()
	if product == nil {
		c.log.Printf("Product not found: %s", pctx.ProductID)
		return &HandlerResult{}, nil
	}

	rec := extractProduct(product, true)
	rec.Region = pctx.Region
	result := &HandlerResult{Records: []interface{}{rec}}
	c.log.Printf("Successfully scraped detailed data for product: %s", rec.Title)

	if pctx.IncludeReviews && product.Reviews != nil && product.Reviews.Count > 0 {
		result.Next = append(result.Next, NewReviewsPageRequest(ReviewsContext{
			ProductID:    pctx.ProductID,
			Region:       pctx.Region,
			Page:         1,
			TotalReviews: product.Reviews.Count,
			QueryIndex:   pctx.QueryIndex,
			TotalQueries: pctx.TotalQueries,
		}))
	}

	return result, nil
}

func (c *Controller) HandleReviews(ctx context.Context, desc *RequestDescriptor) (*HandlerResult, error) {
	rctx := desc.Reviews
	if rctx == nil {
		return nil, fmt.Errorf("reviews request %s is missing its context", desc.UniqueKey)
	}
	c.log.Printf("Fetching reviews page %d for product ID: %s", rctx.Page, rctx.ProductID)

	resp, err := c.client.Do(ctx, desc, rctx.Region, ReviewsPayload(rctx))
	if err != nil {
		return nil, err
	}

	reviewsData := resp.productReviews()
	if reviewsData == nil || reviewsData.Reviews == nil {
		c.log.Printf("No reviews found for product: %s", rctx.ProductID)
		return &HandlerResult{}, nil
	}

	rec := extractReviewPage(rctx.ProductID, rctx.Region, rctx.Page, reviewsData)
	result := &HandlerResult{Records: []interface{}{rec}}
	c.log.Printf("Scraped %d reviews from page %d", len(rec.Reviews), rctx.Page)

	if rctx.Page*reviewsPageSize < reviewsData.Total {
		next := *rctx
		next.Page = rctx.Page + 1
		next.TotalReviews = reviewsData.Total
		result.Next = append(result.Next, NewReviewsPageRequest(next))
	}

	return result, nil
}
