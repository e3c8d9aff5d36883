package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/grocerscan/tesco_scraper/config"
	"github.com/grocerscan/tesco_scraper/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI serves canned GraphQL responses keyed by operation name. Workers
// fetch concurrently, so the request log is guarded.
type fakeAPI struct {
	t         *testing.T
	responses map[string]func(variables map[string]interface{}) string

	mu       sync.Mutex
	requests []GraphQLPayload
}

func (f *fakeAPI) record(payload GraphQLPayload) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, payload)
}

func (f *fakeAPI) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func newFakeAPI(t *testing.T) (*fakeAPI, *httptest.Server) {
	f := &fakeAPI{t: t, responses: map[string]func(map[string]interface{}) string{}}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var payload GraphQLPayload
		require.NoError(t, json.Unmarshal(body, &payload))
		f.record(payload)

		respond, ok := f.responses[payload.OperationName]
		if !ok {
			t.Fatalf("unexpected operation %q", payload.OperationName)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, respond(payload.Variables))
	}))
	t.Cleanup(server.Close)
	return f, server
}

func newTestController(t *testing.T, serverURL string) *Controller {
	client := NewAPIClient(config.GetDefaultConfig())
	client.baseURL = serverURL
	return NewController(client, log.New(io.Discard, "", 0))
}

func categoryResponse(currentPage, pageCount, totalCount int, ids ...string) string {
	results := make([]map[string]interface{}, 0, len(ids))
	for _, id := range ids {
		results = append(results, map[string]interface{}{
			"id":    id,
			"title": "Product " + id,
		})
	}
	out, _ := json.Marshal(map[string]interface{}{
		"data": map[string]interface{}{
			"productSearch": map[string]interface{}{
				"pageInformation": map[string]interface{}{
					"totalCount":  totalCount,
					"pageCount":   pageCount,
					"currentPage": currentPage,
				},
				"results": results,
			},
		},
	})
	return string(out)
}

func categoryDescriptor(ctx CategoryContext) *RequestDescriptor {
	return NewCategoryPageRequest(ctx)
}

func TestHandleCategory_EmitsRecordsAndNextPage(t *testing.T) {
	api, server := newFakeAPI(t)
	api.responses["GetCategoryProducts"] = func(map[string]interface{}) string {
		return categoryResponse(1, 3, 120, "100000001", "100000002", "100000003")
	}
	controller := newTestController(t, server.URL)

	desc := categoryDescriptor(CategoryContext{
		Type: QueryTypeSearch, Query: "milk", Region: "UK", Page: 1, TotalQueries: 1,
	})
	result, err := controller.HandleCategory(context.Background(), desc)
	require.NoError(t, err)

	require.Len(t, result.Records, 3)
	first := result.Records[0].(*models.ProductRecord)
	assert.Equal(t, "100000001", first.ProductID)
	assert.Equal(t, "search", first.QueryType)
	assert.Equal(t, "milk", first.Query)
	assert.Equal(t, "UK", first.Region)
	assert.Equal(t, 1, first.PageNumber)

	require.Len(t, result.Next, 1)
	next := result.Next[0]
	assert.Equal(t, LabelCategory, next.Label)
	assert.Equal(t, "search-milk-UK-page-2", next.UniqueKey)
	require.NotNil(t, next.Category)
	assert.Equal(t, 2, next.Category.Page)
	assert.Equal(t, 3, next.Category.ItemsScraped)
}

func TestHandleCategory_CapStopsEmissionAndPagination(t *testing.T) {
	api, server := newFakeAPI(t)
	api.responses["GetCategoryProducts"] = func(map[string]interface{}) string {
		return categoryResponse(1, 5, 240, "100000001", "100000002", "100000003", "100000004")
	}
	controller := newTestController(t, server.URL)

	desc := categoryDescriptor(CategoryContext{
		Type: QueryTypeSearch, Query: "milk", Region: "UK", Page: 1, MaxItems: 2, TotalQueries: 1,
	})
	result, err := controller.HandleCategory(context.Background(), desc)
	require.NoError(t, err)

	// Exactly maxItems records, remaining items dropped, no next page even
	// though more pages exist.
	assert.Len(t, result.Records, 2)
	assert.Empty(t, result.Next)
}

func TestHandleCategory_CapCountsAcrossPages(t *testing.T) {
	api, server := newFakeAPI(t)
	api.responses["GetCategoryProducts"] = func(map[string]interface{}) string {
		return categoryResponse(2, 5, 240, "100000005", "100000006")
	}
	controller := newTestController(t, server.URL)

	// Page 2 of a capped lineage that has already emitted 9 of 10.
	desc := categoryDescriptor(CategoryContext{
		Type: QueryTypeSearch, Query: "milk", Region: "UK", Page: 2, MaxItems: 10, ItemsScraped: 9, TotalQueries: 1,
	})
	result, err := controller.HandleCategory(context.Background(), desc)
	require.NoError(t, err)

	assert.Len(t, result.Records, 1)
	assert.Empty(t, result.Next)
}

func TestHandleCategory_ExpandsDetailsForEmittedItemsOnly(t *testing.T) {
	api, server := newFakeAPI(t)
	api.responses["GetCategoryProducts"] = func(map[string]interface{}) string {
		return categoryResponse(1, 1, 3, "100000001", "100000002", "100000003")
	}
	controller := newTestController(t, server.URL)

	desc := categoryDescriptor(CategoryContext{
		Type: QueryTypeCategory, CategoryPath: "Fresh food", Region: "UK", Page: 1,
		MaxItems: 2, IncludeProductDetails: true, IncludeReviews: true, TotalQueries: 1,
	})
	result, err := controller.HandleCategory(context.Background(), desc)
	require.NoError(t, err)

	assert.Len(t, result.Records, 2)
	require.Len(t, result.Next, 2)
	for i, next := range result.Next {
		assert.Equal(t, LabelProduct, next.Label)
		require.NotNil(t, next.Product)
		assert.True(t, next.Product.FromCategory)
		// Child detail fetches inherit the lineage's reviews flag but start
		// fresh pagination state.
		assert.True(t, next.Product.IncludeReviews)
		assert.Equal(t, fmt.Sprintf("product-detail-10000000%d-UK", i+1), next.UniqueKey)
	}
}

func TestHandleCategory_MissingResultsSoftTerminates(t *testing.T) {
	api, server := newFakeAPI(t)
	api.responses["GetCategoryProducts"] = func(map[string]interface{}) string {
		return `{"data":{"productSearch":null}}`
	}
	controller := newTestController(t, server.URL)

	desc := categoryDescriptor(CategoryContext{Type: QueryTypeSearch, Query: "nothing", Region: "UK", Page: 1, TotalQueries: 1})
	result, err := controller.HandleCategory(context.Background(), desc)
	require.NoError(t, err)
	assert.Empty(t, result.Records)
	assert.Empty(t, result.Next)
}

func TestHandleCategory_APIErrorsFailTheRequest(t *testing.T) {
	api, server := newFakeAPI(t)
	api.responses["GetCategoryProducts"] = func(map[string]interface{}) string {
		return `{"data":null,"errors":[{"message":"rate limited"}]}`
	}
	controller := newTestController(t, server.URL)

	desc := categoryDescriptor(CategoryContext{Type: QueryTypeSearch, Query: "milk", Region: "UK", Page: 1, TotalQueries: 1})
	_, err := controller.HandleCategory(context.Background(), desc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}

func productResponse(id string, reviewCount int) string {
	out, _ := json.Marshal(map[string]interface{}{
		"data": map[string]interface{}{
			"product": map[string]interface{}{
				"id":    id,
				"title": "Product " + id,
				"reviews": map[string]interface{}{
					"count": reviewCount,
				},
			},
		},
	})
	return string(out)
}

func TestHandleProduct_EmitsDetailedRecord(t *testing.T) {
	api, server := newFakeAPI(t)
	api.responses["GetProductDetails"] = func(variables map[string]interface{}) string {
		assert.Equal(t, "254656543", variables["id"])
		return productResponse("254656543", 12)
	}
	controller := newTestController(t, server.URL)

	desc := NewProductDetailRequest(ProductContext{ProductID: "254656543", Region: "UK", IncludeReviews: true, TotalQueries: 1})
	result, err := controller.HandleProduct(context.Background(), desc)
	require.NoError(t, err)

	require.Len(t, result.Records, 1)
	rec := result.Records[0].(*models.ProductRecord)
	assert.True(t, rec.IsDetailedData)
	assert.Equal(t, "UK", rec.Region)

	require.Len(t, result.Next, 1)
	next := result.Next[0]
	assert.Equal(t, LabelReviews, next.Label)
	assert.Equal(t, "reviews-254656543-UK-page-1", next.UniqueKey)
	require.NotNil(t, next.Reviews)
	assert.Equal(t, 12, next.Reviews.TotalReviews)
}

func TestHandleProduct_NoReviewsFollowUpWhenCountZero(t *testing.T) {
	api, server := newFakeAPI(t)
	api.responses["GetProductDetails"] = func(map[string]interface{}) string {
		return productResponse("254656543", 0)
	}
	controller := newTestController(t, server.URL)

	desc := NewProductDetailRequest(ProductContext{ProductID: "254656543", Region: "UK", IncludeReviews: true, TotalQueries: 1})
	result, err := controller.HandleProduct(context.Background(), desc)
	require.NoError(t, err)
	assert.Len(t, result.Records, 1)
	assert.Empty(t, result.Next)
}

func TestHandleProduct_NoReviewsFollowUpWhenFlagUnset(t *testing.T) {
	api, server := newFakeAPI(t)
	api.responses["GetProductDetails"] = func(map[string]interface{}) string {
		return productResponse("254656543", 40)
	}
	controller := newTestController(t, server.URL)

	desc := NewProductDetailRequest(ProductContext{ProductID: "254656543", Region: "UK", TotalQueries: 1})
	result, err := controller.HandleProduct(context.Background(), desc)
	require.NoError(t, err)
	assert.Empty(t, result.Next)
}

func TestHandleProduct_NotFoundSoftTerminates(t *testing.T) {
	api, server := newFakeAPI(t)
	api.responses["GetProductDetails"] = func(map[string]interface{}) string {
		return `{"data":{"product":null}}`
	}
	controller := newTestController(t, server.URL)

	desc := NewProductDetailRequest(ProductContext{ProductID: "999999999", Region: "UK", TotalQueries: 1})
	result, err := controller.HandleProduct(context.Background(), desc)
	require.NoError(t, err)
	assert.Empty(t, result.Records)
	assert.Empty(t, result.Next)
}

func reviewsResponse(total int, ids ...string) string {
	reviews := make([]map[string]interface{}, 0, len(ids))
	for _, id := range ids {
		reviews = append(reviews, map[string]interface{}{"id": id, "rating": 4})
	}
	out, _ := json.Marshal(map[string]interface{}{
		"data": map[string]interface{}{
			"productReviews": map[string]interface{}{
				"total":   total,
				"reviews": reviews,
			},
		},
	})
	return string(out)
}

func TestHandleReviews_Continuation(t *testing.T) {
	tests := []struct {
		page     int
		total    int
		wantNext bool
	}{
		{page: 1, total: 25, wantNext: true},
		{page: 2, total: 25, wantNext: true},
		{page: 3, total: 25, wantNext: false},
		{page: 1, total: 10, wantNext: false},
		{page: 1, total: 11, wantNext: true},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("page%d_total%d", tt.page, tt.total), func(t *testing.T) {
			api, server := newFakeAPI(t)
			api.responses["GetProductReviews"] = func(variables map[string]interface{}) string {
				assert.Equal(t, float64((tt.page-1)*10), variables["offset"])
				assert.Equal(t, float64(10), variables["limit"])
				return reviewsResponse(tt.total, "r1", "r2")
			}
			controller := newTestController(t, server.URL)

			desc := NewReviewsPageRequest(ReviewsContext{ProductID: "254656543", Region: "UK", Page: tt.page, TotalQueries: 1})
			result, err := controller.HandleReviews(context.Background(), desc)
			require.NoError(t, err)

			require.Len(t, result.Records, 1)
			rec := result.Records[0].(*models.ReviewPageRecord)
			assert.Equal(t, tt.page, rec.Page)
			assert.Equal(t, tt.total, rec.TotalReviews)
			assert.Len(t, rec.Reviews, 2)

			if tt.wantNext {
				require.Len(t, result.Next, 1)
				assert.Equal(t,
					fmt.Sprintf("reviews-254656543-UK-page-%d", tt.page+1),
					result.Next[0].UniqueKey)
				assert.Equal(t, tt.total, result.Next[0].Reviews.TotalReviews)
			} else {
				assert.Empty(t, result.Next)
			}
		})
	}
}

func TestHandleReviews_MissingDataSoftTerminates(t *testing.T) {
	api, server := newFakeAPI(t)
	api.responses["GetProductReviews"] = func(map[string]interface{}) string {
		return `{"data":{"productReviews":null}}`
	}
	controller := newTestController(t, server.URL)

	desc := NewReviewsPageRequest(ReviewsContext{ProductID: "254656543", Region: "UK", Page: 1, TotalQueries: 1})
	result, err := controller.HandleReviews(context.Background(), desc)
	require.NoError(t, err)
	assert.Empty(t, result.Records)
	assert.Empty(t, result.Next)
}

func TestRouter_CoversAllLabels(t *testing.T) {
	controller := newTestController(t, "http://unused")
	router := controller.Router()
	assert.Contains(t, router, LabelCategory)
	assert.Contains(t, router, LabelProduct)
	assert.Contains(t, router, LabelReviews)
}
