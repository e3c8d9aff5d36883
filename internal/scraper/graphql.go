package scraper

const (
	categoryPageSize = 48

	// reviewsPageSize drives the request limit, the offset computation and
	// the continuation condition. They must never desync.
	reviewsPageSize = 10
)

type GraphQLPayload struct {
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
	Query         string                 `json:"query"`
}

func CategoryPayload(ctx *CategoryContext) GraphQLPayload {
	variables := map[string]interface{}{
		"page":   ctx.Page,
		"count":  categoryPageSize,
		"sortBy": "RELEVANCE",
	}
	if ctx.Type == QueryTypeSearch {
		variables["query"] = ctx.Query
	} else if ctx.CategoryPath != "" {
		variables["facet"] = EncodeCategoryFacet(ctx.CategoryPath)
	}
	return GraphQLPayload{
		OperationName: "GetCategoryProducts",
		Variables:     variables,
		Query:         categoryProductsQuery,
	}
}

func ProductPayload(ctx *ProductContext) GraphQLPayload {
	return GraphQLPayload{
		OperationName: "GetProductDetails",
		Variables: map[string]interface{}{
			"id": ctx.ProductID,
		},
		Query: productDetailsQuery,
	}
}

func ReviewsPayload(ctx *ReviewsContext) GraphQLPayload {
	return GraphQLPayload{
		OperationName: "GetProductReviews",
		Variables: map[string]interface{}{
			"productId": ctx.ProductID,
			"offset":    (ctx.Page - 1) * reviewsPageSize,
			"limit":     reviewsPageSize,
		},
		Query: productReviewsQuery,
	}
}

const categoryProductsQuery = `
query GetCategoryProducts($query: String, $facet: String, $page: Int!, $count: Int!, $sortBy: String) {
    productSearch(query: $query, facet: $facet, page: $page, count: $count, sortBy: $sortBy) {
        pageInformation {
            totalCount
            pageCount
            currentPage
        }
        results {
            id
            tpnb
            tpnc
            gtin
            title
            brand {
                name
            }
            defaultImageUrl
            price {
                actual {
                    price
                    currency
                }
                clubcard {
                    price
                }
                unitPrice
                unitOfMeasure
            }
            availability {
                status
            }
            isInSeason
            isNew
        }
    }
}`

const productDetailsQuery = `
query GetProductDetails($id: String!) {
    product(id: $id) {
        id
        tpnb
        tpnc
        gtin
        title
        description
        brand {
            name
        }
        defaultImageUrl
        thumbnailImageUrl
        images {
            url
            type
        }
        price {
            actual {
                price
                currency
            }
            clubcard {
                price
                currency
            }
            was {
                price
            }
            unitPrice
            unitOfMeasure
        }
        availability {
            status
            maxQuantity
            minQuantity
        }
        superDepartment {
            name
            id
        }
        department {
            name
            id
        }
        aisle {
            name
            id
        }
        shelf {
            name
            id
        }
        ingredients {
            text
        }
        nutrition {
            nutrients {
                name
                valuePer100g
                valuePerServing
                dailyValue
            }
            servingSize
            servingsPerContainer
        }
        allergens
        storage
        manufacturer {
            name
            address
        }
        netContents
        catchWeight
        packSize
        restrictions
        ageRestriction
        marketingDescriptions
        features
        healthClaims
        recycling {
            text
        }
        promotions {
            id
            type
            description
            startDate
            endDate
        }
        reviews {
            count
            averageRating
            distribution {
                rating
                count
            }
        }
        isInSeason
        isNew
    }
}`

const productReviewsQuery = `
query GetProductReviews($productId: String!, $offset: Int!, $limit: Int!) {
    productReviews(productId: $productId, offset: $offset, limit: $limit) {
        total
        reviews {
            id
            rating
            title
            text
            author
            date
            verified
            helpful
            unhelpful
            response {
                text
                date
            }
        }
    }
}`
