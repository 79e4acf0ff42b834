package search

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mohamedaziz-ouertatani/estatemind/internal/models"

	"github.com/meilisearch/meilisearch-go"
)

type FilterParams struct {
	Query           string
	MinPrice        *float64
	MaxPrice        *float64
	PropertyTypes   []string
	TransactionType string
	Governorate     string
	MinBedrooms     *int
	SortBy          string
	Limit           int64
}

// FilterSearch performs advanced search with filters
func (s *SearchClient) FilterSearch(params FilterParams) ([]models.Listing, error) {
	var filters []string

	// Price range filter
	if params.MinPrice != nil {
		filters = append(filters, fmt.Sprintf("price >= %.2f", *params.MinPrice))
	}
	if params.MaxPrice != nil {
		filters = append(filters, fmt.Sprintf("price <= %.2f", *params.MaxPrice))
	}

	// Property type filter
	if len(params.PropertyTypes) > 0 {
		typeFilters := make([]string, len(params.PropertyTypes))
		for i, t := range params.PropertyTypes {
			typeFilters[i] = fmt.Sprintf("property_type = '%s'", t)
		}
		filters = append(filters, fmt.Sprintf("(%s)", strings.Join(typeFilters, " OR ")))
	}

	if params.TransactionType != "" {
		filters = append(filters, fmt.Sprintf("transaction_type = '%s'", params.TransactionType))
	}
	if params.Governorate != "" {
		filters = append(filters, fmt.Sprintf("governorate = '%s'", params.Governorate))
	}
	if params.MinBedrooms != nil {
		filters = append(filters, fmt.Sprintf("bedrooms >= %d", *params.MinBedrooms))
	}

	var filterStr string
	if len(filters) > 0 {
		filterStr = strings.Join(filters, " AND ")
	}

	var sort []string
	if params.SortBy != "" {
		sort = []string{params.SortBy}
	}

	if params.Limit == 0 {
		params.Limit = 20
	}

	searchReq := &meilisearch.SearchRequest{
		Limit: params.Limit,
	}
	if filterStr != "" {
		searchReq.Filter = filterStr
	}
	if len(sort) > 0 {
		searchReq.Sort = sort
	}

	searchRes, err := s.client.Index(s.index).Search(params.Query, searchReq)
	if err != nil {
		return nil, err
	}

	// Convert hits back to listings through JSON
	var listings []models.Listing
	for _, hit := range searchRes.Hits {
		hitJSON, err := json.Marshal(hit)
		if err != nil {
			continue
		}

		var listing models.Listing
		if err := json.Unmarshal(hitJSON, &listing); err != nil {
			continue
		}

		listings = append(listings, listing)
	}

	return listings, nil
}
