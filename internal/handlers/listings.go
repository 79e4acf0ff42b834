// Package handlers exposes the HTTP API over gin: listing search,
// analytics, valuation and admin endpoints.
package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/mohamedaziz-ouertatani/estatemind/internal/database"
	"github.com/mohamedaziz-ouertatani/estatemind/internal/search"

	"github.com/gin-gonic/gin"
)

// ListingHandler serves imported listings from the portal database,
// with full-text search delegated to Meilisearch when available.
type ListingHandler struct {
	store  database.ListingStore
	search *search.SearchClient
}

// NewListingHandler creates a new listing handler.
func NewListingHandler(store database.ListingStore, searchClient *search.SearchClient) *ListingHandler {
	return &ListingHandler{store: store, search: searchClient}
}

// GetListings returns all imported listings, newest first.
func (h *ListingHandler) GetListings(c *gin.Context) {
	listings, err := h.store.GetAllListings()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"listings": listings,
		"count":    len(listings),
	})
}

// GetListing returns one listing by ID.
func (h *ListingHandler) GetListing(c *gin.Context) {
	listing, err := h.store.GetListingByID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
		return
	}

	c.JSON(http.StatusOK, listing)
}

// SearchListings performs filtered full-text search.
// Query parameters: q, min_price, max_price, property_type (repeatable),
// transaction_type, governorate, min_bedrooms, sort, limit.
func (h *ListingHandler) SearchListings(c *gin.Context) {
	if h.search == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Search is not configured"})
		return
	}

	params := search.FilterParams{
		Query:           c.Query("q"),
		TransactionType: c.Query("transaction_type"),
		Governorate:     c.Query("governorate"),
		SortBy:          c.Query("sort"),
	}

	if v := c.Query("min_price"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			params.MinPrice = &f
		}
	}
	if v := c.Query("max_price"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			params.MaxPrice = &f
		}
	}
	if v := c.Query("min_bedrooms"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			params.MinBedrooms = &n
		}
	}
	if v := c.Query("property_type"); v != "" {
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				params.PropertyTypes = append(params.PropertyTypes, strings.ToUpper(t))
			}
		}
	}
	if v := c.DefaultQuery("limit", "20"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			params.Limit = n
		}
	}

	listings, err := h.search.FilterSearch(params)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"listings": listings,
		"count":    len(listings),
	})
}
