package scraper

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/mohamedaziz-ouertatani/estatemind/internal/models"

	"github.com/PuerkitoBio/goquery"
)

const mubawabBaseURL = "https://www.mubawab.tn"

// transaction slug codes used in mubawab list URLs
var mubawabSections = map[string]string{
	"sc": "vente",
	"rc": "location",
}

// MubawabSource scrapes mubawab.tn. Listings are rendered client side,
// so pages go through headless Chrome before parsing.
type MubawabSource struct {
	client        *Client
	listPageLimit int
}

func NewMubawabSource(client *Client, listPageLimit int) *MubawabSource {
	if listPageLimit <= 0 {
		listPageLimit = 1
	}
	return &MubawabSource{client: client, listPageLimit: listPageLimit}
}

func (m *MubawabSource) Name() string { return "mubawab" }

func (m *MubawabSource) Produce(ctx context.Context) ([]models.RawRecord, error) {
	var records []models.RawRecord
	var lastErr error

	for code, transaction := range mubawabSections {
		for page := 1; page <= m.listPageLimit; page++ {
			pageURL := fmt.Sprintf("%s/fr/%s/immobilier:p:%d", mubawabBaseURL, code, page)
			doc, err := m.client.FetchRenderedDocument(ctx, pageURL)
			if err != nil {
				log.Printf("Mubawab: Failed to render %s: %v", pageURL, err)
				lastErr = err
				break
			}

			pageRecords := m.parseListPage(doc, pageURL, transaction)
			if len(pageRecords) == 0 {
				break
			}
			log.Printf("Mubawab: Parsed %d listings from %s", len(pageRecords), pageURL)
			records = append(records, pageRecords...)
		}
	}

	if len(records) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return records, nil
}

func (m *MubawabSource) parseListPage(doc *goquery.Document, pageURL, transaction string) []models.RawRecord {
	var records []models.RawRecord

	doc.Find("ul.ulListing li.listingBox, article").Each(func(_ int, card *goquery.Selection) {
		href, ok := card.Find(`a[href*="/fr/"]`).Attr("href")
		if !ok {
			return
		}
		detailURL := absoluteURL(pageURL, href)

		title := strings.TrimSpace(card.Find("h2, h3").First().Text())
		if title == "" {
			return
		}

		record := models.RawRecord{}
		stampRecord(record, m.Name(), detailURL)
		record["listing_id"] = listingIDFromURL(detailURL)
		record["title"] = title
		record["transaction_type"] = transaction

		if price := parsePrice(card.Find(".priceTag, span.price").Text()); price > 0 {
			record["price"] = price
		}

		if location := strings.TrimSpace(card.Find(".listingH3, .location").First().Text()); location != "" {
			governorate, delegation := splitLocation(location)
			record["governorate"] = governorate
			record["delegation"] = delegation
			record["address"] = location
		}

		// Feature line carries size and room counts ("120 m² 3 Pièces").
		features := card.Find(".adDetailFeature, .caracteristiques").Text()
		for _, part := range strings.Split(features, "\n") {
			part = strings.ToLower(strings.TrimSpace(part))
			switch {
			case strings.Contains(part, "m²"):
				if size := parseNumber(part); size > 0 {
					record["size"] = size
				}
			case strings.Contains(part, "pièce") || strings.Contains(part, "chambre"):
				if rooms := parseNumber(part); rooms > 0 {
					record["bedrooms"] = rooms
				}
			}
		}
		applyFeatureText(record, strings.ToLower(card.Text()))

		var images []any
		card.Find("img").Each(func(_ int, img *goquery.Selection) {
			src, ok := img.Attr("src")
			if !ok || !strings.Contains(src, "mubawab") {
				src, ok = img.Attr("data-src")
			}
			if ok && strings.Contains(src, "mubawab") {
				images = append(images, src)
			}
		})
		if len(images) > 0 {
			record["images"] = images
		}

		records = append(records, record)
	})

	return records
}
