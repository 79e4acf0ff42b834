package scraper

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/mohamedaziz-ouertatani/estatemind/internal/models"

	"github.com/PuerkitoBio/goquery"
)

const tunisieAnnonceBaseURL = "https://www.tunisieannonce.com"

// transaction type slug -> raw transaction label
var tunisieAnnonceSections = map[string]string{
	"immobilier-vente":    "vente",
	"immobilier-location": "location",
}

// TunisieAnnonceSource scrapes tunisieannonce.com. Listing cards carry
// enough data that detail pages are not fetched.
type TunisieAnnonceSource struct {
	client        *Client
	listPageLimit int
}

func NewTunisieAnnonceSource(client *Client, listPageLimit int) *TunisieAnnonceSource {
	if listPageLimit <= 0 {
		listPageLimit = 1
	}
	return &TunisieAnnonceSource{client: client, listPageLimit: listPageLimit}
}

func (t *TunisieAnnonceSource) Name() string { return "tunisie_annonce" }

func (t *TunisieAnnonceSource) Produce(ctx context.Context) ([]models.RawRecord, error) {
	var records []models.RawRecord
	var lastErr error

	for slug, transaction := range tunisieAnnonceSections {
		for page := 1; page <= t.listPageLimit; page++ {
			pageURL := fmt.Sprintf("%s/annonces/%s/%d.html", tunisieAnnonceBaseURL, slug, page)
			doc, err := t.client.FetchDocument(ctx, pageURL)
			if err != nil {
				log.Printf("TunisieAnnonce: Failed to fetch %s: %v", pageURL, err)
				lastErr = err
				break
			}

			pageRecords := t.parseListPage(doc, pageURL, transaction)
			if len(pageRecords) == 0 {
				break
			}
			log.Printf("TunisieAnnonce: Parsed %d listings from %s", len(pageRecords), pageURL)
			records = append(records, pageRecords...)
		}
	}

	if len(records) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return records, nil
}

func (t *TunisieAnnonceSource) parseListPage(doc *goquery.Document, pageURL, transaction string) []models.RawRecord {
	var records []models.RawRecord

	doc.Find("div.card-annonce, div.annonce-item, article").Each(func(_ int, card *goquery.Selection) {
		href, ok := card.Find(`a[href*="annonce"]`).Attr("href")
		if !ok {
			return
		}
		detailURL := absoluteURL(pageURL, href)

		title := strings.TrimSpace(card.Find("h2, h3, h4").First().Text())
		if title == "" {
			return
		}

		record := models.RawRecord{}
		stampRecord(record, t.Name(), detailURL)
		record["listing_id"] = listingIDFromURL(detailURL)
		record["title"] = title
		record["transaction_type"] = transaction

		if description := strings.TrimSpace(card.Find(".desc, div.description").Text()); description != "" {
			record["description"] = description
		}

		priceText := card.Find(".prix").Text()
		if strings.TrimSpace(priceText) == "" {
			priceText = card.Find("span.price, div.price").Text()
		}
		if price := parsePrice(priceText); price > 0 {
			record["price"] = price
		}

		if location := strings.TrimSpace(card.Find(".lieu, div.location").Text()); location != "" {
			governorate, delegation := splitLocation(location)
			record["governorate"] = governorate
			record["delegation"] = delegation
			record["address"] = location
		}

		record["property_type"] = strings.ToLower(strings.TrimSpace(card.Find(".categorie, span.category").Text()))
		applyFeatureText(record, strings.ToLower(card.Text()))

		var images []any
		card.Find("img").Each(func(_ int, img *goquery.Selection) {
			src, ok := img.Attr("src")
			if !ok || strings.TrimSpace(src) == "" {
				src, ok = img.Attr("data-src")
			}
			if ok && strings.TrimSpace(src) != "" {
				images = append(images, absoluteURL(pageURL, src))
			}
		})
		if len(images) > 0 {
			record["images"] = images
		}

		records = append(records, record)
	})

	return records
}
