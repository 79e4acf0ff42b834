package scraper

import (
	"context"
	"log"
	"strings"

	"github.com/mohamedaziz-ouertatani/estatemind/internal/models"

	"github.com/PuerkitoBio/goquery"
)

const tayaraBaseURL = "https://www.tayara.tn/c/Immobilier"

// TayaraSource scrapes tayara.tn, the largest Tunisian classifieds
// portal. Pages are server rendered so plain HTTP fetches suffice.
type TayaraSource struct {
	client        *Client
	listPageLimit int
}

func NewTayaraSource(client *Client, listPageLimit int) *TayaraSource {
	if listPageLimit <= 0 {
		listPageLimit = 1
	}
	return &TayaraSource{client: client, listPageLimit: listPageLimit}
}

func (t *TayaraSource) Name() string { return "tayara" }

// Produce walks the real estate category pages and scrapes each
// listing's detail page.
func (t *TayaraSource) Produce(ctx context.Context) ([]models.RawRecord, error) {
	var records []models.RawRecord

	pageURL := tayaraBaseURL
	for page := 0; page < t.listPageLimit && pageURL != ""; page++ {
		doc, err := t.client.FetchDocument(ctx, pageURL)
		if err != nil {
			if len(records) > 0 {
				log.Printf("Tayara: List page %s failed, stopping with %d records: %v", pageURL, len(records), err)
				return records, nil
			}
			return nil, err
		}

		links := t.listingLinks(doc, pageURL)
		log.Printf("Tayara: Found %d listings on %s", len(links), pageURL)

		for _, link := range links {
			record, err := t.scrapeListing(ctx, link)
			if err != nil {
				log.Printf("Tayara: Failed to scrape %s: %v", link, err)
				continue
			}
			records = append(records, record)
		}

		pageURL = t.nextPage(doc, pageURL)
	}

	return records, nil
}

func (t *TayaraSource) listingLinks(doc *goquery.Document, pageURL string) []string {
	var links []string
	seen := make(map[string]bool)

	collect := func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		full := absoluteURL(pageURL, href)
		if full == "" || seen[full] {
			return
		}
		seen[full] = true
		links = append(links, full)
	}

	doc.Find("a.listing-card").Each(collect)
	if len(links) == 0 {
		doc.Find("div.listing a").Each(collect)
	}
	return links
}

func (t *TayaraSource) nextPage(doc *goquery.Document, pageURL string) string {
	next, ok := doc.Find("a.next-page").Attr("href")
	if !ok {
		next, ok = doc.Find(`link[rel="next"]`).Attr("href")
	}
	if !ok {
		return ""
	}
	return absoluteURL(pageURL, next)
}

func (t *TayaraSource) scrapeListing(ctx context.Context, detailURL string) (models.RawRecord, error) {
	doc, err := t.client.FetchDocument(ctx, detailURL)
	if err != nil {
		return nil, err
	}

	record := models.RawRecord{}
	stampRecord(record, t.Name(), detailURL)
	record["listing_id"] = listingIDFromURL(detailURL)

	title := strings.TrimSpace(doc.Find("h1.listing-title").Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("h1").First().Text())
	}
	record["title"] = title

	description := strings.TrimSpace(doc.Find("div.description p").Text())
	if description == "" {
		description = strings.TrimSpace(doc.Find("div.description").Text())
	}
	record["description"] = description

	priceText := doc.Find("span.price").First().Text()
	if strings.TrimSpace(priceText) == "" {
		priceText = doc.Find("div.price").First().Text()
	}
	if price := parsePrice(priceText); price > 0 {
		record["price"] = price
	}

	category := strings.ToLower(strings.TrimSpace(doc.Find("span.category").Text()))
	record["property_type"] = category
	if strings.Contains(category, "louer") || strings.Contains(category, "location") {
		record["transaction_type"] = "location"
	} else {
		record["transaction_type"] = "vente"
	}

	if location := strings.TrimSpace(doc.Find("div.location").Text()); location != "" {
		governorate, delegation := splitLocation(location)
		record["governorate"] = governorate
		record["delegation"] = delegation
		record["address"] = location
	}

	doc.Find("div.property-details li").Each(func(_ int, s *goquery.Selection) {
		label := strings.ToLower(strings.TrimSpace(s.Find("span.label").Text()))
		value := strings.TrimSpace(s.Find("span.value").Text())
		switch {
		case strings.Contains(label, "surface"):
			if size := parseNumber(value); size > 0 {
				record["size"] = size
			}
		case strings.Contains(label, "chambre") || strings.Contains(label, "pièce"):
			if rooms := parseNumber(value); rooms > 0 {
				record["bedrooms"] = rooms
			}
		case strings.Contains(label, "salle"):
			if baths := parseNumber(value); baths > 0 {
				record["bathrooms"] = baths
			}
		case strings.Contains(label, "étage"):
			record["floor"] = parseNumber(value)
		}
	})

	features := strings.ToLower(doc.Find("div.features").Text())
	applyFeatureText(record, features)

	var images []any
	doc.Find("div.gallery img").Each(func(_ int, s *goquery.Selection) {
		if src, ok := s.Attr("src"); ok && strings.TrimSpace(src) != "" {
			images = append(images, absoluteURL(detailURL, src))
		}
	})
	if len(images) > 0 {
		record["images"] = images
	}

	if name := strings.TrimSpace(doc.Find("div.seller-name").Text()); name != "" {
		record["contact_name"] = name
	}
	if phone, ok := doc.Find("a.phone-number").Attr("href"); ok {
		record["contact_phone"] = strings.TrimPrefix(phone, "tel:")
	}
	if date := strings.TrimSpace(doc.Find("span.listing-date").Text()); date != "" {
		record["listing_date"] = date
	}

	return record, nil
}

// applyFeatureText flags amenities mentioned in a portal's feature
// blurb. Shared by the sources since the vocabulary is common French
// listing jargon.
func applyFeatureText(record models.RawRecord, features string) {
	if features == "" {
		return
	}
	flags := map[string][]string{
		"has_parking":  {"parking", "garage"},
		"has_elevator": {"ascenseur"},
		"has_pool":     {"piscine"},
		"has_garden":   {"jardin"},
		"has_sea_view": {"vue mer", "vue sur mer"},
		"is_furnished": {"meublé", "meuble"},
	}
	for key, needles := range flags {
		for _, needle := range needles {
			if strings.Contains(features, needle) {
				record[key] = true
				break
			}
		}
	}
}
