package scraper

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

var (
	priceRe  = regexp.MustCompile(`([0-9][0-9\s.,\x{00a0}]*)`)
	numberRe = regexp.MustCompile(`([0-9]+(?:[.,][0-9]+)?)`)
)

// parsePrice extracts a numeric amount from portal price text such as
// "250 000 DT" or "1.200 TND". Returns 0 when no amount is present.
func parsePrice(text string) float64 {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}

	match := priceRe.FindString(text)
	if match == "" {
		return 0
	}

	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', ' ', ',', '.':
			return -1
		}
		return r
	}, match)

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return value
}

// parseNumber extracts the first decimal number from text, used for
// surface areas and room counts ("120 m²", "3 pièces").
func parseNumber(text string) float64 {
	match := numberRe.FindString(strings.TrimSpace(text))
	if match == "" {
		return 0
	}
	value, err := strconv.ParseFloat(strings.ReplaceAll(match, ",", "."), 64)
	if err != nil {
		return 0
	}
	return value
}

// splitLocation breaks "Delegation, Governorate" location text into its
// parts. Single-part text is treated as the governorate.
func splitLocation(text string) (governorate, delegation string) {
	parts := strings.Split(text, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	switch {
	case len(parts) >= 2 && parts[0] != "" && parts[1] != "":
		return parts[1], parts[0]
	case parts[0] != "":
		return parts[0], ""
	}
	return "", ""
}

// absoluteURL resolves a scraped href against the page it came from.
func absoluteURL(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return baseURL.ResolveReference(ref).String()
}

// listingIDFromURL derives a stable listing identifier from the last
// path segment of the detail URL.
func listingIDFromURL(detailURL string) string {
	u, err := url.Parse(detailURL)
	if err != nil {
		return detailURL
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) == 0 {
		return detailURL
	}
	last := segments[len(segments)-1]
	return strings.TrimSuffix(last, ".html")
}
