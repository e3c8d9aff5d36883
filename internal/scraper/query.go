package scraper

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/net/idna"
	"golang.org/x/text/unicode/norm"
)

type QueryType string

const (
	QueryTypeProduct  QueryType = "product"
	QueryTypeReviews  QueryType = "reviews"
	QueryTypeCategory QueryType = "category"
	QueryTypeSearch   QueryType = "search"
)

// QueryIntent is the classified meaning of one raw seed query. Exactly one of
// ProductID, CategoryPath or Query is set, matching Type.
type QueryIntent struct {
	Type          QueryType
	ProductID     string
	CategoryPath  string
	Query         string
	OriginalQuery string
}

var (
	reviewsRegex     = regexp.MustCompile(`(?i)^(\d{8,10})/reviews$`)
	productUrlRegex  = regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?tesco\.com/groceries/[^/]+/products/(\d+)`)
	categoryUrlRegex = regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?tesco\.com/groceries/[^/]+/shop/(.*?)(?:\?|$)`)
	productIdRegex   = regexp.MustCompile(`^(\d{8,10})$`)
)

// ParseQuery classifies a raw seed string. It is total: anything that matches
// no pattern degrades to a search intent, malformed URLs included. The
// patterns overlap, so order matters: a "<id>/reviews" reference wins over the
// bare product id rule.
func ParseQuery(raw string) QueryIntent {
	trimmed := strings.TrimSpace(raw)

	candidate := trimmed
	if strings.Contains(strings.ToLower(trimmed), "tesco.") {
		if normalized, err := normalizeSeedURL(trimmed); err == nil {
			candidate = normalized
		}
	}

	if m := reviewsRegex.FindStringSubmatch(trimmed); m != nil {
		return QueryIntent{Type: QueryTypeReviews, ProductID: m[1], OriginalQuery: trimmed}
	}
	if m := productUrlRegex.FindStringSubmatch(candidate); m != nil {
		return QueryIntent{Type: QueryTypeProduct, ProductID: m[1], OriginalQuery: trimmed}
	}
	if m := categoryUrlRegex.FindStringSubmatch(candidate); m != nil {
		if path := parseCategoryPath(m[1]); path != "" {
			return QueryIntent{Type: QueryTypeCategory, CategoryPath: path, OriginalQuery: trimmed}
		}
	}
	if m := productIdRegex.FindStringSubmatch(trimmed); m != nil {
		return QueryIntent{Type: QueryTypeProduct, ProductID: m[1], OriginalQuery: trimmed}
	}
	return QueryIntent{Type: QueryTypeSearch, Query: norm.NFC.String(trimmed), OriginalQuery: trimmed}
}

// parseCategoryPath turns the raw /shop/ suffix into the pipe-joined category
// path: segments are URL-decoded, hyphens become spaces, the first rune of
// each segment is capitalized and order is preserved.
func parseCategoryPath(rawPath string) string {
	var segments []string
	for _, segment := range strings.Split(rawPath, "/") {
		if segment == "" {
			continue
		}
		if decoded, err := url.PathUnescape(segment); err == nil {
			segment = decoded
		}
		segment = strings.ReplaceAll(segment, "-", " ")
		segments = append(segments, capitalize(norm.NFC.String(segment)))
	}
	return strings.Join(segments, "|")
}

func capitalize(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// normalizeSeedURL canonicalizes a URL-looking seed before pattern matching:
// default scheme, lowercased host, www stripped, punycoded host. The path is
// left untouched since category segment casing is significant.
func normalizeSeedURL(rawUrl string) (string, error) {
	rawUrl = strings.TrimSpace(rawUrl)

	hadScheme := strings.Contains(rawUrl, "://")
	if !hadScheme {
		rawUrl = "https://" + rawUrl
	}
	u, err := url.Parse(rawUrl)
	if err != nil {
		return "", fmt.Errorf("error parsing URL: %w", err)
	}
	u.Scheme = strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Host)
	host = strings.TrimPrefix(host, "www.")

	p := idna.New(idna.ValidateForRegistration())
	asciiHost, err := p.ToASCII(host)
	if err != nil {
		return "", fmt.Errorf("could not convert host to ASCII: %w", err)
	}
	u.Host = asciiHost

	out := u.String()
	if !hadScheme {
		out = strings.TrimPrefix(out, "https://")
	}
	return out, nil
}

// EncodeCategoryFacet produces the facet variable the backend expects for a
// category listing: base64 of "b;" + the pipe-joined category path.
func EncodeCategoryFacet(categoryPath string) string {
	return base64.StdEncoding.EncodeToString([]byte("b;" + categoryPath))
}

func DecodeCategoryFacet(encodedFacet string) (string, error) {
	decoded, err := base64.StdEncoding.DecodeString(encodedFacet)
	if err != nil {
		return "", fmt.Errorf("failed to decode facet: %w", err)
	}
	return strings.TrimPrefix(string(decoded), "b;"), nil
}
