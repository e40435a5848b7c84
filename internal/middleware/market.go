package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	"golang.org/x/text/language"
)

type localeContextKey struct{}
type marketContextKey struct{}

var (
	LocaleKey = localeContextKey{}
	MarketKey = marketContextKey{}
)

// Market carries the request's resolved market hints: the ISO country code
// and, for countries the catalog knows, the default campaign city.
type Market struct {
	Country string
	City    string
}

// CountryLookup resolves ISO country codes for an IP address.
type CountryLookup func(ip string) (string, error)

// marketCities maps a country to the campaign city its ads default to.
var marketCities = map[string]string{
	"KE": "Nairobi",
	"NG": "Lagos",
	"ZA": "Cape Town",
}

// swahiliCountries default to the sw locale when no explicit preference is
// carried on the request.
var swahiliCountries = map[string]bool{
	"KE": true,
	"TZ": true,
}

var localeMatcher = language.NewMatcher([]language.Tag{
	language.English, // default
	language.Swahili,
})

// Locale resolves the request's locale and market and stores both on the
// context. Resolution order: X-Locale header, Accept-Language, country.
func Locale(defaultLocale string, lookup CountryLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			country := ResolveCountry(r, lookup)
			locale := detectLocale(r, defaultLocale, country)
			ctx := context.WithValue(r.Context(), LocaleKey, locale)
			if country != "" {
				ctx = context.WithValue(ctx, MarketKey, Market{
					Country: country,
					City:    marketCities[country],
				})
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func detectLocale(r *http.Request, fallback string, country string) string {
	if v := r.Header.Get("X-Locale"); v != "" {
		return normalizeLocale(v)
	}
	if v := matchAcceptLanguage(r.Header.Get("Accept-Language")); v != "" {
		return v
	}
	if swahiliCountries[country] {
		return "sw"
	}
	if country != "" {
		return "en"
	}
	if fallback != "" {
		return fallback
	}
	return "en"
}

func matchAcceptLanguage(header string) string {
	if strings.TrimSpace(header) == "" {
		return ""
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return ""
	}
	_, index, _ := localeMatcher.Match(tags...)
	if index == 1 {
		return "sw"
	}
	return "en"
}

func normalizeLocale(locale string) string {
	if base, _ := language.Make(strings.TrimSpace(locale)).Base(); base.String() == "sw" {
		return "sw"
	}
	return "en"
}

// ResolveCountry resolves a best-effort ISO country code for the given
// request: proxy headers first, then a region carried in the language
// headers, then the GeoIP lookup.
func ResolveCountry(r *http.Request, lookup CountryLookup) string {
	if r == nil {
		return ""
	}
	headerHints := []string{"X-Country-Code", "CF-IPCountry", "X-Appengine-Country"}
	for _, key := range headerHints {
		if val := strings.TrimSpace(r.Header.Get(key)); val != "" {
			return strings.ToUpper(val)
		}
	}
	if region := localeRegion(r.Header.Get("X-Locale")); region != "" {
		return region
	}
	if region := localeRegion(r.Header.Get("Accept-Language")); region != "" {
		return region
	}
	if lookup != nil {
		if ip := ClientIP(r); ip != "" {
			if country, err := lookup(ip); err == nil && country != "" {
				return strings.ToUpper(country)
			}
		}
	}
	return ""
}

func localeRegion(accept string) string {
	for _, part := range strings.Split(accept, ",") {
		token := strings.TrimSpace(strings.Split(part, ";")[0])
		if token == "" {
			continue
		}
		tag, err := language.Parse(token)
		if err != nil {
			continue
		}
		// Only explicit regions count; a bare "en" infers one at low
		// confidence and must not be treated as a country signal.
		if region, conf := tag.Region(); conf == language.Exact && region.IsCountry() {
			if s := region.String(); len(s) == 2 {
				return s
			}
		}
	}
	return ""
}

// ClientIP returns the best-effort client IP address for the request.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		parts := strings.Split(xf, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func LocaleFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(LocaleKey).(string); ok {
		return v
	}
	return "en"
}

// MarketFromContext returns the market hints stored in the request context.
func MarketFromContext(ctx context.Context) Market {
	if v, ok := ctx.Value(MarketKey).(Market); ok {
		return v
	}
	return Market{}
}
