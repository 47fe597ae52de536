package weather

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/JakeFAU/weather-lookup/internal/query"
)

const (
	resultSelector = "li.result"
	linkSelector   = "a[href]"
	queryToken     = "%s"
)

// ResolverConfig describes the search endpoint of the weather site.
type ResolverConfig struct {
	// Origin is the scheme and host result links are resolved against.
	Origin string
	// SearchTemplate is the search path with a %s placeholder for the query.
	SearchTemplate string
	// Referer is sent with the search request.
	Referer string
	// Exclude lists case-insensitive URL substrings that disqualify a result.
	Exclude []string
}

// Resolver maps a location query to the URL of its weather page.
type Resolver struct {
	cfg     ResolverConfig
	origin  *url.URL
	exclude []string
	fetcher Fetcher
	logger  *zap.Logger
}

// NewResolver validates cfg and builds a Resolver backed by fetcher.
func NewResolver(cfg ResolverConfig, fetcher Fetcher, logger *zap.Logger) (*Resolver, error) {
	if fetcher == nil {
		return nil, errors.New("resolver requires a fetcher")
	}
	origin, err := url.Parse(strings.TrimRight(cfg.Origin, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse origin: %w", err)
	}
	if origin.Scheme == "" || origin.Host == "" {
		return nil, fmt.Errorf("origin %q must be absolute", cfg.Origin)
	}
	if !strings.Contains(cfg.SearchTemplate, queryToken) {
		return nil, fmt.Errorf("search template %q must contain %s", cfg.SearchTemplate, queryToken)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	exclude := make([]string, 0, len(cfg.Exclude))
	for _, term := range cfg.Exclude {
		term = strings.ToLower(strings.TrimSpace(term))
		if term != "" {
			exclude = append(exclude, term)
		}
	}
	return &Resolver{
		cfg:     cfg,
		origin:  origin,
		exclude: exclude,
		fetcher: fetcher,
		logger:  logger,
	}, nil
}

// SearchURL builds the search page URL for q. Spaces are encoded as '+'.
func (r *Resolver) SearchURL(q string) string {
	path := strings.Replace(r.cfg.SearchTemplate, queryToken, url.QueryEscape(q), 1)
	return r.origin.String() + path
}

// Resolve fetches the search page for q and returns the first acceptable
// matching result. A query with no acceptable match yields Found == false and
// a nil error; fetch and parse problems are returned as errors.
func (r *Resolver) Resolve(ctx context.Context, q string) (Resolution, error) {
	searchURL := r.SearchURL(q)
	resp, err := r.fetcher.Fetch(ctx, FetchRequest{URL: searchURL, Headers: r.headers()})
	if err != nil {
		return Resolution{}, fmt.Errorf("fetch search page: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return Resolution{}, fmt.Errorf("parse search page: %w", err)
	}
	return r.match(doc, q), nil
}

func (r *Resolver) match(doc *goquery.Document, q string) Resolution {
	city := strings.ToLower(query.City(q))
	res := Resolution{Query: q}
	doc.Find(resultSelector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if !strings.Contains(strings.ToLower(collapse(s.Text())), city) {
			return true
		}
		href, ok := s.Find(linkSelector).First().Attr("href")
		if !ok {
			return true
		}
		candidate, err := r.absolute(href)
		if err != nil {
			r.logger.Debug("skipping result link", zap.String("href", href), zap.Error(err))
			return true
		}
		if term, excluded := r.excluded(candidate); excluded {
			r.logger.Debug("skipping excluded result",
				zap.String("url", candidate),
				zap.String("term", term),
			)
			return true
		}
		res.URL = candidate
		res.Found = true
		return false
	})
	return res
}

func (r *Resolver) absolute(href string) (string, error) {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", fmt.Errorf("parse href: %w", err)
	}
	abs := r.origin.ResolveReference(ref)
	if !strings.EqualFold(abs.Host, r.origin.Host) {
		return "", fmt.Errorf("host %q is not the site origin", abs.Host)
	}
	return abs.String(), nil
}

func (r *Resolver) excluded(candidate string) (string, bool) {
	lower := strings.ToLower(candidate)
	for _, term := range r.exclude {
		if strings.Contains(lower, term) {
			return term, true
		}
	}
	return "", false
}

func (r *Resolver) headers() http.Header {
	h := http.Header{}
	h.Set("Host", r.origin.Host)
	if r.cfg.Referer != "" {
		h.Set("Referer", r.cfg.Referer)
	}
	return h
}

// collapse mirrors how a browser renders text: runs of whitespace become one space.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
