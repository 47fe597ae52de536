// Package weather implements the per-location lookup pipeline: resolve a
// free-text query to a result page through the site's search endpoint, render
// that page, and extract its weather metrics.
//
// Fetching and extraction are decoupled. Resolver and Extractor receive raw
// HTML from a Fetcher and parse it with goquery, so the selector logic can be
// tested against static documents without a network or a browser.
package weather
