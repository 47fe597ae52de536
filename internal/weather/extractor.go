package weather

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

const (
	temperatureSelector     = "span.temp"
	temperatureUnitSelector = "div.unitwrap"
	metricBlockSelector     = "div.detailed-metrics"
	metricLabelSelector     = "span.label"
	metricValueSelector     = "span.value"
	metricUnitSelector      = "span.metric"
	metricVectorSelector    = "span.vector"
)

// Extractor renders a result page and pulls the weather metrics out of it.
type Extractor struct {
	renderer Fetcher
	logger   *zap.Logger
}

// NewExtractor builds an Extractor. renderer must execute page scripts, since
// the site injects its metrics client-side.
func NewExtractor(renderer Fetcher, logger *zap.Logger) (*Extractor, error) {
	if renderer == nil {
		return nil, errors.New("extractor requires a renderer")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{renderer: renderer, logger: logger}, nil
}

// Extract renders rawURL and returns its metrics.
func (e *Extractor) Extract(ctx context.Context, rawURL string) (*Table, error) {
	resp, err := e.renderer.Fetch(ctx, FetchRequest{URL: rawURL})
	if err != nil {
		return nil, fmt.Errorf("render result page: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("render result page: status %d", resp.StatusCode)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("parse result page: %w", err)
	}
	table := ExtractMetrics(doc)
	e.logger.Debug("extracted metrics",
		zap.String("url", rawURL),
		zap.Int("metrics", table.Len()),
		zap.Bool("headless", resp.UsedHeadless),
	)
	return table, nil
}

// ExtractMetrics reads the temperature and every metric block from a rendered
// document. Missing temperature elements and missing unit or direction
// elements become empty strings; a block without a label or a value is
// skipped entirely.
func ExtractMetrics(doc *goquery.Document) *Table {
	table := NewTable()
	table.Set(TemperatureLabel, NewTemperature(
		firstText(doc.Selection, temperatureSelector),
		firstText(doc.Selection, temperatureUnitSelector),
	))

	doc.Find(metricBlockSelector).Each(func(_ int, block *goquery.Selection) {
		label, ok := optionalText(block, metricLabelSelector)
		if !ok {
			return
		}
		value, ok := optionalText(block, metricValueSelector)
		if !ok {
			return
		}
		table.Set(label, Metric{
			Magnitude: value,
			Unit:      firstText(block, metricUnitSelector),
			Direction: firstText(block, metricVectorSelector),
		})
	})
	return table
}

func optionalText(s *goquery.Selection, selector string) (string, bool) {
	found := s.Find(selector).First()
	if found.Length() == 0 {
		return "", false
	}
	return collapse(found.Text()), true
}

func firstText(s *goquery.Selection, selector string) string {
	text, _ := optionalText(s, selector)
	return text
}
