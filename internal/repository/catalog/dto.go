package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/stephen-mccullough/fashion-search/internal/db"
	"github.com/stephen-mccullough/fashion-search/internal/domain"
)

// candidateFromEntry maps a KNN hit onto a domain Candidate. Rating fields
// absent from the hash default to zero (unreviewed items); present but
// unparsable values are an error.
func candidateFromEntry(docPrefix string, entry db.SearchEntry) (domain.Candidate, error) {
	c := domain.Candidate{
		ParentASIN:  strings.TrimPrefix(entry.Key, docPrefix),
		Title:       entry.Fields["title"],
		Description: entry.Fields["description"],
		Distance:    entry.Distance,
	}

	var err error
	if c.RatingAverage, err = floatField(entry.Fields, "average_rating"); err != nil {
		return domain.Candidate{}, err
	}
	if c.RatingCount, err = intField(entry.Fields, "rating_number"); err != nil {
		return domain.Candidate{}, err
	}

	return c, nil
}

// productFromFields maps a full product hash onto a domain Product.
func productFromFields(parentASIN string, fields map[string]string) (domain.Product, error) {
	p := domain.Product{
		ParentASIN:   parentASIN,
		Title:        fields["title"],
		Description:  fields["description"],
		MainCategory: fields["main_category"],
		Brand:        fields["brand"],
		Store:        fields["store"],
	}

	var err error
	if p.Price, err = floatField(fields, "price"); err != nil {
		return domain.Product{}, err
	}
	if p.RatingAverage, err = floatField(fields, "average_rating"); err != nil {
		return domain.Product{}, err
	}
	if p.RatingCount, err = intField(fields, "rating_number"); err != nil {
		return domain.Product{}, err
	}

	return p, nil
}

func floatField(fields map[string]string, name string) (float64, error) {
	raw, ok := fields[name]
	if !ok || raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", name, raw, err)
	}
	return v, nil
}

func intField(fields map[string]string, name string) (int, error) {
	raw, ok := fields[name]
	if !ok || raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", name, raw, err)
	}
	return v, nil
}
