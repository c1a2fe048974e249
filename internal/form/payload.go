package form

import (
	"math"
	"strconv"
	"strings"

	"github.com/vitrinelab/vitrine/internal/domain"
	"github.com/vitrinelab/vitrine/internal/errors"
	"github.com/vitrinelab/vitrine/internal/taxonomy"
)

// buildPayload converts the draft into the backend body. Must be called with
// s.mu held.
func (s *Session) buildPayload() (*domain.ProductPayload, error) {
	d := &s.draft
	problems := map[string]string{}

	p := &domain.ProductPayload{
		Title:       strings.TrimSpace(d.Title),
		ProductType: d.ProductType,
		Measure:     strings.TrimSpace(d.Measure),
		Description: optional(d.Description),
		Image:       optional(d.Image),
		Include:     d.Include,
		Remove:      d.Remove,
		Datasheet:   d.Datasheet,
		Status:      d.Status,
	}
	if p.Status == "" {
		p.Status = domain.StatusPending
	}

	if n, ok := s.taxonomy.Node(taxonomy.LevelClassification, d.Classification); ok {
		p.ClassificationID = n.ID
	}
	if n, ok := s.taxonomy.Node(taxonomy.LevelCategory, d.Category); ok {
		p.CategoryID = n.ID
	}

	if v, ok := parseID(d.PartnerID); ok {
		p.PartnerID = v
	} else {
		problems["idPartner"] = "must be a whole number"
	}
	if strings.TrimSpace(d.PrinterID) != "" {
		if v, ok := parseID(d.PrinterID); ok {
			p.PrinterID = &v
		} else {
			problems["idPrinter"] = "must be a whole number"
		}
	}

	if strings.TrimSpace(d.Quantity) != "" {
		if v, err := ParseQuantity(d.Quantity); err == nil {
			p.Quantity = &v
		} else {
			problems["quantity"] = "must be a number"
		}
	}

	var err error
	if p.Price, err = ParseAmount(d.Price); err != nil {
		problems["price"] = "must be an amount"
	}
	if p.Offer, err = ParseAmount(d.Offer); err != nil {
		problems["offer"] = "must be an amount"
	}

	if len(problems) > 0 {
		return nil, errors.ValidationWithDetails("validation failed", problems)
	}
	if err := s.validator.Validate(p); err != nil {
		return nil, err
	}
	return p, nil
}

// ParseAmount reads a money amount as typed into the form. The currency
// symbol is dropped; a comma is the decimal separator when present, in which
// case dots are thousands separators ("R$ 1.234,50" is 1234.5). Blank is 0.
func ParseAmount(raw string) (float64, error) {
	s := strings.TrimSpace(strings.ReplaceAll(raw, "R$", ""))
	if s == "" {
		return 0, nil
	}
	return parseDecimal(strings.ReplaceAll(s, " ", ""))
}

// ParseQuantity reads a quantity with the same separator rule as ParseAmount:
// "1.234,5" is 1234.5 and "0.75" is 0.75.
func ParseQuantity(raw string) (float64, error) {
	return parseDecimal(strings.TrimSpace(raw))
}

// parseDecimal treats dots as thousands separators only when a comma is
// present. Infinities and NaN are rejected.
func parseDecimal(s string) (float64, error) {
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, &strconv.NumError{Func: "ParseFloat", Num: s, Err: strconv.ErrRange}
	}
	return v, nil
}

// parseID reads a positive-or-zero integer identifier; blank reads as 0 and is
// rejected later by payload validation.
func parseID(raw string) (int, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, true
	}
	v, err := strconv.Atoi(s)
	return v, err == nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
