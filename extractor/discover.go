package extractor

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"pricelist-extractor/internal/types"
	"pricelist-extractor/utils"
)

// ErrNoSuppliers means the landing page exposed no download actions
var ErrNoSuppliers = errors.New("no supplier download buttons found")

const landingButtonSelector = "section button[id^='download-button-']"

// DiscoverSuppliers waits for the landing page download buttons and returns
// one card per button, in page order
func DiscoverSuppliers(ctx context.Context, session types.Session, timeout time.Duration) ([]types.SupplierCard, error) {
	if err := session.WaitPresent(ctx, types.CSS(landingButtonSelector), timeout); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoSuppliers, err)
	}

	html, err := session.PageHTML(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read landing page: %w", err)
	}

	cards, err := ParseSupplierCards(html)
	if err != nil {
		return nil, err
	}
	if len(cards) == 0 {
		return nil, ErrNoSuppliers
	}
	return cards, nil
}

// ParseSupplierCards extracts the cards from landing page HTML. The label is
// the first h2/h3 of the closest div or article around the button, falling
// back to the button id.
func ParseSupplierCards(html string) ([]types.SupplierCard, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse landing page: %w", err)
	}

	var cards []types.SupplierCard
	doc.Find(landingButtonSelector).Each(func(i int, s *goquery.Selection) {
		id, exists := s.Attr("id")
		if !exists || id == "" {
			return
		}

		name := strings.TrimSpace(s.Closest("div, article").Find("h2, h3").First().Text())
		if name == "" {
			name = id
		}

		cards = append(cards, types.SupplierCard{
			Name:   utils.CleanSupplierName(name),
			Action: types.CSS("button[id=" + strconv.Quote(id) + "]"),
		})
	})
	return cards, nil
}
