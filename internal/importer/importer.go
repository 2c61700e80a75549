// Package importer fills the guest cart from a CSV list of selections, such
// as a saved wishlist export.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"aurabags-storefront/internal/domain"
	cartsvc "aurabags-storefront/internal/service/cart"
	"github.com/shopspring/decimal"
)

type LineAdder interface {
	AddLine(ctx context.Context, in cartsvc.AddLineInput) (domain.Cart, error)
}

// CSVImporter reads rows with the headers productId, name, price, quantity,
// color, size and image. price is in dollars ("89.99"); unitPriceCents may be
// given instead.
type CSVImporter struct {
	reader *csv.Reader
	cart   LineAdder
}

func NewCSVImporter(r io.Reader, cart LineAdder) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{
		reader: csvr,
		cart:   cart,
	}
}

// Run adds one cart line per row and returns the number of rows added and the
// resulting cart. Rows without a productId are skipped.
func (i *CSVImporter) Run(ctx context.Context) (int, domain.Cart, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, domain.Cart{}, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)

	var (
		cart     domain.Cart
		imported int
	)
	line := 1
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return imported, cart, fmt.Errorf("read row %d: %w", line, err)
		}

		in, ok, err := parseRow(record, index)
		if err != nil {
			return imported, cart, fmt.Errorf("row %d: %w", line, err)
		}
		if !ok {
			continue
		}
		cart, err = i.cart.AddLine(ctx, in)
		if err != nil {
			return imported, cart, fmt.Errorf("add %q from row %d: %w", in.ProductID, line, err)
		}
		imported++
	}
	return imported, cart, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.TrimSpace(h)] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int) (cartsvc.AddLineInput, bool, error) {
	productID := pick(record, index, "productId")
	if productID == "" {
		return cartsvc.AddLineInput{}, false, nil
	}

	cents, err := priceCents(pick(record, index, "price"), pick(record, index, "unitPriceCents"))
	if err != nil {
		return cartsvc.AddLineInput{}, false, err
	}

	qty := 1
	if raw := pick(record, index, "quantity"); raw != "" {
		qty, err = strconv.Atoi(raw)
		if err != nil {
			return cartsvc.AddLineInput{}, false, fmt.Errorf("quantity %q: %w", raw, domain.ErrInvalidInput)
		}
	}

	return cartsvc.AddLineInput{
		ProductID:      productID,
		Name:           pick(record, index, "name"),
		UnitPriceCents: cents,
		Image:          pick(record, index, "image"),
		Quantity:       qty,
		Variant: domain.Variant{
			Color: pick(record, index, "color"),
			Size:  pick(record, index, "size"),
		},
	}, true, nil
}

func priceCents(price, cents string) (int64, error) {
	if price != "" {
		d, err := decimal.NewFromString(strings.TrimPrefix(price, "$"))
		if err != nil {
			return 0, fmt.Errorf("price %q: %w", price, domain.ErrInvalidInput)
		}
		return d.Shift(2).Round(0).IntPart(), nil
	}
	if cents == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(cents, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("unitPriceCents %q: %w", cents, domain.ErrInvalidInput)
	}
	return v, nil
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
