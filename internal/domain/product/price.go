package product

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
)

// MaxPrice is the largest price the catalog column stores, NUMERIC(12, 2).
var MaxPrice = decimal.RequireFromString("9999999999.99")

// ErrInvalidPrice is returned for prices that cannot be stored.
var ErrInvalidPrice = errors.New("invalid price")

// DecodePrice reads a price given as a JSON number or a numeric string.
func DecodePrice(d *jx.Decoder) (decimal.Decimal, error) {
	var raw string
	switch d.Next() {
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return decimal.Zero, err
		}
		raw = s
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return decimal.Zero, err
		}
		raw = string(n)
	default:
		return decimal.Zero, errors.Wrap(ErrInvalidPrice, "price must be a number")
	}

	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, errors.Wrapf(ErrInvalidPrice, "parse %q", raw)
	}
	return price, nil
}

// ValidatePrice checks that p is non-negative and fits the catalog column
// once rounded to cents.
func ValidatePrice(p decimal.Decimal) error {
	if p.IsNegative() {
		return errors.Wrap(ErrInvalidPrice, "price must not be negative")
	}
	if p.Round(2).GreaterThan(MaxPrice) {
		return errors.Wrapf(ErrInvalidPrice, "price must not exceed %s", MaxPrice.StringFixed(2))
	}
	return nil
}
