package model

import (
	"errors"
	"strings"
)

var (
	ErrUnknownCurrency = errors.New("unknown currency code")
	ErrNegativeAmount  = errors.New("amount cannot be negative")
)

// Currency is one row of the exchange table. Rate is units per USD.
type Currency struct {
	Code string  `json:"code"`
	Name string  `json:"name"`
	Rate float64 `json:"rate"`
}

var currencies = []Currency{
	{Code: "USD", Name: "US Dollar", Rate: 1},
	{Code: "EUR", Name: "Euro", Rate: 0.94},
	{Code: "GBP", Name: "British Pound", Rate: 0.79},
	{Code: "JPY", Name: "Japanese Yen", Rate: 156.40},
	{Code: "CAD", Name: "Canadian Dollar", Rate: 1.37},
	{Code: "AUD", Name: "Australian Dollar", Rate: 1.52},
}

// Currencies returns a copy of the exchange table.
func Currencies() []Currency {
	out := make([]Currency, len(currencies))
	copy(out, currencies)
	return out
}

// LookupCurrency finds a currency by code, ignoring case.
func LookupCurrency(code string) (Currency, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, c := range currencies {
		if c.Code == code {
			return c, nil
		}
	}
	return Currency{}, ErrUnknownCurrency
}

// Conversion is the result of converting an amount between two currencies.
type Conversion struct {
	Amount    float64 `json:"amount"`
	From      string  `json:"from"`
	To        string  `json:"to"`
	Rate      float64 `json:"rate"`
	Converted float64 `json:"converted"`
}

// Convert goes through USD: amount / rate(from) * rate(to).
func Convert(amount float64, from, to string) (*Conversion, error) {
	if amount < 0 {
		return nil, ErrNegativeAmount
	}
	src, err := LookupCurrency(from)
	if err != nil {
		return nil, err
	}
	dst, err := LookupCurrency(to)
	if err != nil {
		return nil, err
	}
	rate := dst.Rate / src.Rate
	return &Conversion{
		Amount:    amount,
		From:      src.Code,
		To:        dst.Code,
		Rate:      rate,
		Converted: amount / src.Rate * dst.Rate,
	}, nil
}
