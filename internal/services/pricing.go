package services

import (
	"ticket-storefront/models"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

type Pricing struct {
	bookingFeePercent      decimal.Decimal
	cancellationFeePercent decimal.Decimal
}

func NewPricing(bookingFeePercent, cancellationFeePercent decimal.Decimal) Pricing {
	return Pricing{
		bookingFeePercent:      bookingFeePercent,
		cancellationFeePercent: cancellationFeePercent,
	}
}

// Quote prices a seat selection. The fee is rounded half-up to the cent.
func (p Pricing) Quote(seats []models.Seat) models.PriceQuote {
	subtotal := decimal.Zero
	for _, s := range seats {
		subtotal = subtotal.Add(s.Price)
	}
	subtotal = subtotal.Round(2)

	fee := subtotal.Mul(p.bookingFeePercent).Div(hundred).Round(2)

	return models.PriceQuote{
		Subtotal:   subtotal,
		BookingFee: fee,
		Total:      subtotal.Add(fee),
	}
}

// Refund splits a paid total into the refund and the retained fee; the
// two always add up to the total.
func (p Pricing) Refund(total decimal.Decimal) models.RefundQuote {
	keep := hundred.Sub(p.cancellationFeePercent)
	refund := total.Mul(keep).Div(hundred).Round(2)

	return models.RefundQuote{
		Total:           total,
		Refund:          refund,
		CancellationFee: total.Sub(refund),
	}
}
