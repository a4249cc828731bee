package services

import (
	"github.com/fenilmodi00/ipo-dashboard/models"
	"github.com/shopspring/decimal"
)

// CalculateGMPMetrics derives the premium percentage over the cap price and
// the estimated listing price:
//
//	percent         = round(current / max * 100, 2)
//	estListingPrice = max + current
//
// When the cap price is missing or not positive, both outputs are blank. A
// blank is "unknown cap price", which must not read as "no premium".
func CalculateGMPMetrics(band models.PriceBand, gmp models.GMP) models.GMP {
	result := models.GMP{Current: copyFloat64(gmp.Current)}

	if band.Max == nil || !isFinite(*band.Max) || *band.Max <= 0 {
		return result
	}
	if gmp.Current == nil || !isFinite(*gmp.Current) {
		return result
	}

	capPrice := decimal.NewFromFloat(*band.Max)
	premium := decimal.NewFromFloat(*gmp.Current)

	result.Percent = float64Ptr(premium.Mul(hundred).Div(capPrice).Round(2).InexactFloat64())
	result.EstListingPrice = float64Ptr(capPrice.Add(premium).InexactFloat64())
	return result
}

// CalculateMinInvestment returns lot size times cap price, the amount needed
// for a single lot bid at the cut-off price.
func CalculateMinInvestment(band models.PriceBand, lotSize *int) *float64 {
	if lotSize == nil || *lotSize <= 0 {
		return nil
	}
	if band.Max == nil || !isFinite(*band.Max) || *band.Max <= 0 {
		return nil
	}

	amount := decimal.NewFromFloat(*band.Max).Mul(decimal.NewFromInt(int64(*lotSize)))
	return float64Ptr(amount.Round(2).InexactFloat64())
}
