package utils

// Conversion factors for the imperial input paths. Storage is always
// metric; conversion happens once at the edge.
const (
	CmPerInch = 2.54
	KgPerLb   = 0.45359237
	MlPerOz   = 29.5735 // US fluid ounce
)

func InchesToCm(in float64) float64 { return in * CmPerInch }

func PoundsToKg(lb float64) float64 { return lb * KgPerLb }

func OuncesToMl(oz float64) float64 { return oz * MlPerOz }

func MlToOunces(ml float64) float64 { return ml / MlPerOz }
