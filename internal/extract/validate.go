package extract

// Plausible ranges for extracted readings. A value outside its range is
// treated as a misread and dropped.
const (
	MinHumidity, MaxHumidity         = 0, 100
	MinPressureHPa, MaxPressureHPa   = 800.0, 1200.0
	MinWindKmh, MaxWindKmh           = 0.0, 500.0
	MinVisibilityKm, MaxVisibilityKm = 0.0, 50.0
	MinUVIndex, MaxUVIndex           = 0, 15
)

func ValidHumidity(v int) bool { return v >= MinHumidity && v <= MaxHumidity }

func ValidPressure(hpa float64) bool { return hpa >= MinPressureHPa && hpa <= MaxPressureHPa }

func ValidWindSpeed(kmh float64) bool { return kmh >= MinWindKmh && kmh <= MaxWindKmh }

func ValidVisibility(km float64) bool { return km >= MinVisibilityKm && km <= MaxVisibilityKm }

func ValidUVIndex(v int) bool { return v >= MinUVIndex && v <= MaxUVIndex }
