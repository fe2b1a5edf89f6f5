package domain

// BMI computes body mass index from weight in kg and height in cm.
// Non-positive height yields 0 rather than a division blowup.
func BMI(weightKg, heightCm float64) float64 {
	if heightCm <= 0 {
		return 0
	}
	m := heightCm / 100
	return weightKg / (m * m)
}
