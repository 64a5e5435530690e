package gateway

// FallbackVoices is the built-in voice catalog served when the backend
// listing endpoint is unreachable. Mirrors the backend's defaults.
func FallbackVoices() []Voice {
	return []Voice{
		{ID: "male_professional_kr", Name: "Professional Male (한국어)", Gender: "male", Accent: "korean"},
		{ID: "female_professional_kr", Name: "Professional Female (한국어)", Gender: "female", Accent: "korean"},
		{ID: "male_friendly_kr", Name: "Friendly Male (한국어)", Gender: "male", Accent: "korean"},
		{ID: "female_friendly_kr", Name: "Friendly Female (한국어)", Gender: "female", Accent: "korean"},
	}
}
