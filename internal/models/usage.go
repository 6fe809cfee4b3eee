package models

// UsageStatus reports a user's standing against the daily generation quota
type UsageStatus struct {
	Used      int `json:"used"`
	Remaining int `json:"remaining"`
	Limit     int `json:"limit"`
}

// GeneratedImage is the provider-agnostic shape of one generated image
type GeneratedImage struct {
	Data     string `json:"data"`
	MimeType string `json:"mimeType"`
}
