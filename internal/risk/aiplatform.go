package risk

import "fmt"

const (
	aiBaseScore              = 50
	aiLowConfidenceThreshold = 70
	pointsLowConfidence      = 10
)

var vendorAdjustment = map[Vendor]int{
	VendorOpenAI:    30,
	VendorAnthropic: 30,
	VendorGemini:    15,
	VendorUnknown:   25,
}

type AIPlatformRisk struct {
	TotalScore int       `json:"total_score"`
	Vendor     Vendor    `json:"vendor,omitempty"`
	Concerns   []Concern `json:"concerns"`
}

// CalculateAIPlatformRisk is zero for non-AI apps.
func CalculateAIPlatformRisk(isAIPlatform bool, vendor Vendor, confidence int) AIPlatformRisk {
	if !isAIPlatform {
		return AIPlatformRisk{}
	}
	vendor = ParseVendor(string(vendor))
	out := AIPlatformRisk{Vendor: vendor}
	score := aiBaseScore + vendorAdjustment[vendor]
	out.Concerns = append(out.Concerns, Concern{
		Kind:     KindAIPlatform,
		Severity: SeverityHigh,
		Title:    "Third-party AI platform",
		Detail:   fmt.Sprintf("%s integration can send organization data to an external model provider", vendor.label()),
	})
	if confidence < aiLowConfidenceThreshold {
		score += pointsLowConfidence
		out.Concerns = append(out.Concerns, Concern{
			Kind:     KindLowDetectionConfidence,
			Severity: SeverityLow,
			Title:    "Low detection confidence",
			Detail:   fmt.Sprintf("AI platform detected with %d%% confidence, manual review recommended", confidence),
		})
	}
	out.TotalScore = clampScore(score)
	return out
}
