package risk

import "testing"

func TestCalculateAIPlatformRisk(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		isAI       bool
		vendor     Vendor
		confidence int
		want       int
	}{
		{name: "not ai", isAI: false, vendor: VendorOpenAI, confidence: 95, want: 0},
		{name: "openai", isAI: true, vendor: VendorOpenAI, confidence: 95, want: 80},
		{name: "chatgpt alias", isAI: true, vendor: "ChatGPT Enterprise", confidence: 90, want: 80},
		{name: "anthropic", isAI: true, vendor: "Claude", confidence: 70, want: 80},
		{name: "gemini", isAI: true, vendor: VendorGemini, confidence: 99, want: 65},
		{name: "unknown vendor low confidence", isAI: true, vendor: "", confidence: 50, want: 85},
		{name: "openai low confidence", isAI: true, vendor: VendorOpenAI, confidence: 69, want: 90},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := CalculateAIPlatformRisk(tc.isAI, tc.vendor, tc.confidence)
			if got.TotalScore != tc.want {
				t.Fatalf("CalculateAIPlatformRisk() = %d, want %d", got.TotalScore, tc.want)
			}
			if !tc.isAI && len(got.Concerns) != 0 {
				t.Fatalf("CalculateAIPlatformRisk() concerns = %v, want none", got.Concerns)
			}
		})
	}
}

func TestParseVendor(t *testing.T) {
	t.Parallel()

	cases := map[string]Vendor{
		"OpenAI":             VendorOpenAI,
		"chatgpt":            VendorOpenAI,
		"Anthropic PBC":      VendorAnthropic,
		"Google Gemini":      VendorGemini,
		"bard":               VendorGemini,
		"Mistral":            VendorUnknown,
		"":                   VendorUnknown,
		"  claude.ai  ":      VendorAnthropic,
		string(VendorGemini): VendorGemini,
	}
	for raw, want := range cases {
		if got := ParseVendor(raw); got != want {
			t.Fatalf("ParseVendor(%q) = %q, want %q", raw, got, want)
		}
	}
}
