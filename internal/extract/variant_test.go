package extract

import "testing"

func TestVariantForURL(t *testing.T) {
	tests := []struct {
		url  string
		want Variant
	}{
		{"https://network.example.com/in/jordan-reyes", VariantStandard},
		{"https://network.example.com/talent/profile/123", VariantRecruiter},
		{"https://network.example.com/recruiter/profile/123", VariantRecruiter},
		{"https://network.example.com/sales/people/abc", VariantSalesNav},
		{"https://network.example.com/feed/", VariantNone},
		{"", VariantNone},
	}
	for _, tt := range tests {
		if got := VariantForURL(tt.url); got != tt.want {
			t.Errorf("VariantForURL(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestIsListURL(t *testing.T) {
	if !IsListURL("https://network.example.com/search/results/people/?keywords=go") {
		t.Error("search URL should be a list view")
	}
	if IsListURL("https://network.example.com/in/jordan-reyes") {
		t.Error("profile URL is not a list view")
	}
}
