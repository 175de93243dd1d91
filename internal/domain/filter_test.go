package domain

import (
	"strings"
	"testing"
)

func TestFilterLocal(t *testing.T) {
	stations := []Station{
		{Name: "us-en", LanguageCodes: "en", CountryCode: "US"},
		{Name: "us-en-lower", LanguageCodes: "EN,es", CountryCode: "us"},
		{Name: "gb-en", LanguageCodes: "en", CountryCode: "GB"},
		{Name: "us-es", LanguageCodes: "es", CountryCode: "US"},
		{Name: "us-none", LanguageCodes: "", CountryCode: "US"},
	}

	got := FilterLocal(stations, "en", "US")

	want := []string{"us-en", "us-en-lower"}
	if len(got) != len(want) {
		t.Fatalf("FilterLocal() returned %d stations, want %d", len(got), len(want))
	}
	for i, name := range want {
		if got[i].Name != name {
			t.Errorf("FilterLocal()[%d] = %q, want %q", i, got[i].Name, name)
		}
	}
	for _, s := range got {
		if !strings.EqualFold(s.CountryCode, "US") {
			t.Errorf("station %q has country %q", s.Name, s.CountryCode)
		}
		if !strings.Contains(strings.ToLower(s.LanguageCodes), "en") {
			t.Errorf("station %q has languages %q", s.Name, s.LanguageCodes)
		}
	}
}

func TestFilterLocal_NoMatch(t *testing.T) {
	stations := []Station{{Name: "fr", LanguageCodes: "fr", CountryCode: "FR"}}

	got := FilterLocal(stations, "de", "DE")
	if len(got) != 0 {
		t.Errorf("FilterLocal() returned %d stations, want 0", len(got))
	}
}
