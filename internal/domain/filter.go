package domain

import "strings"

// FilterLocal returns the stations broadcasting in lang for country.
//
// lang matches as a case-insensitive substring of LanguageCodes, country
// must equal CountryCode case-insensitively. Input order is preserved.
func FilterLocal(stations []Station, lang, country string) []Station {
	lang = strings.ToLower(lang)

	local := make([]Station, 0)
	for _, s := range stations {
		if !strings.Contains(strings.ToLower(s.LanguageCodes), lang) {
			continue
		}
		if !strings.EqualFold(s.CountryCode, country) {
			continue
		}
		local = append(local, s)
	}
	return local
}
