package search

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"

	"inmuebles-portal/internal/models"
)

// ContentHash produces the stable content hash the synchronizer diffs on.
// The canonical representation has an explicit field order, excludes
// updated_at, and treats search_keywords and postal_codes as sets, so
// reordering either never changes the hash.
func ContentHash(rec models.LocationRecord) string {
	var b strings.Builder
	writeField := func(v string) {
		b.WriteString(strconv.Itoa(len(v)))
		b.WriteByte(':')
		b.WriteString(v)
		b.WriteByte('|')
	}

	writeField(rec.ID)
	writeField(rec.Name)
	writeField(rec.Slug)
	writeField(string(rec.Type))
	writeField(rec.State)
	writeField(rec.StateSlug)
	writeField(rec.Municipality)
	writeField(rec.MunicipalitySlug)
	writeField(rec.City)
	writeField(rec.CitySlug)
	writeField(rec.ParentSlug)
	writeField(coordString(rec.Lat))
	writeField(coordString(rec.Lng))
	writeField(strconv.Itoa(rec.Popularity))
	writeField(strings.Join(canonicalSet(rec.SearchKeywords), ","))
	writeField(strings.Join(canonicalSet(rec.PostalCodes), ","))

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// canonicalSet sorts and deduplicates, dropping empty entries.
func canonicalSet(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func coordString(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
