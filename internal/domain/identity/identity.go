// Package identity computes canonical player identity keys and detects
// duplicate roster entries.
package identity

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/okian/scoutbook/internal/domain/model"
)

// externalIDPattern matches the numeric id segment of a profile link, e.g.
// https://www.transfermarkt.com/some-player/profil/spieler/123456.
var externalIDPattern = regexp.MustCompile(`spieler/(\d+)`)

// Normalize lowercases s, strips diacritics, drops everything that is not a
// letter, digit or space, collapses runs of whitespace and trims.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, strings.ToLower(s))
	if err != nil {
		folded = strings.ToLower(s)
	}

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Key returns name_nationality_birthYear with both text parts normalized.
// A missing birth year leaves the last segment empty.
func Key(p model.Player) (string, error) {
	name := Normalize(p.Name)
	if name == "" {
		return "", ErrMissingName
	}
	year := ""
	if p.HasBirthYear() {
		year = strconv.Itoa(p.BirthYear)
	}
	return name + "_" + Normalize(p.Nationality) + "_" + year, nil
}

// FindDuplicatesByKey returns every roster entry sharing the candidate's key.
// Candidates without a birth year are never matched. Roster entries whose key
// cannot be computed are skipped.
func FindDuplicatesByKey(candidate model.Player, roster []model.Player) ([]model.Player, error) {
	key, err := Key(candidate)
	if err != nil {
		return nil, err
	}
	if !candidate.HasBirthYear() {
		return nil, nil
	}

	var out []model.Player
	for _, existing := range roster {
		k, err := Key(existing)
		if err != nil {
			continue
		}
		if k == key {
			out = append(out, existing)
		}
	}
	return out, nil
}

// ExternalID extracts the numeric profile id from a reference URL.
func ExternalID(url string) (string, bool) {
	m := externalIDPattern.FindStringSubmatch(url)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// FindByExternalRef returns the roster entry whose reference URL carries the
// same numeric id as url. Slug differences are ignored.
func FindByExternalRef(url string, roster []model.Player) (model.Player, bool) {
	id, ok := ExternalID(url)
	if !ok {
		return model.Player{}, false
	}
	for _, existing := range roster {
		if other, ok := ExternalID(existing.ExternalRef); ok && other == id {
			return existing, true
		}
	}
	return model.Player{}, false
}

// Match is a roster entry with a similar name.
type Match struct {
	Player   model.Player `json:"player"`
	Distance int          `json:"distance"`
}

// SimilarNames returns roster entries whose normalized name is within
// maxDistance edits of name, closest first. It is advisory and never blocks
// creation.
func SimilarNames(name string, roster []model.Player, maxDistance int) []Match {
	target := Normalize(name)
	if target == "" || maxDistance < 0 {
		return nil
	}
	var out []Match
	for _, existing := range roster {
		other := Normalize(existing.Name)
		if other == "" {
			continue
		}
		if d := fuzzy.LevenshteinDistance(target, other); d <= maxDistance {
			out = append(out, Match{Player: existing, Distance: d})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	return out
}

// DuplicateMessage summarises an existing record for a user who tried to
// create it again.
func DuplicateMessage(existing model.Player, now time.Time) string {
	name := existing.Name
	if name == "" {
		name = "Unknown"
	}
	team := existing.Team
	if team == "" {
		team = "N/A"
	}
	age := "N/A"
	if existing.HasBirthYear() {
		age = fmt.Sprintf("%d years", now.Year()-existing.BirthYear)
	}
	return fmt.Sprintf("Player already exists: %s (%s, %s)", name, team, age)
}
