// Package entities contains domain entities used across the application.
package entities

import (
	"fmt"
	"strings"
)

// AudioCDNBaseURL is the base URL of the recitation audio CDN.
const AudioCDNBaseURL = "https://cdn.islamic.network/quran/audio/128"

// Verse represents a single ayah of a Quran page as fetched from the verse
// source. It includes the global verse number, the Uthmani display text, and
// the printed line the verse starts on (nil when the line layout response
// had no entry for it).
type Verse struct {
	Number        int    `json:"number"`        // global verse number (unique within the whole Quran)
	Text          string `json:"text"`          // Uthmani script display text
	NumberInSurah int    `json:"numberInSurah"` // verse number within its surah
	Line          *int   `json:"line"`          // page-relative line number, nullable
}

// AudioURL returns the recitation audio reference for the verse read by the
// given qari.
func (v Verse) AudioURL(qari string) string {
	return fmt.Sprintf("%s/%s/%d.mp3", AudioCDNBaseURL, qari, v.Number)
}

// Words splits the verse text into its words.
func (v Verse) Words() []string {
	return strings.Fields(v.Text)
}
