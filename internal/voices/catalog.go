package voices

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"podforge/internal/services/tts"
)

// AutoVoice is the sentinel the submission form uses for automatic voice
// selection. It is not a real catalog voice and can never be previewed.
const AutoVoice = "auto"

// Voice describes one catalog entry.
type Voice struct {
	Name        string `json:"name"`
	VoiceID     string `json:"voice_id"`
	Gender      string `json:"gender"`
	Description string `json:"description"`
}

type traits struct {
	gender      string
	description string
}

var voiceTraits = map[string]traits{
	"adam":   {"male", "Deep, authoritative male voice"},
	"antoni": {"male", "Warm, well-rounded male voice"},
	"bella":  {"female", "Soft, friendly female voice"},
	"elli":   {"female", "Young, energetic female voice"},
	"josh":   {"male", "Casual, conversational male voice"},
	"rachel": {"female", "Calm, articulate female voice"},
	"sam":    {"male", "Dynamic, raspy male voice"},
}

var titleCaser = cases.Title(language.English)

// Catalog returns the available voices sorted by name. Names are
// display-cased; clients lower-case them for API calls.
func Catalog() []Voice {
	names := tts.VoiceNames()
	catalog := make([]Voice, 0, len(names))
	for _, name := range names {
		id, _ := tts.ResolveVoice(name)
		catalog = append(catalog, Voice{
			Name:        titleCaser.String(name),
			VoiceID:     id,
			Gender:      voiceTraits[name].gender,
			Description: voiceTraits[name].description,
		})
	}
	return catalog
}

// Normalize lower-cases and trims a voice name for lookups.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Known reports whether name refers to a catalog voice. The auto sentinel is
// not a catalog voice.
func Known(name string) bool {
	normalized := Normalize(name)
	if normalized == AutoVoice {
		return false
	}
	return tts.KnownVoice(normalized)
}
