package naming

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MinSignificantChars is the shortest query, in letters and digits after
// normalization, that is worth matching.
const MinSignificantChars = 3

var (
	yearTokenRegex = regexp.MustCompile(`\b((?:19|20)\d{2})\b`)
	imdbRegex      = regexp.MustCompile(`\btt\d{7,8}\b`)
	digitsRegex    = regexp.MustCompile(`\b\d+\b`)
)

var videoExtensions = map[string]bool{
	".mkv": true, ".mp4": true, ".m4v": true, ".avi": true, ".mov": true, ".wmv": true,
	".mpg": true, ".mpeg": true, ".m2ts": true, ".ts": true, ".webm": true, ".flv": true,
	".ogm": true, ".vob": true, ".iso": true,
}

var audioExtensions = map[string]bool{
	".mp3": true, ".flac": true, ".m4a": true, ".aac": true, ".ogg": true, ".opus": true,
	".wav": true, ".wma": true, ".ape": true, ".alac": true, ".aiff": true, ".wv": true,
	".mka": true,
}

var subtitleExtensions = map[string]bool{
	".srt": true, ".ass": true, ".ssa": true, ".sub": true, ".idx": true, ".vtt": true,
}

// IsVideo reports whether path has a video container extension.
func IsVideo(path string) bool {
	return videoExtensions[strings.ToLower(filepath.Ext(path))]
}

// IsAudio reports whether path has an audio-only extension.
func IsAudio(path string) bool {
	return audioExtensions[strings.ToLower(filepath.Ext(path))]
}

// IsSubtitle reports whether path has a subtitle extension.
func IsSubtitle(path string) bool {
	return subtitleExtensions[strings.ToLower(filepath.Ext(path))]
}

// BaseName returns the file name of path without its extension. Subtitle
// files also lose their language suffix, so "Movie.en.srt" yields "Movie".
func BaseName(path string) string {
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if IsSubtitle(base) {
		name = subLangRegex.ReplaceAllString(name, "")
	}
	return name
}

// ExtractYear returns the last (19|20)xx token in name, or 0.
func ExtractYear(name string) int {
	matches := yearTokenRegex.FindAllStringSubmatch(name, -1)
	if len(matches) == 0 {
		return 0
	}
	year, _ := strconv.Atoi(matches[len(matches)-1][1])
	return year
}

// ImdbID returns the first embedded IMDb id (tt followed by 7 or 8 digits).
func ImdbID(name string) string {
	return imdbRegex.FindString(name)
}

// Numbers returns the integer tokens of a normalized name.
func Numbers(name string) []int {
	var out []int
	for _, tok := range digitsRegex.FindAllString(name, -1) {
		if n, err := strconv.Atoi(tok); err == nil {
			out = append(out, n)
		}
	}
	return out
}

// StripNumbers removes integer tokens from a normalized name.
func StripNumbers(name string) string {
	return normalizePunctuation(digitsRegex.ReplaceAllString(name, " "))
}

// Fold lower-cases s and removes diacritics so that "Amélie" and "amelie"
// compare equal.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return cases.Fold().String(out)
}

// SameTitle reports whether two names are equal after normalization and
// folding.
func SameTitle(a, b string) bool {
	fa := Fold(NormalizeRelease(a, false))
	return fa != "" && fa == Fold(NormalizeRelease(b, false))
}
