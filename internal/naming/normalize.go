package naming

import (
	"regexp"
	"strings"
	"unicode"
)

const subLangs = `(?:en|eng|fr|fre|fra|de|ger|deu|es|spa|it|ita|nl|dut|pt|por|ru|rus|ja|jpn|zh|chi|ko|kor|sv|swe|pl|pol)`

var (
	mediaExtRegex   = regexp.MustCompile(`(?i)\.(?:mkv|mp4|m4v|avi|mov|wmv|mpe?g|m2ts|ts|webm|flv|ogm|vob|iso|srt|ass|ssa|sub|idx|vtt|nfo|mp3|flac|m4a|aac|ogg|opus|wav|wma|ape|mka)$`)
	checksumRegex   = regexp.MustCompile(`[\[(][0-9A-Fa-f]{8}[\])]`)
	subLangRegex    = regexp.MustCompile(`\.` + subLangs + `(?:\.(?:forced|sdh|hi|cc))?$`)
	subFlagRegex    = regexp.MustCompile(`\.` + subLangs + `\.(?:forced|sdh|hi|cc)$`)
	bracketRegex    = regexp.MustCompile(`\[[^\[\]]*\]|\([^()]*\)|\{[^{}]*\}`)
	groupSuffixRe   = regexp.MustCompile(`([^\s\-])-([A-Za-z0-9]{2,})\s*$`)
	groupPrefixRe   = regexp.MustCompile(`^\s*[\[{][^\]}]*[\]}]`)
	apostropheRegex = regexp.MustCompile("['’`´]")
	separatorRegex  = regexp.MustCompile(`[^\p{L}\p{N}]+`)
)

// NormalizeRelease strips release clutter from name so that only the title
// tokens remain, separated by single spaces. In strict mode the name is cut
// at the first language/source/format/resolution/3D token instead of having
// those spans deleted. The result is a fixpoint: normalizing it again
// returns it unchanged.
func NormalizeRelease(name string, strict bool) string {
	name = stripSubtitleLanguage(name)
	v := vocab(strict)
	for {
		next := normalizePass(name, v)
		if next == name {
			return next
		}
		name = next
	}
}

func normalizePass(name string, v *vocabulary) string {
	name = mediaExtRegex.ReplaceAllString(name, "")
	name = strings.ReplaceAll(name, "_", " ")

	name = checksumRegex.ReplaceAllString(name, " ")
	if v.stopwords == nil {
		name = deleteAll(name, v.language)
	}
	name = stripClutterBrackets(name, v.stopwords != nil)
	name = stripReleaseGroups(name, v.groups)

	if v.stopwords != nil {
		name = truncateAtStopword(name, v.stopwords)
	}

	name = deleteAll(name, v.source)
	name = deleteAll(name, v.videoAudio)
	name = deleteAll(name, v.format)
	name = deleteAll(name, v.stereo)
	name = deleteAll(name, v.resolution)
	name = deleteAll(name, v.blacklist)

	return normalizePunctuation(name)
}

// stripSubtitleLanguage removes a trailing language code such as ".en" from
// subtitle files. Other names lose it only when a ".forced" or ".sdh" style
// flag follows, since "stephen.kings.it" ends in a title word.
func stripSubtitleLanguage(name string) string {
	subtitle := IsSubtitle(name)
	name = mediaExtRegex.ReplaceAllString(name, "")
	if subtitle {
		return subLangRegex.ReplaceAllString(name, "")
	}
	return subFlagRegex.ReplaceAllString(name, "")
}

func deleteAll(name string, patterns []*regexp.Regexp) string {
	for _, re := range patterns {
		name = re.ReplaceAllString(name, " ")
	}
	return name
}

// stripClutterBrackets removes bracket groups that carry descriptive text
// rather than a title token. A bracket holding only digits, such as a year,
// is unwrapped instead. Strict mode also drops brackets containing separators.
func stripClutterBrackets(name string, strict bool) string {
	return bracketRegex.ReplaceAllStringFunc(name, func(group string) string {
		inner := group[1 : len(group)-1]
		hasLetter := strings.IndexFunc(inner, unicode.IsLetter) >= 0
		if hasLetter {
			return " "
		}
		if strict && strings.IndexFunc(inner, func(r rune) bool {
			return unicode.IsSpace(r) || unicode.IsPunct(r)
		}) >= 0 {
			return " "
		}
		return " " + inner + " "
	})
}

// stripReleaseGroups removes a leading [Group] tag, a trailing -GROUP suffix
// and any known group name appearing as a token.
func stripReleaseGroups(name string, known []*regexp.Regexp) string {
	name = groupPrefixRe.ReplaceAllString(name, " ")

	if m := groupSuffixRe.FindStringSubmatchIndex(name); m != nil {
		if isReleaseGroupToken(name[m[4]:m[5]]) {
			name = name[:m[3]] + " "
		}
	}

	return deleteAll(name, known)
}

// isReleaseGroupToken reports whether a hyphen-attached suffix looks like a
// group tag: all caps, or a word mixed with digits. Title-case words such as
// the "Man" in "Spider-Man" are kept.
func isReleaseGroupToken(seg string) bool {
	if strings.IndexFunc(seg, unicode.IsLetter) < 0 {
		return false
	}
	if strings.ToUpper(seg) == seg {
		return true
	}
	if strings.IndexFunc(seg, unicode.IsDigit) >= 0 {
		return true
	}
	switch strings.ToLower(seg) {
	case "group", "rarbg", "yts", "yify", "sparks", "mteam", "psychd", "obfuscated":
		return true
	}
	return false
}

// truncateAtStopword cuts name at the earliest stopword. A stopword at the
// very start is deleted rather than truncating everything away.
func truncateAtStopword(name string, stopwords []*regexp.Regexp) string {
	cut := -1
	for _, re := range stopwords {
		loc := re.FindStringIndex(name)
		if loc == nil {
			continue
		}
		if cut < 0 || loc[0] < cut {
			cut = loc[0]
		}
	}
	if cut < 0 {
		return name
	}
	if strings.TrimFunc(name[:cut], isSeparator) == "" {
		return deleteAll(name, stopwords)
	}
	return name[:cut]
}

func isSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsNumber(r)
}

// normalizePunctuation drops apostrophes and collapses every run of
// non-alphanumeric characters into a single space.
func normalizePunctuation(name string) string {
	name = apostropheRegex.ReplaceAllString(name, "")
	name = separatorRegex.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}

// NormalizeTitle applies only the punctuation normalization used for
// catalog names, which are already free of release clutter.
func NormalizeTitle(name string) string {
	return normalizePunctuation(name)
}

// SignificantChars counts the letters and digits left after lenient
// normalization.
func SignificantChars(name string) int {
	n := 0
	for _, r := range NormalizeRelease(name, false) {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			n++
		}
	}
	return n
}
