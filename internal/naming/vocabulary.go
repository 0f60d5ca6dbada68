package naming

import (
	"regexp"
	"strings"
	"sync"
)

// vocabulary holds the compiled clutter patterns for one strictness variant.
// Each stage is a list of patterns applied in order; stopwords is the subset
// used for truncation in strict mode.
type vocabulary struct {
	language   []*regexp.Regexp
	groups     []*regexp.Regexp
	source     []*regexp.Regexp
	videoAudio []*regexp.Regexp
	format     []*regexp.Regexp
	stereo     []*regexp.Regexp
	resolution []*regexp.Regexp
	blacklist  []*regexp.Regexp
	stopwords  []*regexp.Regexp
}

var (
	vocabOnce    [2]sync.Once
	vocabVariant [2]*vocabulary
)

// vocab returns the pattern set for the strict or lenient variant,
// compiling it on first use.
func vocab(strict bool) *vocabulary {
	i := 0
	if strict {
		i = 1
	}
	vocabOnce[i].Do(func() {
		vocabVariant[i] = compileVocabulary(strict)
	})
	return vocabVariant[i]
}

// Audio codecs. A channel layout such as "5.1" and the words Opus, Stereo
// and Mono also occur in titles ("Jackass 2.5", "Mr. Holland's Opus"), so
// they are clutter only when attached to one of these.
const (
	audioCodecTerm    = `(?:DTS-HD(?:[ .]?(?:MA|HRA))?|DTS-X|DTS-ES|DTS|TrueHD|Atmos|DDP|E?AC-?3|AAC|FLAC|MP3|L?PCM)`
	channelLayoutTerm = `(?:[ .]?[1-9][ .][0-9])`
	audioQualifier    = `(?:Opus|Stereo|Mono)`
)

// audioContextTerm matches Opus, Stereo or Mono directly before or after an
// audio codec, together with the codec.
func audioContextTerm() string {
	codec := audioCodecTerm + channelLayoutTerm + `?`
	return codec + `[ .-]` + audioQualifier + channelLayoutTerm + `?` +
		`|` + audioQualifier + `[ .-]` + codec
}

// Patterns are split into case-insensitive lists (tokens that never occur in
// titles) and case-sensitive lists (tokens that double as ordinary words,
// e.g. "Web", "Extended", "English", and are only clutter when upper-case).
var (
	languageTerms = []string{
		`MULTi(?:SUBS?)?`, `VOSTFR`, `VOST`, `SUBFRENCH`, `TRUEFRENCH`, `SUBBED`, `DUBBED`,
		`ENG`, `GER`, `FRE`, `iTA`, `SPA`, `RUS`, `JPN`, `KOR`, `HINDI`, `LATINO`, `NORDiC`,
		`MSubs?`, `ESub`,
	}
	languageWords = []string{
		`ENGLISH`, `GERMAN`, `FRENCH`, `ITALIAN`, `SPANISH`, `RUSSIAN`, `JAPANESE`,
		`KOREAN`, `CHINESE`, `DUTCH`, `POLISH`, `DUAL`, `DL`,
	}

	knownGroups = []string{
		`RARBG`, `YTS(?:[ .](?:MX|AG|LT))?`, `YIFY`, `ETRG`, `EtHD`, `TGx`, `QxR`, `FGT`, `SPARKS`,
		`GECKOS`, `NTb`, `AMIABLE`, `CiNEFiLE`, `ION10`, `MeGusta`, `PSYCHD`, `MIRCREW`, `CiNEMiX`,
		`ASPiDe`, `PSA`, `Tigole`, `UTR`, `HONE`,
	}

	sourceTerms = []string{
		`Blu-?Ray`, `BDRip`, `BRRip`, `BDRemux`, `REMUX`, `WEB-?DL`, `WEB-?Rip`, `HDTV`, `PDTV`,
		`SDTV`, `DVDRip`, `DVD-?R`, `DVD[59]`, `DVDSCR`, `HDRip`, `HDCAM`, `TELESYNC`, `HDTS`,
		`AMZN`, `DSNP`, `HMAX`, `ATVP`, `PCOK`, `PMTP`,
	}
	sourceWords = []string{`WEB`, `DVD`, `CAM`, `TS`, `TC`, `R5`, `NF`, `HULU`, `BD`}

	videoAudioTerms = []string{
		`HDR10\+?`, `HDR10Plus`, `HDR`, `DoVi`, `Dolby[ .]?Vision`, `HLG`, `SDR`, `(?:8|10|12)-?bit`,
		audioContextTerm(),
		audioCodecTerm + channelLayoutTerm + `?`, `DDP?\+?` + channelLayoutTerm, `Opus` + channelLayoutTerm,
		`CBR`, `CRF`,
	}
	videoAudioWords = []string{`DV`, `DD`, `HD`}

	formatTerms = []string{
		`[xh][ .]?26[456]`, `HEVC`, `AVC`, `AV1`, `XviD`, `DivX`, `VP9`, `MPEG-?2`, `VC-?1`,
	}

	stereoTerms = []string{`3D`, `H-?SBS`, `Half-?SBS`, `SBS`, `H-?OU`, `Half-?OU`, `MVC`}

	resolutionTerms = []string{`\d{3,4}[pi]`, `4K`, `UHD`, `\d{3,4}x\d{3,4}`}

	blacklistTerms = []string{
		`PROPER`, `REPACK`, `RERIP`, `iNTERNAL`, `READNFO`, `NFOFIX`, `HARDSUBS?`, `HC`,
		`Director'?s[ .]Cut`, `IMAX`, `v\d`,
	}
	blacklistWords = []string{`LIMITED`, `EXTENDED`, `UNRATED`, `UNCUT`, `REMASTERED`, `COMPLETE`, `SAMPLE`}
)

func compileVocabulary(strict bool) *vocabulary {
	v := &vocabulary{
		language:   compileTerms(languageTerms, languageWords),
		groups:     compileTerms(knownGroups, nil),
		source:     compileTerms(sourceTerms, sourceWords),
		videoAudio: compileTerms(videoAudioTerms, videoAudioWords),
		format:     compileTerms(formatTerms, nil),
		stereo:     compileTerms(stereoTerms, nil),
		resolution: compileTerms(resolutionTerms, nil),
		blacklist:  compileTerms(blacklistTerms, blacklistWords),
	}
	if strict {
		for _, set := range [][]*regexp.Regexp{v.language, v.source, v.format, v.resolution, v.stereo} {
			v.stopwords = append(v.stopwords, set...)
		}
	}
	return v
}

// compileTerms builds one case-insensitive alternation for terms and one
// case-sensitive alternation for words, both anchored on word boundaries.
func compileTerms(terms, words []string) []*regexp.Regexp {
	var out []*regexp.Regexp
	if len(terms) > 0 {
		out = append(out, regexp.MustCompile(`(?i)\b(?:`+strings.Join(terms, "|")+`)\b`))
	}
	if len(words) > 0 {
		out = append(out, regexp.MustCompile(`\b(?:`+strings.Join(words, "|")+`)\b`))
	}
	return out
}
