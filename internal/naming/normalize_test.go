package naming

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestNormalizeRelease(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		strict bool
		want   string
	}{
		{"episode release", "Breaking.Bad.S01E01.720p.BluRay.x264-GROUP.mkv", false, "Breaking Bad S01E01"},
		{"episode release strict", "Breaking.Bad.S01E01.720p.BluRay.x264-GROUP.mkv", true, "Breaking Bad S01E01"},
		{"movie release", "The.Matrix.1999.1080p.BluRay.x264-GROUP.mkv", false, "The Matrix 1999"},
		{"movie release strict", "The.Matrix.1999.1080p.BluRay.x264-GROUP.mkv", true, "The Matrix 1999"},
		{"anime subgroup and checksum", "[SubsPlease] Frieren - 01 (1080p) [ABCD1234].mkv", false, "Frieren 01"},
		{"anime subgroup strict", "[SubsPlease] Frieren - 01 (1080p) [ABCD1234].mkv", true, "Frieren 01"},
		{"language tag", "Amélie.2001.FRENCH.720p.BluRay.mkv", false, "Amélie 2001"},
		{"language tag strict", "Amélie.2001.FRENCH.720p.BluRay.mkv", true, "Amélie 2001"},
		{"hyphenated title", "Spider-Man.2002.mkv", false, "Spider Man 2002"},
		{"subtitle language suffix", "Movie.Title.2010.en.srt", false, "Movie Title 2010"},
		{"subtitle forced suffix", "Movie.Title.2010.it.forced.srt", false, "Movie Title 2010"},
		{"forced suffix without extension", "Movie.Title.2010.de.sdh", false, "Movie Title 2010"},
		{"language code as title word", "stephen.kings.it", false, "stephen kings it"},
		{"language code before video extension", "stephen.kings.it.mkv", false, "stephen kings it"},
		{"clutter brackets", "Inception (2010) [Action, Thriller].mkv", false, "Inception 2010"},
		{"audio vocabulary", "Oceans.Eleven.2001.DTS-HD.MA.5.1.mkv", false, "Oceans Eleven 2001"},
		{"audio channels", "Heat.1995.1080p.BluRay.DDP5.1.x264", false, "Heat 1995"},
		{"aac channels", "Heat.1995.720p.WEB-DL.AAC2.0.H.264", false, "Heat 1995"},
		{"truehd atmos", "Dune.2021.2160p.UHD.BluRay.TrueHD.7.1.Atmos.HEVC", false, "Dune 2021"},
		{"codec with stereo", "Clerks.1994.DVDRip.AAC.Stereo.XviD", false, "Clerks 1994"},
		{"opus with channels", "Clerks.1994.WEBRip.Opus.2.0.AV1", false, "Clerks 1994"},
		{"opus title word", "Mr.Hollands.Opus.1995.1080p.BluRay.x264-GROUP.mkv", false, "Mr Hollands Opus 1995"},
		{"stereo title word", "Stereo.2014.1080p.BluRay.x264-GROUP.mkv", false, "Stereo 2014"},
		{"mono title word strict", "Mono.2016.1080p.WEB-DL", true, "Mono 2016"},
		{"decimal title", "Jackass.2.5.2007.DVDRip.XviD.mkv", false, "Jackass 2 5 2007"},
		{"apostrophe", "Ocean's Eleven", false, "Oceans Eleven"},
		{"strict truncation", "The.Office.US.S02E01.HDTV.XviD-LOL", true, "The Office US S02E01"},
		{"underscores", "Some_Movie_2015_720p", false, "Some Movie 2015"},
		{"resolution token", "Clip 1280x720 final", false, "Clip final"},
		{"3d tags", "Avatar.2009.3D.HSBS.1080p", false, "Avatar 2009"},
		{"blacklist", "Alien.1979.PROPER.REPACK.1080p", false, "Alien 1979"},
		{"season only", "Dexter.S01.mkv", false, "Dexter S01"},
		{"title word web kept", "Charlottes Web 2006", false, "Charlottes Web 2006"},
		{"empty", "", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeRelease(tt.input, tt.strict)
			if got != tt.want {
				t.Errorf("NormalizeRelease(%q, %v) = %q, want %q", tt.input, tt.strict, got, tt.want)
			}
		})
	}
}

func TestNormalizeRelease_StrictStopwordAtStart(t *testing.T) {
	got := NormalizeRelease("1080p.Movie.Name", true)
	assert.Equal(t, "Movie Name", got)
}

var releaseTokens = []string{
	"The", "Matrix", "1999", "1080p", "BluRay", "x264", "GROUP", "S01E01", "[Group]", "(2010)",
	"WEB-DL", "FRENCH", "Amélie", "DTS-HD", "5.1", "-SPARKS", "[ABCD1234]", "Spider-Man", "3D",
	"Ocean's", "PROPER", "en", "HDTV", "Season", "2", "tt0133093", "{Tag}", "DDP5.1", "Web",
	"Opus", "Stereo", "AAC2.0", "it", "forced",
}

func TestNormalizeRelease_Idempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		strict := rapid.Bool().Draw(t, "strict")
		tokens := rapid.SliceOfN(rapid.SampledFrom(releaseTokens), 0, 10).Draw(t, "tokens")
		sep := rapid.SampledFrom([]string{".", " ", "_", "-"}).Draw(t, "sep")
		name := strings.Join(tokens, sep)

		once := NormalizeRelease(name, strict)
		twice := NormalizeRelease(once, strict)
		if once != twice {
			t.Fatalf("not idempotent for %q (strict=%v): %q -> %q", name, strict, once, twice)
		}
	})
}

func TestNormalizeRelease_IdempotentArbitrary(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		strict := rapid.Bool().Draw(t, "strict")
		name := rapid.String().Draw(t, "name")

		once := NormalizeRelease(name, strict)
		if twice := NormalizeRelease(once, strict); once != twice {
			t.Fatalf("not idempotent for %q (strict=%v): %q -> %q", name, strict, once, twice)
		}
	})
}

func TestSignificantChars(t *testing.T) {
	assert.Equal(t, 0, SignificantChars("1080p.x264"))
	assert.Equal(t, 2, SignificantChars("Up"))
	assert.Equal(t, 9, SignificantChars("The.Matrix.720p"))
}

func TestIsReleaseGroupToken(t *testing.T) {
	tests := []struct {
		seg  string
		want bool
	}{
		{"GROUP", true},
		{"SPARKS", true},
		{"x264", true},
		{"MTeam1", true},
		{"Man", false},
		{"Cristo", false},
		{"2010", false},
	}
	for _, tt := range tests {
		t.Run(tt.seg, func(t *testing.T) {
			if got := isReleaseGroupToken(tt.seg); got != tt.want {
				t.Errorf("isReleaseGroupToken(%q) = %v, want %v", tt.seg, got, tt.want)
			}
		})
	}
}
