package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseEpisode(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		strict  bool
		wantOK  bool
		season  int
		episode int
		airDate string
	}{
		{"sxxexx", "Breaking Bad S01E01", true, true, 1, 1, ""},
		{"sxxexx separated", "Show.s02.e10.720p", true, true, 2, 10, ""},
		{"nxnn", "Show 3x07", true, true, 3, 7, ""},
		{"air date", "The Daily Show 2019 03 14", true, true, 0, 0, "2019-03-14"},
		{"air date dmy", "News 14.03.2019", true, true, 0, 0, "2019-03-14"},
		{"invalid date", "Show 2019 13 40", true, false, 0, 0, ""},
		{"season only strict", "Dexter S01", true, false, 0, 0, ""},
		{"season only loose", "Dexter S01", false, true, 1, 0, ""},
		{"season word", "Dexter Season 4", false, true, 4, 0, ""},
		{"episode word", "Naruto Episode 12", false, true, 0, 12, ""},
		{"bare episode", "Show E05", false, true, 0, 5, ""},
		{"resolution is not nxnn", "Clip 1280x720", true, false, 0, 0, ""},
		{"movie", "The Matrix 1999", false, false, 0, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ep, ok := ParseEpisode(tt.input, tt.strict)
			if ok != tt.wantOK {
				t.Fatalf("ParseEpisode(%q, %v) ok = %v, want %v", tt.input, tt.strict, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			assert.Equal(t, tt.season, ep.Season)
			assert.Equal(t, tt.episode, ep.Episode)
			assert.Equal(t, tt.airDate, ep.AirDate)
		})
	}
}

func TestParseEpisode_EarliestMarkerWins(t *testing.T) {
	ep, ok := ParseEpisode("Show S02 Episode 5 S01E03", false)
	assert.True(t, ok)
	assert.Equal(t, 2, ep.Season)
	assert.Equal(t, 5, ep.Index)
}

func TestSeriesName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Breaking.Bad.S01E01.720p.BluRay.x264-GROUP.mkv", "Breaking Bad"},
		{"Dexter.S01.mkv", "Dexter"},
		{"The.Office.US.2x04.HDTV", "The Office US"},
		{"S01E01.mkv", ""},
		{"Up.S01E01.mkv", ""},
		{"The.Matrix.1999.mkv", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, SeriesName(tt.input))
		})
	}
}

func TestStripSeriesPrefix(t *testing.T) {
	assert.Equal(t, "S01E02", StripSeriesPrefix("Breaking Bad S01E02", "Breaking Bad"))
	assert.Equal(t, "S01E02", StripSeriesPrefix("breaking bad S01E02", "Breaking Bad"))
	assert.Equal(t, "01", StripSeriesPrefix("Amelie 01", "Amélie"))
	assert.Equal(t, "Better Call Saul S01", StripSeriesPrefix("Better Call Saul S01", "Breaking Bad"))
	assert.Equal(t, "Bad", StripSeriesPrefix("Bad", "Breaking Bad"))
}

func TestExtractYear(t *testing.T) {
	assert.Equal(t, 1999, ExtractYear("The Matrix 1999"))
	assert.Equal(t, 2009, ExtractYear("2012 2009"))
	assert.Equal(t, 0, ExtractYear("Alien"))
	assert.Equal(t, 0, ExtractYear("Clip 21999"))
}

func TestImdbID(t *testing.T) {
	assert.Equal(t, "tt0133093", ImdbID("The.Matrix.tt0133093.mkv"))
	assert.Equal(t, "", ImdbID("The.Matrix.tt01.mkv"))
}

func TestExtensions(t *testing.T) {
	assert.True(t, IsVideo("/a/b/Movie.MKV"))
	assert.True(t, IsAudio("/music/track.flac"))
	assert.False(t, IsAudio("/a/b/Movie.mkv"))
	assert.True(t, IsSubtitle("movie.en.srt"))
	assert.Equal(t, "Movie.2010", BaseName("/a/Movie.2010.mkv"))
	assert.Equal(t, "Movie.2010", BaseName("/a/Movie.2010.en.forced.srt"))
	assert.Equal(t, "Stephen.Kings.It", BaseName("/a/Stephen.Kings.It.mkv"))
}

func TestFold(t *testing.T) {
	assert.Equal(t, "amelie", Fold("Amélie"))
	assert.Equal(t, "strasse", Fold("STRASSE"))
	assert.True(t, SameTitle("The.Matrix.1080p", "the matrix"))
	assert.False(t, SameTitle("", ""))
}
