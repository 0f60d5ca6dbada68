package probe

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const animeEpisode = `{
  "streams": [
    {"index": 0, "codec_name": "hevc", "codec_type": "video"},
    {"index": 1, "codec_name": "aac", "codec_type": "audio", "tags": {"language": "JPN"}},
    {"index": 2, "codec_name": "aac", "codec_type": "audio", "tags": {"language": "eng"}},
    {"index": 3, "codec_name": "ass", "codec_type": "subtitle", "tags": {"language": "eng"}}
  ],
  "format": {"filename": "ep05.mkv", "duration": "1420.500000", "size": "367001600"}
}`

func TestParse(t *testing.T) {
	info, err := Parse([]byte(animeEpisode))
	require.NoError(t, err)

	assert.Equal(t, 1420500*time.Millisecond, info.Duration)
	assert.Equal(t, []string{"jpn", "eng"}, info.AudioLanguages)
	assert.Equal(t, []string{"ass"}, info.SubtitleCodecs)
	assert.True(t, info.HasAudioLanguage("ja", "jpn"))
	assert.True(t, info.HasSubtitleCodec("ASS", "ssa"))
	assert.False(t, info.HasSubtitleCodec("subrip"))
}

func TestParse_StreamDurationFallback(t *testing.T) {
	info, err := Parse([]byte(`{"streams":[{"codec_type":"video","duration":"60"}],"format":{"duration":"N/A"}}`))
	require.NoError(t, err)
	assert.Equal(t, time.Minute, info.Duration)
	assert.Empty(t, info.AudioLanguages)
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("not json"))
	assert.Error(t, err)
}

func TestProbe_MissingBinary(t *testing.T) {
	p := New("/nonexistent/ffprobe-mediamatch", time.Second)
	_, err := p.Probe(context.Background(), "/tmp/file.mkv")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestProbe_EmptyPath(t *testing.T) {
	_, err := New("", 0).Probe(context.Background(), "  ")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
}
