package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleProbeJSON = `{
	"streams": [
		{"index": 0, "codec_type": "video", "codec_name": "h264", "width": 3840, "height": 2160, "pix_fmt": "yuv420p", "r_frame_rate": "30000/1001", "avg_frame_rate": "30000/1001"},
		{"index": 1, "codec_type": "audio", "codec_name": "aac"}
	],
	"format": {"format_name": "mov,mp4,m4a,3gp,3g2,mj2", "duration": "127.440000", "size": "104857600", "bit_rate": "6291456"}
}`

func TestProbeResult_VideoStream(t *testing.T) {
	var result ProbeResult
	require.NoError(t, json.Unmarshal([]byte(sampleProbeJSON), &result))

	vs := result.VideoStream()
	require.NotNil(t, vs)
	assert.Equal(t, "h264", vs.CodecName)
	assert.Equal(t, 2160, vs.Height)
	assert.InDelta(t, 29.97, ParseFrameRate(vs.RFrameRate), 0.01)

	assert.InDelta(t, 127.44, result.DurationSeconds(), 0.001)
	assert.Equal(t, 2160, result.Height())
}

func TestProbeResult_AudioOnly(t *testing.T) {
	result := ProbeResult{
		Streams: []ProbeStream{{CodecType: "audio", CodecName: "aac"}},
	}
	assert.Nil(t, result.VideoStream())
	assert.Zero(t, result.Height())
	assert.Zero(t, result.DurationSeconds())
}

func TestProbeResult_StreamDurationFallback(t *testing.T) {
	result := ProbeResult{
		Format:  ProbeFormat{Duration: "N/A"},
		Streams: []ProbeStream{{CodecType: "video", Duration: "42.5"}},
	}
	assert.InDelta(t, 42.5, result.DurationSeconds(), 0.001)
}

func TestParseFrameRate(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"240/1", 240},
		{"30000/1001", 29.97},
		{"0/0", 0},
		{"", 0},
		{"garbage", 0},
		{"24/0", 0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, ParseFrameRate(tt.input), 0.01, "input %q", tt.input)
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"180.000000", 180},
		{"45.5", 45.5},
		{"N/A", 0},
		{"", 0},
		{"abc", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseDuration(tt.input), "input %q", tt.input)
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
		{int64(1.5 * 1024 * 1024 * 1024), "1.5 GB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatSize(tt.bytes))
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "0:00"},
		{-3, "0:00"},
		{45, "0:45"},
		{180, "3:00"},
		{3725, "1:02:05"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.seconds))
	}
}
