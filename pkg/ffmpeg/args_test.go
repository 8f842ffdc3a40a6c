package ffmpeg

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/mattjoyce/ffgraph/pkg/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgsSimple(t *testing.T) {
	args, err := Input("in.mp4", nil).Output("out.mp4", nil).Args()
	require.NoError(t, err)
	assert.Equal(t, []string{"-i", "in.mp4", "out.mp4"}, args)

	args, err = Input("in.mp4", nil).Output("out.mp4", nil).OverwriteOutput().Args()
	require.NoError(t, err)
	assert.Equal(t, []string{"-i", "in.mp4", "out.mp4", "-y"}, args)
}

func TestArgsSingleFilter(t *testing.T) {
	args, err := Input("in.mp4", nil).HFlip().Output("out.mp4", nil).OverwriteOutput().Args()
	require.NoError(t, err)
	assert.Equal(t, []string{
		"-i", "in.mp4",
		"-filter_complex", "[0]hflip[s0]",
		"-map", "[s0]", "out.mp4",
		"-y",
	}, args)
}

func TestArgsSplitTrimConcat(t *testing.T) {
	in := Input("in.mp4", nil)
	split := in.Split()
	a := split.Stream(0).Trim(Kwargs{"start_frame": 10, "end_frame": 20})
	b := split.Stream(1).Trim(Kwargs{"start_frame": 30, "end_frame": 40})
	out := a.Concat([]Stream{b}, nil).Output("out.mp4", nil)

	args, err := out.Compile("ffmpeg")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"ffmpeg",
		"-i", "in.mp4",
		"-filter_complex",
		"[0]split=2[s0][s1];" +
			"[s0]trim=end_frame=20:start_frame=10[s2];" +
			"[s1]trim=end_frame=40:start_frame=30[s3];" +
			"[s2][s3]concat=n=2[s4]",
		"-map", "[s4]", "out.mp4",
	}, args)
}

func TestArgsSelectorsAndMultipleMaps(t *testing.T) {
	in := Input("in.mp4", nil)
	args, err := in.Video().HFlip().Output("out.mp4", nil, in.Audio()).Args()
	require.NoError(t, err)
	assert.Equal(t, []string{
		"-i", "in.mp4",
		"-filter_complex", "[0:v]hflip[s0]",
		"-map", "[s0]", "-map", "0:a", "out.mp4",
	}, args)
}

func TestArgsOverlayNumbersInputs(t *testing.T) {
	main := Input("main.mp4", nil)
	logo := Input("logo.png", nil)
	args, err := main.Overlay(logo.HFlip(), nil).Output("out.mp4", nil).Args()
	require.NoError(t, err)
	assert.Equal(t, []string{
		"-i", "main.mp4",
		"-i", "logo.png",
		"-filter_complex", "[1]hflip[s0];[0][s0]overlay=eof_action=repeat[s1]",
		"-map", "[s1]", "out.mp4",
	}, args)
}

func TestArgsInputAndOutputKwargs(t *testing.T) {
	in := Input("in.raw", Kwargs{"f": "rawvideo", "video_size": []int{320, 240}, "pix_fmt": "rgb24"})
	out := in.Output("out.mp4", Kwargs{
		"video_bitrate": "1M",
		"audio_bitrate": "128k",
		"format":        "mp4",
		"r":             25,
		"an":            nil,
	})
	args, err := out.Args()
	require.NoError(t, err)
	assert.Equal(t, []string{
		"-f", "rawvideo", "-video_size", "320x240", "-pix_fmt", "rgb24", "-i", "in.raw",
		"-f", "mp4", "-b:v", "1M", "-b:a", "128k", "-an", "-r", "25", "out.mp4",
	}, args)
}

func TestFormatAlias(t *testing.T) {
	_, err := Input("in.mp4", Kwargs{"f": "mp4", "format": "mp4"}).HFlip().Output("out.mp4", nil).Args()
	assert.ErrorIs(t, err, ErrFormatAlias)

	out := Input("in.mp4", nil).Output("out.mkv", Kwargs{"f": "matroska"})
	require.NoError(t, out.Err())
	assert.Equal(t, "matroska", out.Node().Kwargs()["format"])
	_, ok := out.Node().Kwargs()["f"]
	assert.False(t, ok)
}

func TestArgsRequiresSplit(t *testing.T) {
	flipped := Input("in.mp4", nil).HFlip()
	merged := MergeOutputs(flipped.Output("a.mp4", nil), flipped.Output("b.mp4", nil))
	_, err := merged.Args()
	assert.ErrorIs(t, err, ErrNeedsSplit)
}

func TestArgsMergeAndGlobalArgs(t *testing.T) {
	in := Input("in.mp4", nil)
	out := in.Output("a.mp4", nil).MergeOutputs(in.Output("b.mp4", nil)).GlobalArgs("-hide_banner", "-nostats")
	args, err := Args([]OutputStream{out}, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"-i", "in.mp4", "a.mp4", "b.mp4", "-hide_banner", "-nostats", "-y"}, args)
}

func TestArgsUnmappedOutput(t *testing.T) {
	out := OutputFile("out.mp4", nil)
	require.NoError(t, out.Err())
	_, err := out.Args()
	assert.ErrorIs(t, err, ErrUnmappedOutput)

	in := Input("in.mp4", nil)
	args, err := out.Map(in.Video(), in.Audio()).Args()
	require.NoError(t, err)
	assert.Equal(t, []string{"-i", "in.mp4", "-map", "0:v", "-map", "0:a", "out.mp4"}, args)
}

func TestArgsSource(t *testing.T) {
	args, err := Source("testsrc", nil, Kwargs{"size": "320x240", "duration": 5}).Output("out.mp4", nil).Args()
	require.NoError(t, err)
	assert.Equal(t, []string{
		"-filter_complex", "testsrc=duration=5:size=320x240[s0]",
		"-map", "[s0]", "out.mp4",
	}, args)
}

func TestArgsRejectsProcessableStream(t *testing.T) {
	s, err := Input("in.mp4", nil).Graph()
	require.NoError(t, err)
	_, err = ArgsOf([]*graph.Stream{s}, false)
	assert.ErrorIs(t, err, graph.ErrTypeMismatch)
}

func TestArgsIsStableAcrossRebuilds(t *testing.T) {
	build := func() []string {
		in := Input("in.mp4", nil)
		args, err := in.Crop(10, 20, 100, 200, nil).DrawBox(1, 2, 3, 4, "red", 5, nil).Output("out.mp4", nil).Args()
		require.NoError(t, err)
		return args
	}
	first := build()
	assert.Equal(t, first, build())
	assert.Contains(t, first, "[0]crop=100:200:10:20[s0];[s0]drawbox=1:2:3:4:red:t=5[s1]")
}

func TestFilterComplex(t *testing.T) {
	out := Input("in.mp4", nil).VFlip().SetPTS("PTS-STARTPTS").Output("out.mp4", nil)
	s, err := out.Graph()
	require.NoError(t, err)
	fc, err := FilterComplex([]*graph.Stream{s})
	require.NoError(t, err)
	assert.Equal(t, "[0]vflip[s0];[s0]setpts=PTS-STARTPTS[s1]", fc)
}

func TestKwargsToArgs(t *testing.T) {
	got := KwargsToArgs(map[string]any{"b": []any{1, 2}, "a": "x", "c": nil})
	assert.Equal(t, []string{"-a", "x", "-b", "1", "-b", "2", "-c"}, got)
}

func TestArgsLongFilterChain(t *testing.T) {
	const n = 3000
	s := Input("in.mp4", nil)
	for i := 0; i < n; i++ {
		s = s.HFlip()
	}

	start := time.Now()
	args, err := s.Output("out.mp4", nil).Args()
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)

	require.Len(t, args, 7)
	assert.Equal(t, n, strings.Count(args[3], "hflip"))
	assert.Equal(t, []string{"-map", fmt.Sprintf("[s%d]", n-1), "out.mp4"}, args[4:])
}
