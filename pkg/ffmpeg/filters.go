package ffmpeg

import (
	"fmt"
	"maps"

	"github.com/mattjoyce/ffgraph/internal/escape"
	"github.com/mattjoyce/ffgraph/pkg/graph"
)

// Filter applies a single-output filter to s.
//
//	ffmpeg.Input("in.mp4", nil).Filter("scale", []any{320, -1}, nil)
func (s Stream) Filter(name string, args []any, kw Kwargs) Stream {
	return s.FilterMultiOutput(name, args, kw).Stream0()
}

// FilterMultiOutput applies a filter whose outputs are picked by label:
//
//	split := in.FilterMultiOutput("split", nil, nil)
//	left, right := split.Stream(0), split.Stream(1)
func (s Stream) FilterMultiOutput(name string, args []any, kw Kwargs) Node {
	if s.err != nil {
		return Node{err: s.err}
	}
	n, err := graph.NewFilterNode(s.s, name, 1, params(args, kw))
	return Node{n: n, err: err}
}

// Stream0 returns the unlabeled outgoing stream.
func (n Node) Stream0() Stream {
	if n.err != nil {
		return Stream{err: n.err}
	}
	return Stream{s: n.n.Default()}
}

// Split duplicates a video stream. The output count is derived from how many
// of its outputs are used.
func (s Stream) Split() Node { return s.FilterMultiOutput("split", nil, nil) }

// ASplit duplicates an audio stream.
func (s Stream) ASplit() Node { return s.FilterMultiOutput("asplit", nil, nil) }

// HFlip flips the input video horizontally.
func (s Stream) HFlip() Stream { return s.Filter("hflip", nil, nil) }

// VFlip flips the input video vertically.
func (s Stream) VFlip() Stream { return s.Filter("vflip", nil, nil) }

// Crop crops the input video to width x height at x, y.
func (s Stream) Crop(x, y, width, height any, kw Kwargs) Stream {
	return s.Filter("crop", []any{width, height, x, y}, kw)
}

// Trim keeps one continuous subpart of the input, e.g. Kwargs{"start_frame": 10}.
func (s Stream) Trim(kw Kwargs) Stream { return s.Filter("trim", nil, kw) }

// SetPTS changes the presentation timestamp of input frames.
func (s Stream) SetPTS(expr string) Stream { return s.Filter("setpts", []any{expr}, nil) }

// DrawBox draws a colored box. A thickness of nil leaves the filter default.
func (s Stream) DrawBox(x, y, width, height any, color string, thickness any, kw Kwargs) Stream {
	kwargs := maps.Clone(kw)
	if kwargs == nil {
		kwargs = Kwargs{}
	}
	if thickness != nil {
		kwargs["t"] = thickness
	}
	return s.Filter("drawbox", []any{x, y, width, height, color}, kwargs)
}

// DrawText draws text. Quotes, backslashes and percent signs in text are
// escaped unless kw sets "escape_text" to false. x and y are only set when
// non-zero.
func (s Stream) DrawText(text string, x, y int, kw Kwargs) Stream {
	kwargs := Kwargs{}
	escapeText := true
	for k, v := range kw {
		if k == "escape_text" {
			if b, ok := v.(bool); ok {
				escapeText = b
			}
			continue
		}
		kwargs[k] = v
	}
	if text != "" {
		if escapeText {
			text = escape.Chars(text, escape.TextChars)
		}
		kwargs["text"] = text
	}
	if x != 0 {
		kwargs["x"] = x
	}
	if y != 0 {
		kwargs["y"] = y
	}
	return s.Filter("drawtext", nil, kwargs)
}

// Hue modifies the hue and saturation of the input.
func (s Stream) Hue(kw Kwargs) Stream { return s.Filter("hue", nil, kw) }

// Overlay puts overlay on top of s. eof_action defaults to "repeat".
func (s Stream) Overlay(overlay Stream, kw Kwargs) Stream {
	in, err := graphStreams([]Stream{s, overlay})
	if err != nil {
		return Stream{err: err}
	}
	kwargs := map[string]any{"eof_action": "repeat"}
	maps.Copy(kwargs, kw)
	return streamOf(graph.NewFilterNode(in, "overlay", 2, graph.Params{Kwargs: kwargs}))
}

// Concat joins s and more, one segment after another. Kwargs "v" and "a" give
// the number of video and audio streams per segment; "n" is derived.
func (s Stream) Concat(more []Stream, kw Kwargs) Stream {
	in, err := graphStreams(append([]Stream{s}, more...))
	if err != nil {
		return Stream{err: err}
	}
	n, err := newConcat(in, kw)
	return streamOf(n, err)
}

func newConcat(in []*graph.Stream, kw Kwargs) (*graph.Node, error) {
	video, audio := 1, 0
	if v, ok := kw["v"]; ok {
		video = toInt(v)
	}
	if a, ok := kw["a"]; ok {
		audio = toInt(a)
	}
	per := video + audio
	if per <= 0 || len(in)%per != 0 {
		return nil, &graph.InvalidUsageError{Msg: fmt.Sprintf(
			"expected concat input streams to have length multiple of %d (v=%d, a=%d); got %d",
			per, video, audio, len(in))}
	}
	kwargs := make(map[string]any, len(kw)+1)
	maps.Copy(kwargs, kw)
	kwargs["n"] = len(in) / per
	return graph.NewFilterNode(in, "concat", graph.Unbounded, graph.Params{Kwargs: kwargs})
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		var i int
		if _, err := fmt.Sscan(fmt.Sprint(v), &i); err != nil {
			return -1
		}
		return i
	}
}
