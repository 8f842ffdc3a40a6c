// Package ffmpeg builds ffmpeg filter graphs with a fluent API and compiles
// them to command lines.
//
//	args, err := ffmpeg.Input("in.mp4", nil).
//		HFlip().
//		Output("out.mp4", ffmpeg.Kwargs{"video_bitrate": "1M"}).
//		OverwriteOutput().
//		Args()
//
// Processable streams (Stream) and output streams (OutputStream) are distinct
// types, so filters cannot be applied to outputs and outputs cannot be fed to
// filters. Errors are sticky: the first failure is carried through the chain
// and reported by Err, Args or Compile.
package ffmpeg
