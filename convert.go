package avi2smk

import (
	"errors"
	"fmt"
	"io"

	"github.com/floriandotorg/avi2smk/avi"
	"github.com/floriandotorg/avi2smk/smk2"
)

// Progress is called after each frame is converted, with the number of
// frames written so far. Callers that don't need progress reporting can
// pass nil.
type Progress func(frameIndex int)

// Convert reads every frame from src and writes it to dst, in order. It
// returns once src reports io.EOF; any other error from either side stops
// the conversion immediately.
func Convert(src FrameSource, dst FrameSink, progress Progress) error {
	for n := 0; ; n++ {
		frame, err := src.NextFrame()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("avi2smk: read frame %d: %w", n, err)
		}
		if err := dst.EncodeFrame(frame); err != nil {
			return fmt.Errorf("avi2smk: write frame %d: %w", n, err)
		}
		if progress != nil {
			progress(n + 1)
		}
	}
}

// ConvertAVIToSMK2 reads a RIFF-AVI stream from r and writes the
// equivalent SMK2 stream to w.
func ConvertAVIToSMK2(r io.Reader, w io.Writer, progress Progress) error {
	reader, err := avi.NewReader(r)
	if err != nil {
		return fmt.Errorf("avi2smk: open AVI source: %w", err)
	}

	encoder, err := smk2.NewEncoder(reader.Width(), reader.Height(), reader.FPS())
	if err != nil {
		return fmt.Errorf("avi2smk: create SMK2 encoder: %w", err)
	}

	if err := Convert(reader, encoder, progress); err != nil {
		return err
	}

	if err := encoder.Write(w); err != nil {
		return fmt.Errorf("avi2smk: write SMK2 stream: %w", err)
	}
	return nil
}

// ConvertSMK2ToAVI reads an SMK2 stream from r and writes the equivalent
// RIFF-AVI stream to w, which must support seeking so the writer can
// patch the final RIFF chunk size once every frame is known.
func ConvertSMK2ToAVI(r io.Reader, w io.WriteSeeker, progress Progress) error {
	decoder, err := smk2.NewDecoder(r)
	if err != nil {
		return fmt.Errorf("avi2smk: open SMK2 source: %w", err)
	}

	writer, err := avi.NewWriter(w, decoder.Width(), decoder.Height(), decoder.FPS(), decoder.NumFrames())
	if err != nil {
		return fmt.Errorf("avi2smk: create AVI writer: %w", err)
	}

	if err := Convert(decoder, writer, progress); err != nil {
		return err
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("avi2smk: finalize AVI stream: %w", err)
	}
	return nil
}
