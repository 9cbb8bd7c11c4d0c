package synth

import (
	"fmt"
	"io"
	"math"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const wavBitDepth = 16

// WriteWAV encodes b as a mono 16-bit PCM WAV stream.
func WriteWAV(w io.WriteSeeker, b Buffer) error {
	if b.SampleRate <= 0 {
		return fmt.Errorf("write wav %s: invalid sample rate %d", b.Voice, b.SampleRate)
	}
	data := make([]int, len(b.Samples))
	for i, s := range b.Samples {
		data[i] = int(math.Round(float64(clamp32(s)) * math.MaxInt16))
	}

	enc := wav.NewEncoder(w, b.SampleRate, wavBitDepth, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: b.SampleRate},
		Data:           data,
		SourceBitDepth: wavBitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("encode wav %s: %w", b.Voice, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("close wav %s: %w", b.Voice, err)
	}
	return nil
}

func clamp32(s float32) float32 {
	if s > 1 {
		return 1
	}
	if s < -1 {
		return -1
	}
	return s
}
