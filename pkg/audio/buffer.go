package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Buffer holds decoded audio: 16-bit little-endian PCM samples at a known
// sample rate. Immutable once decoded; the player owns it during playback.
type Buffer struct {
	// PCM is raw 16-bit little-endian mono samples.
	PCM []byte
	// SampleRate in Hz.
	SampleRate int
}

// Duration returns the playback length in seconds.
func (b *Buffer) Duration() float64 {
	if b == nil || b.SampleRate <= 0 {
		return 0
	}
	samples := len(b.PCM) / 2
	return float64(samples) / float64(b.SampleRate)
}

// DecodePCM16 wraps raw 16-bit PCM bytes into a Buffer. Used for vendor
// responses that return headerless PCM at a fixed rate.
func DecodePCM16(raw []byte, sampleRate int) (*Buffer, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", sampleRate)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty audio payload")
	}
	// Drop a trailing odd byte rather than failing the whole decode.
	if len(raw)%2 != 0 {
		raw = raw[:len(raw)-1]
	}
	return &Buffer{PCM: raw, SampleRate: sampleRate}, nil
}

// DecodeWAV parses a RIFF/WAVE container carrying 16-bit PCM. This is the
// standard decode path for HTTP providers asked for wav output.
func DecodeWAV(data []byte) (*Buffer, error) {
	if len(data) < 12 || !bytes.Equal(data[0:4], []byte("RIFF")) || !bytes.Equal(data[8:12], []byte("WAVE")) {
		return nil, fmt.Errorf("not a RIFF/WAVE payload")
	}

	var (
		sampleRate    int
		bitsPerSample int
		channels      int
		pcm           []byte
	)

	// Walk the chunk list; only fmt and data matter here.
	offset := 12
	for offset+8 <= len(data) {
		chunkID := string(data[offset : offset+4])
		chunkSize := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		body := offset + 8
		if body+chunkSize > len(data) {
			chunkSize = len(data) - body
		}

		switch chunkID {
		case "fmt ":
			if chunkSize < 16 {
				return nil, fmt.Errorf("malformed fmt chunk")
			}
			format := binary.LittleEndian.Uint16(data[body : body+2])
			if format != 1 { // PCM
				return nil, fmt.Errorf("unsupported wav format %d (want PCM)", format)
			}
			channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			sampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			bitsPerSample = int(binary.LittleEndian.Uint16(data[body+14 : body+16]))
		case "data":
			pcm = data[body : body+chunkSize]
		}

		// Chunks are word-aligned.
		offset = body + chunkSize
		if chunkSize%2 != 0 {
			offset++
		}
	}

	if sampleRate == 0 || pcm == nil {
		return nil, fmt.Errorf("wav missing fmt or data chunk")
	}
	if bitsPerSample != 16 {
		return nil, fmt.Errorf("unsupported bit depth %d (want 16)", bitsPerSample)
	}

	if channels > 1 {
		pcm = downmixToMono(pcm, channels)
	}
	return &Buffer{PCM: pcm, SampleRate: sampleRate}, nil
}

// downmixToMono averages interleaved 16-bit channels into one.
func downmixToMono(pcm []byte, channels int) []byte {
	frameSize := channels * 2
	frames := len(pcm) / frameSize
	mono := make([]byte, frames*2)
	for f := 0; f < frames; f++ {
		var sum int
		for c := 0; c < channels; c++ {
			sample := int(int16(binary.LittleEndian.Uint16(pcm[f*frameSize+c*2:])))
			sum += sample
		}
		binary.LittleEndian.PutUint16(mono[f*2:], uint16(int16(sum/channels)))
	}
	return mono
}
