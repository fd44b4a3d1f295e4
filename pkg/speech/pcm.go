package speech

import (
	"encoding/binary"
	"fmt"

	resampling "github.com/tphakala/go-audio-resampling"
)

// TranscribeRate is the sample rate expected by the transcription backends.
const TranscribeRate = 16000

// NormalizePCM converts raw 16-bit little-endian mono PCM at srcRate into a
// WAV clip at [TranscribeRate], resampling when the rates differ. The result
// is suitable for any Transcriber as "audio/wav".
func NormalizePCM(pcm []byte, srcRate int) (Audio, error) {
	if len(pcm)%2 != 0 {
		return Audio{}, fmt.Errorf("speech: pcm length %d is not sample-aligned", len(pcm))
	}
	if srcRate <= 0 {
		return Audio{}, fmt.Errorf("speech: invalid pcm sample rate %d", srcRate)
	}

	out := pcm
	if srcRate != TranscribeRate {
		resampled, err := resamplePCM(pcm, srcRate, TranscribeRate)
		if err != nil {
			return Audio{}, err
		}
		out = resampled
	}

	return Audio{Data: encodeWAV(out, TranscribeRate), MIMEType: "audio/wav"}, nil
}

// resamplePCM converts 16-bit mono PCM between sample rates.
func resamplePCM(pcm []byte, srcRate, dstRate int) ([]byte, error) {
	rs, err := resampling.New(&resampling.Config{
		InputRate:  float64(srcRate),
		OutputRate: float64(dstRate),
		Channels:   1,
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	})
	if err != nil {
		return nil, fmt.Errorf("speech: create resampler: %w", err)
	}

	// Normalize int16 samples to [-1, 1] floats.
	input := make([]float64, len(pcm)/2)
	for i := range input {
		input[i] = float64(int16(binary.LittleEndian.Uint16(pcm[i*2:]))) / 32768.0
	}

	output, err := rs.Process(input)
	if err != nil {
		return nil, fmt.Errorf("speech: resample: %w", err)
	}

	out := make([]byte, len(output)*2)
	for i, s := range output {
		switch {
		case s > 1.0:
			s = 1.0
		case s < -1.0:
			s = -1.0
		}
		binary.LittleEndian.PutUint16(out[i*2:], uint16(int16(s*32767.0)))
	}
	return out, nil
}

// encodeWAV wraps 16-bit mono PCM in a minimal RIFF/WAVE container.
func encodeWAV(pcm []byte, rate int) []byte {
	const headerLen = 44
	buf := make([]byte, headerLen+len(pcm))

	copy(buf[0:], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:], uint32(36+len(pcm)))
	copy(buf[8:], "WAVE")

	// fmt chunk: PCM, mono, 16 bits per sample, byte rate rate*2,
	// block align 2.
	copy(buf[12:], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:], 16)
	binary.LittleEndian.PutUint16(buf[20:], 1)
	binary.LittleEndian.PutUint16(buf[22:], 1)
	binary.LittleEndian.PutUint32(buf[24:], uint32(rate))
	binary.LittleEndian.PutUint32(buf[28:], uint32(rate*2))
	binary.LittleEndian.PutUint16(buf[32:], 2)
	binary.LittleEndian.PutUint16(buf[34:], 16)

	copy(buf[36:], "data")
	binary.LittleEndian.PutUint32(buf[40:], uint32(len(pcm)))
	copy(buf[headerLen:], pcm)
	return buf
}
