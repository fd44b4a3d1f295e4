package speech_test

import (
	"context"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/animahq/anima/pkg/speech"
)

func TestMuxDispatch(t *testing.T) {
	ctx := context.Background()
	m := speech.NewMux()

	m.HandleFunc("fake", func(_ context.Context, audio speech.Audio) (string, error) {
		return "transcript:" + audio.MIMEType, nil
	})

	got, err := m.Transcribe(ctx, "fake", speech.Audio{Data: []byte{1}, MIMEType: "audio/wav"})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if got != "transcript:audio/wav" {
		t.Fatalf("Transcribe = %q", got)
	}
}

func TestMuxUnknownBackend(t *testing.T) {
	m := speech.NewMux()
	_, err := m.Transcribe(context.Background(), "nope", speech.Audio{})
	if !errors.Is(err, speech.ErrUnknownBackend) {
		t.Fatalf("Transcribe unknown backend: got %v, want ErrUnknownBackend", err)
	}
}

func TestNormalizePCMPassthroughRate(t *testing.T) {
	// 100 ms of silence already at the target rate.
	pcm := make([]byte, speech.TranscribeRate/10*2)

	audio, err := speech.NormalizePCM(pcm, speech.TranscribeRate)
	if err != nil {
		t.Fatalf("NormalizePCM: %v", err)
	}
	if audio.MIMEType != "audio/wav" {
		t.Fatalf("MIMEType = %q, want audio/wav", audio.MIMEType)
	}

	// RIFF header sanity.
	if string(audio.Data[:4]) != "RIFF" || string(audio.Data[8:12]) != "WAVE" {
		t.Fatalf("not a WAV container: % x", audio.Data[:12])
	}
	rate := binary.LittleEndian.Uint32(audio.Data[24:])
	if rate != speech.TranscribeRate {
		t.Fatalf("wav sample rate = %d, want %d", rate, speech.TranscribeRate)
	}
	dataLen := binary.LittleEndian.Uint32(audio.Data[40:])
	if int(dataLen) != len(pcm) {
		t.Fatalf("wav data length = %d, want %d", dataLen, len(pcm))
	}
}

func TestNormalizePCMResamples(t *testing.T) {
	// 100 ms of silence at 48 kHz should come out near 100 ms at 16 kHz.
	pcm := make([]byte, 48000/10*2)

	audio, err := speech.NormalizePCM(pcm, 48000)
	if err != nil {
		t.Fatalf("NormalizePCM: %v", err)
	}
	dataLen := int(binary.LittleEndian.Uint32(audio.Data[40:]))
	want := speech.TranscribeRate / 10 * 2
	// Resampler output length may differ by a few frames of latency.
	if dataLen < want/2 || dataLen > want*2 {
		t.Fatalf("resampled data length = %d, want about %d", dataLen, want)
	}
}

func TestNormalizePCMRejectsBadInput(t *testing.T) {
	if _, err := speech.NormalizePCM([]byte{1, 2, 3}, 16000); err == nil {
		t.Fatal("expected error for unaligned pcm")
	}
	if _, err := speech.NormalizePCM(make([]byte, 4), 0); err == nil {
		t.Fatal("expected error for zero sample rate")
	}
}
