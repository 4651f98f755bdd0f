package audio

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestEncodeWAVHeader(t *testing.T) {
	pcm := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	wav := EncodeWAV(pcm, 16000, 1)

	if len(wav) != 44+len(pcm) {
		t.Fatalf("Expected %d bytes, got %d", 44+len(pcm), len(wav))
	}
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		t.Error("Missing RIFF/WAVE markers")
	}
	if string(wav[12:16]) != "fmt " || string(wav[36:40]) != "data" {
		t.Error("Missing fmt/data chunks")
	}

	sampleRate := binary.LittleEndian.Uint32(wav[24:28])
	if sampleRate != 16000 {
		t.Errorf("Expected sample rate 16000, got %d", sampleRate)
	}
	channels := binary.LittleEndian.Uint16(wav[22:24])
	if channels != 1 {
		t.Errorf("Expected 1 channel, got %d", channels)
	}
	dataSize := binary.LittleEndian.Uint32(wav[40:44])
	if int(dataSize) != len(pcm) {
		t.Errorf("Expected data size %d, got %d", len(pcm), dataSize)
	}

	if !bytes.Equal(wav[44:], pcm) {
		t.Error("PCM bytes must pass through untouched")
	}
}

func TestEncodeWAVDefaults(t *testing.T) {
	wav := EncodeWAV([]byte{0, 0}, 0, 0)
	sampleRate := binary.LittleEndian.Uint32(wav[24:28])
	if sampleRate != 16000 {
		t.Errorf("Expected default sample rate 16000, got %d", sampleRate)
	}
}

func TestLevelSilence(t *testing.T) {
	if level := Level(make([]byte, 320)); level != 0 {
		t.Errorf("Expected zero level for silence, got %f", level)
	}
	if level := Level(nil); level != 0 {
		t.Errorf("Expected zero level for empty input, got %f", level)
	}
}

func TestLevelFullScale(t *testing.T) {
	// Alternating full-scale samples.
	pcm := make([]byte, 320)
	for i := 0; i+1 < len(pcm); i += 2 {
		binary.LittleEndian.PutUint16(pcm[i:], 0x7FFF)
	}
	level := Level(pcm)
	if level < 0.9 || level > 1.0 {
		t.Errorf("Expected near-1 level for full-scale signal, got %f", level)
	}
}

func TestLevelMonotonic(t *testing.T) {
	quiet := make([]byte, 320)
	loud := make([]byte, 320)
	for i := 0; i+1 < len(quiet); i += 2 {
		binary.LittleEndian.PutUint16(quiet[i:], 100)
		binary.LittleEndian.PutUint16(loud[i:], 10000)
	}
	if Level(quiet) >= Level(loud) {
		t.Error("Louder signal must report a higher level")
	}
}
