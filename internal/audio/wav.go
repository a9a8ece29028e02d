package audio

import (
	"encoding/binary"
	"fmt"
	"io"
)

// WriteWAV writes samples as a canonical 44-byte-header PCM WAV file.
func WriteWAV(w io.Writer, f Format, samples []int16) error {
	if !f.valid() {
		return fmt.Errorf("%w: bad format %s", ErrInvalidArgument, f)
	}
	dataLen := uint32(len(samples) * 2)
	blockAlign := uint16(f.Channels * BitDepth / 8)
	header := struct {
		Riff          [4]byte
		ChunkSize     uint32
		Wave          [4]byte
		Fmt           [4]byte
		FmtSize       uint32
		AudioFormat   uint16
		NumChannels   uint16
		SampleRate    uint32
		ByteRate      uint32
		BlockAlign    uint16
		BitsPerSample uint16
		Data          [4]byte
		DataSize      uint32
	}{
		Riff:          [4]byte{'R', 'I', 'F', 'F'},
		ChunkSize:     36 + dataLen,
		Wave:          [4]byte{'W', 'A', 'V', 'E'},
		Fmt:           [4]byte{'f', 'm', 't', ' '},
		FmtSize:       16,
		AudioFormat:   1,
		NumChannels:   uint16(f.Channels),
		SampleRate:    uint32(f.SampleRate),
		ByteRate:      uint32(f.SampleRate) * uint32(blockAlign),
		BlockAlign:    blockAlign,
		BitsPerSample: BitDepth,
		Data:          [4]byte{'d', 'a', 't', 'a'},
		DataSize:      dataLen,
	}
	if err := binary.Write(w, binary.LittleEndian, header); err != nil {
		return fmt.Errorf("failed to write wav header: %w", err)
	}
	if _, err := w.Write(SamplesToBytes(samples)); err != nil {
		return fmt.Errorf("failed to write wav data: %w", err)
	}
	return nil
}
