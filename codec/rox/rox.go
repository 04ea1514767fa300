// Package rox implements the native binary chart format: a gob payload
// with delta-encoded note times, zstd-compressed behind a four byte
// magic header.
package rox

import (
	"bytes"
	"encoding/gob"

	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"

	"github.com/openrhythm/rox/constants"
	"github.com/openrhythm/rox/model"
)

var (
	ErrBadMagic           = errors.New("missing rox magic header")
	ErrUnsupportedVersion = errors.New("unsupported rox chart version")
)

func Encode(chart *model.Chart) ([]byte, error) {
	payload := *chart
	payload.Notes = deltaEncode(chart.Notes)

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&payload); err != nil {
		return nil, errors.Wrap(err, "could not serialize chart payload")
	}

	enc, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(constants.ZstdLevel)))
	if err != nil {
		return nil, errors.Wrap(err, "could not create zstd encoder")
	}
	defer enc.Close()

	out := append([]byte{}, constants.RoxMagic[:]...)
	return enc.EncodeAll(buf.Bytes(), out), nil
}

func Decode(data []byte) (*model.Chart, error) {
	if len(data) < len(constants.RoxMagic) || !bytes.Equal(data[:len(constants.RoxMagic)], constants.RoxMagic[:]) {
		return nil, errors.Wrapf(ErrBadMagic, "%d byte file", len(data))
	}

	dec, err := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(constants.MaxFileSize))
	if err != nil {
		return nil, errors.Wrap(err, "could not create zstd decoder")
	}
	defer dec.Close()

	payload, err := dec.DecodeAll(data[len(constants.RoxMagic):], nil)
	if err != nil {
		return nil, errors.Wrap(err, "could not decompress chart payload")
	}

	var chart model.Chart
	if err := gob.NewDecoder(bytes.NewReader(payload)).Decode(&chart); err != nil {
		return nil, errors.Wrap(err, "could not deserialize chart payload")
	}
	if chart.Version > constants.RoxVersion {
		return nil, errors.Wrapf(ErrUnsupportedVersion, "version %d, newest known is %d",
			chart.Version, constants.RoxVersion)
	}

	chart.Notes = deltaDecode(chart.Notes)
	return &chart, nil
}

// deltaEncode rewrites note times as deltas from the previous note. The
// first note keeps its absolute time. Sorted charts produce small,
// repetitive deltas, which compress far better than absolute stamps.
func deltaEncode(notes []model.Note) []model.Note {
	out := make([]model.Note, len(notes))
	copy(out, notes)
	for i := len(out) - 1; i > 0; i-- {
		out[i].TimeUs -= out[i-1].TimeUs
	}
	return out
}

func deltaDecode(notes []model.Note) []model.Note {
	for i := 1; i < len(notes); i++ {
		notes[i].TimeUs += notes[i-1].TimeUs
	}
	return notes
}
