// Package codec converts chart files between the native rox format and
// the community formats (osu!mania, StepMania, Quaver, FNF, midi). Every
// decoder produces a validated model.Chart; every encoder refuses to
// write an invalid one.
package codec

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/openrhythm/rox/codec/fnf"
	"github.com/openrhythm/rox/codec/jrox"
	"github.com/openrhythm/rox/codec/midi"
	"github.com/openrhythm/rox/codec/osu"
	"github.com/openrhythm/rox/codec/qua"
	"github.com/openrhythm/rox/codec/rox"
	"github.com/openrhythm/rox/codec/sm"
	"github.com/openrhythm/rox/codec/yrox"
	"github.com/openrhythm/rox/constants"
	"github.com/openrhythm/rox/model"
	"github.com/openrhythm/rox/util"
)

var (
	ErrUnknownFormat     = errors.New("unknown chart format")
	ErrEncodeUnsupported = errors.New("encoding is not supported for this format")
	ErrFileTooLarge      = errors.New("file exceeds the chart size limit")
)

// Codec reads and writes one chart file format.
type Codec interface {
	Name() string
	Decode(data []byte) (*model.Chart, error)
	Encode(chart *model.Chart) ([]byte, error)
}

// codec pairs a format's raw decode/encode functions with the size and
// validity checks every format shares. encode is nil for read-only
// formats.
type codec struct {
	name   string
	decode func(data []byte) (*model.Chart, error)
	encode func(chart *model.Chart) ([]byte, error)
}

func (c codec) Name() string {
	return c.name
}

func (c codec) Decode(data []byte) (*model.Chart, error) {
	if len(data) > constants.MaxFileSize {
		return nil, errors.Wrapf(ErrFileTooLarge, "%d bytes", len(data))
	}
	chart, err := c.decode(data)
	if err != nil {
		return nil, errors.Wrapf(err, "could not decode %v data", c.name)
	}
	if err := chart.Validate(); err != nil {
		return nil, errors.Wrapf(err, "decoded %v chart is invalid", c.name)
	}
	return chart, nil
}

func (c codec) Encode(chart *model.Chart) ([]byte, error) {
	if c.encode == nil {
		return nil, errors.Wrapf(ErrEncodeUnsupported, "%v", c.name)
	}
	if err := chart.Validate(); err != nil {
		return nil, errors.Wrap(err, "refusing to encode an invalid chart")
	}
	data, err := c.encode(chart)
	if err != nil {
		return nil, errors.Wrapf(err, "could not encode %v data", c.name)
	}
	return data, nil
}

// byExtension routes lowercased file extensions to their codec. FNF
// charts ship as bare .json files, so that extension belongs to fnf.
var byExtension = map[string]codec{
	"rox":  {name: "rox", decode: rox.Decode, encode: rox.Encode},
	"jrox": {name: "jrox", decode: jrox.Decode, encode: jrox.Encode},
	"yrox": {name: "yrox", decode: yrox.Decode, encode: yrox.Encode},
	"osu":  {name: "osu", decode: osu.Decode, encode: osu.Encode},
	"sm":   {name: "sm", decode: sm.Decode, encode: sm.Encode},
	"qua":  {name: "qua", decode: qua.Decode, encode: qua.Encode},
	"json": {name: "fnf", decode: fnf.Decode},
	"mid":  {name: "midi", decode: midi.Decode},
	"midi": {name: "midi", decode: midi.Decode},
}

// ForPath picks the codec for a file path by its extension.
func ForPath(path string) (Codec, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	c, ok := byExtension[ext]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownFormat, "extension %q", ext)
	}
	return c, nil
}

// Extensions lists every file extension with a registered codec, sorted.
func Extensions() []string {
	return util.GetKeys(byExtension)
}

func DecodeFile(path string) (*model.Chart, error) {
	c, err := ForPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "could not read %v", path)
	}
	return c.Decode(data)
}

func EncodeFile(chart *model.Chart, path string) error {
	c, err := ForPath(path)
	if err != nil {
		return err
	}
	data, err := c.Encode(chart)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "could not write %v", path)
	}
	return nil
}
