// Package jrox reads and writes the JSON rendition of a chart. It is
// the same shape as the native format without delta encoding or
// compression, which makes it handy for debugging and hand edits.
package jrox

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/openrhythm/rox/model"
)

func Decode(data []byte) (*model.Chart, error) {
	var chart model.Chart
	if err := json.Unmarshal(data, &chart); err != nil {
		return nil, errors.Wrap(err, "could not parse chart JSON")
	}
	return &chart, nil
}

func Encode(chart *model.Chart) ([]byte, error) {
	data, err := json.MarshalIndent(chart, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "could not marshal chart JSON")
	}
	return append(data, '\n'), nil
}
