// Package yrox reads and writes the YAML rendition of a chart.
package yrox

import (
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/openrhythm/rox/model"
)

func Decode(data []byte) (*model.Chart, error) {
	var chart model.Chart
	if err := yaml.Unmarshal(data, &chart); err != nil {
		return nil, errors.Wrap(err, "could not parse chart YAML")
	}
	return &chart, nil
}

func Encode(chart *model.Chart) ([]byte, error) {
	data, err := yaml.Marshal(chart)
	if err != nil {
		return nil, errors.Wrap(err, "could not marshal chart YAML")
	}
	return data, nil
}
