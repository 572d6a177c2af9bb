package session

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/multierr"

	"go.viam.com/tdcr/motionplan"
	"go.viam.com/tdcr/utils"
)

// ErrEmptyPath is returned when resuming from a path file with no rows.
var ErrEmptyPath = errors.New("path file has no steps")

// minimum columns in a path row: length, tendon and one curvature.
const minPathColumns = 3

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 12, 64)
}

// MarshalPath encodes path as comma separated rows of length, tendon and curvature, without a
// header.
func MarshalPath(path motionplan.Path) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	for _, step := range path {
		row := append(
			[]string{formatFloat(step.Length), formatFloat(step.Tendon)},
			lo.Map(step.Curvature, func(k float64, _ int) string { return formatFloat(k) })...,
		)
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalPath decodes rows written by MarshalPath. Every row must have the same width.
func UnmarshalPath(r io.Reader) (motionplan.Path, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 0
	cr.TrimLeadingSpace = true

	var path motionplan.Path
	for line := 1; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return path, nil
		}
		if err != nil {
			return nil, errors.Wrapf(err, "row %d", line)
		}
		if len(record) < minPathColumns {
			return nil, errors.Errorf("row %d has %d columns, need at least %d", line, len(record), minPathColumns)
		}
		values := make([]float64, len(record))
		for i, field := range record {
			if values[i], err = strconv.ParseFloat(field, 64); err != nil {
				return nil, errors.Wrapf(err, "row %d column %d", line, i)
			}
		}
		path = append(path, motionplan.PathStep{
			Length:    values[0],
			Tendon:    values[1],
			Curvature: values[2:],
		})
	}
}

// SavePath writes path to file, replacing it atomically.
func SavePath(file string, path motionplan.Path) error {
	data, err := MarshalPath(path)
	if err != nil {
		return errors.Wrap(err, "cannot encode path")
	}
	return utils.WriteFileAtomic(file, data, 0o644)
}

// LoadPath reads a path written by SavePath.
func LoadPath(file string) (_ motionplan.Path, err error) {
	//nolint:gosec
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()
	path, err := UnmarshalPath(f)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read path %q", file)
	}
	return path, nil
}
