package main

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/TrevorS/clusterpoints"
	"github.com/cockroachdb/errors"
)

// layout holds the column positions of a point table. id and attr are -1
// when absent.
type layout struct {
	id, x, y, attr int
}

func findColumns(header []string, s *Settings) (layout, error) {
	l := layout{id: -1, x: -1, y: -1, attr: -1}
	for i, name := range header {
		name = strings.TrimSpace(name)
		switch {
		case strings.EqualFold(name, s.IDColumn):
			l.id = i
		case strings.EqualFold(name, s.XColumn):
			l.x = i
		case strings.EqualFold(name, s.YColumn):
			l.y = i
		}
		if s.Attribute != "" && strings.EqualFold(name, s.Attribute) {
			l.attr = i
		}
	}
	if l.x < 0 || l.y < 0 {
		return l, errors.Newf("input needs %q and %q columns, got %v", s.XColumn, s.YColumn, header)
	}
	if s.Attribute != "" && l.attr < 0 {
		return l, errors.Mark(errors.Newf("attribute column %q not found", s.Attribute), clusterpoints.ErrInvalidConfig)
	}
	return l, nil
}

// readObservations reads a point table with a header row. Without an id
// column the 1-based row number is used. An empty attribute cell means the
// value is missing.
func readObservations(r io.Reader, s *Settings) ([]clusterpoints.Observation, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read header")
	}
	cols, err := findColumns(header, s)
	if err != nil {
		return nil, err
	}

	var obs []clusterpoints.Observation
	for row := 1; ; row++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "row %d", row)
		}

		o := clusterpoints.Observation{ID: int64(row)}
		if cols.id >= 0 {
			if o.ID, err = strconv.ParseInt(strings.TrimSpace(rec[cols.id]), 10, 64); err != nil {
				return nil, errors.Wrapf(err, "row %d: invalid id", row)
			}
		}
		if o.X, err = strconv.ParseFloat(strings.TrimSpace(rec[cols.x]), 64); err != nil {
			return nil, errors.Wrapf(err, "row %d: invalid %s", row, s.XColumn)
		}
		if o.Y, err = strconv.ParseFloat(strings.TrimSpace(rec[cols.y]), 64); err != nil {
			return nil, errors.Wrapf(err, "row %d: invalid %s", row, s.YColumn)
		}
		if cols.attr >= 0 {
			if cell := strings.TrimSpace(rec[cols.attr]); cell != "" {
				v, err := strconv.ParseFloat(cell, 64)
				if err != nil {
					return nil, errors.Wrapf(clusterpoints.ErrNonNumericAttribute, "row %d: %s = %q", row, s.Attribute, cell)
				}
				o.Attr, o.HasAttr = v, true
			}
		}
		obs = append(obs, o)
	}
	return obs, nil
}

// writeLabels writes one id,cluster_id row per observation in input order.
// Points left out of the run get an empty cluster_id.
func writeLabels(w io.Writer, obs []clusterpoints.Observation, labels map[int64]int) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "cluster_id"}); err != nil {
		return err
	}
	for _, o := range obs {
		cluster := ""
		if c, ok := labels[o.ID]; ok {
			cluster = strconv.Itoa(c)
		}
		if err := cw.Write([]string{strconv.FormatInt(o.ID, 10), cluster}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
