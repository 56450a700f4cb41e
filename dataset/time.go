/*
Copyright © 2021 the odg authors.
This file is part of odg.

odg is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

odg is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with odg.  If not, see <http://www.gnu.org/licenses/>.
*/

package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// timeLayouts are the timestamp formats recognized in tabular time
// columns and in CF reference dates, most specific first.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-1-2 15:4:5",
	"2006-01-02",
	"2006-1-2",
}

// ParseTime parses a timestamp in one of the recognized layouts.
// Timestamps without a zone are taken to be UTC.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("dataset: unrecognized timestamp %q", s)
}

// formatTime renders t the way time bounds are stored in catalogs.
func formatTime(t time.Time) string { return t.UTC().Format(time.RFC3339) }

// cfUnits maps CF time unit names to durations.
var cfUnits = map[string]time.Duration{
	"seconds": time.Second, "second": time.Second, "secs": time.Second, "sec": time.Second, "s": time.Second,
	"minutes": time.Minute, "minute": time.Minute, "mins": time.Minute, "min": time.Minute,
	"hours": time.Hour, "hour": time.Hour, "hrs": time.Hour, "hr": time.Hour, "h": time.Hour,
	"days": 24 * time.Hour, "day": 24 * time.Hour, "d": 24 * time.Hour,
}

// timeDecoder converts numeric time coordinate values into timestamps
// using a CF units string such as "days since 1970-01-01 00:00:00".
type timeDecoder struct {
	step time.Duration
	ref  time.Time
}

func newTimeDecoder(units string) (*timeDecoder, error) {
	parts := strings.SplitN(units, " since ", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("dataset: time units %q are not of the form '<unit> since <date>'", units)
	}
	step, ok := cfUnits[strings.ToLower(strings.TrimSpace(parts[0]))]
	if !ok {
		return nil, fmt.Errorf("dataset: unsupported time unit %q", parts[0])
	}
	ref, err := ParseTime(strings.TrimSuffix(strings.TrimSpace(parts[1]), " UTC"))
	if err != nil {
		return nil, err
	}
	return &timeDecoder{step: step, ref: ref}, nil
}

// maxOffset bounds decoded time offsets, in seconds, to keep the
// results within years 0 through 9999.
const maxOffset = 10000 * 366 * 24 * 3600

// decode returns the time v units after the reference date.
func (d *timeDecoder) decode(v float64) (time.Time, error) {
	sec, frac := math.Modf(v * d.step.Seconds())
	if math.IsNaN(sec) || math.Abs(sec) > maxOffset {
		return time.Time{}, fmt.Errorf("dataset: time value %g is out of range", v)
	}
	t := time.Unix(d.ref.Unix()+int64(sec), int64(d.ref.Nanosecond())+int64(math.Round(frac*1e9))).UTC()
	if t.Year() < 0 || t.Year() > 9999 {
		return time.Time{}, fmt.Errorf("dataset: time value %g is out of range", v)
	}
	return t, nil
}

// formatTimeValue renders a time coordinate value, decoding it when
// the coordinate carries usable CF units.
func formatTimeValue(v float64, dec *timeDecoder) (string, error) {
	if dec == nil {
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	}
	t, err := dec.decode(v)
	if err != nil {
		return "", err
	}
	return formatTime(t), nil
}
