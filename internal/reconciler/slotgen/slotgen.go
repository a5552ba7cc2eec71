// Package slotgen expands recurring availability rules and date
// overrides into concrete bookable slot start times.
package slotgen

import (
	"fmt"
	"sort"
	"time"

	"flpsaude/internal/availability/validator"
	"flpsaude/pkg/model"
)

// window is a half-open wall-clock interval within a single day,
// expressed in seconds since midnight.
type window struct {
	startSec int
	endSec   int
}

// Generate computes every slot start time for one professional over
// [from, from+horizonMonths], walking calendar days in the clinic
// location and returning starts in UTC, sorted and de-duplicated.
//
// Weekly rules open windows on matching weekdays. Opening overrides
// (is_available=true) add extra windows on their date. Blocking
// overrides (is_available=false) suppress any slot that overlaps
// them, regardless of where the slot came from. Trailing partial
// slots that do not fit the full duration are discarded.
//
// A malformed rule or override time aborts generation with an error
// so the caller can fail just this professional.
func Generate(
	rules []*model.RecurringRule,
	overrides []*model.AvailabilityOverride,
	from time.Time,
	horizonMonths int,
	slotDuration time.Duration,
	loc *time.Location,
) ([]time.Time, error) {
	durSec := int(slotDuration / time.Second)
	if durSec <= 0 {
		return nil, fmt.Errorf("slot duration must be positive, got %s", slotDuration)
	}

	rulesByDay, err := indexRules(rules)
	if err != nil {
		return nil, err
	}
	opening, blocking, err := indexOverrides(overrides)
	if err != nil {
		return nil, err
	}

	local := from.In(loc)
	year, month, day := local.Date()
	firstDay := time.Date(year, month, day, 0, 0, 0, 0, loc)
	lastDay := firstDay.AddDate(0, horizonMonths, 0)

	seen := make(map[int64]struct{})
	var starts []time.Time

	for d := firstDay; !d.After(lastDay); d = nextDay(d, loc) {
		dateKey := d.Format("2006-01-02")

		var windows []window
		windows = append(windows, rulesByDay[int(d.Weekday())]...)
		windows = append(windows, opening[dateKey]...)
		if len(windows) == 0 {
			continue
		}

		blocks := blocking[dateKey]

		for _, w := range windows {
			for s := w.startSec; s+durSec <= w.endSec; s += durSec {
				if overlapsAny(s, s+durSec, blocks) {
					continue
				}

				// time.Date normalizes the seconds offset against the
				// location, so DST transition days keep wall-clock
				// semantics.
				start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, s, 0, loc).UTC()
				key := start.Unix()
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}
				starts = append(starts, start)
			}
		}
	}

	sort.Slice(starts, func(i, j int) bool { return starts[i].Before(starts[j]) })
	return starts, nil
}

func indexRules(rules []*model.RecurringRule) (map[int][]window, error) {
	byDay := make(map[int][]window)
	for _, r := range rules {
		w, ok, err := parseWindow(r.StartTime, r.EndTime)
		if err != nil {
			return nil, fmt.Errorf("recurring rule %s: %w", r.ID, err)
		}
		if !ok {
			continue
		}
		byDay[r.DayOfWeek] = append(byDay[r.DayOfWeek], w)
	}
	return byDay, nil
}

func indexOverrides(overrides []*model.AvailabilityOverride) (opening, blocking map[string][]window, err error) {
	opening = make(map[string][]window)
	blocking = make(map[string][]window)
	for _, o := range overrides {
		if _, err := time.Parse("2006-01-02", o.OverrideDate); err != nil {
			return nil, nil, fmt.Errorf("override %s: invalid date %q", o.ID, o.OverrideDate)
		}
		w, ok, err := parseWindow(o.StartTime, o.EndTime)
		if err != nil {
			return nil, nil, fmt.Errorf("override %s: %w", o.ID, err)
		}
		if !ok {
			continue
		}
		if o.IsAvailable {
			opening[o.OverrideDate] = append(opening[o.OverrideDate], w)
		} else {
			blocking[o.OverrideDate] = append(blocking[o.OverrideDate], w)
		}
	}
	return opening, blocking, nil
}

// parseWindow reports ok=false for a degenerate window (end not after
// start), which simply yields no slots. Unparseable strings are an
// error.
func parseWindow(start, end string) (window, bool, error) {
	startSec, err := validator.ParseClockSeconds(start)
	if err != nil {
		return window{}, false, err
	}
	endSec, err := validator.ParseClockSeconds(end)
	if err != nil {
		return window{}, false, err
	}
	if endSec <= startSec {
		return window{}, false, nil
	}
	return window{startSec: startSec, endSec: endSec}, true, nil
}

func overlapsAny(startSec, endSec int, blocks []window) bool {
	for _, b := range blocks {
		if startSec < b.endSec && b.startSec < endSec {
			return true
		}
	}
	return false
}

// nextDay steps to the following calendar day through time.Date so a
// DST shift cannot land the cursor on 23:00 or 01:00.
func nextDay(d time.Time, loc *time.Location) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day()+1, 0, 0, 0, 0, loc)
}
