// Package analytics implements the pure aggregation engine behind the
// insight endpoints: grouping-key resolution, metric reduction, ranking and
// table shaping. Everything here is synchronous and side-effect free; record
// slices are passed in explicitly and never mutated.
package analytics

import (
	"strconv"
	"strings"

	"github.com/pulsefit/studio-insights-api/internal/models"
)

// GroupingMode selects how session records are partitioned into buckets.
type GroupingMode string

const (
	GroupByClass                GroupingMode = "class"
	GroupByTrainer              GroupingMode = "trainer"
	GroupByLocation             GroupingMode = "location"
	GroupByDay                  GroupingMode = "day"
	GroupByTime                 GroupingMode = "time"
	GroupByDate                 GroupingMode = "date"
	GroupByMonth                GroupingMode = "month"
	GroupByAMPM                 GroupingMode = "am_pm"
	GroupByTimeSlot             GroupingMode = "timeslot"
	GroupByTimeSlotLocation     GroupingMode = "timeslot_location"
	GroupByAMPMLocation         GroupingMode = "am_pm_location"
	GroupByClassTrainer         GroupingMode = "class_trainer"
	GroupByClassDay             GroupingMode = "class_day"
	GroupByClassTime            GroupingMode = "class_time"
	GroupByClassLocation        GroupingMode = "class_location"
	GroupByClassDayTime         GroupingMode = "class_day_time"
	GroupByTrainerLocation      GroupingMode = "trainer_location"
	GroupByTrainerDay           GroupingMode = "trainer_day"
	GroupByDayTime              GroupingMode = "day_time"
	GroupByTimeSlotDay          GroupingMode = "timeslot_day"
	GroupByMonthClass           GroupingMode = "month_class"
	GroupByMonthTrainer         GroupingMode = "month_trainer"
	GroupByLocationDay          GroupingMode = "location_day"
	GroupByClassDayTimeLocation GroupingMode = "class_day_time_location"
)

// Time slot labels. Hours below 5 fall through to Late Night, so the bucket
// wraps midnight.
const (
	SlotEarlyMorning = "Early Morning"
	SlotMorning      = "Morning"
	SlotAfternoon    = "Afternoon"
	SlotEvening      = "Evening"
	SlotLateNight    = "Late Night"
)

// UnknownPeriod labels records whose date could not be parsed.
const UnknownPeriod = "Unknown"

type keyBuilder func(r models.SessionRecord) (key, label string)

// Keys are raw "|" joins of the underlying fields. A field containing the
// delimiter would merge buckets; the legacy dashboards share this defect and
// downstream consumers rely on the unescaped key format.
var groupingRegistry = map[GroupingMode]keyBuilder{
	GroupByClass: func(r models.SessionRecord) (string, string) {
		return join(r.ClassName), r.ClassName
	},
	GroupByTrainer: func(r models.SessionRecord) (string, string) {
		return join(r.Trainer), r.Trainer
	},
	GroupByLocation: func(r models.SessionRecord) (string, string) {
		return join(r.Location), r.Location
	},
	GroupByDay: func(r models.SessionRecord) (string, string) {
		return join(r.DayOfWeek), r.DayOfWeek
	},
	GroupByTime: func(r models.SessionRecord) (string, string) {
		return join(r.TimeOfDay), r.TimeOfDay
	},
	GroupByDate: func(r models.SessionRecord) (string, string) {
		d := dateKey(r)
		return join(d), d
	},
	GroupByMonth: func(r models.SessionRecord) (string, string) {
		return join(monthKey(r)), monthLabel(r)
	},
	GroupByAMPM: func(r models.SessionRecord) (string, string) {
		p := AMPMOf(r.TimeOfDay)
		return join(p), p
	},
	GroupByTimeSlot: func(r models.SessionRecord) (string, string) {
		s := TimeSlotOf(r.TimeOfDay)
		return join(s), s
	},
	GroupByTimeSlotLocation: func(r models.SessionRecord) (string, string) {
		s := TimeSlotOf(r.TimeOfDay)
		return join(s, r.Location), s + " @ " + r.Location
	},
	GroupByAMPMLocation: func(r models.SessionRecord) (string, string) {
		p := AMPMOf(r.TimeOfDay)
		return join(p, r.Location), p + " @ " + r.Location
	},
	GroupByClassTrainer: func(r models.SessionRecord) (string, string) {
		return join(r.ClassName, r.Trainer), r.ClassName + " - " + r.Trainer
	},
	GroupByClassDay: func(r models.SessionRecord) (string, string) {
		return join(r.ClassName, r.DayOfWeek), r.ClassName + " - " + r.DayOfWeek
	},
	GroupByClassTime: func(r models.SessionRecord) (string, string) {
		return join(r.ClassName, r.TimeOfDay), r.ClassName + " @ " + r.TimeOfDay
	},
	GroupByClassLocation: func(r models.SessionRecord) (string, string) {
		return join(r.ClassName, r.Location), r.ClassName + " @ " + r.Location
	},
	GroupByClassDayTime: func(r models.SessionRecord) (string, string) {
		return join(r.ClassName, r.DayOfWeek, r.TimeOfDay),
			r.ClassName + " - " + r.DayOfWeek + " " + r.TimeOfDay
	},
	GroupByTrainerLocation: func(r models.SessionRecord) (string, string) {
		return join(r.Trainer, r.Location), r.Trainer + " @ " + r.Location
	},
	GroupByTrainerDay: func(r models.SessionRecord) (string, string) {
		return join(r.Trainer, r.DayOfWeek), r.Trainer + " - " + r.DayOfWeek
	},
	GroupByDayTime: func(r models.SessionRecord) (string, string) {
		return join(r.DayOfWeek, r.TimeOfDay), r.DayOfWeek + " " + r.TimeOfDay
	},
	GroupByTimeSlotDay: func(r models.SessionRecord) (string, string) {
		s := TimeSlotOf(r.TimeOfDay)
		return join(s, r.DayOfWeek), s + " - " + r.DayOfWeek
	},
	GroupByMonthClass: func(r models.SessionRecord) (string, string) {
		return join(monthKey(r), r.ClassName), monthLabel(r) + " - " + r.ClassName
	},
	GroupByMonthTrainer: func(r models.SessionRecord) (string, string) {
		return join(monthKey(r), r.Trainer), monthLabel(r) + " - " + r.Trainer
	},
	GroupByLocationDay: func(r models.SessionRecord) (string, string) {
		return join(r.Location, r.DayOfWeek), r.Location + " - " + r.DayOfWeek
	},
	GroupByClassDayTimeLocation: defaultKeyBuilder,
}

func defaultKeyBuilder(r models.SessionRecord) (string, string) {
	return join(r.ClassName, r.DayOfWeek, r.TimeOfDay, r.Location),
		r.ClassName + " - " + r.DayOfWeek + " " + r.TimeOfDay + " @ " + r.Location
}

func join(parts ...string) string {
	return strings.Join(parts, "|")
}

// KnownMode reports whether the mode is part of the closed set.
func KnownMode(mode GroupingMode) bool {
	_, ok := groupingRegistry[mode]
	return ok
}

// Modes returns the closed set of grouping modes.
func Modes() []GroupingMode {
	modes := make([]GroupingMode, 0, len(groupingRegistry))
	for mode := range groupingRegistry {
		modes = append(modes, mode)
	}
	return modes
}

// ResolveKey produces the stable bucket key and display label for a record
// under the given mode. Unknown modes fall back to the default composite
// class|day|time|location key.
func ResolveKey(r models.SessionRecord, mode GroupingMode) (key, label string) {
	builder, ok := groupingRegistry[mode]
	if !ok {
		builder = defaultKeyBuilder
	}
	return builder(r)
}

// Group is a bucket of records sharing a composite key. Created fresh on
// every aggregation pass; never mutated afterwards.
type Group struct {
	Key     string
	Label   string
	Records []models.SessionRecord
}

// GroupRecords partitions records into buckets under the given mode. Bucket
// order follows first appearance in the input, which keeps repeated passes
// over the same input deterministic.
func GroupRecords(records []models.SessionRecord, mode GroupingMode) []Group {
	index := make(map[string]int, len(records))
	groups := make([]Group, 0)
	for _, r := range records {
		key, label := ResolveKey(r, mode)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{Key: key, Label: label})
		}
		groups[i].Records = append(groups[i].Records, r)
	}
	return groups
}

// HourOf extracts the hour from a time-of-day string. Accepts "HH:MM" 24h
// and "H:MM AM/PM" forms; returns -1 when unparsable.
func HourOf(timeOfDay string) int {
	s := strings.TrimSpace(timeOfDay)
	if s == "" {
		return -1
	}
	upper := strings.ToUpper(s)
	meridiem := ""
	for _, suffix := range []string{"AM", "PM"} {
		if strings.HasSuffix(upper, suffix) {
			meridiem = suffix
			s = strings.TrimSpace(s[:len(s)-2])
			break
		}
	}
	head, _, _ := strings.Cut(s, ":")
	hour, err := strconv.Atoi(strings.TrimSpace(head))
	if err != nil || hour < 0 || hour > 23 {
		return -1
	}
	switch meridiem {
	case "PM":
		if hour < 12 {
			hour += 12
		}
	case "AM":
		if hour == 12 {
			hour = 0
		}
	}
	return hour
}

// AMPMOf buckets a time-of-day into "AM" (hour < 12) or "PM". Unparsable
// times land in PM via the else fallthrough.
func AMPMOf(timeOfDay string) string {
	hour := HourOf(timeOfDay)
	if hour >= 0 && hour < 12 {
		return "AM"
	}
	return "PM"
}

// TimeSlotOf buckets a time-of-day into a fixed slot. Anything outside the
// named ranges, including hours before 5 and unparsable times, is Late Night.
func TimeSlotOf(timeOfDay string) string {
	hour := HourOf(timeOfDay)
	switch {
	case hour >= 5 && hour < 9:
		return SlotEarlyMorning
	case hour >= 9 && hour < 12:
		return SlotMorning
	case hour >= 12 && hour < 17:
		return SlotAfternoon
	case hour >= 17 && hour < 21:
		return SlotEvening
	default:
		return SlotLateNight
	}
}

func dateKey(r models.SessionRecord) string {
	if r.Date.IsZero() {
		return UnknownPeriod
	}
	return r.Date.Format("2006-01-02")
}

func monthKey(r models.SessionRecord) string {
	if r.Date.IsZero() {
		return UnknownPeriod
	}
	return r.Date.Format("2006-01")
}

func monthLabel(r models.SessionRecord) string {
	if r.Date.IsZero() {
		return UnknownPeriod
	}
	return r.Date.Format("Jan 2006")
}
