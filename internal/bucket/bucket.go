// Package bucket groups normalized messages under relative date labels.
package bucket

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/matheus3301/wppview/internal/message"
)

// ErrInvalidTimestamp is returned for a timestamp that is not a usable calendar date.
var ErrInvalidTimestamp = errors.New("invalid message timestamp")

const dateLayout = "02/01/2006"

// Labels holds the relative day names.
type Labels struct {
	Today     string
	Yesterday string
}

// DefaultLabels returns the English labels.
func DefaultLabels() Labels {
	return Labels{Today: "Today", Yesterday: "Yesterday"}
}

// Bucket is a run of messages sharing a label, in input order.
type Bucket struct {
	Label    string
	Messages []message.Message
}

// Len returns the number of messages in the bucket.
func (b Bucket) Len() int {
	return len(b.Messages)
}

// Bucketer labels messages relative to a caller-supplied "now".
// Both instants are compared as calendar dates in Location.
type Bucketer struct {
	Location *time.Location
	Labels   Labels
}

// New returns a Bucketer for loc with the given labels. A nil loc means UTC
// and empty labels fall back to DefaultLabels.
func New(loc *time.Location, labels Labels) Bucketer {
	if loc == nil {
		loc = time.UTC
	}
	b := Bucketer{Location: loc, Labels: labels}
	b.Labels = b.labels()
	return b
}

// Label returns the bucket label for a Unix millisecond timestamp.
func (b Bucketer) Label(now time.Time, ts int64) (string, error) {
	t, err := toTime(ts)
	if err != nil {
		return "", err
	}
	loc := b.location()
	local := t.In(loc)
	day := dateOf(local)
	today := dateOf(now.In(loc))

	labels := b.labels()
	switch day {
	case today:
		return labels.Today, nil
	case today.previous(loc):
		return labels.Yesterday, nil
	default:
		return local.Format(dateLayout), nil
	}
}

// Group partitions msgs into buckets in first-encountered order. It does not
// sort: pass chronologically ordered input to get chronological buckets.
// A message with an invalid timestamp aborts grouping.
func (b Bucketer) Group(now time.Time, msgs []message.Message) ([]Bucket, error) {
	var buckets []Bucket
	index := make(map[string]int)
	for _, m := range msgs {
		label, err := b.Label(now, m.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("message %q: %w", m.ID, err)
		}
		i, ok := index[label]
		if !ok {
			i = len(buckets)
			index[label] = i
			buckets = append(buckets, Bucket{Label: label})
		}
		buckets[i].Messages = append(buckets[i].Messages, m)
	}
	return buckets, nil
}

// SortChronological returns a copy of msgs ordered oldest first. Messages
// with equal timestamps keep their relative order.
func SortChronological(msgs []message.Message) []message.Message {
	sorted := make([]message.Message, len(msgs))
	copy(sorted, msgs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp < sorted[j].Timestamp
	})
	return sorted
}

func (b Bucketer) location() *time.Location {
	if b.Location == nil {
		return time.UTC
	}
	return b.Location
}

func (b Bucketer) labels() Labels {
	l := b.Labels
	def := DefaultLabels()
	if l.Today == "" {
		l.Today = def.Today
	}
	if l.Yesterday == "" {
		l.Yesterday = def.Yesterday
	}
	return l
}

func toTime(ts int64) (time.Time, error) {
	if ts <= 0 {
		return time.Time{}, fmt.Errorf("%w: %d", ErrInvalidTimestamp, ts)
	}
	t := time.UnixMilli(ts)
	if y := t.UTC().Year(); y > 9999 {
		return time.Time{}, fmt.Errorf("%w: %d", ErrInvalidTimestamp, ts)
	}
	return t, nil
}

// date is a calendar day. Comparing dates instead of midnights keeps
// zones whose midnight falls in a DST gap correct.
type date struct {
	year  int
	month time.Month
	day   int
}

func dateOf(t time.Time) date {
	y, m, d := t.Date()
	return date{y, m, d}
}

// previous returns the day before d. Noon is never inside a DST transition.
func (d date) previous(loc *time.Location) date {
	return dateOf(time.Date(d.year, d.month, d.day-1, 12, 0, 0, 0, loc))
}
