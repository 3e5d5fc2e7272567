package stats

import (
	"sort"
	"time"

	"github.com/ukydev/motorcheck/internal/models"
)

// Bucket is one point of the spending chart.
type Bucket struct {
	Start       time.Time `json:"start"`
	FuelCost    float64   `json:"fuel"`
	ServiceCost float64   `json:"service"`
	Distance    int       `json:"distance"`
}

type entry struct {
	date     time.Time
	odometer int
	fuel     bool
	cost     float64
}

// Series splits r into buckets of r.Granularity ending at end and spreads
// spending and driven distance over them. Distance between two consecutive
// logs is credited to the bucket of the later one; backwards readings are
// ignored.
func Series(snap models.Snapshot, r Range, end time.Time) []Bucket {
	if !r.To.IsZero() {
		end = r.To
	}
	buckets := periods(r.From, end, r.Granularity)
	index := make(map[time.Time]int, len(buckets))
	for i, b := range buckets {
		index[b.Start] = i
	}

	entries := make([]entry, 0, len(snap.FuelLogs)+len(snap.ServiceLogs))
	for _, l := range snap.FuelLogs {
		if r.Contains(l.Date) {
			entries = append(entries, entry{date: l.Date, odometer: l.Odometer, fuel: true, cost: l.TotalCost})
		}
	}
	for _, l := range snap.ServiceLogs {
		if r.Contains(l.Date) {
			entries = append(entries, entry{date: l.Date, odometer: l.Odometer, cost: l.Cost})
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].date.Before(entries[j].date)
	})

	for i, e := range entries {
		bi, ok := index[truncate(e.date.In(r.From.Location()), r.Granularity)]
		if !ok {
			continue
		}
		b := &buckets[bi]
		if e.fuel {
			b.FuelCost += e.cost
		} else {
			b.ServiceCost += e.cost
		}
		if i > 0 {
			if d := e.odometer - entries[i-1].odometer; d > 0 {
				b.Distance += d
			}
		}
	}

	for i := range buckets {
		buckets[i].FuelCost = roundToTwo(buckets[i].FuelCost)
		buckets[i].ServiceCost = roundToTwo(buckets[i].ServiceCost)
	}
	return buckets
}

func periods(from, end time.Time, g Granularity) []Bucket {
	var out []Bucket
	last := truncate(end.In(from.Location()), g)
	for p := truncate(from, g); !p.After(last); p = next(p, g) {
		out = append(out, Bucket{Start: p})
	}
	return out
}

func truncate(t time.Time, g Granularity) time.Time {
	if g == Monthly {
		return startOfMonth(t)
	}
	return startOfDay(t)
}

func next(t time.Time, g Granularity) time.Time {
	if g == Monthly {
		return t.AddDate(0, 1, 0)
	}
	return t.AddDate(0, 0, 1)
}
