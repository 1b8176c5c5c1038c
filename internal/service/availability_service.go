package service

import (
	"sync"
	"time"

	"github.com/venuehub/specials-api/internal/models"
)

// IsActiveAt reports whether the special is running at the reference
// instant, evaluated against the venue-local calendar.
//
// The instant is converted to the venue's location, then both the local
// date and the previous date are considered as candidate occurrence dates:
// a window that crossed midnight can still be open on the following day.
// Each occurrence spans the half-open interval [start, end). A special
// whose end time equals its start time has a zero-length window and is
// never active. A missing end time leaves the occurrence open until the
// end of its calendar day.
func IsActiveAt(sp *models.Special, ref time.Time, loc *time.Location) bool {
	if loc == nil {
		loc = time.UTC
	}
	refDate := models.DateOf(ref.In(loc))

	if refDate.Before(sp.StartDate) {
		return false
	}
	if sp.ExpirationDate != nil && refDate.After(*sp.ExpirationDate) {
		return false
	}

	rule := sp.Rule()
	for _, d := range [2]models.Date{refDate, refDate.AddDays(-1)} {
		if d.Before(sp.StartDate) {
			continue
		}
		if sp.ExpirationDate != nil && d.After(*sp.ExpirationDate) {
			continue
		}
		if !rule.OccursOn(d, sp.StartDate) {
			continue
		}

		start := sp.StartTime.On(d, loc)
		var end time.Time
		switch {
		case sp.EndTime == nil:
			end = d.AddDays(1).Time(loc)
		case *sp.EndTime >= sp.StartTime:
			end = sp.EndTime.On(d, loc)
		default:
			// End before start: the window crosses midnight.
			end = sp.EndTime.On(d.AddDays(1), loc)
		}

		if !ref.Before(start) && ref.Before(end) {
			return true
		}
	}

	return false
}

// EvaluateBatch evaluates every candidate against one reference instant.
// Items are independent and evaluated concurrently; results are written to
// index-addressed slots so output order always equals input order.
func EvaluateBatch(items []models.SpecialSearchResult, ref time.Time) []models.SpecialStatus {
	results := make([]models.SpecialStatus, len(items))

	var wg sync.WaitGroup
	for i := range items {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			row := items[i]
			results[i] = models.SpecialStatus{
				SpecialSearchResult: row,
				IsCurrentlyRunning:  IsActiveAt(&row.Special, ref, locationFor(row.VenueTimezone)),
			}
		}(i)
	}
	wg.Wait()

	return results
}

var (
	locMu    sync.RWMutex
	locCache = map[string]*time.Location{}
)

// locationFor resolves an IANA timezone name, falling back to UTC. Lookups
// are cached; pages tend to repeat a handful of venue timezones.
func locationFor(name string) *time.Location {
	if name == "" {
		return time.UTC
	}

	locMu.RLock()
	loc, ok := locCache[name]
	locMu.RUnlock()
	if ok {
		return loc
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		loc = time.UTC
	}

	locMu.Lock()
	locCache[name] = loc
	locMu.Unlock()

	return loc
}
