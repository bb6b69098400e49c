package feed

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	appLog "github.com/RubberMartyr/jvgh-kantinedienst/internal/log"
	"github.com/RubberMartyr/jvgh-kantinedienst/internal/model"
)

// maxOccurrencesPerFixture caps recurrence expansion so a broken rule cannot
// flood the planner.
const maxOccurrencesPerFixture = 500

// Expand converts parsed fixture records into concrete fixtures. Plain
// records map one-to-one; records carrying an RRULE are expanded into one
// fixture per occurrence inside [rangeStart, rangeEnd], honoring EXDATEs.
func Expand(parsed []ParsedFixture, rangeStart, rangeEnd time.Time) []model.Fixture {
	out := make([]model.Fixture, 0, len(parsed))

	for i, pf := range parsed {
		if pf.RawRRule == "" {
			out = append(out, makeFixture(pf, pf.Start, pf.End, i))
			continue
		}

		r, err := rrule.StrToRRule(pf.RawRRule)
		if err != nil {
			// A broken rule degrades to the base record, not to nothing.
			appLog.Error("feed rrule parse failed", err, "uid", pf.UID, "rrule", pf.RawRRule)
			out = append(out, makeFixture(pf, pf.Start, pf.End, i))
			continue
		}
		r.DTStart(pf.Start)

		var set rrule.Set
		set.RRule(r)
		for _, ex := range pf.ExDates {
			set.ExDate(ex.In(pf.Start.Location()))
		}

		duration := pf.End.Sub(pf.Start)
		occTimes := set.Between(rangeStart.In(pf.Start.Location()), rangeEnd.In(pf.Start.Location()), true)
		if len(occTimes) > maxOccurrencesPerFixture {
			appLog.Warn("feed rrule expansion truncated", "uid", pf.UID, "cap", maxOccurrencesPerFixture)
			occTimes = occTimes[:maxOccurrencesPerFixture]
		}

		for _, start := range occTimes {
			out = append(out, makeFixture(pf, start, start.Add(duration), i))
		}
	}

	return out
}

func makeFixture(pf ParsedFixture, start, end time.Time, idx int) model.Fixture {
	title := pf.Summary
	if title == "" {
		title = "Externe gebeurtenis"
	}
	return model.Fixture{
		ID:       fmt.Sprintf("ical-%d-%d", start.UnixMilli(), idx),
		Title:    title,
		Start:    start,
		End:      end,
		Resource: model.DefaultResource,
		Location: pf.Location,
	}
}
