// services/selector.go
package services

import (
	"sort"
	"time"
	"visitperk-backend/config"
	"visitperk-backend/models"
)

// DuePair is one reminder the dispatcher should attempt: a visit plus the offset
// whose window has opened and has not been sent yet.
type DuePair struct {
	Visit    models.Visit
	OffsetID string
}

// SelectDue filters one consistent read of candidate visits down to the due
// pairs. A pair is due when the visit is SCHEDULED, now falls inside
// [scheduledAt-offset, scheduledAt), and the offset is not already recorded on
// the visit. Output is ordered by scheduled time ascending, offsets in
// configured order, so batches are reproducible. Issues no writes.
func SelectDue(visits []models.Visit, now time.Time, offsets []config.Offset) []DuePair {
	sorted := make([]models.Visit, len(visits))
	copy(sorted, visits)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ScheduledAt.Before(sorted[j].ScheduledAt)
	})

	var pairs []DuePair
	for _, v := range sorted {
		if v.Status != models.VisitScheduled {
			continue
		}
		if !now.Before(v.ScheduledAt) {
			continue
		}
		for _, o := range offsets {
			if now.Before(v.ScheduledAt.Add(-o.Before)) {
				continue // window not open yet
			}
			if v.RemindersSent.Has(o.ID) {
				continue
			}
			pairs = append(pairs, DuePair{Visit: v, OffsetID: o.ID})
		}
	}
	return pairs
}

// groupByVisit splits due pairs into per-visit runs, preserving order. The
// dispatcher processes one visit's offsets sequentially so the version carried
// between conditional writes stays current and a later offset never loses its
// write to an earlier one from the same run.
func groupByVisit(pairs []DuePair) [][]DuePair {
	var groups [][]DuePair
	index := make(map[string]int)
	for _, p := range pairs {
		key := p.Visit.ID.String()
		if i, ok := index[key]; ok {
			groups[i] = append(groups[i], p)
			continue
		}
		index[key] = len(groups)
		groups = append(groups, []DuePair{p})
	}
	return groups
}
