// Package aggregate implements the streaming aggregation core: reducing
// one batch of raw log rows to a self-contained partial aggregate, and
// merging partial aggregates with a pure, associative, commutative fold.
package aggregate

import (
	"github.com/cecat/soundviz/internal/model"
	"github.com/cecat/soundviz/internal/soundlog"
)

// Partial holds the five counters for one batch of rows. Each counter is
// computed from that batch alone; cross-batch consistency is established
// only by Merge. A Partial is never mutated after Reduce returns it.
type Partial struct {
	// Classifications counts valid rows per class-path group.
	Classifications map[string]int
	// CameraEvents counts valid rows per camera.
	CameraEvents map[string]int
	// HourlyEvents counts event-opening rows (non-empty group_start)
	// per (hour, camera, group_start). Rows without a group_start never
	// contribute here, by design.
	HourlyEvents map[model.HourlyKey]int
	// GroupClasses counts valid rows per (group, class) pair.
	GroupClasses map[model.GroupClassKey]int
	// Span is the min/max timestamp range of the batch; zero when the
	// batch had no valid rows.
	Span model.TimeSpan
}

// NewPartial returns an empty, mergeable Partial.
func NewPartial() Partial {
	return Partial{
		Classifications: make(map[string]int),
		CameraEvents:    make(map[string]int),
		HourlyEvents:    make(map[model.HourlyKey]int),
		GroupClasses:    make(map[model.GroupClassKey]int),
	}
}

// ChunkResult is everything Reduce learned about one batch: its partial
// aggregate, its valid rows in input order, and how many rows failed
// validation. Index is the batch's position in the original file, used
// to re-assemble the validated row set when batches complete out of
// order.
type ChunkResult struct {
	Rows    []model.Record
	Partial Partial
	Index   int
	Invalid int
}

// Reduce validates every row in the batch and folds the valid ones into
// a fresh Partial. It closes over nothing and may run concurrently with
// other Reduce calls on disjoint batches.
func Reduce(index int, rows [][]string) ChunkResult {
	result := ChunkResult{
		Index:   index,
		Partial: NewPartial(),
	}

	for _, raw := range rows {
		rec, ok := soundlog.Normalize(raw)
		if !ok {
			result.Invalid++
			continue
		}
		result.Rows = append(result.Rows, rec)

		p := &result.Partial
		p.Classifications[rec.ClassGroup]++
		p.CameraEvents[rec.Camera]++
		p.GroupClasses[model.GroupClassKey{Group: rec.ClassGroup, Class: rec.ClassName}]++
		if rec.GroupStart != "" {
			p.HourlyEvents[model.HourlyKey{Hour: rec.Hour, Camera: rec.Camera, Group: rec.GroupStart}]++
		}
		p.Span = p.Span.Observe(rec.Timestamp)
	}
	return result
}

// Merge combines two partial aggregates into a new one, leaving both
// inputs untouched. Merge is associative and commutative, so a driver
// may fold results in completion order, dispatch order, or as a
// reduction tree and always land on the same totals.
func Merge(a, b Partial) Partial {
	out := NewPartial()
	for _, p := range []Partial{a, b} {
		for k, v := range p.Classifications {
			out.Classifications[k] += v
		}
		for k, v := range p.CameraEvents {
			out.CameraEvents[k] += v
		}
		for k, v := range p.HourlyEvents {
			out.HourlyEvents[k] += v
		}
		for k, v := range p.GroupClasses {
			out.GroupClasses[k] += v
		}
	}
	out.Span = a.Span.Union(b.Span)
	return out
}

// CameraGroupTotals sums HourlyEvents down to (camera, group_start)
// totals for the per-camera event mix pies.
func (p Partial) CameraGroupTotals() map[string]map[string]int {
	totals := make(map[string]map[string]int)
	for k, v := range p.HourlyEvents {
		byGroup, ok := totals[k.Camera]
		if !ok {
			byGroup = make(map[string]int)
			totals[k.Camera] = byGroup
		}
		byGroup[k.Group] += v
	}
	return totals
}

// ClassTotalsByGroup regroups GroupClasses into per-group class counts
// for the class mix pies.
func (p Partial) ClassTotalsByGroup() map[string]map[string]int {
	totals := make(map[string]map[string]int)
	for k, v := range p.GroupClasses {
		byClass, ok := totals[k.Group]
		if !ok {
			byClass = make(map[string]int)
			totals[k.Group] = byClass
		}
		byClass[k.Class] += v
	}
	return totals
}

// TotalDetections is the grand total of classified rows.
func (p Partial) TotalDetections() int {
	total := 0
	for _, v := range p.Classifications {
		total += v
	}
	return total
}
