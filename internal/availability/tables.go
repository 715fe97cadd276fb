package availability

import (
	"context"
	"sort"

	"github.com/wolfman30/venue-platform/internal/venue"
)

// assignTable is the last layer: the smallest table that fits the party and
// has no overlapping booking wins.
func assignTable(ctx context.Context, r *Resolver, ev *evaluation) (*Result, error) {
	table, ok, err := r.FindTable(ctx, ev.req)
	if err != nil {
		return nil, err
	}
	if !ok {
		return reject(LayerTables, NoTablesMessage), nil
	}
	return &Result{Approved: true, Table: table, Layer: LayerTables}, nil
}

// FindTable runs table assignment alone. Ties on capacity go to the lower
// table number so the same inputs always pick the same table.
func (r *Resolver) FindTable(ctx context.Context, req Request) (venue.Table, bool, error) {
	tables, err := r.store.Tables(ctx, req.PartySize)
	if err != nil {
		return venue.Table{}, false, err
	}
	sort.SliceStable(tables, func(i, j int) bool {
		if tables[i].Capacity != tables[j].Capacity {
			return tables[i].Capacity < tables[j].Capacity
		}
		return tables[i].Number < tables[j].Number
	})

	want := req.Window()
	span := searchSpan(want, r)
	for _, t := range tables {
		if t.Capacity < req.PartySize || req.ExcludeTables[t.ID] {
			continue
		}
		bookings, err := r.store.TableBookings(ctx, t.ID, span)
		if err != nil {
			return venue.Table{}, false, err
		}
		if !conflicts(want, bookings) {
			return t, true, nil
		}
	}
	return venue.Table{}, false, nil
}

// searchSpan covers the local calendar day of the request, stretched to
// include the request itself when it runs past midnight.
func searchSpan(want venue.Window, r *Resolver) venue.Window {
	span := venue.DayBounds(venue.DateOf(want.Start.In(r.loc)), r.loc)
	if want.Start.Before(span.Start) {
		span.Start = want.Start
	}
	if want.End.After(span.End) {
		span.End = want.End
	}
	return span
}

func conflicts(want venue.Window, bookings []venue.Window) bool {
	for _, b := range bookings {
		if b.Overlaps(want) {
			return true
		}
	}
	return false
}
