package seating

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/example/seating-service/internal/models"
)

type OptionType string

const (
	OptionEmpty       OptionType = "empty"
	OptionSwap        OptionType = "swap"
	OptionFutureSwap  OptionType = "future-swap"
	OptionCombination OptionType = "combination"
)

// Confidence scores per strategy. These are fixed heuristic weights, not a
// probability: they only need to order the strategies consistently.
const (
	ConfidenceEmpty       = 100
	ConfidenceCombination = 95
	ConfidenceSwap        = 90
	ConfidenceBumpFuture  = 75
	ConfidenceBumpPresent = 60
	ConfidenceMultiMove   = 30
)

// SwapOption is an ephemeral, ranked strategy for getting a booking onto a
// table set. Never persisted; recomputed per interaction.
type SwapOption struct {
	Type          OptionType       `json:"type"`
	Tables        []models.Table   `json:"tables"`
	TargetBooking *models.Booking  `json:"target_booking,omitempty"`
	Displaced     []models.Booking `json:"displaced,omitempty"`
	Warnings      []string         `json:"warnings"`
	Benefits      []string         `json:"benefits"`
	Confidence    int              `json:"confidence"`
	NeedsConfirm  bool             `json:"needs_confirm"`
}

// Key identifies an option for dedupe: type plus the sorted table-id set.
func (o SwapOption) Key() string {
	ids := make([]string, 0, len(o.Tables))
	for _, t := range o.Tables {
		ids = append(ids, t.ID.String())
	}
	sort.Strings(ids)
	return string(o.Type) + "|" + strings.Join(ids, ",")
}

// GenerateOptions produces ranked options for seating booking b on the
// given candidate table set. Zero candidates yields zero options.
func GenerateOptions(b models.Booking, candidates []models.Table, snap Snapshot) []SwapOption {
	if len(candidates) == 0 {
		return nil
	}
	idx := BuildStatusIndex(snap.Tables, snap.Bookings, snap.Now, snap.lookahead())
	opts := optionsForSet(b, candidates, idx)
	sortOptions(opts)
	return opts
}

// EnumerateOptions scans every suitable table and preapproved combination on
// the floor and returns the top-ranked options, capped at MaxOptions.
func EnumerateOptions(b models.Booking, snap Snapshot) []SwapOption {
	idx := BuildStatusIndex(snap.Tables, snap.Bookings, snap.Now, snap.lookahead())

	var all []SwapOption
	for _, t := range snap.Tables {
		if !t.IsActive || t.MaxCapacity < b.PartySize || t.MinCapacity > b.PartySize {
			continue
		}
		all = append(all, optionsForSet(b, []models.Table{t}, idx)...)
	}
	if b.PartySize > 4 {
		for _, combo := range snap.Combinations {
			if o, ok := combinationOption(b, combo, snap, idx); ok {
				all = append(all, o)
			}
		}
	}

	seen := make(map[string]bool, len(all))
	deduped := all[:0]
	for _, o := range all {
		k := o.Key()
		if seen[k] {
			continue
		}
		seen[k] = true
		deduped = append(deduped, o)
	}
	sortOptions(deduped)
	if len(deduped) > MaxOptions {
		deduped = deduped[:MaxOptions]
	}
	return deduped
}

// optionsForSet applies the strategy ladder to one concrete table set.
func optionsForSet(b models.Booking, set []models.Table, idx StatusIndex) []SwapOption {
	for _, t := range set {
		if !t.IsActive {
			// inactive tables are never assignable
			return nil
		}
	}

	ids := make([]uuid.UUID, 0, len(set))
	capacity := 0
	for _, t := range set {
		ids = append(ids, t.ID)
		capacity += t.MaxCapacity
	}

	occupants := idx.Occupants(ids, b.ID)
	futures := idx.Upcoming(ids, b.ID)

	var opts []SwapOption
	switch len(occupants) {
	case 0:
		o := SwapOption{Type: OptionEmpty, Tables: set}
		if len(futures) == 0 {
			o.Confidence = ConfidenceEmpty
			o.Benefits = append(o.Benefits, "free now, no upcoming reservations within the window")
		} else {
			o.Confidence = ConfidenceBumpFuture
			o.Displaced = futures
			for _, fb := range futures {
				o.Warnings = append(o.Warnings, bumpWarning(fb))
			}
			o.NeedsConfirm = true
		}
		opts = append(opts, o)

	case 1:
		occ := occupants[0]
		if len(b.Tables) > 0 && b.TableCapacity() >= occ.PartySize && tablesClear(b, occ, idx) {
			cp := occ
			o := SwapOption{
				Type:          OptionSwap,
				Tables:        set,
				TargetBooking: &cp,
				Confidence:    ConfidenceSwap,
				Warnings:      []string{fmt.Sprintf("swaps tables with %s (party of %d)", occ.GuestLabel(), occ.PartySize)},
				Benefits:      []string{"both parties keep a table"},
				NeedsConfirm:  true,
			}
			for _, fb := range futures {
				o.Warnings = append(o.Warnings, bumpWarning(fb))
			}
			opts = append(opts, o)
		}
		if occ.Status == models.StatusArrived {
			cp := occ
			o := SwapOption{
				Type:          OptionFutureSwap,
				Tables:        set,
				TargetBooking: &cp,
				Displaced:     []models.Booking{occ},
				Confidence:    ConfidenceBumpPresent,
				Warnings: []string{
					fmt.Sprintf("moves %s (party of %d) before they are seated", occ.GuestLabel(), occ.PartySize),
				},
				NeedsConfirm: true,
			}
			for _, fb := range futures {
				o.Warnings = append(o.Warnings, bumpWarning(fb))
			}
			opts = append(opts, o)
		}

	default:
		anyPastSeating := false
		for _, occ := range occupants {
			if occ.Status.PastSeating() {
				anyPastSeating = true
				break
			}
		}
		if !anyPastSeating {
			o := SwapOption{
				Type:       OptionFutureSwap,
				Tables:     set,
				Displaced:  occupants,
				Confidence: ConfidenceMultiMove,
				Warnings: []string{
					fmt.Sprintf("relocates %d parties currently at these tables", len(occupants)),
				},
				NeedsConfirm: true,
			}
			for _, occ := range occupants {
				o.Warnings = append(o.Warnings, fmt.Sprintf("moves %s (party of %d)", occ.GuestLabel(), occ.PartySize))
			}
			for _, fb := range futures {
				o.Warnings = append(o.Warnings, bumpWarning(fb))
			}
			opts = append(opts, o)
		}
	}

	// Under-capacity sets are still offered, never silently hidden, but
	// carry the warning and require confirmation before execution.
	if capacity < b.PartySize {
		for i := range opts {
			opts[i].Warnings = append(opts[i].Warnings,
				fmt.Sprintf("combined capacity %d is below party size %d", capacity, b.PartySize))
			opts[i].NeedsConfirm = true
		}
	} else {
		for i := range opts {
			opts[i].Benefits = append(opts[i].Benefits,
				fmt.Sprintf("capacity %d fits party of %d", capacity, b.PartySize))
		}
	}

	return opts
}

func combinationOption(b models.Booking, combo models.Combination, snap Snapshot, idx StatusIndex) (SwapOption, bool) {
	if combo.CombinedCapacity < b.PartySize {
		return SwapOption{}, false
	}
	ta, okA := snap.tableByID(combo.TableAID)
	tb, okB := snap.tableByID(combo.TableBID)
	if !okA || !okB || !ta.IsActive || !tb.IsActive {
		return SwapOption{}, false
	}
	ids := []uuid.UUID{ta.ID, tb.ID}
	if len(idx.Occupants(ids, b.ID)) > 0 {
		return SwapOption{}, false
	}

	o := SwapOption{
		Type:       OptionCombination,
		Tables:     []models.Table{ta, tb},
		Confidence: ConfidenceCombination,
		Benefits: []string{
			fmt.Sprintf("preapproved combination %s+%s seats %d", ta.TableNumber, tb.TableNumber, combo.CombinedCapacity),
		},
	}
	for _, fb := range idx.Upcoming(ids, b.ID) {
		o.Warnings = append(o.Warnings, bumpWarning(fb))
		o.Displaced = append(o.Displaced, fb)
		o.NeedsConfirm = true
	}
	return o, true
}

// tablesClear reports whether b's current tables can take the swap
// counterpart: no other present party and no upcoming reservation besides
// the two bookings involved.
func tablesClear(b, counterpart models.Booking, idx StatusIndex) bool {
	ids := b.TableIDs()
	for _, occ := range idx.Occupants(ids, b.ID) {
		if occ.ID != counterpart.ID {
			return false
		}
	}
	for _, fb := range idx.Upcoming(ids, b.ID) {
		if fb.ID != counterpart.ID {
			return false
		}
	}
	return true
}

func bumpWarning(fb models.Booking) string {
	return fmt.Sprintf("will bump %s, arriving at %s", fb.GuestLabel(), fb.BookingTime.Format("15:04"))
}

// sortOptions orders descending by confidence. Equal-confidence options get
// a stable secondary sort by type name, then table-id key, so the output
// order is deterministic rather than an artifact of iteration order.
func sortOptions(opts []SwapOption) {
	sort.SliceStable(opts, func(i, j int) bool {
		if opts[i].Confidence != opts[j].Confidence {
			return opts[i].Confidence > opts[j].Confidence
		}
		if opts[i].Type != opts[j].Type {
			return opts[i].Type < opts[j].Type
		}
		return opts[i].Key() < opts[j].Key()
	})
}
