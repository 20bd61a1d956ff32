package story

import (
	"sort"
	"time"
)

// Entry is one journal entry. UnlockedAt is epoch milliseconds, zero while locked.
type Entry struct {
	ID           string
	Chapter      int
	Title        string
	Text         string
	Trigger      Condition
	Unlocked     bool
	Acknowledged bool
	UnlockedAt   int64
}

// CheckResult is what CheckForUpdates reports.
type CheckResult struct {
	// Queue holds every unlocked entry not yet dismissed, oldest first.
	Queue []Entry
	// NewlyUnlocked holds the entries unlocked by this call only.
	NewlyUnlocked []Entry
	TotalUnread   int
}

type AcknowledgeResult struct {
	OK              bool
	EntryID         string
	RemainingUnread int
}

// EntryState is the persisted part of an entry.
type EntryState struct {
	ID           string `json:"id"`
	Unlocked     bool   `json:"unlocked"`
	Acknowledged bool   `json:"acknowledged"`
	Timestamp    int64  `json:"timestamp,omitempty"`
}

// Progress is the serialized journal.
type Progress struct {
	EntryStates []EntryState `json:"entryStates"`
	Queue       []string     `json:"queue,omitempty"`
}

// Evaluator unlocks entries whose triggers hold and tracks what the player has read.
type Evaluator struct {
	entries map[string]*Entry
	order   []string
	queue   []string
	now     func() time.Time
}

type Option func(*Evaluator)

// WithNow replaces the clock used for unlock timestamps.
func WithNow(now func() time.Time) Option { return func(e *Evaluator) { e.now = now } }

// NewEvaluator copies entries in. Entries are scanned in the given order; a later
// duplicate id replaces the earlier one.
func NewEvaluator(entries []Entry, opts ...Option) *Evaluator {
	e := &Evaluator{
		entries: make(map[string]*Entry, len(entries)),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	for i := range entries {
		en := entries[i]
		if _, dup := e.entries[en.ID]; !dup {
			e.order = append(e.order, en.ID)
		}
		e.entries[en.ID] = &en
	}
	return e
}

func (e *Evaluator) isUnlocked(id string) bool {
	en, ok := e.entries[id]
	return ok && en.Unlocked
}

func (e *Evaluator) inQueue(id string) bool {
	for _, q := range e.queue {
		if q == id {
			return true
		}
	}
	return false
}

func (e *Evaluator) unlock(en *Entry) {
	en.Unlocked = true
	en.UnlockedAt = e.now().UnixMilli()
	if !e.inQueue(en.ID) {
		e.queue = append(e.queue, en.ID)
	}
}

// CheckForUpdates unlocks every locked entry whose trigger now holds. Entries
// unlocked earlier in the same scan satisfy storyUnlocked triggers later in it.
// The queue is left intact.
func (e *Evaluator) CheckForUpdates(st State) CheckResult {
	var res CheckResult
	for _, id := range e.order {
		en := e.entries[id]
		if en.Unlocked {
			continue
		}
		if evaluate(en.Trigger, st, e.isUnlocked) {
			e.unlock(en)
			res.NewlyUnlocked = append(res.NewlyUnlocked, *en)
		}
	}
	res.Queue = e.Queue()
	res.TotalUnread = e.UnreadCount()
	return res
}

// Unlock unlocks an entry out of band, which is the only way manual triggers fire.
// It returns false for unknown or already unlocked entries.
func (e *Evaluator) Unlock(id string) bool {
	en, ok := e.entries[id]
	if !ok || en.Unlocked {
		return false
	}
	e.unlock(en)
	return true
}

// Dismiss drops id from the queue. The entry stays unread.
func (e *Evaluator) Dismiss(id string) bool {
	for i, q := range e.queue {
		if q == id {
			e.queue = append(e.queue[:i], e.queue[i+1:]...)
			return true
		}
	}
	return false
}

// Acknowledge marks an unlocked entry as read. It leaves the queue alone.
func (e *Evaluator) Acknowledge(id string) AcknowledgeResult {
	en, ok := e.entries[id]
	if !ok || !en.Unlocked {
		return AcknowledgeResult{EntryID: id, RemainingUnread: e.UnreadCount()}
	}
	en.Acknowledged = true
	return AcknowledgeResult{OK: true, EntryID: id, RemainingUnread: e.UnreadCount()}
}

// Queue returns the undismissed entries, oldest first.
func (e *Evaluator) Queue() []Entry {
	out := make([]Entry, 0, len(e.queue))
	for _, id := range e.queue {
		out = append(out, *e.entries[id])
	}
	return out
}

func (e *Evaluator) UnreadCount() int {
	n := 0
	for _, en := range e.entries {
		if en.Unlocked && !en.Acknowledged {
			n++
		}
	}
	return n
}

func (e *Evaluator) Entry(id string) (Entry, bool) {
	en, ok := e.entries[id]
	if !ok {
		return Entry{}, false
	}
	return *en, true
}

// Entries returns every entry in scan order.
func (e *Evaluator) Entries() []Entry {
	out := make([]Entry, 0, len(e.order))
	for _, id := range e.order {
		out = append(out, *e.entries[id])
	}
	return out
}

// ChapterEntries returns a chapter's entries sorted by id.
func (e *Evaluator) ChapterEntries(chapter int) []Entry {
	var out []Entry
	for _, id := range e.order {
		if en := e.entries[id]; en.Chapter == chapter {
			out = append(out, *en)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// UnlockedChapters lists chapters with at least one unlocked entry, ascending.
func (e *Evaluator) UnlockedChapters() []int {
	seen := make(map[int]bool)
	var out []int
	for _, en := range e.entries {
		if en.Unlocked && !seen[en.Chapter] {
			seen[en.Chapter] = true
			out = append(out, en.Chapter)
		}
	}
	sort.Ints(out)
	return out
}

func (e *Evaluator) Serialize() Progress {
	p := Progress{EntryStates: make([]EntryState, 0, len(e.order))}
	for _, id := range e.order {
		en := e.entries[id]
		p.EntryStates = append(p.EntryStates, EntryState{
			ID:           en.ID,
			Unlocked:     en.Unlocked,
			Acknowledged: en.Acknowledged,
			Timestamp:    en.UnlockedAt,
		})
	}
	if len(e.queue) > 0 {
		p.Queue = append([]string(nil), e.queue...)
	}
	return p
}

// LoadState overlays saved progress. Unknown ids are ignored. A saved acknowledgement
// of a locked entry is dropped, as are queue ids that are unknown, locked or repeated.
func (e *Evaluator) LoadState(p Progress) {
	for _, s := range p.EntryStates {
		en, ok := e.entries[s.ID]
		if !ok {
			continue
		}
		en.Unlocked = s.Unlocked
		en.Acknowledged = s.Unlocked && s.Acknowledged
		en.UnlockedAt = 0
		if s.Unlocked {
			en.UnlockedAt = s.Timestamp
		}
	}
	e.queue = e.queue[:0]
	for _, id := range p.Queue {
		if e.isUnlocked(id) && !e.inQueue(id) {
			e.queue = append(e.queue, id)
		}
	}
}

// Reset locks every entry and empties the queue.
func (e *Evaluator) Reset() {
	for _, en := range e.entries {
		en.Unlocked = false
		en.Acknowledged = false
		en.UnlockedAt = 0
	}
	e.queue = nil
}
