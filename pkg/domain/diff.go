package domain

import "reflect"

// SnapshotDiff represents the changes between two snapshots.
// It is designed to be serialized to JSON for partial updates on the client.
type SnapshotDiff struct {
	// Appended holds the messages added to the transcript, in order.
	Appended []Message `json:"appended,omitempty"`

	// Pending is set when the pending interaction changed in any field.
	Pending *PendingInteraction `json:"pending,omitempty"`

	// Request is set when the busy flag or the last error changed.
	Request *RequestState `json:"request,omitempty"`

	// Affordances is set when the offered actions changed.
	Affordances []Affordance `json:"affordances,omitempty"`
}

// Empty reports whether the diff carries no change.
func (d *SnapshotDiff) Empty() bool {
	return d == nil || (len(d.Appended) == 0 && d.Pending == nil && d.Request == nil && d.Affordances == nil)
}

// Diff calculates the difference between old and new.
// If old is nil, it returns a diff representing the entire new snapshot (initial load).
// It returns nil when nothing changed.
func Diff(old, new *Snapshot) *SnapshotDiff {
	if new == nil {
		return nil
	}
	diff := &SnapshotDiff{}

	start := 0
	if old != nil {
		start = len(old.Transcript)
	}
	if start < len(new.Transcript) {
		diff.Appended = append([]Message(nil), new.Transcript[start:]...)
	}

	if old == nil || !reflect.DeepEqual(old.Pending.Clone(), new.Pending.Clone()) {
		p := new.Pending.Clone()
		diff.Pending = &p
	}
	if old == nil || old.Request != new.Request {
		r := new.Request
		diff.Request = &r
	}
	if old == nil || !reflect.DeepEqual(old.Affordances, new.Affordances) {
		diff.Affordances = append([]Affordance{}, new.Affordances...)
	}

	if diff.Empty() {
		return nil
	}
	return diff
}
