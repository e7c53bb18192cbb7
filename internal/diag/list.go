package diag

import (
	"github.com/edwingeng/deque"
)

// List collects diagnostics in report order.
//
// The tokenizer and the semantic checker report into a List and keep
// going; the caller drains it once the phase is over.
type List struct {
	q      deque.Deque
	errors int
}

// NewList returns an empty List.
func NewList() *List {
	return &List{q: deque.NewDeque()}
}

// Report appends d to the list.
func (l *List) Report(d *Diagnostic) {
	if d == nil {
		return
	}
	if d.IsError() {
		l.errors++
	}
	l.q.PushBack(d)
}

// Len returns the number of queued diagnostics.
func (l *List) Len() int { return l.q.Len() }

// HasErrors reports whether any queued diagnostic is fatal.
func (l *List) HasErrors() bool { return l.errors > 0 }

// Items returns the queued diagnostics in order without removing them.
func (l *List) Items() []*Diagnostic {
	n := l.q.Len()
	out := make([]*Diagnostic, 0, n)
	// Rotate once through the queue so the order is preserved.
	for i := 0; i < n; i++ {
		d := l.q.PopFront().(*Diagnostic)
		out = append(out, d)
		l.q.PushBack(d)
	}
	return out
}

// Drain removes and returns every queued diagnostic.
func (l *List) Drain() []*Diagnostic {
	out := make([]*Diagnostic, 0, l.q.Len())
	for !l.q.Empty() {
		out = append(out, l.q.PopFront().(*Diagnostic))
	}
	l.errors = 0
	return out
}

// Merge moves every diagnostic of other into l.
func (l *List) Merge(other *List) {
	if other == nil {
		return
	}
	for _, d := range other.Drain() {
		l.Report(d)
	}
}

// FirstError returns the first fatal diagnostic, or nil.
func (l *List) FirstError() *Diagnostic {
	for _, d := range l.Items() {
		if d.IsError() {
			return d
		}
	}
	return nil
}

// PromoteWarnings turns every queued warning into an error.
func (l *List) PromoteWarnings() {
	for _, d := range l.Items() {
		if d.Severity == SeverityWarning {
			d.Severity = SeverityError
			l.errors++
		}
	}
}
