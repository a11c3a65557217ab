// Package pager holds a full result list in memory and reveals it in
// fixed-size steps, plus the record -> display-card mapping used by the
// result pages.
package pager

// Paginator reveals a loaded result list one page at a time. The
// revealed count never exceeds the list length.
type Paginator[T any] struct {
	items    []T
	revealed int
}

func New[T any]() *Paginator[T] {
	return &Paginator[T]{}
}

func (p *Paginator[T]) Reset() {
	p.items = nil
	p.revealed = 0
}

// LoadAll installs a full result set and rewinds the reveal position.
func (p *Paginator[T]) LoadAll(items []T) {
	p.items = items
	p.revealed = 0
}

// RevealNext returns the next slice of up to pageSize items and advances
// the reveal position by however many were actually available.
func (p *Paginator[T]) RevealNext(pageSize int) []T {
	if pageSize <= 0 || p.revealed >= len(p.items) {
		return nil
	}
	end := p.revealed + pageSize
	if end > len(p.items) {
		end = len(p.items)
	}
	batch := p.items[p.revealed:end]
	p.revealed = end
	return batch
}

func (p *Paginator[T]) Revealed() int {
	return p.revealed
}

func (p *Paginator[T]) Total() int {
	return len(p.items)
}

func (p *Paginator[T]) Remaining() int {
	return len(p.items) - p.revealed
}

// HasMore reports whether the "show more" affordance should be visible.
func (p *Paginator[T]) HasMore() bool {
	return p.revealed < len(p.items)
}
