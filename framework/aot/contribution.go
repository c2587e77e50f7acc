package aot

// ── Contributions ─────────────────────────────────────────────────────────────

// Contribution is a deferred unit of ahead-of-time work produced by
// inspecting a populated source container. Applying it may stage generated
// files, add factories-index entries, and enqueue further contributions.
//
//	// Spring: BeanFactoryInitializationAotContribution
type Contribution interface {
	Apply(ctx *GenerationContext) error
}

// ContributionFunc adapts a plain function to the Contribution interface.
type ContributionFunc func(ctx *GenerationContext) error

// Apply implements Contribution.
func (f ContributionFunc) Apply(ctx *GenerationContext) error { return f(ctx) }

// ── Queue ─────────────────────────────────────────────────────────────────────

// Queue is the FIFO work queue of pending contributions. The pipeline drains
// it to exhaustion: applying a contribution may enqueue more, and the queue is
// re-checked after every application rather than traversed once.
type Queue struct {
	items []Contribution
}

// Enqueue appends contributions in order.
func (q *Queue) Enqueue(contributions ...Contribution) {
	q.items = append(q.items, contributions...)
}

// Len returns the number of pending contributions.
func (q *Queue) Len() int { return len(q.items) }

// dequeue removes and returns the first-enqueued contribution.
func (q *Queue) dequeue() (Contribution, bool) {
	if len(q.items) == 0 {
		return nil, false
	}
	head := q.items[0]
	q.items = q.items[1:]
	return head, true
}
