package datastructure

import (
	"math"

	"github.com/lintang-b-s/rutavial/pkg/util"
)

// Entry. heap node keyed by (priority, order). order breaks ties between equal priorities,
// the entry with the smaller order comes out first.
type Entry[T any] struct {
	degree   int
	isMarked bool

	next   *Entry[T]
	prev   *Entry[T]
	child  *Entry[T]
	parent *Entry[T]

	elem     T
	priority float64
	order    int32
}

func NewEntry[T any](elem T, priority float64, order int32) *Entry[T] {
	e := &Entry[T]{
		elem:     elem,
		priority: priority,
		order:    order,
	}
	e.next = e
	e.prev = e

	return e
}

func (e *Entry[T]) GetPriority() float64 {
	return e.priority
}

func (e *Entry[T]) GetOrder() int32 {
	return e.order
}

func (e *Entry[T]) GetElem() T {
	return e.elem
}

func (e *Entry[T]) less(other *Entry[T]) bool {
	if e.priority != other.priority {
		return e.priority < other.priority
	}
	return e.order < other.order
}

/*
FibonaccyHeap. min heap with O(1) amortized insert & decrease key, O(log n) amortized extract min.

amortized analysis ref: https://www.utsc.utoronto.ca/~atafliovich/cscb63/content/week10/clrs_fibonacci_chapter.pdf

potential function:
pot(Hi) = t(Hi) + 2m(Hi)

t(Hi) is the number of trees in root list after operation-i
m(Hi) is the number of marked nodes after operation-i
*/
type FibonaccyHeap[T any] struct {
	mMin  *Entry[T]
	mSize int
}

func NewFibonacciHeap[T any]() *FibonaccyHeap[T] {
	return &FibonaccyHeap[T]{}
}

func (f *FibonaccyHeap[T]) GetMin() *Entry[T] {
	return f.mMin
}

func (f *FibonaccyHeap[T]) GetMinRank() float64 {
	if f.mMin == nil {
		return math.MaxFloat64
	}
	return f.mMin.priority
}

func (f *FibonaccyHeap[T]) Size() int {
	return f.mSize
}

func (f *FibonaccyHeap[T]) IsEmpty() bool {
	return f.mSize == 0
}

/*
Insert. add a new tree of one node to the root list.

t(H_i) = t(H_{i-1}) + 1, m(H_i) = m(H_{i-1}), ci = 1
ci' = 1 + 1 = 2 -> O(1)
*/
func (f *FibonaccyHeap[T]) Insert(value T, priority float64, order int32) *Entry[T] {
	result := NewEntry(value, priority, order)

	f.mMin = f.mergeLists(f.mMin, result)
	f.mSize++

	return result
}

// mergeLists splices two circular lists and returns the smaller of the two heads.
func (f *FibonaccyHeap[T]) mergeLists(one *Entry[T], two *Entry[T]) *Entry[T] {
	if one == nil {
		return two
	}
	if two == nil {
		return one
	}

	/*
		one -> oneNext ...      two -> twoNext ...
		becomes
		one -> twoNext ... two -> oneNext ... one
	*/
	oneNext := one.next
	one.next = two.next
	one.next.prev = one
	two.next = oneNext
	two.next.prev = two

	if one.less(two) {
		return one
	}
	return two
}

/*
DecreaseKey. lower the priority of entry, the order stays the same.

with c cascading cuts:
t(H_i) = t(H_{i-1}) + c, m(H_i) <= m(H_{i-1}) - c + 2
ci' <= c + c + 2(2 - c) = 4 -> O(1)
*/
func (f *FibonaccyHeap[T]) DecreaseKey(entry *Entry[T], newPriority float64) {
	util.AssertPanic(newPriority <= entry.priority, "new priority must be less or equal than old priority")
	entry.priority = newPriority

	if entry.parent != nil && entry.less(entry.parent) {
		f.cutNode(entry)
	}

	if entry.less(f.mMin) {
		f.mMin = entry
	}
}

func (f *FibonaccyHeap[T]) cutNode(entry *Entry[T]) {
	entry.isMarked = false

	parent := entry.parent
	if parent == nil {
		return
	}

	entry.next.prev = entry.prev
	entry.prev.next = entry.next

	if parent.child == entry {
		if entry.next != entry {
			parent.child = entry.next
		} else {
			parent.child = nil
		}
	}

	parent.degree--

	entry.prev = entry
	entry.next = entry
	entry.parent = nil

	f.mMin = f.mergeLists(f.mMin, entry)

	// cascading cut
	if parent.isMarked {
		f.cutNode(parent)
	} else if parent.parent != nil {
		parent.isMarked = true
	}
}

/*
ExtractMin. remove the min entry, move its children to the root list and consolidate the roots
so that no two roots have the same degree.

consolidate touches at most D(n)+t(H) roots, at most D(n)+1 roots remain.
ci' = D(n)+t(H) + (D(n)+1) - t(H) = O(D(n)) = O(log n)
*/
func (f *FibonaccyHeap[T]) ExtractMin() *Entry[T] {
	util.AssertPanic(f.mMin != nil, "heap is empty")

	f.mSize--

	minElem := f.mMin

	if f.mMin.next == f.mMin {
		f.mMin = nil
	} else {
		f.mMin.prev.next = f.mMin.next
		f.mMin.next.prev = f.mMin.prev
		f.mMin = f.mMin.next
	}

	if minElem.child != nil {
		curr := minElem.child
		for {
			curr.parent = nil
			curr = curr.next
			if curr == minElem.child {
				break
			}
		}
	}

	f.mMin = f.mergeLists(f.mMin, minElem.child)

	minElem.next = minElem
	minElem.prev = minElem
	minElem.child = nil
	minElem.degree = 0

	if f.mMin == nil {
		return minElem
	}

	f.consolidate()

	return minElem
}

func (f *FibonaccyHeap[T]) consolidate() {
	// treeTable[d] holds the root of degree d seen so far
	treeTable := make([]*Entry[T], 0, 16)

	toVisit := make([]*Entry[T], 0)
	for curr := f.mMin; len(toVisit) == 0 || toVisit[0] != curr; curr = curr.next {
		toVisit = append(toVisit, curr)
	}

	for _, curr := range toVisit {
		for {
			for curr.degree >= len(treeTable) {
				treeTable = append(treeTable, nil)
			}

			if treeTable[curr.degree] == nil {
				treeTable[curr.degree] = curr
				break
			}

			other := treeTable[curr.degree]
			treeTable[curr.degree] = nil

			min, max := curr, other
			if other.less(curr) {
				min, max = other, curr
			}

			// link max below min
			max.next.prev = max.prev
			max.prev.next = max.next

			max.next = max
			max.prev = max
			min.child = f.mergeLists(min.child, max)
			max.parent = min
			max.isMarked = false
			min.degree++

			curr = min
		}

		if !f.mMin.less(curr) {
			f.mMin = curr
		}
	}
}
