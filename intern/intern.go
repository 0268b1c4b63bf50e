// Package intern implements the string interner shared by every component
// that needs to compare identifiers cheaply: two calls to Unique with equal
// text always return handles that compare == to each other, so callers can
// use a intern.String as a drop-in replacement for a string when all they
// need is equality and hashing, not substring access.
//
// Every handle is backed by a small buffer with a two-byte prefix ahead of
// the text: the first byte is a garbage-collection mark, refreshed whenever
// the string is looked up during the revision that is about to be
// garbage-collected; the second is reserved for future use and currently
// always holds the same sentinel value. The handle returned to callers
// points past this prefix, so Pointer() is always even: the prefix is
// designed to be cheaply reachable by walking backwards from the handle,
// the way the query engine's query-private, C-string-producing codepaths
// did in the system this package is modeled on.
package intern

import "unsafe"

// reservedByte is the fixed value of the second prefix byte. Nothing reads
// it today; it exists so that the buffer layout has room for a future use
// without changing Unique's allocation shape.
const reservedByte = 0x02

// String is a handle to a uniqued, immutable string. The zero String is not
// the empty string: it is the absence of a handle, distinguishable with
// IsZero. Two Strings obtained from the same *Interner compare equal with
// == if and only if their text is equal.
type String struct {
	ptr *byte
	n   int32
}

// IsZero reports whether s is the zero String, i.e. it was never assigned
// from a call to Unique.
func (s String) IsZero() bool { return s.ptr == nil }

// Len returns the length of s in bytes.
func (s String) Len() int { return int(s.n) }

// String returns the text of s as an ordinary Go string. The returned
// string aliases the interner's storage and must not be retained past the
// lifetime of the Interner that produced s if the interner might later be
// garbage-collected and the slot reused... which cannot happen, since an
// Interner never reuses or frees a buffer while a live handle can observe
// it; the string is safe to retain for as long as s itself is.
func (s String) String() string {
	if s.ptr == nil {
		return ""
	}
	return unsafe.String(s.ptr, s.n)
}

// Pointer returns the address of the first byte of s's text, i.e. the
// address one past the interner's two-byte prefix. It is always even.
// Exposed for tests that check the alignment invariant; ordinary callers
// have no use for it.
func (s String) Pointer() uintptr { return uintptr(unsafe.Pointer(s.ptr)) }

func (s String) mark() byte {
	return *(*byte)(unsafe.Add(unsafe.Pointer(s.ptr), -2))
}

func (s String) setMark(mark byte) {
	*(*byte)(unsafe.Add(unsafe.Pointer(s.ptr), -2)) = mark
}

// Interner is a table mapping strings to uniqued handles. The zero value is
// not ready to use; construct one with New.
//
// An Interner is not safe for concurrent use. Callers that need concurrent
// access (there are none in this module: the engine enforces a
// single-goroutine invariant of its own) must provide their own locking.
type Interner struct {
	table map[string]String

	revision       uint64
	prepareToGCRev uint64
	gcCounter      uint64
}

// New returns a ready-to-use, empty Interner.
func New() *Interner {
	return &Interner{table: make(map[string]String)}
}

// Unique returns the handle for text, allocating a new buffer for it the
// first time it is seen. If text was already interned, and the current
// revision is the most recent one for which the caller announced an
// upcoming garbage collection (see Advance), the existing handle's mark
// byte is refreshed so that the collection does not reclaim it.
func (in *Interner) Unique(text string) String {
	if h, ok := in.table[text]; ok {
		if in.revision == in.prepareToGCRev {
			h.setMark(byte(in.gcCounter))
		}
		return h
	}

	buf := allocEvenAligned(len(text) + 3)
	buf[0] = byte(in.gcCounter)
	buf[1] = reservedByte
	copy(buf[2:], text)
	buf[2+len(text)] = 0 // NUL terminator, for callers that hand this off as a C string.

	h := String{ptr: &buf[2], n: int32(len(text))}
	in.table[text] = h
	return h
}

// UniqueBytes is like Unique, but takes the text as a byte slice. b must
// not be modified before UniqueBytes returns.
func (in *Interner) UniqueBytes(b []byte) String {
	return in.Unique(unsafe.String(unsafe.SliceData(b), len(b)))
}

// Query reports whether text has already been interned, without creating a
// new handle for it and without refreshing its mark byte.
func (in *Interner) Query(text string) (String, bool) {
	h, ok := in.table[text]
	return h, ok
}

// Len returns the number of distinct strings currently interned.
func (in *Interner) Len() int { return len(in.table) }

// Advance tells the interner that the engine is moving to the next
// revision. When prepareToGC is set, this is the revision in which
// CollectUnreachable is about to be called, so any handle looked up with
// Unique between this call and the matching CollectUnreachable call is
// considered reachable.
func (in *Interner) Advance(prepareToGC bool) {
	in.revision++
	if prepareToGC {
		in.prepareToGCRev = in.revision
		in.gcCounter++
	}
}

// CollectUnreachable removes every interned string whose mark byte does not
// match the most recent generation, i.e. every string that was not looked
// up via Unique since the last call to Advance(true). It is a mark-and-sweep
// collection: Unique marks, this sweeps.
//
// The caller (the query engine) is responsible for only calling this when
// its own preconditions hold: the active-query stack is empty, and the
// current revision is the one most recently announced to Advance as a
// prepare-to-GC revision. Calling it outside of that window, or calling it
// twice in a row with no intervening Advance(true), is harmless: the
// generation counter will not have moved, so nothing new is reclaimed.
func (in *Interner) CollectUnreachable() {
	if in.revision != in.prepareToGCRev {
		return
	}
	mark := byte(in.gcCounter)
	for text, h := range in.table {
		if h.mark() != mark {
			delete(in.table, text)
		}
	}
}

// allocEvenAligned allocates a buffer of n bytes whose address is even.
// Go's allocator packs small pointer-free allocations of odd size without
// alignment, so the first attempt can start at an odd address; in that case
// a buffer one byte larger is allocated and whichever of its first two
// bytes is even-aligned becomes the start, so the invariant is enforced
// rather than assumed.
func allocEvenAligned(n int) []byte {
	buf := make([]byte, n)
	if uintptr(unsafe.Pointer(&buf[0]))&1 == 0 {
		return buf
	}
	padded := make([]byte, n+1)
	if uintptr(unsafe.Pointer(&padded[1]))&1 == 0 {
		return padded[1:]
	}
	return padded[:n]
}
