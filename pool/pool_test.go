package pool

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func requireInvariant(t *testing.T, p *Pool) {
	t.Helper()
	s := p.Stats()
	require.Equal(t, s.PagesInUse*p.cfg.ObjectsPerPage, s.FreeObjects+s.ObjectsInUse,
		"free + in-use must equal pages * objects-per-page")
}

func TestNewInitialPage(t *testing.T) {
	p, err := New(16, Config{ObjectsPerPage: 4})
	require.NoError(t, err)
	defer p.Close()

	s := p.Stats()
	require.Equal(t, 1, s.PagesInUse)
	require.Equal(t, 4, s.FreeObjects)
	require.Zero(t, s.ObjectsInUse)
	require.Equal(t, 16, s.ObjectSize)
	require.Equal(t, p.Layout().PageSize, s.PageSize)
	require.Equal(t, 4, p.FreeCount())
}

func TestNewRejectsInvalidObjectSize(t *testing.T) {
	_, err := New(0, Config{})
	require.Error(t, err)

	_, err = New(-8, Config{})
	require.Error(t, err)

	// Below the link word size only pass-through can serve it.
	_, err = New(4, Config{})
	require.Error(t, err)

	p, err := New(4, Config{PassThrough: true})
	require.NoError(t, err)
	defer p.Close()
}

func TestAllocateGrowsByPages(t *testing.T) {
	p, err := New(16, Config{ObjectsPerPage: 4})
	require.NoError(t, err)
	defer p.Close()

	for i := 0; i < 10; i++ {
		_, buf, allocErr := p.Allocate("")
		require.NoError(t, allocErr, "allocation %d", i)
		require.Len(t, buf, 16)
		requireInvariant(t, p)
	}

	s := p.Stats()
	require.Equal(t, 3, s.PagesInUse)
	require.Equal(t, 10, s.ObjectsInUse)
	require.Equal(t, 2, s.FreeObjects)
	require.Equal(t, 10, s.Allocations)
	require.Equal(t, 10, s.MostObjects)
}

func TestPageLimit(t *testing.T) {
	p, err := New(16, Config{ObjectsPerPage: 2, MaxPages: 2})
	require.NoError(t, err)
	defer p.Close()

	refs := make([]Ref, 0, 4)
	for i := 0; i < 4; i++ {
		ref, _, allocErr := p.Allocate("")
		require.NoError(t, allocErr)
		refs = append(refs, ref)
	}

	_, _, err = p.Allocate("")
	require.ErrorIs(t, err, ErrPageLimit)
	requireInvariant(t, p)

	// Freeing one block makes the next allocation succeed without a page.
	require.NoError(t, p.Free(refs[0]))
	_, _, err = p.Allocate("")
	require.NoError(t, err)
	require.Equal(t, 2, p.Stats().PagesInUse)
}

func TestUnboundedPages(t *testing.T) {
	p, err := New(16, Config{ObjectsPerPage: 2, MaxPages: 0})
	require.NoError(t, err)
	defer p.Close()

	for i := 0; i < 64; i++ {
		_, _, allocErr := p.Allocate("")
		require.NoError(t, allocErr)
	}
	require.Equal(t, 32, p.Stats().PagesInUse)
}

func TestFreeLIFOReuse(t *testing.T) {
	p, err := New(16, Config{ObjectsPerPage: 4})
	require.NoError(t, err)
	defer p.Close()

	ref, _, err := p.Allocate("")
	require.NoError(t, err)
	require.NoError(t, p.Free(ref))

	again, _, err := p.Allocate("")
	require.NoError(t, err)
	require.Equal(t, ref, again, "most recently freed block is handed out first")
}

func TestFreeNilRefNoop(t *testing.T) {
	p, err := New(16, Config{ObjectsPerPage: 4})
	require.NoError(t, err)
	defer p.Close()

	require.NoError(t, p.Free(NilRef))
	require.Zero(t, p.Stats().Deallocations)
}

func TestInvariantUnderRandomWorkload(t *testing.T) {
	p, err := New(24, Config{
		ObjectsPerPage: 8,
		PadBytes:       2,
		Header:         Header(HeaderBasic, 0),
		Alignment:      8,
		Debug:          true,
	})
	require.NoError(t, err)
	defer p.Close()

	rng := rand.New(rand.NewSource(1))
	var live []Ref
	for i := 0; i < 2000; i++ {
		if len(live) == 0 || rng.Intn(2) == 0 {
			ref, _, allocErr := p.Allocate("")
			require.NoError(t, allocErr)
			live = append(live, ref)
		} else {
			i := rng.Intn(len(live))
			require.NoError(t, p.Free(live[i]))
			live[i] = live[len(live)-1]
			live = live[:len(live)-1]
		}
		requireInvariant(t, p)

		s := p.Stats()
		require.Equal(t, len(live), s.ObjectsInUse)
		require.GreaterOrEqual(t, s.MostObjects, s.ObjectsInUse)
	}
}

func TestRoundTripReclaim(t *testing.T) {
	const perPage = 4
	p, err := New(16, Config{ObjectsPerPage: perPage})
	require.NoError(t, err)
	defer p.Close()

	var refs []Ref
	for i := 0; i < 10; i++ {
		ref, _, allocErr := p.Allocate("")
		require.NoError(t, allocErr)
		refs = append(refs, ref)
	}
	require.Equal(t, 3, p.Stats().PagesInUse)

	for _, ref := range refs {
		require.NoError(t, p.Free(ref))
	}

	require.Equal(t, 3, p.FreeEmptyPages(), "all pages are empty and reclaimable")
	s := p.Stats()
	require.Zero(t, s.PagesInUse)
	require.Zero(t, s.FreeObjects)
	requireInvariant(t, p)

	// The pool stays usable; the next allocation reserves a fresh page.
	_, _, err = p.Allocate("")
	require.NoError(t, err)
	require.Equal(t, 1, p.Stats().PagesInUse)
}

func TestDumpInUseReportsExactSet(t *testing.T) {
	p, err := New(16, Config{ObjectsPerPage: 4, Header: Header(HeaderBasic, 0)})
	require.NoError(t, err)
	defer p.Close()

	want := make(map[Ref]bool)
	var refs []Ref
	for i := 0; i < 6; i++ {
		ref, _, allocErr := p.Allocate("")
		require.NoError(t, allocErr)
		refs = append(refs, ref)
		want[ref] = true
	}
	require.NoError(t, p.Free(refs[1]))
	require.NoError(t, p.Free(refs[4]))
	delete(want, refs[1])
	delete(want, refs[4])

	got := make(map[Ref]bool)
	n := p.DumpInUse(func(ref Ref, size int) {
		require.Equal(t, 16, size)
		got[ref] = true
	})
	require.Equal(t, len(want), n)
	require.Equal(t, want, got)
}

func TestBytes(t *testing.T) {
	p, err := New(16, Config{ObjectsPerPage: 4})
	require.NoError(t, err)
	defer p.Close()

	ref, buf, err := p.Allocate("")
	require.NoError(t, err)
	copy(buf, []byte("hello"))

	again, err := p.Bytes(ref)
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), again[:5])

	_, err = p.Bytes(makeRef(99, 8))
	require.ErrorIs(t, err, ErrOutOfRange)
}

func TestPassThrough(t *testing.T) {
	p, err := New(32, Config{PassThrough: true, Debug: true})
	require.NoError(t, err)
	defer p.Close()

	require.Zero(t, p.Stats().PagesInUse, "pass-through reserves no pages")

	ref, buf, err := p.Allocate("x")
	require.NoError(t, err)
	require.Len(t, buf, 32)
	require.True(t, ref.passThrough())

	s := p.Stats()
	require.Equal(t, 1, s.Allocations)
	require.Equal(t, 1, s.ObjectsInUse)
	require.Equal(t, 1, s.MostObjects)

	require.Equal(t, 1, p.DumpInUse(nil))

	require.NoError(t, p.Free(ref))
	require.Zero(t, p.Stats().ObjectsInUse)
	require.Equal(t, 1, p.Stats().Deallocations)

	err = p.Free(ref)
	require.ErrorIs(t, err, ErrDoubleFree)

	err = p.Free(passRefBit | Ref(9999))
	require.ErrorIs(t, err, ErrOutOfRange)
}

func TestCloseIdempotent(t *testing.T) {
	p, err := New(16, Config{ObjectsPerPage: 4})
	require.NoError(t, err)

	ref, _, err := p.Allocate("")
	require.NoError(t, err)

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())

	_, _, err = p.Allocate("")
	require.ErrorIs(t, err, ErrClosed)
	require.ErrorIs(t, p.Free(ref), ErrClosed)
	_, err = p.Bytes(ref)
	require.ErrorIs(t, err, ErrClosed)
	require.Zero(t, p.FreeEmptyPages())
	require.Zero(t, p.DumpInUse(nil))
}

func TestAllocationsNeverDecrease(t *testing.T) {
	p, err := New(16, Config{ObjectsPerPage: 2})
	require.NoError(t, err)
	defer p.Close()

	prev := 0
	for i := 0; i < 20; i++ {
		ref, _, allocErr := p.Allocate("")
		require.NoError(t, allocErr)
		s := p.Stats()
		require.Greater(t, s.Allocations, prev)
		prev = s.Allocations
		require.NoError(t, p.Free(ref))
		require.Equal(t, prev, p.Stats().Allocations, "free must not touch Allocations")
	}
}

func TestConfigSnapshotReflectsDebug(t *testing.T) {
	p, err := New(16, Config{ObjectsPerPage: 4, Debug: true})
	require.NoError(t, err)
	defer p.Close()

	require.True(t, p.Config().Debug)
	p.SetDebug(false)
	require.False(t, p.Config().Debug)
}

func BenchmarkAllocateFree(b *testing.B) {
	p, err := New(64, Config{ObjectsPerPage: 256})
	if err != nil {
		b.Fatal(err)
	}
	defer p.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ref, _, allocErr := p.Allocate("")
		if allocErr != nil {
			b.Fatal(allocErr)
		}
		if freeErr := p.Free(ref); freeErr != nil {
			b.Fatal(freeErr)
		}
	}
}

func BenchmarkAllocateFreeDebug(b *testing.B) {
	p, err := New(64, Config{
		ObjectsPerPage: 256,
		PadBytes:       4,
		Header:         Header(HeaderBasic, 0),
		Debug:          true,
	})
	if err != nil {
		b.Fatal(err)
	}
	defer p.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ref, _, allocErr := p.Allocate("")
		if allocErr != nil {
			b.Fatal(allocErr)
		}
		if freeErr := p.Free(ref); freeErr != nil {
			b.Fatal(freeErr)
		}
	}
}

func TestErrorKindsAreDistinct(t *testing.T) {
	errs := []error{ErrNoMemory, ErrPageLimit, ErrDoubleFree, ErrOutOfRange, ErrCorruptedBlock, ErrClosed}
	for i, a := range errs {
		for j, b := range errs {
			if i == j {
				continue
			}
			require.False(t, errors.Is(a, b))
		}
	}
}
