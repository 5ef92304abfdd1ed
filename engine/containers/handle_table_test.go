package containers

import (
	"errors"
	"testing"
)

type fakeItem struct {
	name    string
	cleared int
	failOn  bool
}

func (f *fakeItem) Clear() error {
	f.cleared++
	if f.failOn {
		return errors.New("boom")
	}
	return nil
}

func TestHandleTableGetOrCreateBuildsOnce(t *testing.T) {
	ht := NewHandleTable[uint32, *fakeItem]()
	calls := 0
	factory := func() (*fakeItem, error) {
		calls++
		return &fakeItem{name: "a"}, nil
	}

	first, ok := ht.GetOrCreate(42, factory)
	if !ok {
		t.Fatal("first GetOrCreate failed")
	}
	second, ok := ht.GetOrCreate(42, factory)
	if !ok {
		t.Fatal("second GetOrCreate failed")
	}
	if first != second {
		t.Fatal("GetOrCreate returned different instances for the same key")
	}
	if calls != 1 {
		t.Fatalf("factory called %d times, want 1", calls)
	}
}

func TestHandleTableFailedFactoryIsRetried(t *testing.T) {
	ht := NewHandleTable[uint32, *fakeItem]()
	fail := true
	factory := func() (*fakeItem, error) {
		if fail {
			return nil, errors.New("device failure")
		}
		return &fakeItem{}, nil
	}

	if _, ok := ht.GetOrCreate(7, factory); ok {
		t.Fatal("GetOrCreate should fail when the factory fails")
	}
	if ht.Has(7) {
		t.Fatal("failed creation must not be stored")
	}

	fail = false
	if _, ok := ht.GetOrCreate(7, factory); !ok {
		t.Fatal("GetOrCreate should retry the factory")
	}
}

func TestHandleTableNilItemIsNotStored(t *testing.T) {
	ht := NewHandleTable[uint32, *fakeItem]()
	calls := 0
	factory := func() (*fakeItem, error) {
		calls++
		if calls == 1 {
			return nil, nil
		}
		return &fakeItem{name: "late"}, nil
	}

	item, ok := ht.GetOrCreate(9, factory)
	if ok || item != nil || ht.Has(9) {
		t.Fatalf("nil item was stored: item=%v ok=%v", item, ok)
	}
	item, ok = ht.GetOrCreate(9, factory)
	if !ok || item == nil || item.name != "late" {
		t.Fatalf("retry = %v, %v", item, ok)
	}
	if calls != 2 {
		t.Fatalf("factory ran %d times, want 2", calls)
	}

	if err := ht.Insert(10, nil); !errors.Is(err, ErrNilItem) {
		t.Fatalf("Insert(nil) = %v, want ErrNilItem", err)
	}
}

func TestHandleTableRejectsEmptyKey(t *testing.T) {
	ht := NewHandleTable[uint32, *fakeItem]()
	if _, ok := ht.GetOrCreate(0, func() (*fakeItem, error) { return &fakeItem{}, nil }); ok {
		t.Fatal("GetOrCreate accepted the empty key")
	}
	if err := ht.Insert(0, &fakeItem{}); !errors.Is(err, ErrEmptyKey) {
		t.Fatalf("Insert(0) = %v, want ErrEmptyKey", err)
	}
}

func TestHandleTableInsertDuplicate(t *testing.T) {
	ht := NewHandleTable[uint32, *fakeItem]()
	original := &fakeItem{name: "original"}
	if err := ht.Insert(3, original); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := ht.Insert(3, &fakeItem{name: "other"}); !errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("duplicate Insert = %v, want ErrDuplicateKey", err)
	}
	got, _ := ht.Get(3)
	if got != original {
		t.Fatal("duplicate Insert replaced the stored item")
	}
}

func TestHandleTableRefCounts(t *testing.T) {
	ht := NewHandleTable[uint32, *fakeItem]()
	_ = ht.Insert(1, &fakeItem{})

	if n := ht.Retain(1); n != 1 {
		t.Fatalf("Retain = %d, want 1", n)
	}
	if n := ht.Retain(1); n != 2 {
		t.Fatalf("Retain = %d, want 2", n)
	}
	ht.Release(1)
	if n := ht.Release(1); n != 0 {
		t.Fatalf("Release = %d, want 0", n)
	}
	if n := ht.Release(1); n != 0 {
		t.Fatalf("Release below zero = %d, want 0", n)
	}
	if !ht.Has(1) {
		t.Fatal("releasing the last holder must not destroy the item")
	}
	if n := ht.Retain(99); n != 0 {
		t.Fatalf("Retain on missing key = %d, want 0", n)
	}
}

func TestHandleTableClear(t *testing.T) {
	ht := NewHandleTable[uint32, *fakeItem]()
	a := &fakeItem{}
	b := &fakeItem{failOn: true}
	_ = ht.Insert(2, a)
	_ = ht.Insert(1, b)

	if got := ht.IDs(); len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("IDs = %v, want [1 2]", got)
	}

	err := ht.Clear()
	if err == nil {
		t.Fatal("Clear should report the failing item")
	}
	if a.cleared != 1 || b.cleared != 1 {
		t.Fatalf("items cleared %d/%d times, want 1/1", a.cleared, b.cleared)
	}
	if ht.Len() != 0 {
		t.Fatalf("Len after Clear = %d", ht.Len())
	}

	if _, ok := ht.GetOrCreate(2, func() (*fakeItem, error) { return &fakeItem{}, nil }); !ok {
		t.Fatal("table should be reusable after Clear")
	}
}
