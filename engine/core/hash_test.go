package core

import (
	"fmt"
	"strconv"
	"strings"
	"testing"
)

func TestHashIsFNV1a(t *testing.T) {
	tests := []struct {
		name string
		want ID
	}{
		// Reference values of 32-bit FNV-1a.
		{"a", 0xe40c292c},
		{"foobar", 0xbf9cf968},
	}
	hr := NewHashRegistry()
	for _, tt := range tests {
		if got := hr.Hash(tt.name); got != tt.want {
			t.Errorf("Hash(%q) = %#x, want %#x", tt.name, uint32(got), uint32(tt.want))
		}
	}
}

func TestHashEmptyStringIsNotSentinel(t *testing.T) {
	hr := NewHashRegistry()
	if id := hr.Hash(""); id.IsEmpty() {
		t.Fatal("Hash(\"\") returned the empty sentinel")
	}
}

func TestResolveRoundTrip(t *testing.T) {
	hr := NewHashRegistry()
	names := []string{"gbuffer_a_map", "depth_stencil_map", "content/textures/brick.png", "日本"}
	for _, n := range names {
		id := hr.Hash(n)
		if got := hr.Resolve(id); got != n {
			t.Errorf("Resolve(Hash(%q)) = %q", n, got)
		}
		if !hr.Exists(id) {
			t.Errorf("Exists(Hash(%q)) = false", n)
		}
	}
	if hr.Len() != len(names) {
		t.Errorf("Len = %d, want %d", hr.Len(), len(names))
	}
}

func TestResolveUnknownPlaceholder(t *testing.T) {
	hr := NewHashRegistry()
	id := ID(123456)
	got := hr.Resolve(id)
	if got != "Unknown[123456]" {
		t.Fatalf("Resolve(unknown) = %q", got)
	}
	if !strings.Contains(got, strconv.Itoa(int(id))) {
		t.Fatal("placeholder must contain the numeric id")
	}
	if hr.Exists(id) {
		t.Fatal("Exists on an unregistered id")
	}
}

func TestHashStringDoesNotRegister(t *testing.T) {
	hr := NewHashRegistry()
	id := HashString("transient")
	if hr.Exists(id) {
		t.Fatal("HashString must not touch a registry")
	}
	if hr.Hash("transient") != id {
		t.Fatal("HashString and Hash disagree")
	}
}

func TestReset(t *testing.T) {
	hr := NewHashRegistry()
	id := hr.Hash("scene_result_map")
	hr.Reset()
	if hr.Exists(id) || hr.Len() != 0 {
		t.Fatal("Reset left entries behind")
	}
	if hr.Hash("scene_result_map") != id {
		t.Fatal("identifiers must be stable across Reset")
	}
}

func TestCollisionRate(t *testing.T) {
	hr := NewHashRegistry()
	seen := make(map[ID]string)
	collisions := 0
	for i := 0; i < 20000; i++ {
		name := fmt.Sprintf("content/entities/entity_%05d.entity", i)
		id := hr.Hash(name)
		if _, ok := seen[id]; ok {
			collisions++
		}
		seen[id] = name
	}
	// Birthday bound for 20k keys in 2^32 is ~0.05 expected collisions.
	if collisions > 2 {
		t.Fatalf("%d collisions over 20000 names", collisions)
	}
}

func TestEntriesSortedByName(t *testing.T) {
	hr := NewHashRegistry()
	hr.Hash("b")
	hr.Hash("a")
	hr.Hash("c")
	entries := hr.Entries()
	if len(entries) != 3 {
		t.Fatalf("Entries len = %d", len(entries))
	}
	for i, want := range []string{"a", "b", "c"} {
		if entries[i].Name != want {
			t.Errorf("Entries[%d] = %q, want %q", i, entries[i].Name, want)
		}
	}
}
