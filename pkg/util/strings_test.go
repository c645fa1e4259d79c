package util

import "testing"

func TestParseIntList(t *testing.T) {
	got, err := ParseIntList("10, 30,,5")
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	want := []int{10, 30, 5}
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v want %v", got, want)
		}
	}
}

func TestParseIntListInvalid(t *testing.T) {
	if _, err := ParseIntList("10,x"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestParseIntDefault(t *testing.T) {
	if got := ParseIntDefault("", 7); got != 7 {
		t.Fatalf("got %d", got)
	}
	if got := ParseIntDefault("abc", 7); got != 7 {
		t.Fatalf("got %d", got)
	}
	if got := ParseIntDefault("12", 7); got != 12 {
		t.Fatalf("got %d", got)
	}
}
