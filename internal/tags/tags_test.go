package tags

import (
	"reflect"
	"testing"
)

func TestRegister(t *testing.T) {
	cases := []struct {
		name     string
		current  []string
		incoming []string
		want     []string
	}{
		{"dedupe incoming", nil, []string{"a", "b", "a"}, []string{"a", "b"}},
		{"no re-add", []string{"a"}, []string{"a"}, []string{"a"}},
		{"append new", []string{"외식"}, []string{"카페", "외식"}, []string{"외식", "카페"}},
		{"trim and drop empty", []string{}, []string{" a ", "", "  "}, []string{"a"}},
		{"case sensitive", []string{"Lunch"}, []string{"lunch"}, []string{"Lunch", "lunch"}},
		{"keeps order", []string{"c", "a"}, []string{"b"}, []string{"c", "a", "b"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Register(tc.current, tc.incoming)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("Register(%v, %v) = %v, want %v", tc.current, tc.incoming, got, tc.want)
			}
		})
	}
}

func TestRegisterDoesNotMutateCurrent(t *testing.T) {
	current := []string{"a"}
	_ = Register(current, []string{"b"})
	if len(current) != 1 || current[0] != "a" {
		t.Fatalf("current was mutated: %v", current)
	}
}
