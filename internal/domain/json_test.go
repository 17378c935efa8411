package domain

import (
	"math"
	"testing"
)

func TestFormatPyFloat(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.0"},
		{2, "2.0"},
		{-3, "-3.0"},
		{1.5, "1.5"},
		{0.1, "0.1"},
		{0.0001, "0.0001"},
		{0.00001, "1e-05"},
		{1.5e-7, "1.5e-07"},
		{123456789012345.0, "123456789012345.0"},
		{1e16, "1e+16"},
		{2.5e20, "2.5e+20"},
	}

	for _, tt := range tests {
		if got := FormatPyFloat(tt.in); got != tt.want {
			t.Errorf("FormatPyFloat(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPyFloat_NonFiniteEncodesNull(t *testing.T) {
	b, err := MarshalCompact([]PyFloat{PyFloat(math.NaN()), PyFloat(math.Inf(1)), 1})
	if err != nil {
		t.Fatalf("MarshalCompact failed: %v", err)
	}
	if string(b) != "[null,null,1.0]" {
		t.Errorf("got %s", b)
	}
}

func TestMarshalCompact_NoHTMLEscape(t *testing.T) {
	b, err := MarshalCompact([]any{"a<b>&c", 1})
	if err != nil {
		t.Fatalf("MarshalCompact failed: %v", err)
	}
	if string(b) != `["a<b>&c",1]` {
		t.Errorf("got %s", b)
	}
}
