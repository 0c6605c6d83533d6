package core

import "testing"

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"-1", 0, false},
		{"0", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestMoneyString(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{0, "0.00"},
		{1, "0.01"},
		{100, "1.00"},
		{1234, "12.34"},
		{-250, "-2.50"},
	}
	for _, tc := range cases {
		if got := (Money{Cents: tc.cents}).String(); got != tc.want {
			t.Fatalf("%d cents: expected %q, got %q", tc.cents, tc.want, got)
		}
	}
}

func TestMoneyJSONRoundTrip(t *testing.T) {
	m := Money{Cents: 1234}
	data, err := m.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"12.34"` {
		t.Fatalf("unexpected encoding %s", data)
	}
	var back Money
	if err := back.UnmarshalJSON(data); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Cents != m.Cents {
		t.Fatalf("expected %d cents, got %d", m.Cents, back.Cents)
	}

	var fromNumber Money
	if err := fromNumber.UnmarshalJSON([]byte(`12.34`)); err != nil {
		t.Fatalf("unmarshal number: %v", err)
	}
	if fromNumber.Cents != 1234 {
		t.Fatalf("expected 1234 cents, got %d", fromNumber.Cents)
	}
}

func TestParseMoney(t *testing.T) {
	m, err := ParseMoney("7,50")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if m.Cents != 750 {
		t.Fatalf("expected 750 cents, got %d", m.Cents)
	}
	if _, err := ParseMoney("-1.00"); err == nil {
		t.Fatal("expected error for signed amount")
	}
}

func TestMoneyAdd(t *testing.T) {
	sum := Money{Cents: 1234}.Add(Money{Cents: 66})
	if sum.Cents != 1300 {
		t.Fatalf("expected 1300 cents, got %d", sum.Cents)
	}
}
