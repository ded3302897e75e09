package dataset

import "testing"

func TestParseRange(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Range
	}{
		{name: "percent range", in: "40-60%", want: Range{Min: 40, Max: 60, Valid: true}},
		{name: "en dash", in: "6.5–7.5", want: Range{Min: 6.5, Max: 7.5, Valid: true}},
		{name: "em dash", in: "20—30°C", want: Range{Min: 20, Max: 30, Valid: true}},
		{name: "minus sign", in: "5.5−6.5", want: Range{Min: 5.5, Max: 6.5, Valid: true}},
		{name: "celsius single", in: "25°C", want: Range{Min: 25, Max: 25, Valid: true}},
		{name: "bare number", in: "7", want: Range{Min: 7, Max: 7, Valid: true}},
		{name: "whitespace everywhere", in: " 40 - 60 % ", want: Range{Min: 40, Max: 60, Valid: true}},
		{name: "reversed order", in: "60-40", want: Range{Min: 40, Max: 60, Valid: true}},
		{name: "empty", in: "", want: Range{}},
		{name: "not available", in: "N/A", want: Range{}},
		{name: "text", in: "moist", want: Range{}},
		{name: "three parts", in: "1-2-3", want: Range{}},
		{name: "missing upper", in: "40-", want: Range{}},
		{name: "missing lower", in: "-40", want: Range{}},
		{name: "non numeric part", in: "40-abc", want: Range{}},
		{name: "nan", in: "NaN", want: Range{}},
		{name: "infinity", in: "Inf-5", want: Range{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseRange(tt.in)
			if got != tt.want {
				t.Errorf("ParseRange(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseRange_TotalAndOrdered(t *testing.T) {
	inputs := []string{
		"", "-", "--", "%", "°C", "1e3-2", "0x10", "12.5.6", "∞", "—", "abc-def",
		"100-0", "3-3", "  ", "\t5\n", "١٢", "7-8-", "N/A", "null",
	}
	for _, in := range inputs {
		first := ParseRange(in)
		second := ParseRange(in)
		if first != second {
			t.Errorf("ParseRange(%q) not deterministic: %+v vs %+v", in, first, second)
		}
		if first.Valid && first.Min > first.Max {
			t.Errorf("ParseRange(%q) = %+v; want Min <= Max", in, first)
		}
	}
}
