package filter

import (
	"reflect"
	"testing"
)

func TestParseMinuteRange(t *testing.T) {
	tests := []struct {
		input    string
		wantFrom *int
		wantTo   *int
		wantErr  bool
	}{
		{input: "10-45", wantFrom: intPtr(10), wantTo: intPtr(45)},
		{input: " 10 - 45 ", wantFrom: intPtr(10), wantTo: intPtr(45)},
		{input: "80-", wantFrom: intPtr(80)},
		{input: "-15", wantTo: intPtr(15)},
		{input: "30", wantFrom: intPtr(30), wantTo: intPtr(30)},
		{input: "0-0", wantFrom: intPtr(0), wantTo: intPtr(0)},
		{input: "", wantErr: true},
		{input: "-", wantErr: true},
		{input: "45-10", wantErr: true},
		{input: "ten", wantErr: true},
		{input: "3045", wantErr: true},
		{input: "10-20-30", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			from, to, err := ParseMinuteRange(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMinuteRange(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if !reflect.DeepEqual(from, tt.wantFrom) {
				t.Errorf("from = %v, want %v", deref(from), deref(tt.wantFrom))
			}
			if !reflect.DeepEqual(to, tt.wantTo) {
				t.Errorf("to = %v, want %v", deref(to), deref(tt.wantTo))
			}
		})
	}
}

func deref(n *int) any {
	if n == nil {
		return nil
	}
	return *n
}

func TestFormatMinuteRange_RoundTrip(t *testing.T) {
	for _, input := range []string{"10-45", "80-", "-15", "30"} {
		t.Run(input, func(t *testing.T) {
			from, to, err := ParseMinuteRange(input)
			if err != nil {
				t.Fatalf("ParseMinuteRange(%q) error = %v", input, err)
			}
			if got := FormatMinuteRange(from, to); got != input {
				t.Errorf("FormatMinuteRange() = %q, want %q", got, input)
			}
		})
	}
}

func TestParseSide(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"h", "h", false},
		{"Home", "h", false},
		{"a", "a", false},
		{"AWAY", "a", false},
		{"neutral", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSide(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSide(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseSide(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseList(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"Pass,Goal", []string{"Pass", "Goal"}},
		{" Pass , , Goal ,", []string{"Pass", "Goal"}},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseList(tt.input); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseList(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
