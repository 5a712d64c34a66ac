package version

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		want    Semver
		wantErr bool
	}{
		{input: "1.2.3", want: Semver{Major: 1, Minor: 2, Patch: 3}},
		{input: "0.0.1", want: Semver{Patch: 1}},
		{input: "1.0.0-beta.1", want: Semver{Major: 1, Pre: "beta.1"}},
		{input: "1.0.0+build.5", want: Semver{Major: 1}},
		{input: "", wantErr: true},
		{input: "1.2", wantErr: true},
		{input: "a.b.c", wantErr: true},
		{input: "-1.0.0", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if *got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, *got)
			}
		})
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0.0", "1.0.0", 0},
		{"1.0.1", "1.0.0", 1},
		{"1.0.0", "1.1.0", -1},
		{"2.0.0", "1.9.9", 1},
		{"1.0.0", "1.0.0-alpha", 1},
		{"1.0.0-alpha", "1.0.0-beta", -1},
		{"1.0.0+a", "1.0.0+b", 0},
	}

	for _, tt := range tests {
		t.Run(tt.a+" vs "+tt.b, func(t *testing.T) {
			a, err := Parse(tt.a)
			if err != nil {
				t.Fatal(err)
			}
			b, err := Parse(tt.b)
			if err != nil {
				t.Fatal(err)
			}
			if got := a.Compare(b); got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestMeetsMinimum(t *testing.T) {
	tests := []struct {
		minimum string
		want    bool
		wantErr bool
	}{
		{minimum: "0.0.1", want: true},
		{minimum: Version, want: true},
		{minimum: "99.0.0", want: false},
		{minimum: "not-a-version", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.minimum, func(t *testing.T) {
			got, err := MeetsMinimum(tt.minimum)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
