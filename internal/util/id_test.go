package util

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestShortID(t *testing.T) {
	tests := []struct {
		name string
		id   string
		n    int
		want string
	}{
		{
			name: "default length truncates",
			id:   "3f2a9c1e-7b4d-4e0f-9a51-2c8d6e0b1f34",
			n:    0,
			want: "3f2a9c1e",
		},
		{
			name: "negative uses default",
			id:   "3f2a9c1e-7b4d-4e0f-9a51-2c8d6e0b1f34",
			n:    -1,
			want: "3f2a9c1e",
		},
		{
			name: "explicit length 13",
			id:   "3f2a9c1e-7b4d-4e0f-9a51-2c8d6e0b1f34",
			n:    13,
			want: "3f2a9c1e-7b4d",
		},
		{
			name: "legacy numeric id",
			id:   "17",
			n:    8,
			want: "17",
		},
		{
			name: "empty ID",
			id:   "",
			n:    8,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShortID(tt.id, tt.n); got != tt.want {
				t.Errorf("ShortID(%q, %d) = %q, want %q", tt.id, tt.n, got, tt.want)
			}
		})
	}
}

func TestNewID(t *testing.T) {
	a, b := NewID(), NewID()
	if a == b {
		t.Fatal("NewID returned the same id twice")
	}
	if _, err := uuid.Parse(a); err != nil {
		t.Errorf("NewID() = %q is not a UUID: %v", a, err)
	}
}

func TestResolveTaskID(t *testing.T) {
	ids := []string{
		"3f2a9c1e-7b4d-4e0f-9a51-2c8d6e0b1f34",
		"3f2b0000-0000-4000-8000-000000000000",
		"a1b2c3d4-0000-4000-8000-000000000000",
		"1",
		"17",
	}

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{name: "full id", input: ids[0], want: ids[0]},
		{name: "unique prefix", input: "a1b2", want: ids[2]},
		{name: "longer unique prefix", input: "3f2a", want: ids[0]},
		{name: "ambiguous prefix", input: "3f2", wantErr: ErrAmbiguousID},
		{name: "exact legacy id beats prefix", input: "1", want: "1"},
		{name: "legacy prefix", input: "17", want: "17"},
		{name: "unknown", input: "zzz", wantErr: ErrNotFound},
		{name: "empty", input: "", wantErr: ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveTaskID(ids, tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ResolveTaskID(%q) error = %v, want %v", tt.input, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveTaskID(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ResolveTaskID(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
