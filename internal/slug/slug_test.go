package slug

import (
	"context"
	"testing"
)

func TestMake(t *testing.T) {
	cases := []struct {
		title string
		want  string
	}{
		{"Física I", "fisica-i"},
		{"Cálculo Avançado", "calculo-avancado"},
		{"  Álgebra   Linear  ", "algebra-linear"},
		{"Programação: Go & Redes (2026)", "programacao-go-redes-2026"},
		{"História", "historia"},
		{"C++", "c"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := Make(tc.title); got != tc.want {
			t.Errorf("Make(%q)=%q, want %q", tc.title, got, tc.want)
		}
	}
}

func TestUniqueSuffixes(t *testing.T) {
	existing := map[string]bool{}
	taken := func(ctx context.Context, candidate string) (bool, error) {
		return existing[candidate], nil
	}

	ctx := context.Background()
	first, err := Unique(ctx, "Física I", taken)
	if err != nil {
		t.Fatalf("Unique: %v", err)
	}
	if first != "fisica-i" {
		t.Fatalf("first slug = %q, want fisica-i", first)
	}
	existing[first] = true

	second, err := Unique(ctx, "Física I", taken)
	if err != nil {
		t.Fatalf("Unique: %v", err)
	}
	if second != "fisica-i-1" {
		t.Fatalf("second slug = %q, want fisica-i-1", second)
	}
	existing[second] = true

	third, err := Unique(ctx, "Física I", taken)
	if err != nil {
		t.Fatalf("Unique: %v", err)
	}
	if third != "fisica-i-2" {
		t.Fatalf("third slug = %q, want fisica-i-2", third)
	}
}

func TestUniqueEmptyTitleFallsBack(t *testing.T) {
	taken := func(ctx context.Context, candidate string) (bool, error) { return false, nil }
	got, err := Unique(context.Background(), "???", taken)
	if err != nil {
		t.Fatalf("Unique: %v", err)
	}
	if got != "course" {
		t.Fatalf("slug = %q, want course", got)
	}
}
