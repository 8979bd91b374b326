package fragmenter

import (
	"strings"
	"testing"
)

func TestSplit_EmptyInput(t *testing.T) {
	for _, input := range []string{"", "   ", "\n\n\t  \n"} {
		if got := Split(input, 100, 0); len(got) != 0 {
			t.Errorf("Split(%q) = %v, want empty", input, got)
		}
	}
}

func TestSplit_ShortInputSingleChunk(t *testing.T) {
	got := Split("  Madrid es la capital de España.  ", 100, 0)
	if len(got) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(got))
	}
	if got[0] != "Madrid es la capital de España." {
		t.Errorf("chunk = %q, want trimmed input", got[0])
	}
}

func TestSplit_SizeBound(t *testing.T) {
	text := strings.Repeat("Una frase corta de prueba. ", 50)
	for _, max := range []int{40, 80, 200} {
		for i, chunk := range Split(text, max, 0) {
			if len(chunk) > max {
				t.Errorf("max=%d: chunk %d has length %d: %q", max, i, len(chunk), chunk)
			}
		}
	}
}

func TestSplit_OversizedTokenMayExceedBound(t *testing.T) {
	long := strings.Repeat("x", 120)
	text := "corta " + long + " final. Otra frase para forzar varios fragmentos aqui mismo."
	chunks := Split(text, 50, 0)

	exceeding := 0
	for _, c := range chunks {
		if len(c) > 50 {
			exceeding++
			if !strings.Contains(c, long) {
				t.Errorf("oversized chunk does not contain the long token: %q", c)
			}
		}
	}
	if exceeding != 1 {
		t.Errorf("expected exactly 1 oversized chunk, got %d", exceeding)
	}
}

// With overlap=0, joining all chunks must preserve every token of the
// input in order, with nothing dropped or duplicated.
func TestSplit_ReconstructionNoOverlap(t *testing.T) {
	text := `El Ayuntamiento publica sus ordenanzas en el portal de transparencia.
Cada documento se revisa anualmente. Las consultas ciudadanas se atienden en un plazo de diez dias.

El padron municipal se actualiza cada mes. Los certificados se emiten de forma telematica.`

	chunks := Split(text, 80, 0)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	got := strings.Fields(strings.Join(chunks, " "))
	want := strings.Fields(text)
	if len(got) != len(want) {
		t.Fatalf("token count mismatch: got %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d mismatch: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSplit_OverlapPrefix(t *testing.T) {
	text := strings.Repeat("Frase numero uno de relleno. ", 30)
	chunks := Split(text, 100, 20)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	if strings.Contains(chunks[0], OverlapSeparator) {
		t.Errorf("first chunk must not carry an overlap prefix: %q", chunks[0])
	}
	for i := 1; i < len(chunks); i++ {
		if !strings.Contains(chunks[i], OverlapSeparator) {
			t.Errorf("chunk %d missing overlap separator: %q", i, chunks[i])
		}
		prefix, _, _ := strings.Cut(chunks[i], OverlapSeparator)
		if prefix == "" {
			t.Errorf("chunk %d has empty overlap prefix", i)
		}
	}
}

func TestSplit_Deterministic(t *testing.T) {
	text := strings.Repeat("Algo de texto con varias frases. Y otra mas aqui. ", 20)
	a := Split(text, 90, 15)
	b := Split(text, 90, 15)
	if len(a) != len(b) {
		t.Fatalf("non-deterministic chunk count: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("chunk %d differs between runs", i)
		}
	}
}
