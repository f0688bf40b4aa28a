package sharetoken

import (
	"strings"
	"testing"
)

func TestGenerate_InvalidLength(t *testing.T) {
	t.Parallel()

	if _, err := Generate(0); err == nil {
		t.Fatalf("expected error for invalid length")
	}
}

func TestGenerate_LengthAndAlphabet(t *testing.T) {
	t.Parallel()

	token, err := Generate(DefaultLength)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(token) != DefaultLength {
		t.Fatalf("expected token length %d, got %d", DefaultLength, len(token))
	}

	for i := 0; i < len(token); i++ {
		if strings.IndexByte(alphabet, token[i]) == -1 {
			t.Fatalf("token contains invalid character %q", token[i])
		}
	}
}

func TestGenerate_UniqueWithinSmallBatch(t *testing.T) {
	t.Parallel()

	seen := make(map[string]struct{})

	for i := 0; i < 100; i++ {
		token, err := Generate(10)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, exists := seen[token]; exists {
			t.Fatalf("duplicate token generated in small batch: %s", token)
		}
		seen[token] = struct{}{}
	}
}

func TestEncodeDecodeID_RoundTrip(t *testing.T) {
	t.Parallel()

	for _, id := range []uint{0, 1, 61, 62, 12345, 987654321} {
		encoded := EncodeID(id)
		if got := DecodeID(encoded); got != id {
			t.Fatalf("DecodeID(EncodeID(%d)) = %d", id, got)
		}
	}
}
