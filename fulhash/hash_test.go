package fulhash

import (
	"strings"
	"testing"
)

func TestParseDigest(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantAlg Algorithm
		wantHex string
		wantErr bool
	}{
		{"valid-xxh3", "xxh3-128:abc123", XXH3_128, "abc123", false},
		{"valid-sha256", "sha256:def456", SHA256, "def456", false},
		{"invalid-format", "invalid", "", "", true},
		{"unknown-algorithm", "unknown:abc", "", "", true},
		{"invalid-hex", "xxh3-128:invalidhex", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ParseDigest(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseDigest() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr {
				if d.Algorithm() != tt.wantAlg {
					t.Errorf("Algorithm = %v, want %v", d.Algorithm(), tt.wantAlg)
				}
				if d.Hex() != tt.wantHex {
					t.Errorf("Hex = %v, want %v", d.Hex(), tt.wantHex)
				}
			}
		})
	}
}

func TestHasher(t *testing.T) {
	data := []byte("Hello, World!")

	hasher, err := NewHasher(WithAlgorithm(XXH3_128))
	if err != nil {
		t.Fatalf("NewHasher failed: %v", err)
	}
	_, err = hasher.Write(data)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	digest := hasher.Sum()
	expected := "xxh3-128:531df2844447dd5077db03842cd75395"
	if digest.String() != expected {
		t.Errorf("XXH3-128 hasher mismatch: got %s, want %s", digest.String(), expected)
	}

	hasher.Reset()
	_, err = hasher.Write([]byte("test"))
	if err != nil {
		t.Fatalf("Write after reset failed: %v", err)
	}
	digest2 := hasher.Sum()
	if digest2.String() == expected {
		t.Errorf("Reset did not work: got same digest %s", digest2.String())
	}

	hasher256, err := NewHasher(WithAlgorithm(SHA256))
	if err != nil {
		t.Fatalf("NewHasher SHA256 failed: %v", err)
	}
	_, err = hasher256.Write(data)
	if err != nil {
		t.Fatalf("SHA256 Write failed: %v", err)
	}
	digest256 := hasher256.Sum()
	if digest256.Algorithm() != SHA256 {
		t.Errorf("SHA256 hasher algorithm: got %s, want %s", digest256.Algorithm(), SHA256)
	}
	if len(digest256.Bytes()) != 32 {
		t.Errorf("SHA256 bytes length: got %d, want 32", len(digest256.Bytes()))
	}
}

func TestUnsupportedAlgorithm(t *testing.T) {
	_, err := Hash([]byte("test"), WithAlgorithm("md5"))
	if err == nil {
		t.Error("Expected error for unsupported algorithm")
	}

	_, err = NewHasher(WithAlgorithm("md5"))
	if err == nil {
		t.Error("Expected error for unsupported algorithm in NewHasher")
	}
}

func TestHashReader(t *testing.T) {
	reader := strings.NewReader("Hello, World!")
	digest, err := HashReader(reader, WithAlgorithm(XXH3_128))
	if err != nil {
		t.Fatalf("HashReader failed: %v", err)
	}
	expected := "xxh3-128:531df2844447dd5077db03842cd75395"
	if digest.String() != expected {
		t.Errorf("HashReader mismatch: got %s, want %s", digest.String(), expected)
	}
}

func TestHash_Empty(t *testing.T) {
	digest, err := Hash([]byte{}, WithAlgorithm(XXH3_128))
	if err != nil {
		t.Fatalf("Hash empty failed: %v", err)
	}
	expected := "xxh3-128:99aa06d3014798d86001c324468d497f"
	if digest.String() != expected {
		t.Errorf("Empty hash mismatch: got %s, want %s", digest.String(), expected)
	}
}

func TestHasher_MultipleWrites(t *testing.T) {
	hasher, err := NewHasher(WithAlgorithm(XXH3_128))
	if err != nil {
		t.Fatalf("NewHasher failed: %v", err)
	}
	_, err = hasher.Write([]byte("Hello, "))
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	_, err = hasher.Write([]byte("World!"))
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	digest := hasher.Sum()
	expected := "xxh3-128:531df2844447dd5077db03842cd75395"
	if digest.String() != expected {
		t.Errorf("Multiple writes mismatch: got %s, want %s", digest.String(), expected)
	}
}

func TestOptions(t *testing.T) {
	digest, err := Hash([]byte("test"))
	if err != nil {
		t.Fatalf("Default options failed: %v", err)
	}
	if digest.Algorithm() != XXH3_128 {
		t.Errorf("Default algorithm: got %s, want %s", digest.Algorithm(), XXH3_128)
	}

	digest, err = Hash([]byte("test"), WithAlgorithm(SHA256))
	if err != nil {
		t.Fatalf("SHA256 failed: %v", err)
	}
	if digest.Algorithm() != SHA256 {
		t.Errorf("SHA256 algorithm: got %s, want %s", digest.Algorithm(), SHA256)
	}
}

func TestDigest_Methods(t *testing.T) {
	digest, err := Hash([]byte("test"), WithAlgorithm(XXH3_128))
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	if digest.Algorithm() != XXH3_128 {
		t.Errorf("Algorithm: got %s, want %s", digest.Algorithm(), XXH3_128)
	}

	hex := digest.Hex()
	if len(hex) != 32 {
		t.Errorf("Hex length: got %d, want 32", len(hex))
	}

	bytes := digest.Bytes()
	if len(bytes) != 16 {
		t.Errorf("Bytes length: got %d, want 16", len(bytes))
	}

	formatted := digest.String()
	expected := "xxh3-128:" + hex
	if formatted != expected {
		t.Errorf("String: got %s, want %s", formatted, expected)
	}
}

func TestFormatDigest(t *testing.T) {
	digest, _ := Hash([]byte("test"), WithAlgorithm(XXH3_128))
	formatted := FormatDigest(digest)
	if formatted != digest.String() {
		t.Errorf("FormatDigest: got %s, want %s", formatted, digest.String())
	}
}

func TestStreamingVsBlock(t *testing.T) {
	data := []byte("This is a test string for streaming vs block hashing.")

	blockDigest, err := Hash(data, WithAlgorithm(XXH3_128))
	if err != nil {
		t.Fatalf("Block hash failed: %v", err)
	}

	hasher, err := NewHasher(WithAlgorithm(XXH3_128))
	if err != nil {
		t.Fatalf("NewHasher failed: %v", err)
	}
	n, err := hasher.Write(data)
	if err != nil {
		t.Fatalf("Streaming write failed: %v", err)
	}
	if n != len(data) {
		t.Fatalf("Write returned wrong length: got %d, want %d", n, len(data))
	}
	streamDigest := hasher.Sum()

	if blockDigest.String() != streamDigest.String() {
		t.Errorf("Block and streaming mismatch: block %s, stream %s", blockDigest.String(), streamDigest.String())
	}
}
