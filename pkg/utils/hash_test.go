package utils

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"
)

func TestHashFile(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
		want    string
	}{
		{
			name:    "empty file",
			content: []byte{},
			want:    "d41d8cd98f00b204e9800998ecf8427e",
		},
		{
			name:    "small file",
			content: []byte("hello world"),
			want:    "5eb63bbbe01eeed093cb22bb8f5acdc3",
		},
		{
			name:    "exactly one chunk",
			content: bytes.Repeat([]byte{0x42}, HashChunkSize),
		},
		{
			name:    "one byte under chunk",
			content: bytes.Repeat([]byte{0x42}, HashChunkSize-1),
		},
		{
			name:    "one byte over chunk",
			content: bytes.Repeat([]byte{0x42}, HashChunkSize+1),
		},
		{
			name:    "multiple chunks",
			content: bytes.Repeat([]byte{0x42}, 3*HashChunkSize+17),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "file.bin")
			if err := os.WriteFile(path, tt.content, 0644); err != nil {
				t.Fatalf("failed to write file: %v", err)
			}

			got, err := HashFile(path)
			if err != nil {
				t.Fatalf("HashFile() error = %v", err)
			}

			want := tt.want
			if want == "" {
				sum := md5.Sum(tt.content)
				want = hex.EncodeToString(sum[:])
			}

			if got != want {
				t.Errorf("HashFile() = %s, want %s", got, want)
			}
		})
	}
}

func TestHashFileIdenticalContent(t *testing.T) {
	dir := t.TempDir()
	content := bytes.Repeat([]byte("same bytes "), 2000)

	a := filepath.Join(dir, "a.bin")
	b := filepath.Join(dir, "sub", "b.bin")
	os.MkdirAll(filepath.Dir(b), 0755)
	os.WriteFile(a, content, 0644)
	os.WriteFile(b, content, 0644)

	hashA, err := HashFile(a)
	if err != nil {
		t.Fatalf("HashFile(a) error = %v", err)
	}
	hashB, err := HashFile(b)
	if err != nil {
		t.Fatalf("HashFile(b) error = %v", err)
	}

	if hashA != hashB {
		t.Errorf("identical files hash differently: %s vs %s", hashA, hashB)
	}
}

func TestHashFileMissing(t *testing.T) {
	_, err := HashFile(filepath.Join(t.TempDir(), "nope.bin"))
	if err == nil {
		t.Error("HashFile() expected error for missing file")
	}
}
