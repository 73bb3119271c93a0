package utils

import (
	"crypto/md5"
	"encoding/hex"
	"io"
	"os"
)

// HashChunkSize is the read buffer used when hashing file contents.
// Reading in fixed chunks keeps memory constant regardless of file size.
const HashChunkSize = 8 * 1024

// HashFile computes the MD5 digest of a file's contents, reading in
// HashChunkSize chunks. The digest is returned as a lowercase hex string.
// A zero-byte file hashes to the well-known empty-input digest.
func HashFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash := md5.New()
	buf := make([]byte, HashChunkSize)

	for {
		n, err := file.Read(buf)
		if n > 0 {
			hash.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
	}

	return hex.EncodeToString(hash.Sum(nil)), nil
}
