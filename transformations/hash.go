package transformations

import (
	"context"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"io"
)

// Hash writes the lowercase hex digest of the UTF-8 input.
type Hash struct {
	New func() hash.Hash
}

func (t *Hash) Transform(ctx context.Context, input string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	h := t.New()
	_, _ = io.WriteString(h, input)
	return hex.EncodeToString(h.Sum(nil)), nil
}

var (
	MD5    = &Hash{New: md5.New}
	SHA1   = &Hash{New: sha1.New}
	SHA256 = &Hash{New: sha256.New}
)
