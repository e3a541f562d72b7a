package cache

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// GenerateKey creates a cache key with prefix and ID.
func GenerateKey(prefix string, id string) string {
	return fmt.Sprintf("%s:%s", prefix, id)
}

// RequestKey builds a key from a prefix and the JSON form of a request value.
func RequestKey(prefix string, req interface{}) string {
	b, err := json.Marshal(req)
	if err != nil {
		b = []byte(fmt.Sprintf("%v", req))
	}
	return GenerateKey(prefix, HashKey(string(b)))
}

// HashKey generates a short stable hash of a key.
func HashKey(key string) string {
	sum := sha1.Sum([]byte(key))
	return hex.EncodeToString(sum[:10])
}
