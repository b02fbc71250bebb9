package utils

import (
	"crypto/sha1"
	"encoding/hex"
	"math/rand"
	"strings"
	"time"
	"unicode/utf8"
)

const alphabet = "abcdefghijklmnopqrstuvwxyz"

var random = rand.New(rand.NewSource(time.Now().UnixNano()))

// ContainsString returns true iff the provided string slice hay contains string
// needle.
func ContainsString(hay []string, needle string) bool {
	for _, str := range hay {
		if str == needle {
			return true
		}
	}
	return false
}

// UniqueNonEmptyStrings trims every string and drops empty ones and
// duplicates, keeping the first occurrence order.
func UniqueNonEmptyStrings(strs []string) []string {
	res := []string{}
	for _, s := range strs {
		s = strings.TrimSpace(s)
		if s == "" || ContainsString(res, s) {
			continue
		}
		res = append(res, s)
	}
	return res
}

func RandomAlphabetString(length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = alphabet[random.Intn(len(alphabet))]
	}
	return string(b)
}

// ContentToSha1Hash returns the lowercase hex sha1 digest of content.
func ContentToSha1Hash(content []byte) string {
	sum := sha1.Sum(content)
	return hex.EncodeToString(sum[:])
}

// GetFileExtName returns the text after the last "." of name, or "" if name
// has no ".".
func GetFileExtName(name string) string {
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return ""
	}
	return name[idx+1:]
}

// TruncateRunes cuts s down to at most n characters.
func TruncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// CharLength counts characters, not bytes.
func CharLength(s string) int {
	return utf8.RuneCountInString(s)
}
