package util

import (
	"log"
	"math/rand"
	"time"
)

// Logging is a blunt global switch for Logf.
//
// Chat sessions are chatty; tests and tools that want the noise flip
// this to true.
var Logging = false

// Logf calls log.Printf when Logging says to.
func Logf(format string, args ...interface{}) {
	if !Logging {
		return
	}
	log.Printf(format, args...)
}

// alphabet is used by Gensym.
var alphabet = []byte("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")

// Gensym makes a random string of the given length.  Not a symbol,
// despite the name, but the name is traditional.
func Gensym(n int) string {
	bs := make([]byte, n)
	for i := 0; i < len(bs); i++ {
		bs[i] = alphabet[rand.Intn(len(alphabet))]
	}
	return string(bs)
}

// Timestamp returns the current time in RFC3339Nano.
func Timestamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
