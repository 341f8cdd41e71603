package session

import (
	"testing"
	"time"
)

// FuzzDecode exercises the binary session decoder with arbitrary bytes.
// Goal: no panics; invalid blobs must be rejected with errors.
func FuzzDecode(f *testing.F) {
	valid, err := Encode(&Session{
		Username:    "fuzz@example.com",
		AccessToken: "header.payload.signature",
		CreatedAt:   time.Now().Unix(),
		ExpiresAt:   time.Now().Add(time.Hour).Unix(),
	})
	if err != nil {
		f.Fatal(err)
	}

	f.Add(valid)
	f.Add([]byte{})
	f.Add([]byte{1})
	f.Add([]byte{1, 0})
	f.Add([]byte{2, 1, 'a'})

	f.Fuzz(func(t *testing.T, data []byte) {
		sess, err := Decode(data)
		if err != nil {
			return
		}
		if sess.Username == "" || sess.AccessToken == "" {
			t.Fatal("Decode accepted a record with empty required fields")
		}
		reencoded, err := Encode(sess)
		if err != nil {
			t.Fatalf("re-encode of decoded record failed: %v", err)
		}
		if string(reencoded) != string(data) {
			t.Fatal("decode/encode round trip is not stable")
		}
	})
}
