package session

import "testing"

// FuzzSessionDecode checks that arbitrary blobs never panic the decoder and
// that anything it accepts re-encodes to the same bytes.
func FuzzSessionDecode(f *testing.F) {
	sess := &Session{
		SessionID:    "sid-fuzz",
		UserID:       "user1",
		AccessToken:  "a.b.c",
		RefreshToken: "r",
		CreatedAt:    1700000000,
		ExpiresAt:    1700003600,
	}
	encoded, err := Encode(sess)
	if err == nil {
		f.Add(encoded)
	}

	f.Add([]byte{})
	f.Add([]byte{0})
	f.Add([]byte{1})
	f.Add([]byte{1, 255, 255, 255})
	f.Add([]byte{1, 0, 0, 0, 0, 0xff, 0xff, 0xff, 0xff})

	if len(encoded) > 10 {
		f.Add(encoded[:10])
	}

	f.Fuzz(func(t *testing.T, data []byte) {
		s, err := Decode(data)
		if err != nil {
			return
		}
		again, err := Encode(s)
		if err != nil {
			t.Fatalf("re-encode of decoded session failed: %v", err)
		}
		if string(again) != string(data[:len(again)]) {
			t.Fatalf("re-encode mismatch")
		}
	})
}
