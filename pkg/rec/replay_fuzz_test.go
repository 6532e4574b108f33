//go:build fuzz
// +build fuzz

package rec

import (
	"testing"
)

// FuzzDecode checks that Decode never panics and that anything it accepts
// re-encodes to a prefix of the input.
func FuzzDecode(f *testing.F) {
	f.Add(legacyAppleReplay())
	for _, rp := range testReplays() {
		b, err := Encode(rp)
		if err != nil {
			f.Fatal(err)
		}
		f.Add(b)
	}
	f.Add([]byte{})
	f.Add([]byte{0, 0, 0, 0, 120, 0, 0, 0})

	f.Fuzz(func(t *testing.T, data []byte) {
		rp, err := Decode(data)
		if err != nil {
			return
		}
		out, err := Encode(rp)
		if err != nil {
			t.Fatalf("decoded replay does not re-encode: %v", err)
		}
		if len(out) > len(data) {
			t.Fatalf("re-encoded %d bytes from %d input bytes", len(out), len(data))
		}
		again, err := Decode(out)
		if err != nil {
			t.Fatalf("re-encoded replay does not decode: %v", err)
		}
		if again.FrameCount != rp.FrameCount || len(again.Events) != len(rp.Events) {
			t.Fatalf("round trip changed shape")
		}
	})
}
