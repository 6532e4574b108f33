package rec_test

import (
	"errors"
	"fmt"
	"log"

	"github.com/elmatools/acrossrec/pkg/rec"
)

func ExampleDecode() {
	encoded, err := rec.Encode(&rec.Replay{
		FrameCount: 1,
		Header:     rec.LegacyHeader{InternalLevel: 81},
		Frames:     []rec.Frame{{Direction: rec.Right, Throttling: true}},
		Events: []rec.Event{
			{Time: 1.5, Object: rec.NoObject, Kind: rec.Apple, Volume: 1},
		},
	})
	if err != nil {
		log.Fatal(err)
	}

	replay, err := rec.Decode(encoded)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("version %d, level %d\n", replay.Header.Version(), replay.Header.Level())
	fmt.Printf("%d frame(s), first event %s at %.1f\n", replay.FrameCount, replay.Events[0].Kind, replay.Events[0].Time)
	// Output:
	// version 100, level 81
	// 1 frame(s), first event apple at 1.5
}

func ExampleDecodeError() {
	_, err := rec.Decode([]byte{1, 0, 0, 0, 120, 0, 0, 0})

	var de *rec.DecodeError
	if errors.As(err, &de) {
		fmt.Println(de.Stage, de.Offset, errors.Is(err, rec.ErrTruncatedInput))
	}
	// Output:
	// header 4 true
}
