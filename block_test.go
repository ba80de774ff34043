package playcore

import (
	"testing"
	"time"

	"github.com/kolibri-av/playcore/internal/block"
	"github.com/stretchr/testify/require"
)

func TestMediaTypeRoundTripsThroughInternal(t *testing.T) {
	for _, pub := range AllMediaTypes {
		require.Equal(t, pub, publicMediaType(internalMediaType(pub)))
	}
	require.Equal(t, MediaTypeNone, publicMediaType(internalMediaType(MediaTypeNone)))
}

func TestBlockRoundTripsThroughInternal(t *testing.T) {
	orig := MediaBlock{
		Type:              MediaTypeVideo,
		StartTime:         time.Second,
		EndTime:           2 * time.Second,
		Index:             7,
		IsAttachedPicture: true,
		Payload:           "frame-data",
	}

	got := toPublicBlock(toInternalBlock(orig))
	require.Equal(t, orig, got)
}

func TestMediaBlockDuration(t *testing.T) {
	b := MediaBlock{StartTime: time.Second, EndTime: 3 * time.Second}
	require.Equal(t, 2*time.Second, b.Duration())
}

func TestInternalMediaTypeUnknownMapsToNone(t *testing.T) {
	require.Equal(t, block.TypeNone, internalMediaType(MediaType(99)))
	require.Equal(t, MediaTypeNone, publicMediaType(block.MediaType(99)))
}
