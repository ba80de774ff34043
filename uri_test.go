package playcore

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeURIFileScheme(t *testing.T) {
	got := NormalizeURI("file:///home/user/movie.mp4")
	require.Equal(t, "/home/user/movie.mp4", got.Path)
	require.Empty(t, got.MediaURL)
	require.Empty(t, got.ForcedInputFormat)
}

func TestNormalizeURIUNCPath(t *testing.T) {
	uncPath := `\\server\share\movie.mp4`
	got := NormalizeURI(uncPath)
	require.Equal(t, uncPath, got.Path)
}

func TestNormalizeURIDeviceScheme(t *testing.T) {
	got := NormalizeURI("device://dshow?video=Integrated%20Webcam")
	require.Equal(t, "dshow", got.ForcedInputFormat)
	require.Equal(t, "video=Integrated Webcam", got.MediaURL)
	require.Empty(t, got.Path)
}

func TestNormalizeURIFormatScheme(t *testing.T) {
	got := NormalizeURI("format://rawvideo?size=640x480")
	require.Equal(t, "rawvideo", got.ForcedInputFormat)
	require.Equal(t, "size=640x480", got.MediaURL)
}

func TestNormalizeURIPassThrough(t *testing.T) {
	got := NormalizeURI("https://example.com/stream.m3u8")
	require.Equal(t, "https://example.com/stream.m3u8", got.MediaURL)
	require.Empty(t, got.Path)
	require.Empty(t, got.ForcedInputFormat)
}

func TestNormalizeURIInvalidFallsBackToMediaURL(t *testing.T) {
	raw := "http://example.com/%zz"
	got := NormalizeURI(raw)
	require.Equal(t, raw, got.MediaURL, "unparseable percent-encoding falls back to the raw string")
}
