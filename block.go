package playcore

import (
	"time"

	"github.com/kolibri-av/playcore/internal/block"
)

// MediaBlock is the public view of a decoded presentation unit (spec
// §3). It is handed to [Renderer] implementations; the Payload is a
// shared, read-only view valid only for the duration of one Render
// call.
type MediaBlock struct {
	Type              MediaType
	StartTime         time.Duration
	EndTime           time.Duration
	Index             uint64
	IsAttachedPicture bool
	Payload           any
}

// Duration returns EndTime - StartTime.
func (b MediaBlock) Duration() time.Duration { return b.EndTime - b.StartTime }

func internalMediaType(t MediaType) block.MediaType {
	switch t {
	case MediaTypeAudio:
		return block.TypeAudio
	case MediaTypeVideo:
		return block.TypeVideo
	case MediaTypeSubtitle:
		return block.TypeSubtitle
	default:
		return block.TypeNone
	}
}

func publicMediaType(t block.MediaType) MediaType {
	switch t {
	case block.TypeAudio:
		return MediaTypeAudio
	case block.TypeVideo:
		return MediaTypeVideo
	case block.TypeSubtitle:
		return MediaTypeSubtitle
	default:
		return MediaTypeNone
	}
}

func toPublicBlock(b block.Block) MediaBlock {
	return MediaBlock{
		Type:              publicMediaType(b.Type),
		StartTime:         b.StartTime,
		EndTime:           b.EndTime,
		Index:             b.Index,
		IsAttachedPicture: b.IsAttachedPicture,
		Payload:           b.Payload,
	}
}

func toInternalBlock(b MediaBlock) block.Block {
	return block.Block{
		Type:              internalMediaType(b.Type),
		StartTime:         b.StartTime,
		EndTime:           b.EndTime,
		Index:             b.Index,
		IsAttachedPicture: b.IsAttachedPicture,
		Payload:           b.Payload,
	}
}
