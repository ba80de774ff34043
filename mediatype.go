package playcore

// MediaType tags the kind of media stream a block, buffer, clock or
// renderer refers to. [MediaTypeNone] is a sentinel meaning "the
// reference/all types", used by operations that apply to every
// component at once.
type MediaType uint8

const (
	MediaTypeNone MediaType = iota
	MediaTypeAudio
	MediaTypeVideo
	MediaTypeSubtitle
)

// String returns a lowercase name, used in log fields and error messages.
func (t MediaType) String() string {
	switch t {
	case MediaTypeAudio:
		return "audio"
	case MediaTypeVideo:
		return "video"
	case MediaTypeSubtitle:
		return "subtitle"
	case MediaTypeNone:
		return "none"
	default:
		return "unknown"
	}
}

// AllMediaTypes lists the three concrete media types, excluding
// [MediaTypeNone].
var AllMediaTypes = [3]MediaType{MediaTypeAudio, MediaTypeVideo, MediaTypeSubtitle}
