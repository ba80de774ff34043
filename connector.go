package playcore

import "time"

// Connector receives optional lifecycle notifications emitted by the
// core (spec §6). A host that doesn't need notifications can embed
// [NopConnector] and override only the methods it cares about.
type Connector interface {
	OnMediaInitializing(uri string)
	OnMediaOpening(uri string)
	OnMediaOpened(uri string)
	OnMediaClosing()
	OnMediaClosed()
	OnMediaChanging()
	OnMediaChanged()
	OnMediaFailed(err error)

	OnBufferingStarted()
	OnBufferingEnded()

	OnSeekingStarted()
	OnSeekingEnded()

	OnMediaEnded()
	OnMediaStateChanged(old, new PlaybackState)
	OnPositionChanged(old, new time.Duration)

	OnPacketRead(mediaType MediaType)
	OnMessageLogged(msg string)
}

// NopConnector implements [Connector] with no-op methods, so hosts can
// embed it and override only the notifications they need.
type NopConnector struct{}

func (NopConnector) OnMediaInitializing(string)               {}
func (NopConnector) OnMediaOpening(string)                     {}
func (NopConnector) OnMediaOpened(string)                      {}
func (NopConnector) OnMediaClosing()                           {}
func (NopConnector) OnMediaClosed()                            {}
func (NopConnector) OnMediaChanging()                          {}
func (NopConnector) OnMediaChanged()                           {}
func (NopConnector) OnMediaFailed(error)                       {}
func (NopConnector) OnBufferingStarted()                       {}
func (NopConnector) OnBufferingEnded()                         {}
func (NopConnector) OnSeekingStarted()                         {}
func (NopConnector) OnSeekingEnded()                            {}
func (NopConnector) OnMediaEnded()                              {}
func (NopConnector) OnMediaStateChanged(old, new PlaybackState) {}
func (NopConnector) OnPositionChanged(old, new time.Duration)  {}
func (NopConnector) OnPacketRead(MediaType)                    {}
func (NopConnector) OnMessageLogged(string)                    {}

var _ Connector = NopConnector{}
