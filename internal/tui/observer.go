package tui

// ChannelNotifier adapts domain.Notifier to a channel for Bubble Tea.
type ChannelNotifier struct {
	ch chan<- string
}

// NewChannelNotifier creates a new channel-based notifier.
func NewChannelNotifier(ch chan<- string) *ChannelNotifier {
	return &ChannelNotifier{ch: ch}
}

// Toast sends msg to the channel (non-blocking if full).
func (n *ChannelNotifier) Toast(msg string) {
	select {
	case n.ch <- msg:
	default: // Non-blocking if channel full
	}
}
