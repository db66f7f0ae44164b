package notify

import "context"

// Sender delivers one message to an outside channel.
type Sender interface {
	Send(ctx context.Context, title, text string) error
}
