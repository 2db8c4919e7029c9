package whatsapp

import "context"

// SendResult reports the outcome of one send attempt through the gateway.
type SendResult struct {
	Success   bool
	MessageID string
}

// Client defines an interface for sending messages through a WhatsApp
// gateway. This decouples the application logic from the concrete transport.
type Client interface {
	SendText(ctx context.Context, phoneNumber, body string) (*SendResult, error)
	SendMedia(ctx context.Context, phoneNumber, mediaURL, caption string) (*SendResult, error)
}
