package notify

import "context"

// SendFunc adapts a function to the Mailer interface.
type SendFunc func(ctx context.Context, to, code string) error

func (f SendFunc) SendCode(ctx context.Context, to, code string) error {
	return f(ctx, to, code)
}
