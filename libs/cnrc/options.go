package cnrc

import "time"

type Option func(*Client) error

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) error {
		c.c.SetTimeout(timeout)
		return nil
	}
}

// WithRetries makes the client retry failed requests count times, waiting at least
// wait between attempts.
func WithRetries(count int, wait time.Duration) Option {
	return func(c *Client) error {
		c.c.SetRetryCount(count).SetRetryWaitTime(wait)
		return nil
	}
}
