package service

import (
	"github.com/sensioair/sensio-mcp/internal/access"
	"github.com/sensioair/sensio-mcp/internal/cache"
)

// Services bundles the tool operations and their dispatcher for the
// transports.
type Services struct {
	Tools      *Tools
	Dispatcher *Dispatcher
}

func New(fetcher Fetcher, guard *access.Guard, c *cache.Manager, limits Limits) *Services {
	tools := NewTools(fetcher, guard, c, limits)
	return &Services{
		Tools:      tools,
		Dispatcher: NewDispatcher(tools),
	}
}
