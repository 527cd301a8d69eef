package container

import (
	"dcareport/internal/application/port"
	"dcareport/internal/application/service"
)

type Container struct {
	history port.HistoryRepository
	orders  port.OrderHistoryClient

	historyFetcher *service.HistoryFetcher
}

func New(history port.HistoryRepository, orders port.OrderHistoryClient) *Container {
	return &Container{
		history: history,
		orders:  orders,
	}
}

func (c *Container) History() port.HistoryRepository {
	return c.history
}

func (c *Container) HistoryFetcher() *service.HistoryFetcher {
	if c.historyFetcher == nil {
		c.historyFetcher = service.NewHistoryFetcher(c.orders)
	}
	return c.historyFetcher
}

func (c *Container) Close() error {
	return c.history.Close()
}
