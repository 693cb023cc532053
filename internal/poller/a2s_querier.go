package poller

import (
	"context"
	"fmt"
	"reployer/internal/models"
	"reployer/internal/services/interfaces"
	"time"

	"github.com/rumblefrog/go-a2s"
)

// A2SQuerier asks a Source engine server for A2S_INFO and A2S_PLAYER.
type A2SQuerier struct{}

func NewA2SQuerier() interfaces.StatusQuerierInterface {
	return &A2SQuerier{}
}

func (q *A2SQuerier) Query(ctx context.Context, address string, timeout time.Duration) (*models.ServerStatus, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	client, err := a2s.NewClient(address, a2s.TimeoutOption(timeout))
	if err != nil {
		return nil, fmt.Errorf("a2s client %s: %w", address, err)
	}
	defer client.Close()

	info, err := client.QueryInfo()
	if err != nil {
		return nil, fmt.Errorf("a2s info: %w", err)
	}
	players, err := client.QueryPlayer()
	if err != nil {
		return nil, fmt.Errorf("a2s players: %w", err)
	}

	status := &models.ServerStatus{
		ServerName: info.Name,
		MapName:    info.Map,
		MaxPlayers: int(info.MaxPlayers),
		Players:    make([]models.Player, 0, len(players.Players)),
	}
	for _, p := range players.Players {
		if p == nil {
			continue
		}
		status.Players = append(status.Players, models.Player{Name: p.Name, Duration: float64(p.Duration)})
	}
	status.PlayerCount = len(status.Players)
	return status, nil
}
