package gateway

import (
	"context"
	"net/http"

	"github.com/SHILUNKA/edusaas-sub001/internal/model"
)

// RoomGateway 上游教室资源网关
// 仅在排课草稿未显式给容量时取教室默认座位数
type RoomGateway interface {
	GetRoom(ctx context.Context, token, roomID string) (*model.Room, error)
}

type roomGateway struct {
	client *client
}

func (g *roomGateway) GetRoom(ctx context.Context, token, roomID string) (*model.Room, error) {
	var room model.Room
	if err := g.client.do(ctx, http.MethodGet, "/base/rooms/"+roomID, token, nil, &room, nil); err != nil {
		return nil, err
	}
	return &room, nil
}
