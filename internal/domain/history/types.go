package history

import (
	"context"
	"time"
)

// Entry is one finished analysis as shown in the recent list.
type Entry struct {
	ProductName  string    `json:"product_name"`
	ProductType  string    `json:"product_type"`
	Score        *int      `json:"score,omitempty"`
	TrafficLight string    `json:"traffic_light"`
	Source       string    `json:"source"`
	ImageURL     string    `json:"image_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Store keeps a bounded, newest first list of entries per user.
type Store interface {
	Append(ctx context.Context, userID int64, entry Entry, limit int) error
	Recent(ctx context.Context, userID int64, limit int) ([]Entry, error)
}

// Config bounds the list.
type Config struct {
	Limit int
}
