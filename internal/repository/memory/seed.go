package memory

import (
	"time"

	"github.com/google/uuid"

	"localsphere-backend/internal/domain"
)

// SeedDemoData loads a demo roster and a handful of recent messages
// into the stores, so a fresh process has something to show.
func SeedDemoData(users *UserRepository, messages *MessageRepository) {
	now := time.Now()

	demoUsers := []struct {
		username string
		lat, lng float64
		radius   float64
	}{
		{"CoolPanda", 40.7589, -73.9851, 2},
		{"SwiftEagle", 40.7614, -73.9776, 1},
		{"BrightFox", 40.7505, -73.9934, 2},
		{"WarmWolf", 40.7648, -73.9808, 5},
		{"HappyDolphin", 40.7580, -73.9855, 1},
	}

	users.mu.Lock()
	for _, d := range demoUsers {
		lat, lng := d.lat, d.lng
		id := uuid.New().String()
		users.users[id] = &domain.User{
			ID:        id,
			Username:  d.username,
			Latitude:  &lat,
			Longitude: &lng,
			Radius:    d.radius,
			IsActive:  true,
			CreatedAt: now,
			LastSeen:  now,
		}
	}
	users.mu.Unlock()

	demoMessages := []struct {
		username   string
		content    string
		lat, lng   float64
		minutesAgo int
	}{
		{"CoolPanda", "Anyone know what time the farmer's market closes today?", 40.7589, -73.9851, 15},
		{"SwiftEagle", "Just saw a food truck on 42nd street with amazing tacos!", 40.7614, -73.9776, 8},
		{"BrightFox", "Is anyone else hearing that street musician by the park? They're incredible!", 40.7505, -73.9934, 25},
		{"WarmWolf", "Coffee shop on the corner has free WiFi if anyone needs it", 40.7648, -73.9808, 5},
	}

	messages.mu.Lock()
	for _, d := range demoMessages {
		id := uuid.New().String()
		createdAt := now.Add(-time.Duration(d.minutesAgo) * time.Minute)
		messages.messages[id] = &domain.Message{
			ID:        id,
			UserID:    "demo-" + d.username,
			Username:  d.username,
			Content:   d.content,
			Latitude:  d.lat,
			Longitude: d.lng,
			Radius:    2,
			CreatedAt: createdAt,
			ExpiresAt: createdAt.Add(domain.MessageTTL),
		}
	}
	messages.mu.Unlock()
}
