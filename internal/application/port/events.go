package port

import "context"

//go:generate mockgen -source=events.go -destination=mocks/mock_events.go

// TopicSwitchWebApp is published when a global shortcut resolves to a webapp.
const TopicSwitchWebApp = "switch-webapp"

// EventPublisher pushes hub events toward the presentation layer.
type EventPublisher interface {
	PublishSwitchWebApp(ctx context.Context, webappID string)
}
