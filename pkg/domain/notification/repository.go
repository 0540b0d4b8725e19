package notification

import "context"

//go:generate mockery --name=Repository --dir=. --output=./mocks --filename=notification_repository_mock.go --case=underscore --with-expecter
type Repository interface {
	Save(ctx context.Context, notification *Notification) error
}
