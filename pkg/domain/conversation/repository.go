package conversation

import "context"

//go:generate mockery --name=Repository --dir=. --output=./mocks --filename=conversation_repository_mock.go --case=underscore --with-expecter
type Repository interface {
	Save(ctx context.Context, turn *Turn) error
	ListByChild(ctx context.Context, childID string, limit int) ([]Turn, error)
}
