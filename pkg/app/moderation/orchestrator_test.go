package moderation_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/NeuralTrust/SafeChat/pkg/app/audit"
	"github.com/NeuralTrust/SafeChat/pkg/app/generation"
	generationmocks "github.com/NeuralTrust/SafeChat/pkg/app/generation/mocks"
	"github.com/NeuralTrust/SafeChat/pkg/app/moderation"
	"github.com/NeuralTrust/SafeChat/pkg/app/safety"
	"github.com/NeuralTrust/SafeChat/pkg/domain"
	"github.com/NeuralTrust/SafeChat/pkg/domain/conversation"
	conversationmocks "github.com/NeuralTrust/SafeChat/pkg/domain/conversation/mocks"
	"github.com/NeuralTrust/SafeChat/pkg/domain/notification"
	notificationmocks "github.com/NeuralTrust/SafeChat/pkg/domain/notification/mocks"
	"github.com/NeuralTrust/SafeChat/pkg/infra/providers"
	providermocks "github.com/NeuralTrust/SafeChat/pkg/infra/providers/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const violenceReplyID = "Kekerasan bisa menyakiti orang lain. Kalau kamu sedang marah, coba tarik napas dalam-dalam dan ceritakan ke orang tua atau guru, ya."

type fixture struct {
	registry      *safety.Registry
	logger        *logrus.Logger
	turns         *conversationmocks.Repository
	notifications *notificationmocks.Repository
	sink          *audit.Sink
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	registry, err := safety.LoadRegistry("")
	require.NoError(t, err)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	f := &fixture{
		registry:      registry,
		logger:        logger,
		turns:         conversationmocks.NewRepository(t),
		notifications: notificationmocks.NewRepository(t),
	}
	f.sink = audit.NewSink(logger, f.turns, f.notifications)
	f.sink.Start(1)
	return f
}

func (f *fixture) orchestrator(generator generation.Generator) *moderation.Orchestrator {
	return moderation.NewOrchestrator(
		f.logger,
		safety.NewScorer(f.registry),
		safety.NewPolicy(f.registry),
		generator,
		f.sink,
	)
}

func TestHandle_GreetingFromStaticCatalog(t *testing.T) {
	f := newFixture(t)
	f.turns.On("Save", mock.Anything, mock.Anything).Return(nil).Twice()

	adapter := generation.NewAdapter(f.logger, generation.NewStaticCatalog("id"))
	reply, err := f.orchestrator(adapter).Handle(context.Background(), moderation.Request{
		Message: "halo",
		ChildID: "child-1",
		Locale:  "id",
	})
	require.NoError(t, err)
	f.sink.Shutdown()

	assert.Equal(t, "Halo juga! Aku teman ngobrolmu. Mau cerita atau tanya apa hari ini?", reply.Response)
	assert.False(t, reply.Filtered)
	assert.Equal(t, 100, reply.SafetyScore)
	assert.Equal(t, generation.SourceFallback, reply.Source)
	f.notifications.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestHandle_ViolenceIsBlockedBeforeGeneration(t *testing.T) {
	f := newFixture(t)
	generator := generationmocks.NewGenerator(t)

	f.turns.On("Save", mock.Anything, mock.MatchedBy(func(turn *conversation.Turn) bool {
		return turn.Sender == conversation.SenderChild && turn.Flagged && turn.SafetyScore == 60
	})).Return(nil).Once()
	f.turns.On("Save", mock.Anything, mock.MatchedBy(func(turn *conversation.Turn) bool {
		return turn.Sender == conversation.SenderSystem &&
			turn.Content == violenceReplyID &&
			turn.Flagged &&
			turn.FilterReason != nil && *turn.FilterReason == "violence"
	})).Return(nil).Once()
	f.notifications.On("Save", mock.Anything, mock.MatchedBy(func(n *notification.Notification) bool {
		return n.ChildID == "child-1" && n.Severity == "high"
	})).Return(nil).Once()

	reply, err := f.orchestrator(generator).Handle(context.Background(), moderation.Request{
		Message: "aku mau pukul dia",
		ChildID: "child-1",
		Locale:  "id",
	})
	require.NoError(t, err)
	f.sink.Shutdown()

	assert.True(t, reply.Filtered)
	assert.Equal(t, violenceReplyID, reply.Response)
	assert.Equal(t, moderation.StageBlocked, reply.Stage)
	assert.Equal(t, safety.SeverityHigh, reply.Input.Severity)
	assert.True(t, reply.Input.ShouldBlock)
	assert.Equal(t, generation.SourceFallback, reply.Source)
	generator.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandle_BackendTimeoutFallsThroughToEmergency(t *testing.T) {
	f := newFixture(t)
	f.turns.On("Save", mock.Anything, mock.Anything).Return(nil).Twice()

	client := providermocks.NewClient(t)
	client.EXPECT().Ask(mock.Anything, mock.Anything, mock.Anything).
		RunAndReturn(func(ctx context.Context, _ *providers.Config, _ string) (*providers.CompletionResponse, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		}).Once()

	adapter := generation.NewAdapter(f.logger, generation.NewStaticCatalog("id"),
		generation.WithBackend(client, providers.Config{Model: "test"}),
		generation.WithTimeout(20*time.Millisecond),
	)
	reply, err := f.orchestrator(adapter).Handle(context.Background(), moderation.Request{
		Message: "ceritakan tentang dinosaurus",
		ChildID: "child-1",
		Locale:  "id",
	})
	require.NoError(t, err)
	f.sink.Shutdown()

	assert.Equal(t, generation.SourceEmergency, reply.Source)
	assert.False(t, reply.Filtered)
	assert.NotEmpty(t, reply.Response)
	require.NotNil(t, reply.Output)
	assert.False(t, reply.Output.ShouldBlock)
}

func TestHandle_UnsafeGeneratedReplyIsSubstituted(t *testing.T) {
	f := newFixture(t)
	generator := generationmocks.NewGenerator(t)
	generated := "Kadang ada anak yang dibully di sekolah."
	generator.EXPECT().Generate(mock.Anything, "ceritakan tentang sekolah", "id").
		Return(generation.Result{Text: generated, Source: generation.SourcePrimary}).Once()

	bullyingReply := f.registry.Response("bullying", "id")

	f.turns.On("Save", mock.Anything, mock.MatchedBy(func(turn *conversation.Turn) bool {
		return turn.Sender == conversation.SenderChild && !turn.Flagged
	})).Return(nil).Once()
	f.turns.On("Save", mock.Anything, mock.MatchedBy(func(turn *conversation.Turn) bool {
		return turn.Sender == conversation.SenderSystem &&
			turn.Flagged &&
			turn.Content == bullyingReply &&
			turn.FilterReason != nil && *turn.FilterReason == "bullying"
	})).Return(nil).Once()
	f.notifications.On("Save", mock.Anything, mock.MatchedBy(func(n *notification.Notification) bool {
		return n.Severity == "medium"
	})).Return(nil).Once()

	reply, err := f.orchestrator(generator).Handle(context.Background(), moderation.Request{
		Message: "ceritakan tentang sekolah",
		ChildID: "child-1",
		Locale:  "id",
	})
	require.NoError(t, err)
	f.sink.Shutdown()

	assert.True(t, reply.Filtered)
	assert.Equal(t, bullyingReply, reply.Response)
	assert.NotEqual(t, generated, reply.Response)
	assert.Equal(t, "bullying", reply.Reason)
	assert.Equal(t, generation.SourcePrimary, reply.Source)
	require.NotNil(t, reply.Output)
	assert.Equal(t, reply.Output.Score, reply.SafetyScore)
}

func TestHandle_NoChildMeansNoTurns(t *testing.T) {
	f := newFixture(t)
	adapter := generation.NewAdapter(f.logger, generation.NewStaticCatalog("id"))

	_, err := f.orchestrator(adapter).Handle(context.Background(), moderation.Request{Message: "halo"})
	require.NoError(t, err)
	_, err = f.orchestrator(adapter).Handle(context.Background(), moderation.Request{Message: "aku mau pukul dia"})
	require.NoError(t, err)
	f.sink.Shutdown()

	f.turns.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	f.notifications.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestHandle_UnknownLocaleUsesDefault(t *testing.T) {
	f := newFixture(t)
	adapter := generation.NewAdapter(f.logger, generation.NewStaticCatalog("id"))

	reply, err := f.orchestrator(adapter).Handle(context.Background(), moderation.Request{
		Message: "aku mau pukul dia",
		Locale:  "fr",
	})
	require.NoError(t, err)
	f.sink.Shutdown()
	assert.Equal(t, violenceReplyID, reply.Response)
}

func TestHandle_Errors(t *testing.T) {
	f := newFixture(t)
	defer f.sink.Shutdown()
	generator := generationmocks.NewGenerator(t)

	_, err := f.orchestrator(generator).Handle(context.Background(), moderation.Request{Message: "   "})
	assert.True(t, domain.IsValidationError(err))

	unsafe := moderation.NewOrchestrator(f.logger, nil, nil, generator, f.sink)
	reply, err := unsafe.Handle(context.Background(), moderation.Request{Message: "halo"})
	assert.Nil(t, reply)
	assert.ErrorIs(t, err, domain.ErrSafetyUnavailable)
}
