package assistant

import (
	"context"
	"errors"
	"strings"

	"github.com/yungbote/accessly-backend/internal/domain/scan"
	"github.com/yungbote/accessly-backend/internal/observability"
	"github.com/yungbote/accessly-backend/internal/platform/apierr"
	"github.com/yungbote/accessly-backend/internal/platform/logger"
)

// TextGenerator is the model call; the openai client satisfies it.
type TextGenerator interface {
	GenerateText(ctx context.Context, system string, user string) (string, error)
}

type Service interface {
	Ask(ctx context.Context, messages []Message, violations []scan.Violation) (string, error)
}

type service struct {
	log *logger.Logger
	gen TextGenerator
}

// NewService accepts a nil generator; every on-topic question then fails
// with AssistantUnavailable.
func NewService(log *logger.Logger, gen TextGenerator) Service {
	return &service{log: log.With("service", "AssistantService"), gen: gen}
}

var errNoGenerator = errors.New("assistant model not configured")

func (s *service) Ask(ctx context.Context, messages []Message, violations []scan.Violation) (string, error) {
	question := LatestUserQuestion(messages)
	if !Gate(question) {
		observability.Current().IncAssistantGate("refused")
		return RefusalMessage, nil
	}
	observability.Current().IncAssistantGate("accepted")

	if s.gen == nil {
		return "", apierr.AssistantUnavailable(errNoGenerator)
	}
	system, user, err := BuildPrompt(question, violations)
	if err != nil {
		return "", apierr.AssistantUnavailable(err)
	}
	text, err := s.gen.GenerateText(ctx, system, user)
	if err != nil {
		s.log.Warn("assistant generation failed", "error", err, "violations", len(violations))
		return "", apierr.AssistantUnavailable(err)
	}
	return strings.TrimSpace(text), nil
}
