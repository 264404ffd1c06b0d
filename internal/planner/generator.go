package planner

import (
	"context"

	"alcyxob/confidence-coach/internal/domain"
	"alcyxob/confidence-coach/internal/llm"

	"go.uber.org/zap"
)

// Generator drafts plans. It never returns an error: provider and parse
// failures become a FallbackPlan.
type Generator struct {
	completer llm.Completer
	logger    *zap.Logger
}

func NewGenerator(completer llm.Completer, logger *zap.Logger) *Generator {
	return &Generator{completer: completer, logger: logger}
}

// Draft asks the provider for a plan and validates the answer.
func (g *Generator) Draft(ctx context.Context, user *domain.User, responses domain.Responses) Outcome {
	text, err := g.completer.Complete(ctx, SystemPrompt, BuildPrompt(user, responses))
	if err != nil {
		g.logger.Warn("plan provider call failed, using fallback plan",
			zap.String("userId", user.ID.Hex()), zap.Error(err))
		return Fallback(err)
	}

	parsed, err := Parse(text)
	if err != nil {
		g.logger.Warn("plan provider response unusable, using fallback plan",
			zap.String("userId", user.ID.Hex()), zap.Error(err))
		return Fallback(err)
	}
	return parsed
}
