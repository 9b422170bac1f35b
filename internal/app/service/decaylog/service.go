package decaylog

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/rotbot/rotbot-api/internal/models"
	"github.com/rotbot/rotbot-api/internal/platform/llm"
	"github.com/rotbot/rotbot-api/pkg/logctx"
)

// Moods accepted by Create.
var Moods = []string{"sadness", "anger", "anxiety", "numb", "joy", "apathy", "other"}

const remarkPrompt = `You are RotBot, a gothic therapist with a snarky, irreverent and clinical style. Write one short, darkly funny snide remark about the mood log entry below. Reference the mood or the note when you can. No headers, no special tokens, no role markers, only the remark. Rare moods like joy deserve mockery for their rarity; predictable ones like sadness for their predictability. Do not address the user directly.

Mood: %s
Note: %s`

var (
	chatHeader      = regexp.MustCompile(`<\|im_start\|>[\s\S]*?<\|im_sep\|>`)
	assistantPrefix = regexp.MustCompile(`(?i)^\s*assistant:?`)
)

type Service struct {
	repo Repository
	llm  llm.Completer
	log  *zap.SugaredLogger
}

func NewService(repo Repository, completer llm.Completer, log *zap.SugaredLogger) *Service {
	return &Service{repo: repo, llm: completer, log: log}
}

func (s *Service) Create(ctx context.Context, userID, mood, note string) (*models.DecayLogEntry, error) {
	mood = strings.ToLower(strings.TrimSpace(mood))
	if !lo.Contains(Moods, mood) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMood, mood)
	}
	e := &models.DecayLogEntry{UserID: userID, Mood: mood, Note: strings.TrimSpace(note)}
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	logctx.FromCtx(ctx, s.log).Infow("decay_log_created", "user_id", userID, "entry_id", e.ID, "mood", mood)
	return e, nil
}

func (s *Service) List(ctx context.Context, userID string) ([]*models.DecayLogEntry, error) {
	return s.repo.List(ctx, userID, 0)
}

// Latest returns the newest entry or nil when the log is empty.
func (s *Service) Latest(ctx context.Context, userID string) (*models.DecayLogEntry, error) {
	rows, err := s.repo.List(ctx, userID, 1)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

// Remark asks the model for a snide one-liner about an entry.
func (s *Service) Remark(ctx context.Context, userID string, entryID int64) (string, error) {
	e, err := s.repo.Get(ctx, userID, entryID)
	if err != nil {
		return "", err
	}
	note := e.Note
	if note == "" {
		note = "(none)"
	}
	out, err := s.llm.Complete(ctx, []llm.Message{{Role: llm.RoleSystem, Content: fmt.Sprintf(remarkPrompt, e.Mood, note)}})
	if err != nil {
		return "", err
	}
	return sanitizeRemark(out), nil
}

// sanitizeRemark drops a leaked chat-template header and role prefix.
func sanitizeRemark(s string) string {
	s = chatHeader.ReplaceAllString(s, "")
	s = assistantPrefix.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

var Module = fx.Options(
	fx.Provide(NewRepository, NewService),
)
