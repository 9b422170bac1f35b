package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/rotbot/rotbot-api/internal/app/service/personality"
	"github.com/rotbot/rotbot-api/internal/models"
	"github.com/rotbot/rotbot-api/internal/platform/llm"
	"github.com/rotbot/rotbot-api/pkg/logctx"
)

type Mode string

const (
	ModeSnarky Mode = "snarky"
	ModeSafe   Mode = "safe"
)

const (
	// diaryEvery is how many RotBot replies separate two diary entries.
	diaryEvery = 10
	// maxContextMessages bounds the history sent with each completion.
	maxContextMessages = 40
	diaryPageSize      = 50
)

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeSnarky:
		return ModeSnarky, nil
	case ModeSafe:
		return ModeSafe, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

func (m Mode) roles() []models.MessageRole {
	if m == ModeSafe {
		return []models.MessageRole{models.MessageRoleSafe}
	}
	return []models.MessageRole{models.MessageRoleUser, models.MessageRoleRotBot}
}

func (m Mode) userRole() models.MessageRole {
	if m == ModeSafe {
		return models.MessageRoleSafe
	}
	return models.MessageRoleUser
}

func (m Mode) botRole() models.MessageRole {
	if m == ModeSafe {
		return models.MessageRoleSafe
	}
	return models.MessageRoleRotBot
}

func (m Mode) greeting(userID string) *models.Message {
	text := snarkyGreeting
	if m == ModeSafe {
		text = safeGreeting
	}
	return &models.Message{UserID: userID, Role: m.botRole(), FromBot: true, Content: text}
}

type PromptSource interface {
	SystemPrompt(ctx context.Context, userID, displayName string) (string, error)
}

type SendRequest struct {
	UserID      string
	DisplayName string
	Mode        Mode
	Text        string
}

type Service struct {
	repo    Repository
	llm     llm.Completer
	prompts PromptSource
	log     *zap.SugaredLogger
}

func NewService(repo Repository, completer llm.Completer, prompts PromptSource, log *zap.SugaredLogger) *Service {
	return &Service{repo: repo, llm: completer, prompts: prompts, log: log}
}

// Complete forwards a caller-built conversation to the model.
func (s *Service) Complete(ctx context.Context, messages []llm.Message) (string, error) {
	if len(messages) == 0 {
		return "", ErrEmptyConversation
	}
	for _, m := range messages {
		if !llm.ValidRole(m.Role) {
			return "", fmt.Errorf("%w: %q", ErrInvalidRole, m.Role)
		}
	}
	return s.llm.Complete(ctx, messages)
}

// Send asks the model for a reply in the mode's voice, then stores the user's
// message and the reply. Nothing is stored when the model fails. Every tenth
// snarky reply also adds a diary entry.
func (s *Service) Send(ctx context.Context, req SendRequest) (*models.Message, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	mode := req.Mode
	if mode == "" {
		mode = ModeSnarky
	}

	system, err := s.systemPrompt(ctx, req.UserID, req.DisplayName, mode)
	if err != nil {
		return nil, err
	}
	history, err := s.repo.History(ctx, req.UserID, mode.roles())
	if err != nil {
		return nil, err
	}
	msgs := make([]llm.Message, 0, len(history)+2)
	msgs = append(msgs, llm.Message{Role: llm.RoleSystem, Content: system})
	for _, m := range lastN(history, maxContextMessages) {
		msgs = append(msgs, toLLM(m))
	}
	msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: text})

	reply, err := s.llm.Complete(ctx, msgs)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SaveMessage(ctx, &models.Message{UserID: req.UserID, Role: mode.userRole(), Content: text}); err != nil {
		return nil, err
	}
	bot := &models.Message{UserID: req.UserID, Role: mode.botRole(), FromBot: true, Content: reply}
	if err := s.repo.SaveMessage(ctx, bot); err != nil {
		return nil, err
	}

	if mode == ModeSnarky {
		s.maybeWriteDiary(ctx, req, history, bot)
	}
	return bot, nil
}

func (s *Service) systemPrompt(ctx context.Context, userID, displayName string, mode Mode) (string, error) {
	if mode == ModeSafe {
		return personality.RenderPrompt(safeModePrompt, displayName), nil
	}
	return s.prompts.SystemPrompt(ctx, userID, displayName)
}

// maybeWriteDiary summarises the last ten replies when the reply count hits a
// multiple of ten. Failures are logged; the chat reply is already stored.
func (s *Service) maybeWriteDiary(ctx context.Context, req SendRequest, history []*models.Message, reply *models.Message) {
	l := logctx.FromCtx(ctx, s.log).With("user_id", req.UserID)
	count, err := s.repo.CountRole(ctx, req.UserID, models.MessageRoleRotBot)
	if err != nil {
		l.Warnw("diary_count_failed", "err", err)
		return
	}
	if count == 0 || count%diaryEvery != 0 {
		return
	}

	replies := lo.FilterMap(append(history, reply), func(m *models.Message, _ int) (string, bool) {
		return m.Content, m.Role == models.MessageRoleRotBot
	})
	replies = lastN(replies, diaryEvery)

	entry, err := s.llm.Complete(ctx, []llm.Message{{Role: llm.RoleSystem, Content: renderDiaryPrompt(req.DisplayName, replies)}})
	if err != nil {
		l.Warnw("diary_completion_failed", "err", err)
		return
	}
	if strings.TrimSpace(entry) == "" {
		return
	}
	if err := s.repo.SaveDiary(ctx, &models.DiaryEntry{UserID: req.UserID, Content: entry}); err != nil {
		l.Warnw("diary_save_failed", "err", err)
		return
	}
	l.Infow("diary_entry_written", "reply_count", count)
}

// History returns the conversation of a mode; an empty one shows the greeting.
func (s *Service) History(ctx context.Context, userID string, mode Mode) ([]*models.Message, error) {
	rows, err := s.repo.History(ctx, userID, mode.roles())
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []*models.Message{mode.greeting(userID)}, nil
	}
	return rows, nil
}

// DeleteHistory wipes one mode's conversation and stores its greeting again.
func (s *Service) DeleteHistory(ctx context.Context, userID string, mode Mode) ([]*models.Message, error) {
	seed := mode.greeting(userID)
	if err := s.repo.DeleteAndSeed(ctx, userID, mode.roles(), seed); err != nil {
		return nil, err
	}
	logctx.FromCtx(ctx, s.log).Infow("chat_history_deleted", "user_id", userID, "mode", mode)
	return []*models.Message{seed}, nil
}

func (s *Service) Diary(ctx context.Context, userID string) ([]*models.DiaryEntry, error) {
	return s.repo.Diary(ctx, userID, diaryPageSize)
}

func toLLM(m *models.Message) llm.Message {
	if m.FromBot || m.Role == models.MessageRoleRotBot {
		return llm.Message{Role: llm.RoleAssistant, Content: m.Content}
	}
	return llm.Message{Role: llm.RoleUser, Content: m.Content}
}

func lastN[T any](s []T, n int) []T {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

func newService(repo Repository, completer llm.Completer, p *personality.Service, log *zap.SugaredLogger) *Service {
	return NewService(repo, completer, p, log)
}

var Module = fx.Options(
	fx.Provide(NewRepository, newService),
)
