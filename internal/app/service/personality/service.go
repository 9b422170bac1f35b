package personality

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/rotbot/rotbot-api/internal/models"
	"github.com/rotbot/rotbot-api/pkg/logctx"
	"github.com/rotbot/rotbot-api/pkg/types"
)

type EntitlementChecker interface {
	GetEntitledByUser(ctx context.Context, userID string) (*types.UserSubscriptionInfo, error)
}

// View is a personality as listed to a user.
type View struct {
	*models.Personality
	Locked      bool   `json:"locked"`
	Selected    bool   `json:"selected"`
	LockedTaunt string `json:"locked_taunt,omitempty"`
}

type Service struct {
	repo         Repository
	entitlements EntitlementChecker
	log          *zap.SugaredLogger
}

func NewService(repo Repository, entitlements EntitlementChecker, log *zap.SugaredLogger) *Service {
	return &Service{repo: repo, entitlements: entitlements, log: log}
}

// List returns free personalities first, then by name. With an empty userID
// premium personalities are reported locked.
func (s *Service) List(ctx context.Context, userID string) ([]*View, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	entitled := false
	var selected string
	if userID != "" {
		if entitled, err = s.entitled(ctx, userID); err != nil {
			return nil, err
		}
		profile, err := s.repo.GetProfile(ctx, userID)
		if err != nil {
			return nil, err
		}
		if profile != nil {
			selected = lo.FromPtr(profile.SelectedPersonalityID)
		}
	}

	views := make([]*View, 0, len(rows))
	for _, p := range rows {
		v := &View{Personality: p, Selected: p.ID == selected}
		if p.IsPremium && !entitled {
			unlocked := false
			if userID != "" {
				if unlocked, err = s.repo.IsUnlocked(ctx, userID, p.ID); err != nil {
					return nil, err
				}
			}
			if !unlocked {
				v.Locked = true
				v.LockedTaunt = lockedTaunt(p.Name)
			}
		}
		views = append(views, v)
	}
	return views, nil
}

// Select stores personalityID as the user's choice. Premium personalities
// need an entitled subscription or a one-time unlock.
func (s *Service) Select(ctx context.Context, userID, personalityID string) (*models.Personality, error) {
	p, err := s.repo.Get(ctx, personalityID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrPersonalityNotFound
	}
	if p.IsPremium {
		ok, err := s.canUsePremium(ctx, userID, p.ID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrPremiumRequired
		}
	}
	if err := s.repo.SaveSelection(ctx, userID, p.ID); err != nil {
		return nil, err
	}
	logctx.FromCtx(ctx, s.log).Infow("personality_selected", "user_id", userID, "personality", p.Name)
	return p, nil
}

// SystemPrompt returns the selected personality's system message rendered
// for displayName, or the default prompt. A selection the user lost access to
// falls back to the default.
func (s *Service) SystemPrompt(ctx context.Context, userID, displayName string) (string, error) {
	prompt := DefaultSystemPrompt
	profile, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		return "", err
	}
	if profile != nil && lo.FromPtr(profile.SelectedPersonalityID) != "" {
		p, err := s.repo.Get(ctx, *profile.SelectedPersonalityID)
		if err != nil {
			return "", err
		}
		if p != nil && strings.TrimSpace(p.SystemMessage) != "" {
			usable := true
			if p.IsPremium {
				if usable, err = s.canUsePremium(ctx, userID, p.ID); err != nil {
					return "", err
				}
			}
			if usable {
				prompt = p.SystemMessage
			}
		}
	}
	return RenderPrompt(prompt, displayName), nil
}

// UnlockByName records a one-time purchase. Unlocking twice is a no-op.
func (s *Service) UnlockByName(ctx context.Context, userID, name string) error {
	p, err := s.repo.GetByName(ctx, name)
	if err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("%w: %q", ErrPersonalityNotFound, name)
	}
	return s.repo.Unlock(ctx, userID, p.ID)
}

// EnsureDefaults creates the built-in catalogue entries that are missing.
func (s *Service) EnsureDefaults(ctx context.Context) error {
	items := lo.Map(Defaults, func(p *models.Personality, _ int) *models.Personality {
		cp := *p
		return &cp
	})
	n, err := s.repo.CreateMissing(ctx, items)
	if err != nil {
		return err
	}
	if n > 0 {
		s.log.Infow("personalities_seeded", "count", n)
	}
	return nil
}

func (s *Service) canUsePremium(ctx context.Context, userID, personalityID string) (bool, error) {
	entitled, err := s.entitled(ctx, userID)
	if err != nil || entitled {
		return entitled, err
	}
	return s.repo.IsUnlocked(ctx, userID, personalityID)
}

func (s *Service) entitled(ctx context.Context, userID string) (bool, error) {
	info, err := s.entitlements.GetEntitledByUser(ctx, userID)
	if err != nil {
		return false, err
	}
	return info != nil && info.Entitled, nil
}
