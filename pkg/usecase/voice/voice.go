package voice

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/rapid-crm/jasper/pkg/model"
	"github.com/rapid-crm/jasper/pkg/repository"
)

// Service manages voice preferences with referential integrity against the
// seeded voice catalog.
type Service struct {
	repo repository.Repository
}

func New(repo repository.Repository) *Service {
	return &Service{repo: repo}
}

// ListVoices returns the active voices sorted by display name.
func (s *Service) ListVoices(ctx context.Context) ([]*model.Voice, error) {
	return s.repo.ListVoices(ctx)
}

// GetVoice returns one voice by ID.
func (s *Service) GetVoice(ctx context.Context, voiceID string) (*model.Voice, error) {
	return s.repo.GetVoice(ctx, voiceID)
}

// GetPreference returns the user's voice preference, or the system default
// when none was ever set.
func (s *Service) GetPreference(ctx context.Context, userID string) (*model.VoicePreference, error) {
	pref, err := s.repo.GetVoicePreference(ctx, userID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.DefaultVoicePreference(userID), nil
		}
		return nil, err
	}
	return pref, nil
}

// SetPreferenceInput is the input for SetPreference. Speed and AutoPlay fall
// back to defaults when unset.
type SetPreferenceInput struct {
	VoiceID  string
	Speed    float64
	AutoPlay *bool
}

// SetPreference stores a user's voice choice. The voice must exist and be
// active; otherwise the stored preference is left untouched.
func (s *Service) SetPreference(ctx context.Context, userID string, input SetPreferenceInput) (*model.VoicePreference, error) {
	if input.VoiceID == "" {
		return nil, goerr.Wrap(model.ErrInvalidArgument, "voice_id is required")
	}

	v, err := s.repo.GetVoice(ctx, input.VoiceID)
	if err != nil {
		return nil, err
	}
	if !v.Active {
		return nil, goerr.Wrap(model.ErrInvalidArgument, "voice is inactive", goerr.V("voice_id", v.ID))
	}

	speed := input.Speed
	if speed <= 0 {
		speed = 1.0
	}
	autoPlay := true
	if input.AutoPlay != nil {
		autoPlay = *input.AutoPlay
	}

	pref := &model.VoicePreference{
		UserID:    userID,
		VoiceID:   v.ID,
		Provider:  v.Provider,
		Speed:     speed,
		AutoPlay:  autoPlay,
		UpdatedAt: time.Now(),
	}
	if err := s.repo.PutVoicePreference(ctx, pref); err != nil {
		return nil, err
	}
	return pref, nil
}
