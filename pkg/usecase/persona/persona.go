package persona

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/rapid-crm/jasper/pkg/model"
	"github.com/rapid-crm/jasper/pkg/repository"
)

// Service manages persona configurations. The active persona is cached and
// reloaded on every mutation so prompt building stays cheap.
type Service struct {
	repo repository.Repository

	mu     sync.RWMutex
	active *model.Persona
}

func New(repo repository.Repository) *Service {
	return &Service{repo: repo}
}

// Active returns the single active persona, loading it on first use.
func (s *Service) Active(ctx context.Context) (*model.Persona, error) {
	s.mu.RLock()
	if s.active != nil {
		p := s.active
		s.mu.RUnlock()
		return p, nil
	}
	s.mu.RUnlock()
	return s.reload(ctx)
}

func (s *Service) reload(ctx context.Context) (*model.Persona, error) {
	p, err := s.repo.GetActivePersona(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.active = p
	s.mu.Unlock()
	return p, nil
}

// List returns all personas, newest first.
func (s *Service) List(ctx context.Context) ([]*model.Persona, error) {
	return s.repo.ListPersonas(ctx)
}

// Get returns one persona by ID.
func (s *Service) Get(ctx context.Context, id int64) (*model.Persona, error) {
	return s.repo.GetPersona(ctx, id)
}

// Create stores a new, inactive persona.
func (s *Service) Create(ctx context.Context, p *model.Persona) (int64, error) {
	if p.Name == "" {
		return 0, goerr.Wrap(model.ErrInvalidArgument, "persona name is required")
	}
	if p.SystemPrompt == "" && p.CustomPrompt == "" {
		return 0, goerr.Wrap(model.ErrInvalidArgument, "persona needs a system prompt")
	}
	if err := p.Traits.Validate(); err != nil {
		return 0, goerr.Wrap(err, "invalid personality traits")
	}
	return s.repo.CreatePersona(ctx, p)
}

// Update rewrites an existing persona and refreshes the cache when the
// active one changed.
func (s *Service) Update(ctx context.Context, p *model.Persona) error {
	if err := p.Traits.Validate(); err != nil {
		return goerr.Wrap(err, "invalid personality traits")
	}
	if err := s.repo.UpdatePersona(ctx, p); err != nil {
		return err
	}
	_, err := s.reload(ctx)
	return err
}

// Activate switches the active persona. The target is validated before any
// deactivation happens, so there is never a moment with zero active
// personas.
func (s *Service) Activate(ctx context.Context, id int64) error {
	if err := s.repo.ActivatePersona(ctx, id); err != nil {
		return err
	}
	_, err := s.reload(ctx)
	return err
}

// UpdateSystemPrompt replaces the active persona's system prompt.
func (s *Service) UpdateSystemPrompt(ctx context.Context, prompt string) error {
	if prompt == "" {
		return goerr.Wrap(model.ErrInvalidArgument, "system prompt must not be empty")
	}
	active, err := s.Active(ctx)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePersonaPrompt(ctx, active.ID, prompt); err != nil {
		return err
	}
	_, err = s.reload(ctx)
	return err
}

// UpdateTraits replaces the active persona's personality traits.
func (s *Service) UpdateTraits(ctx context.Context, traits model.Traits) error {
	if err := traits.Validate(); err != nil {
		return goerr.Wrap(err, "invalid personality traits")
	}
	active, err := s.Active(ctx)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePersonaTraits(ctx, active.ID, traits); err != nil {
		return err
	}
	_, err = s.reload(ctx)
	return err
}

// ToggleCapability enables or disables a capability by name.
func (s *Service) ToggleCapability(ctx context.Context, name string, enabled bool) error {
	return s.repo.SetCapabilityEnabled(ctx, name, enabled)
}

// EnabledCapabilities returns the active persona's capability list filtered
// down to the ones currently enabled.
func (s *Service) EnabledCapabilities(ctx context.Context) ([]*model.Capability, error) {
	active, err := s.Active(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.GetCapabilitiesByNames(ctx, active.Capabilities, true)
}

// Stats returns aggregate persona and capability counts.
func (s *Service) Stats(ctx context.Context) (*model.PersonaStats, error) {
	personas, err := s.repo.ListPersonas(ctx)
	if err != nil {
		return nil, err
	}
	caps, err := s.repo.ListCapabilities(ctx)
	if err != nil {
		return nil, err
	}

	stats := &model.PersonaStats{
		TotalPersonas:     int64(len(personas)),
		ActivePersona:     "None",
		TotalCapabilities: int64(len(caps)),
	}
	for _, p := range personas {
		if p.IsActive {
			stats.ActivePersona = p.Name
		}
	}
	for _, capability := range caps {
		if capability.Enabled {
			stats.EnabledCapabilities++
		}
	}
	return stats, nil
}
