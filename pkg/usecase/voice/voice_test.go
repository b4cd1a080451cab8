package voice_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/rapid-crm/jasper/pkg/model"
	"github.com/rapid-crm/jasper/pkg/repository"
	"github.com/rapid-crm/jasper/pkg/usecase/voice"
)

func setup(t *testing.T) (*voice.Service, repository.Repository) {
	t.Helper()
	repo, err := repository.New(filepath.Join(t.TempDir(), "jasper.db"))
	gt.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return voice.New(repo), repo
}

func TestGetPreferenceDefault(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t)

	pref, err := svc.GetPreference(ctx, "u1")
	gt.NoError(t, err)
	gt.V(t, pref.VoiceID).Equal("eleanor")
	gt.V(t, pref.Provider).Equal("unreal-speech")
	gt.V(t, pref.Speed).Equal(1.0)
	gt.V(t, pref.AutoPlay).Equal(true)
}

func TestSetPreference(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t)

	t.Run("valid voice", func(t *testing.T) {
		pref, err := svc.SetPreference(ctx, "u1", voice.SetPreferenceInput{VoiceID: "jasper"})
		gt.NoError(t, err)
		gt.V(t, pref.VoiceID).Equal("jasper")
		gt.V(t, pref.Provider).Equal("unreal-speech")

		got, err := svc.GetPreference(ctx, "u1")
		gt.NoError(t, err)
		gt.V(t, got.VoiceID).Equal("jasper")
	})

	t.Run("unknown voice is rejected and preference unchanged", func(t *testing.T) {
		_, err := svc.SetPreference(ctx, "u1", voice.SetPreferenceInput{VoiceID: "ghost"})
		gt.Error(t, err)
		gt.V(t, errors.Is(err, model.ErrNotFound)).Equal(true)

		got, err := svc.GetPreference(ctx, "u1")
		gt.NoError(t, err)
		gt.V(t, got.VoiceID).Equal("jasper")
	})

	t.Run("empty voice id", func(t *testing.T) {
		_, err := svc.SetPreference(ctx, "u1", voice.SetPreferenceInput{})
		gt.V(t, errors.Is(err, model.ErrInvalidArgument)).Equal(true)
	})
}
