package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/rapid-crm/jasper/pkg/model"
)

func (c *client) ListVoices(ctx context.Context) ([]*model.Voice, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT voice_id, voice_name, provider, language, gender, is_active
		 FROM available_voices
		 WHERE is_active = 1
		 ORDER BY voice_name`,
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list voices")
	}
	defer rows.Close()

	var voices []*model.Voice
	for rows.Next() {
		v, err := scanVoice(rows.Scan)
		if err != nil {
			return nil, err
		}
		voices = append(voices, v)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate voices")
	}
	return voices, nil
}

func (c *client) GetVoice(ctx context.Context, voiceID string) (*model.Voice, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT voice_id, voice_name, provider, language, gender, is_active
		 FROM available_voices
		 WHERE voice_id = ?`,
		voiceID,
	)
	v, err := scanVoice(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, goerr.Wrap(model.ErrNotFound, "voice not found", goerr.V("voice_id", voiceID))
		}
		return nil, err
	}
	return v, nil
}

func scanVoice(scan func(...any) error) (*model.Voice, error) {
	var (
		v      model.Voice
		active int
	)
	if err := scan(&v.ID, &v.Name, &v.Provider, &v.Language, &v.Gender, &active); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, goerr.Wrap(err, "failed to scan voice")
	}
	v.Active = active != 0
	return &v, nil
}

func (c *client) GetVoicePreference(ctx context.Context, userID string) (*model.VoicePreference, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT user_id, voice_id, provider, speed, auto_play, updated_at
		 FROM user_voice_preferences
		 WHERE user_id = ?`,
		userID,
	)

	var (
		pref     model.VoicePreference
		autoPlay int
		updated  string
	)
	if err := row.Scan(&pref.UserID, &pref.VoiceID, &pref.Provider, &pref.Speed, &autoPlay, &updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, goerr.Wrap(model.ErrNotFound, "no voice preference", goerr.V("user_id", userID))
		}
		return nil, goerr.Wrap(err, "failed to get voice preference")
	}
	pref.AutoPlay = autoPlay != 0
	var err error
	if pref.UpdatedAt, err = decodeTime(updated); err != nil {
		return nil, err
	}
	return &pref, nil
}

func (c *client) PutVoicePreference(ctx context.Context, pref *model.VoicePreference) error {
	if pref.UpdatedAt.IsZero() {
		pref.UpdatedAt = time.Now()
	}
	if _, err := c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO user_voice_preferences
		 (user_id, voice_id, provider, speed, auto_play, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		pref.UserID, pref.VoiceID, pref.Provider, pref.Speed, boolToInt(pref.AutoPlay),
		encodeTime(pref.UpdatedAt),
	); err != nil {
		return goerr.Wrap(err, "failed to put voice preference", goerr.V("user_id", pref.UserID))
	}
	return nil
}
