package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/rapid-crm/jasper/pkg/model"
)

func (c *client) InsertActionLog(ctx context.Context, entry *model.ActionLog) error {
	params, err := encodeJSON(entry.Parameters)
	if err != nil {
		return err
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	entry.UpdatedAt = entry.CreatedAt

	if _, err := c.db.ExecContext(ctx,
		`INSERT INTO ai_action_log
		 (action_id, user_id, action_type, parameters, status, result, error, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, NULL, NULL, ?, ?)`,
		string(entry.ID), entry.UserID, entry.ActionType, params, string(entry.Status),
		encodeTime(entry.CreatedAt), encodeTime(entry.UpdatedAt),
	); err != nil {
		return goerr.Wrap(err, "failed to insert action log", goerr.V("action_id", entry.ID))
	}
	return nil
}

func (c *client) UpdateActionLog(ctx context.Context, id model.ActionID, status model.ActionStatus, result map[string]any, errMsg string) error {
	encoded, err := encodeJSON(result)
	if err != nil {
		return err
	}
	res, err := c.db.ExecContext(ctx,
		`UPDATE ai_action_log SET status = ?, result = ?, error = ?, updated_at = ? WHERE action_id = ?`,
		string(status), encoded, errMsg, encodeTime(time.Now()), string(id))
	if err != nil {
		return goerr.Wrap(err, "failed to update action log", goerr.V("action_id", id))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return goerr.Wrap(model.ErrNotFound, "action log not found", goerr.V("action_id", id))
	}
	return nil
}

func scanActionLog(scan func(...any) error) (*model.ActionLog, error) {
	var (
		entry   model.ActionLog
		params  sql.NullString
		result  sql.NullString
		errMsg  sql.NullString
		created string
		updated string
	)
	if err := scan(&entry.ID, &entry.UserID, &entry.ActionType, &params, &entry.Status,
		&result, &errMsg, &created, &updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, goerr.Wrap(err, "failed to scan action log")
	}
	if err := decodeJSON(params, &entry.Parameters); err != nil {
		return nil, err
	}
	if err := decodeJSON(result, &entry.Result); err != nil {
		return nil, err
	}
	entry.Error = errMsg.String

	var err error
	if entry.CreatedAt, err = decodeTime(created); err != nil {
		return nil, err
	}
	if entry.UpdatedAt, err = decodeTime(updated); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (c *client) GetActionLog(ctx context.Context, id model.ActionID) (*model.ActionLog, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT action_id, user_id, action_type, parameters, status, result, error, created_at, updated_at
		 FROM ai_action_log WHERE action_id = ?`, string(id))
	entry, err := scanActionLog(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, goerr.Wrap(model.ErrNotFound, "action log not found", goerr.V("action_id", id))
		}
		return nil, err
	}
	return entry, nil
}

func (c *client) ListActionLogs(ctx context.Context, userID string, limit int) ([]*model.ActionLog, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT action_id, user_id, action_type, parameters, status, result, error, created_at, updated_at
		 FROM ai_action_log
		 WHERE user_id = ?
		 ORDER BY created_at DESC
		 LIMIT ?`,
		userID, limit)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list action logs")
	}
	defer rows.Close()

	var entries []*model.ActionLog
	for rows.Next() {
		entry, err := scanActionLog(rows.Scan)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate action logs")
	}
	return entries, nil
}

func (c *client) DeleteActionLogsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := c.db.ExecContext(ctx,
		`DELETE FROM ai_action_log WHERE created_at < ?`, encodeTime(cutoff))
	if err != nil {
		return 0, goerr.Wrap(err, "failed to delete old action logs")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, goerr.Wrap(err, "failed to count deleted action logs")
	}
	return n, nil
}

func (c *client) InsertContact(ctx context.Context, contact *model.Contact) (int64, error) {
	if contact.CreatedAt.IsZero() {
		contact.CreatedAt = time.Now()
	}
	res, err := c.db.ExecContext(ctx,
		`INSERT INTO contacts (first_name, last_name, email, phone, company_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		contact.FirstName, contact.LastName, contact.Email, contact.Phone,
		nullableID(contact.CompanyID), encodeTime(contact.CreatedAt))
	if err != nil {
		return 0, goerr.Wrap(err, "failed to insert contact")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, goerr.Wrap(err, "failed to get contact id")
	}
	contact.ID = id
	return id, nil
}

func (c *client) UpdateContact(ctx context.Context, contact *model.Contact) error {
	res, err := c.db.ExecContext(ctx,
		`UPDATE contacts SET first_name = ?, last_name = ?, email = ?, phone = ?, company_id = ?
		 WHERE id = ?`,
		contact.FirstName, contact.LastName, contact.Email, contact.Phone,
		nullableID(contact.CompanyID), contact.ID)
	if err != nil {
		return goerr.Wrap(err, "failed to update contact", goerr.V("id", contact.ID))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return goerr.Wrap(model.ErrNotFound, "contact not found", goerr.V("id", contact.ID))
	}
	return nil
}

func (c *client) InsertCompany(ctx context.Context, company *model.Company) (int64, error) {
	if company.CreatedAt.IsZero() {
		company.CreatedAt = time.Now()
	}
	res, err := c.db.ExecContext(ctx,
		`INSERT INTO companies (name, usdot_number, phone, state, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		company.Name, company.USDOT, company.Phone, company.State, encodeTime(company.CreatedAt))
	if err != nil {
		return 0, goerr.Wrap(err, "failed to insert company")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, goerr.Wrap(err, "failed to get company id")
	}
	company.ID = id
	return id, nil
}

func (c *client) InsertDeal(ctx context.Context, deal *model.Deal) (int64, error) {
	if deal.CreatedAt.IsZero() {
		deal.CreatedAt = time.Now()
	}
	res, err := c.db.ExecContext(ctx,
		`INSERT INTO deals (title, value, stage, company_id, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		deal.Title, deal.Value, deal.Stage, nullableID(deal.CompanyID), encodeTime(deal.CreatedAt))
	if err != nil {
		return 0, goerr.Wrap(err, "failed to insert deal")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, goerr.Wrap(err, "failed to get deal id")
	}
	deal.ID = id
	return id, nil
}

func nullableID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}
