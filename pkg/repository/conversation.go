package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/rapid-crm/jasper/pkg/model"
)

func (c *client) PutMessage(ctx context.Context, msg *model.Message) error {
	meta, err := encodeJSON(msg.Metadata)
	if err != nil {
		return err
	}

	if _, err := c.db.ExecContext(ctx,
		`INSERT INTO user_conversation_memory
		 (id, user_id, conversation_id, message_type, message_content, metadata, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		string(msg.ID), msg.UserID, msg.ConversationID, string(msg.Role),
		msg.Content, meta, encodeTime(msg.Timestamp),
	); err != nil {
		return goerr.Wrap(err, "failed to insert message", goerr.V("id", msg.ID))
	}
	return nil
}

func (c *client) GetMessages(ctx context.Context, userID, conversationID string, since time.Time, limit int) ([]*model.Message, error) {
	// Newest rows first within the retention window, then reversed so the
	// caller sees chronological order.
	rows, err := c.db.QueryContext(ctx,
		`SELECT id, user_id, conversation_id, message_type, message_content, metadata, timestamp
		 FROM user_conversation_memory
		 WHERE user_id = ? AND conversation_id = ? AND timestamp >= ?
		 ORDER BY timestamp DESC
		 LIMIT ?`,
		userID, conversationID, encodeTime(since), limit,
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query messages")
	}
	defer rows.Close()

	var msgs []*model.Message
	for rows.Next() {
		var (
			msg  model.Message
			meta sql.NullString
			ts   string
		)
		if err := rows.Scan(&msg.ID, &msg.UserID, &msg.ConversationID, &msg.Role,
			&msg.Content, &meta, &ts); err != nil {
			return nil, goerr.Wrap(err, "failed to scan message")
		}
		if err := decodeJSON(meta, &msg.Metadata); err != nil {
			return nil, err
		}
		if msg.Timestamp, err = decodeTime(ts); err != nil {
			return nil, err
		}
		msgs = append(msgs, &msg)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate messages")
	}

	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

func (c *client) GetContext(ctx context.Context, userID, conversationID string) (*model.Context, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT context_summary, key_topics, user_preferences, last_updated
		 FROM conversation_context
		 WHERE user_id = ? AND conversation_id = ?`,
		userID, conversationID,
	)

	cc := model.NewContext(userID, conversationID)
	var (
		summary sql.NullString
		topics  sql.NullString
		prefs   sql.NullString
		updated string
	)
	if err := row.Scan(&summary, &topics, &prefs, &updated); err != nil {
		if err == sql.ErrNoRows {
			// No stored context yet: an empty context, not an error.
			return cc, nil
		}
		return nil, goerr.Wrap(err, "failed to get conversation context")
	}

	cc.Summary = summary.String
	if err := decodeJSON(topics, &cc.KeyTopics); err != nil {
		return nil, err
	}
	if err := decodeJSON(prefs, &cc.Preferences); err != nil {
		return nil, err
	}
	var err error
	if cc.LastUpdated, err = decodeTime(updated); err != nil {
		return nil, err
	}
	return cc, nil
}

func (c *client) PutContext(ctx context.Context, cc *model.Context) error {
	topics, err := encodeJSON(cc.KeyTopics)
	if err != nil {
		return err
	}
	prefs, err := encodeJSON(cc.Preferences)
	if err != nil {
		return err
	}
	if cc.LastUpdated.IsZero() {
		cc.LastUpdated = time.Now()
	}

	if _, err := c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO conversation_context
		 (user_id, conversation_id, context_summary, key_topics, user_preferences, last_updated)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		cc.UserID, cc.ConversationID, cc.Summary, topics, prefs, encodeTime(cc.LastUpdated),
	); err != nil {
		return goerr.Wrap(err, "failed to upsert conversation context",
			goerr.V("user_id", cc.UserID), goerr.V("conversation_id", cc.ConversationID))
	}
	return nil
}

func (c *client) ListConversations(ctx context.Context, userID string) ([]*model.ConversationStat, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT conversation_id, COUNT(*), MAX(timestamp)
		 FROM user_conversation_memory
		 WHERE user_id = ?
		 GROUP BY conversation_id
		 ORDER BY MAX(timestamp) DESC`,
		userID,
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list conversations")
	}
	defer rows.Close()

	var stats []*model.ConversationStat
	for rows.Next() {
		var (
			stat model.ConversationStat
			last string
		)
		if err := rows.Scan(&stat.ConversationID, &stat.MessageCount, &last); err != nil {
			return nil, goerr.Wrap(err, "failed to scan conversation stat")
		}
		if stat.LastActivity, err = decodeTime(last); err != nil {
			return nil, err
		}
		stats = append(stats, &stat)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate conversations")
	}
	return stats, nil
}

func (c *client) DeleteMessagesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := c.db.ExecContext(ctx,
		`DELETE FROM user_conversation_memory WHERE timestamp < ?`, encodeTime(cutoff))
	if err != nil {
		return 0, goerr.Wrap(err, "failed to delete expired messages")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, goerr.Wrap(err, "failed to count deleted messages")
	}
	return n, nil
}

func (c *client) DeleteContextsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := c.db.ExecContext(ctx,
		`DELETE FROM conversation_context WHERE last_updated < ?`, encodeTime(cutoff))
	if err != nil {
		return 0, goerr.Wrap(err, "failed to delete stale contexts")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, goerr.Wrap(err, "failed to count deleted contexts")
	}
	return n, nil
}
