package postgres

import (
	"context"
	"database/sql"

	"carpool/internal/domain"
)

// MessageRepository is a PostgreSQL implementation of repository.MessageRepository.
type MessageRepository struct {
	q Querier
}

// NewMessageRepository creates a new PostgreSQL message repository.
func NewMessageRepository(db *sql.DB) *MessageRepository {
	return &MessageRepository{q: db}
}

// NewMessageRepositoryWithTx creates a message repository using a transaction.
func NewMessageRepositoryWithTx(tx *sql.Tx) *MessageRepository {
	return &MessageRepository{q: tx}
}

// Create persists a new message.
func (r *MessageRepository) Create(ctx context.Context, msg *domain.Message) error {
	query := `
		INSERT INTO messages (id, ride_id, sender_id, receiver_id, kind, content, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.q.ExecContext(ctx, query,
		msg.ID,
		msg.RideID,
		msg.SenderID,
		msg.ReceiverID,
		msg.Kind,
		msg.Content,
		msg.CreatedAt,
	)
	return err
}

// ListByRide retrieves all messages on a ride, oldest first.
func (r *MessageRepository) ListByRide(ctx context.Context, rideID string) ([]*domain.Message, error) {
	query := `
		SELECT id, ride_id, sender_id, receiver_id, kind, content, created_at
		FROM messages WHERE ride_id = $1 ORDER BY created_at ASC
	`

	rows, err := r.q.QueryContext(ctx, query, rideID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []*domain.Message
	for rows.Next() {
		var msg domain.Message
		if err := rows.Scan(
			&msg.ID,
			&msg.RideID,
			&msg.SenderID,
			&msg.ReceiverID,
			&msg.Kind,
			&msg.Content,
			&msg.CreatedAt,
		); err != nil {
			return nil, err
		}
		msgs = append(msgs, &msg)
	}
	return msgs, rows.Err()
}
