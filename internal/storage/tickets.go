package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

const (
	TicketOpen   = "open"
	TicketClosed = "closed"
)

type Ticket struct {
	ID        int64
	GuildID   string
	ChannelID string
	UserID    string
	Number    int
	Status    string
	CreatedAt time.Time
	ClosedAt  time.Time
}

var ErrTicketNotFound = errors.New("ticket not found")

// CreateTicket allocates the next per-guild ticket number and records the
// ticket as open. The number allocation and insert run in one transaction.
func (s *Store) CreateTicket(ctx context.Context, guildID, channelID, userID string, now time.Time) (Ticket, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Ticket{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var number int
	row := tx.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(ticket_number), 0) + 1 FROM tickets WHERE guild_id = ?
	`, guildID)
	if err = row.Scan(&number); err != nil {
		return Ticket{}, err
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO tickets (guild_id, channel_id, user_id, ticket_number, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, guildID, channelID, userID, number, TicketOpen, now.Unix())
	if err != nil {
		return Ticket{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Ticket{}, err
	}
	if err = tx.Commit(); err != nil {
		return Ticket{}, err
	}
	return Ticket{
		ID:        id,
		GuildID:   guildID,
		ChannelID: channelID,
		UserID:    userID,
		Number:    number,
		Status:    TicketOpen,
		CreatedAt: now,
	}, nil
}

func (s *Store) GetTicketByChannel(ctx context.Context, channelID string) (Ticket, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, guild_id, channel_id, user_id, ticket_number, status, created_at, COALESCE(closed_at, 0)
		FROM tickets WHERE channel_id = ?
	`, channelID)
	return scanTicket(row)
}

// CloseTicket flips an open ticket to closed. Closing an already closed
// ticket reports ErrTicketNotFound.
func (s *Store) CloseTicket(ctx context.Context, channelID string, now time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE tickets SET status = ?, closed_at = ?
		WHERE channel_id = ? AND status = ?
	`, TicketClosed, now.Unix(), channelID, TicketOpen)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTicketNotFound
	}
	return nil
}

func (s *Store) OpenTicketForUser(ctx context.Context, guildID, userID string) (Ticket, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, guild_id, channel_id, user_id, ticket_number, status, created_at, COALESCE(closed_at, 0)
		FROM tickets WHERE guild_id = ? AND user_id = ? AND status = ?
	`, guildID, userID, TicketOpen)
	return scanTicket(row)
}

func (s *Store) CountOpenTickets(ctx context.Context, guildID string) (int, error) {
	var n int
	row := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM tickets WHERE guild_id = ? AND status = ?
	`, guildID, TicketOpen)
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func scanTicket(row *sql.Row) (Ticket, error) {
	var t Ticket
	var created, closed int64
	err := row.Scan(&t.ID, &t.GuildID, &t.ChannelID, &t.UserID, &t.Number, &t.Status, &created, &closed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Ticket{}, ErrTicketNotFound
		}
		return Ticket{}, err
	}
	t.CreatedAt = time.Unix(created, 0)
	if closed > 0 {
		t.ClosedAt = time.Unix(closed, 0)
	}
	return t, nil
}
