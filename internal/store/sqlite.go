package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"confessions/internal/db"
	"confessions/internal/models"
)

// SQLite persists stories and tips across restarts. Insertion order is the
// autoincrement seq column.
type SQLite struct {
	db *sql.DB
}

func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	dbc, err := db.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Migrate(ctx, dbc); err != nil {
		dbc.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	return &SQLite{db: dbc}, nil
}

const storyColumns = `story_id, title, content, content_hash, story_type, author_message, timestamp, tip_count, total_tipped`

func (s *SQLite) AppendStory(ctx context.Context, st models.Story) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO stories(`+storyColumns+`) VALUES(?,?,?,?,?,?,?,?,?)`,
		st.StoryID, st.Title, st.Content, st.ContentHash, string(st.StoryType), st.AuthorMessage,
		st.Timestamp, st.TipCount, st.TotalTipped.String())
	if isUniqueViolation(err) {
		return ErrDuplicateID
	}
	return err
}

func (s *SQLite) AppendTip(ctx context.Context, t models.Tip) (models.Story, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Story{}, err
	}
	defer tx.Rollback()

	st, err := scanStory(tx.QueryRowContext(ctx, `SELECT `+storyColumns+` FROM stories WHERE story_id = ?`, t.StoryID))
	if err != nil {
		return models.Story{}, err
	}
	st.TipCount++
	st.TotalTipped = st.TotalTipped.Add(t.Amount)

	if _, err := tx.ExecContext(ctx, `UPDATE stories SET tip_count = ?, total_tipped = ? WHERE story_id = ?`,
		st.TipCount, st.TotalTipped.String(), st.StoryID); err != nil {
		return models.Story{}, err
	}
	_, err = tx.ExecContext(ctx, `INSERT INTO tips(tip_id, story_id, from_fid, to_fid, amount, timestamp, transaction_hash)
		VALUES(?,?,?,?,?,?,?)`,
		t.TipID, t.StoryID, t.FromFid, t.ToFid, t.Amount.String(), t.Timestamp, t.TransactionHash)
	if isUniqueViolation(err) {
		return models.Story{}, ErrDuplicateID
	} else if err != nil {
		return models.Story{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.Story{}, err
	}
	return st, nil
}

func (s *SQLite) Story(ctx context.Context, id string) (models.Story, error) {
	return scanStory(s.db.QueryRowContext(ctx, `SELECT `+storyColumns+` FROM stories WHERE story_id = ?`, id))
}

func (s *SQLite) Stories(ctx context.Context) ([]models.Story, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+storyColumns+` FROM stories ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Story
	for rows.Next() {
		st, err := scanStory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func (s *SQLite) Tips(ctx context.Context) ([]models.Tip, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT tip_id, story_id, from_fid, to_fid, amount, timestamp, transaction_hash
		FROM tips ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Tip
	for rows.Next() {
		var t models.Tip
		var amount string
		if err := rows.Scan(&t.TipID, &t.StoryID, &t.FromFid, &t.ToFid, &amount, &t.Timestamp, &t.TransactionHash); err != nil {
			return nil, err
		}
		if t.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("tip %s amount: %w", t.TipID, err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *SQLite) Close() error { return s.db.Close() }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStory(r rowScanner) (models.Story, error) {
	var st models.Story
	var typ, total string
	err := r.Scan(&st.StoryID, &st.Title, &st.Content, &st.ContentHash, &typ, &st.AuthorMessage,
		&st.Timestamp, &st.TipCount, &total)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Story{}, ErrStoryNotFound
	} else if err != nil {
		return models.Story{}, err
	}
	st.StoryType = models.StoryType(typ)
	if st.TotalTipped, err = decimal.NewFromString(total); err != nil {
		return models.Story{}, fmt.Errorf("story %s total: %w", st.StoryID, err)
	}
	return st, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
