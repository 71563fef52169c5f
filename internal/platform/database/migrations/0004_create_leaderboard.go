package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(Up0004, Down0004)
}

func Up0004(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
CREATE TABLE leaderboard (
    contest_id UUID NOT NULL REFERENCES contests(id) ON DELETE CASCADE,
    user_id UUID NOT NULL REFERENCES users(id),
    username TEXT NOT NULL,
    total_score INT NOT NULL DEFAULT 0,
    last_submission_time TIMESTAMP WITH TIME ZONE,
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT current_timestamp,
    CONSTRAINT leaderboard_contest_user_key UNIQUE (contest_id, user_id)
);

CREATE INDEX leaderboard_ranking_idx ON leaderboard (contest_id, total_score DESC, last_submission_time ASC);
`)
	if err != nil {
		return err
	}

	return nil
}

func Down0004(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE leaderboard;`)
	if err != nil {
		return err
	}

	return nil
}
