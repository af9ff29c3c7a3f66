package quiz

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SQLStore persists the quiz domain through database/sql. Placeholders use
// the $N form, which both the pgx stdlib driver and modernc sqlite accept.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) CreateAttempt(ctx context.Context, a Attempt) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	aj, err := json.Marshal(a.Answers)
	if err != nil {
		return err
	}
	var level sql.NullInt64
	var moduleID sql.NullString
	if a.Module.IsLevel() {
		level = sql.NullInt64{Int64: int64(a.Module.Level()), Valid: true}
	} else {
		moduleID = sql.NullString{String: a.Module.ID(), Valid: true}
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO attempts (id,user_id,module_level,module_id,score,total,duration_sec,ts,answers_json)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		a.ID, a.UserID, level, moduleID, a.Score, a.Total, a.DurationSec, a.Timestamp, string(aj))
	return err
}

func (s *SQLStore) ListAttempts(ctx context.Context, f AttemptFilter) ([]Attempt, error) {
	where, args := attemptWhere(f)
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,user_id,module_level,module_id,score,total,duration_sec,ts,answers_json FROM attempts`+where+` ORDER BY ts ASC`,
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Attempt
	for rows.Next() {
		var a Attempt
		var level sql.NullInt64
		var moduleID sql.NullString
		var aj string
		if err := rows.Scan(&a.ID, &a.UserID, &level, &moduleID, &a.Score, &a.Total, &a.DurationSec, &a.Timestamp, &aj); err != nil {
			return nil, err
		}
		if moduleID.Valid {
			a.Module = IDRef(moduleID.String)
		} else {
			a.Module = LevelRef(int(level.Int64))
		}
		if err := json.Unmarshal([]byte(aj), &a.Answers); err != nil {
			a.Answers = nil
		}
		a.Stored = true
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLStore) DeleteAttempts(ctx context.Context, f AttemptFilter) (int64, error) {
	where, args := attemptWhere(f)
	res, err := s.db.ExecContext(ctx, `DELETE FROM attempts`+where, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func attemptWhere(f AttemptFilter) (string, []any) {
	var conds []string
	var args []any
	ph := func() string { return fmt.Sprintf("$%d", len(args)) }
	if f.UserID != "" {
		args = append(args, f.UserID)
		conds = append(conds, "user_id="+ph())
	}
	if !f.Module.IsZero() {
		if f.Module.IsLevel() {
			args = append(args, f.Module.Level())
			conds = append(conds, "module_level="+ph())
		} else {
			args = append(args, f.Module.ID())
			conds = append(conds, "module_id="+ph())
		}
	}
	if len(f.Modules) > 0 {
		var in []string
		for _, m := range f.Modules {
			if m.IsLevel() {
				args = append(args, m.Level())
				in = append(in, "module_level="+ph())
			} else {
				args = append(args, m.ID())
				in = append(in, "module_id="+ph())
			}
		}
		conds = append(conds, "("+strings.Join(in, " OR ")+")")
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (s *SQLStore) PutQuestion(ctx context.Context, q Question) (Question, error) {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	oj, err := json.Marshal(q.Options)
	if err != nil {
		return Question{}, err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO questions (id,module_id,level,topic_id,question,options_json,answer,explanation)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		 ON CONFLICT (id) DO UPDATE SET question=EXCLUDED.question, options_json=EXCLUDED.options_json,
		   answer=EXCLUDED.answer, explanation=EXCLUDED.explanation`,
		q.ID, q.ModuleID, q.Level, q.TopicID, q.Text, string(oj), q.Answer, q.Explanation)
	if err != nil {
		return Question{}, err
	}
	return q, nil
}

func (s *SQLStore) QuestionsForLevel(ctx context.Context, level int) ([]Question, error) {
	return s.queryQuestions(ctx,
		`SELECT id,module_id,level,topic_id,question,options_json,answer,explanation
		 FROM questions WHERE level=$1 AND (topic_id='' OR topic_id IS NULL) ORDER BY id`, level)
}

func (s *SQLStore) QuestionsForModule(ctx context.Context, moduleID string) ([]Question, error) {
	return s.queryQuestions(ctx,
		`SELECT id,module_id,level,topic_id,question,options_json,answer,explanation
		 FROM questions WHERE module_id=$1 ORDER BY id`, moduleID)
}

func (s *SQLStore) queryQuestions(ctx context.Context, q string, args ...any) ([]Question, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Question
	for rows.Next() {
		var qu Question
		var oj string
		var moduleID, topicID sql.NullString
		var level sql.NullInt64
		if err := rows.Scan(&qu.ID, &moduleID, &level, &topicID, &qu.Text, &oj, &qu.Answer, &qu.Explanation); err != nil {
			return nil, err
		}
		qu.ModuleID = moduleID.String
		qu.TopicID = topicID.String
		qu.Level = int(level.Int64)
		if err := json.Unmarshal([]byte(oj), &qu.Options); err != nil {
			return nil, err
		}
		out = append(out, qu)
	}
	return out, rows.Err()
}

func (s *SQLStore) DeleteQuestionsForTopic(ctx context.Context, topicID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM questions WHERE topic_id=$1`, topicID)
	return err
}

func (s *SQLStore) CreateTopic(ctx context.Context, t Topic) error {
	if t.CreatedAt == 0 {
		t.CreatedAt = time.Now().UnixMilli()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO topics (id,user_id,name,created_at,completed_modules,total_modules)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		t.ID, t.UserID, t.Name, t.CreatedAt, t.CompletedModules, t.TotalModules)
	return err
}

func (s *SQLStore) CreateModule(ctx context.Context, m TopicModule) (TopicModule, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO topic_modules (id,topic_id,level,title,is_unlocked,is_completed,best_score,attempt_count)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		m.ID, m.TopicID, m.Level, m.Title, m.IsUnlocked, m.IsCompleted, m.BestScore, m.AttemptCount)
	if err != nil {
		return TopicModule{}, err
	}
	return m, nil
}

func (s *SQLStore) GetTopic(ctx context.Context, id string) (Topic, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,user_id,name,created_at,completed_modules,total_modules FROM topics WHERE id=$1`, id)
	var t Topic
	if err := row.Scan(&t.ID, &t.UserID, &t.Name, &t.CreatedAt, &t.CompletedModules, &t.TotalModules); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Topic{}, ErrTopicNotFound
		}
		return Topic{}, err
	}
	return t, nil
}

func (s *SQLStore) ListTopics(ctx context.Context, userID string) ([]Topic, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,user_id,name,created_at,completed_modules,total_modules
		 FROM topics WHERE user_id=$1 ORDER BY created_at ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Topic
	for rows.Next() {
		var t Topic
		if err := rows.Scan(&t.ID, &t.UserID, &t.Name, &t.CreatedAt, &t.CompletedModules, &t.TotalModules); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *SQLStore) ModulesForTopic(ctx context.Context, topicID string) ([]TopicModule, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,topic_id,level,title,is_unlocked,is_completed,best_score,attempt_count
		 FROM topic_modules WHERE topic_id=$1 ORDER BY level ASC`, topicID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []TopicModule
	for rows.Next() {
		var m TopicModule
		if err := rows.Scan(&m.ID, &m.TopicID, &m.Level, &m.Title, &m.IsUnlocked, &m.IsCompleted, &m.BestScore, &m.AttemptCount); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *SQLStore) UpdateModule(ctx context.Context, m TopicModule) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE topic_modules SET is_unlocked=$1, is_completed=$2, best_score=$3, attempt_count=$4 WHERE id=$5`,
		m.IsUnlocked, m.IsCompleted, m.BestScore, m.AttemptCount, m.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrModuleNotFound
	}
	return nil
}

func (s *SQLStore) UpdateTopicCounters(ctx context.Context, topicID string, completed int) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE topics SET completed_modules=$1 WHERE id=$2`, completed, topicID)
	return err
}

func (s *SQLStore) ResetTopicProgress(ctx context.Context, topicID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx,
		`UPDATE topic_modules SET is_unlocked=(level=1), is_completed=FALSE, best_score=0, attempt_count=0
		 WHERE topic_id=$1`, topicID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE topics SET completed_modules=0 WHERE id=$1`, topicID); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLStore) DeleteTopic(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM questions WHERE topic_id=$1`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM topic_modules WHERE topic_id=$1`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM topics WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTopicNotFound
	}
	return tx.Commit()
}
