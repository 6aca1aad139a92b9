package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// LessonStore archives lessons generated by the server.
type LessonStore struct {
	store *Store
}

var lessonColumns = []string{"id", "topic", "content", "model", "created_at"}

func (r *LessonStore) SaveLesson(ctx context.Context, topic, content, model string) (*Lesson, error) {
	created := r.store.now().UTC()
	query, args := r.store.builder().Insert(tableLessons).
		Columns("topic", "topic_key", "content", "model", "created_at").
		Values(topic, TopicKey(topic), content, model, created.UnixMilli()).
		Query()

	var res sql.Result
	if err := r.store.drv.Exec(ctx, query, args, &res); err != nil {
		return nil, fmt.Errorf("save lesson: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("save lesson: %w", err)
	}
	return &Lesson{
		ID:        id,
		Topic:     topic,
		Content:   content,
		Model:     model,
		CreatedAt: time.UnixMilli(created.UnixMilli()).UTC(),
	}, nil
}

// LatestLesson returns the newest lesson for topic, matched by TopicKey,
// or nil if none exists.
func (r *LessonStore) LatestLesson(ctx context.Context, topic string) (*Lesson, error) {
	b := r.store.builder()
	query, args := b.Select(lessonColumns...).
		From(b.Table(tableLessons)).
		Where(entsql.EQ("topic_key", TopicKey(topic))).
		OrderBy(entsql.Desc("id")).
		Limit(1).
		Query()

	l, err := scanLesson(r.store.db.QueryRowContext(ctx, query, args...).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return l, err
}

// RecentLessons returns up to limit lessons, newest first. A limit of zero
// returns all of them.
func (r *LessonStore) RecentLessons(ctx context.Context, limit int) ([]Lesson, error) {
	b := r.store.builder()
	sel := b.Select(lessonColumns...).
		From(b.Table(tableLessons)).
		OrderBy(entsql.Desc("id"))
	if limit > 0 {
		sel.Limit(limit)
	}

	query, args := sel.Query()
	var rows entsql.Rows
	if err := r.store.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("query lessons: %w", err)
	}
	defer rows.Close()

	var out []Lesson
	for rows.Next() {
		l, err := scanLesson(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}

func scanLesson(scan func(dest ...any) error) (*Lesson, error) {
	var (
		l  Lesson
		ms int64
	)
	if err := scan(&l.ID, &l.Topic, &l.Content, &l.Model, &ms); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan lesson: %w", err)
	}
	l.CreatedAt = time.UnixMilli(ms).UTC()
	return &l, nil
}
