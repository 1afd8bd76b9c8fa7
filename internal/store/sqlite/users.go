package sqlite

import "context"

// User deletion anonymizes rather than removes: ownership columns are
// nulled and the affected entity ids are returned so their search
// projections can be refreshed with the cleared field.

// ClearWaypointDetailOwners nulls user_id on the user's waypoint
// details and returns the distinct affected waypoint ids.
func (s *Store) ClearWaypointDetailOwners(ctx context.Context, userID string) ([]string, error) {
	return s.clearOwners(ctx, `
		UPDATE waypoint_details SET user_id = NULL
		WHERE user_id = ? RETURNING waypoint_id`, userID)
}

// ClearLocationOwners nulls user_id on the user's locations and returns
// the distinct affected waypoint ids.
func (s *Store) ClearLocationOwners(ctx context.Context, userID string) ([]string, error) {
	return s.clearOwners(ctx, `
		UPDATE locations SET user_id = NULL
		WHERE user_id = ? RETURNING waypoint_id`, userID)
}

// ClearTagDetailOwners nulls user_id on the user's tag details and
// returns the distinct affected tag ids.
func (s *Store) ClearTagDetailOwners(ctx context.Context, userID string) ([]string, error) {
	return s.clearOwners(ctx, `
		UPDATE tag_details SET user_id = NULL
		WHERE user_id = ? RETURNING tag_id`, userID)
}

// ClearMediaDetailOwners nulls user_id on the user's media details and
// returns the distinct affected media ids.
func (s *Store) ClearMediaDetailOwners(ctx context.Context, userID string) ([]string, error) {
	return s.clearOwners(ctx, `
		UPDATE media_details SET user_id = NULL
		WHERE user_id = ? RETURNING media_id`, userID)
}

// ClearMediaFileOwners nulls user_id on the user's file revisions and
// returns the distinct affected media ids.
func (s *Store) ClearMediaFileOwners(ctx context.Context, userID string) ([]string, error) {
	return s.clearOwners(ctx, `
		UPDATE media_files SET user_id = NULL
		WHERE user_id = ? RETURNING media_id`, userID)
}

// ClearPageDetailOwners nulls user_id on the user's page details and
// returns the distinct affected page ids.
func (s *Store) ClearPageDetailOwners(ctx context.Context, userID string) ([]string, error) {
	return s.clearOwners(ctx, `
		UPDATE page_details SET user_id = NULL
		WHERE user_id = ? RETURNING page_id`, userID)
}

// clearOwners runs an anonymizing UPDATE ... RETURNING and dedups the
// returned parent ids. updated_at is deliberately left untouched so
// anonymization cannot promote an old revision to canonical.
func (s *Store) clearOwners(ctx context.Context, query, userID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seen := make(map[string]struct{})
	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
