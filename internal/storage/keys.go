package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// CreateAccessKey creates an access key together with its device and domain
// bindings in a single transaction. A DurationDays of 0 means the key never
// expires.
// Returns ErrNotFound if the project doesn't exist and ErrForeignProject if a
// bound device belongs to a different project.
func (s *SQLiteStorage) CreateAccessKey(ctx context.Context, key *NewAccessKey) (*AccessKeyDetail, error) {
	if _, err := s.GetProject(ctx, key.ProjectID); err != nil {
		return nil, err
	}
	if err := s.devicesBelongToProject(ctx, key.ProjectID, key.DeviceIDs); err != nil {
		return nil, err
	}

	var expiration *time.Time
	if key.DurationDays > 0 {
		t := time.Now().UTC().AddDate(0, 0, key.DurationDays)
		expiration = &t
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	result, err := tx.ExecContext(ctx,
		"INSERT INTO access_keys (project_id, access_key_name, client_key, secret_hash, expiration_date) VALUES (?, ?, ?, ?, ?)",
		key.ProjectID, key.Name, key.ClientKey, key.SecretHash, expiration)
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to insert access key: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get insert ID: %w", err)
	}

	if err := replaceKeyDevices(ctx, tx, id, key.DeviceIDs); err != nil {
		return nil, err
	}
	if err := replaceKeyDomains(ctx, tx, id, key.DomainNames); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit access key: %w", err)
	}

	return s.GetAccessKey(ctx, id)
}

// GetAccessKey retrieves an access key by ID, including its device and domain
// bindings.
// Returns ErrNotFound if the key doesn't exist.
func (s *SQLiteStorage) GetAccessKey(ctx context.Context, id int64) (*AccessKeyDetail, error) {
	var detail AccessKeyDetail
	err := s.db.QueryRowContext(ctx,
		`SELECT access_key_id, project_id, access_key_name, client_key, secret_hash,
		        created_at, expiration_date, last_use_time
		 FROM access_keys WHERE access_key_id = ?`,
		id).
		Scan(&detail.ID, &detail.ProjectID, &detail.Name, &detail.ClientKey, &detail.SecretHash,
			&detail.CreatedAt, &detail.ExpirationDate, &detail.LastUseTime)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get access key: %w", err)
	}

	detail.DeviceIDs, err = s.keyDeviceIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	detail.DomainNames, err = s.keyDomainNames(ctx, id)
	if err != nil {
		return nil, err
	}

	return &detail, nil
}

// GetAccessKeyByClientKey retrieves an access key by its client key, bindings
// included. The data plane uses it to authenticate device traffic.
// Returns ErrNotFound if no key carries the client key.
func (s *SQLiteStorage) GetAccessKeyByClientKey(ctx context.Context, clientKey string) (*AccessKeyDetail, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		"SELECT access_key_id FROM access_keys WHERE client_key = ?", clientKey).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to look up access key by client key: %w", err)
	}

	return s.GetAccessKey(ctx, id)
}

// TouchAccessKey stamps the key's last-use time.
// Returns ErrNotFound if the key doesn't exist.
func (s *SQLiteStorage) TouchAccessKey(ctx context.Context, id int64, when time.Time) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE access_keys SET last_use_time = ? WHERE access_key_id = ?",
		when.UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to touch access key: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// ListAccessKeysByProject returns all access keys scoped to a project, newest
// first. Bindings are not loaded; callers needing them use GetAccessKey.
// Returns empty slice if no keys exist.
func (s *SQLiteStorage) ListAccessKeysByProject(ctx context.Context, projectID int64) ([]*AccessKey, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT access_key_id, project_id, access_key_name, client_key, secret_hash,
		        created_at, expiration_date, last_use_time
		 FROM access_keys WHERE project_id = ? ORDER BY created_at DESC, access_key_id DESC`,
		projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query access keys: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var keys []*AccessKey
	for rows.Next() {
		var k AccessKey
		err := rows.Scan(&k.ID, &k.ProjectID, &k.Name, &k.ClientKey, &k.SecretHash,
			&k.CreatedAt, &k.ExpirationDate, &k.LastUseTime)
		if err != nil {
			return nil, fmt.Errorf("failed to scan access key row: %w", err)
		}
		keys = append(keys, &k)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating access keys: %w", err)
	}

	if keys == nil {
		keys = make([]*AccessKey, 0)
	}

	return keys, nil
}

// UpdateAccessKey applies a partial patch to an access key. Nil patch fields
// are left unchanged; non-nil device or domain slices replace the binding set
// wholesale inside one transaction.
// Returns ErrNotFound if the key doesn't exist.
func (s *SQLiteStorage) UpdateAccessKey(ctx context.Context, id int64, patch *AccessKeyPatch) (*AccessKeyDetail, error) {
	existing, err := s.GetAccessKey(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.DeviceIDs != nil {
		if err := s.devicesBelongToProject(ctx, existing.ProjectID, patch.DeviceIDs); err != nil {
			return nil, err
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if patch.Name != nil {
		if _, err := tx.ExecContext(ctx,
			"UPDATE access_keys SET access_key_name = ? WHERE access_key_id = ?",
			*patch.Name, id); err != nil {
			return nil, fmt.Errorf("failed to update access key name: %w", err)
		}
	}

	if patch.DeviceIDs != nil {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM access_key_devices WHERE access_key_id = ?", id); err != nil {
			return nil, fmt.Errorf("failed to clear device bindings: %w", err)
		}
		if err := replaceKeyDevices(ctx, tx, id, patch.DeviceIDs); err != nil {
			return nil, err
		}
	}

	if patch.DomainNames != nil {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM access_key_domains WHERE access_key_id = ?", id); err != nil {
			return nil, fmt.Errorf("failed to clear domain bindings: %w", err)
		}
		if err := replaceKeyDomains(ctx, tx, id, patch.DomainNames); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit access key update: %w", err)
	}

	return s.GetAccessKey(ctx, id)
}

// RenewAccessKey re-bases the key's expiration date from now by the given
// number of days and returns the new expiration.
// Returns ErrNotFound if the key doesn't exist.
func (s *SQLiteStorage) RenewAccessKey(ctx context.Context, id int64, durationDays int) (time.Time, error) {
	newExpiration := time.Now().UTC().AddDate(0, 0, durationDays)

	result, err := s.db.ExecContext(ctx,
		"UPDATE access_keys SET expiration_date = ? WHERE access_key_id = ?",
		newExpiration, id)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to renew access key: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return time.Time{}, ErrNotFound
	}

	return newExpiration, nil
}

// DeleteAccessKey deletes an access key by ID. Device and domain bindings are
// removed by the foreign key cascade.
// Returns ErrNotFound if the key doesn't exist.
func (s *SQLiteStorage) DeleteAccessKey(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM access_keys WHERE access_key_id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete access key: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *SQLiteStorage) keyDeviceIDs(ctx context.Context, keyID int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT device_id FROM access_key_devices WHERE access_key_id = ? ORDER BY device_id ASC",
		keyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query device bindings: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan device binding: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating device bindings: %w", err)
	}

	return ids, nil
}

func (s *SQLiteStorage) keyDomainNames(ctx context.Context, keyID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT domain_name FROM access_key_domains WHERE access_key_id = ? ORDER BY id ASC",
		keyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query domain bindings: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan domain binding: %w", err)
		}
		names = append(names, name)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating domain bindings: %w", err)
	}

	return names, nil
}

func replaceKeyDevices(ctx context.Context, tx *sql.Tx, keyID int64, deviceIDs []int64) error {
	for _, deviceID := range deviceIDs {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO access_key_devices (access_key_id, device_id) VALUES (?, ?)",
			keyID, deviceID); err != nil {
			return fmt.Errorf("failed to insert device binding: %w", err)
		}
	}
	return nil
}

func replaceKeyDomains(ctx context.Context, tx *sql.Tx, keyID int64, domainNames []string) error {
	for _, name := range domainNames {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO access_key_domains (access_key_id, domain_name) VALUES (?, ?)",
			keyID, name); err != nil {
			return fmt.Errorf("failed to insert domain binding: %w", err)
		}
	}
	return nil
}
