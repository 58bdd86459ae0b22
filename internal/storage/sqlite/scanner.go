package sqlite

// Scanner interface defines the common scanning behavior for both sql.Row and sql.Rows
type Scanner interface {
	Scan(dest ...interface{}) error
}

// Rows interface defines the common behavior for sql.Rows
type Rows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

// ScanEntry scans a single kv row
func ScanEntry(scanner Scanner) (*Entry, error) {
	entry := &Entry{}
	var updatedAt string

	if err := scanner.Scan(&entry.Key, &entry.Value, &updatedAt); err != nil {
		return nil, err
	}

	t, err := ParseTimeFromDB(updatedAt)
	if err != nil {
		return nil, err
	}
	entry.UpdatedAt = t

	return entry, nil
}

// ScanKeys scans a single-column result of keys
func ScanKeys(rows Rows) ([]*string, error) {
	var keys []*string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, &key)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return keys, nil
}
