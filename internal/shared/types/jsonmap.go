package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// JSONMap represents a JSON object stored in a jsonb column
type JSONMap map[string]interface{}

// Value implements the driver.Valuer interface for database storage
func (j JSONMap) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements the sql.Scanner interface for database retrieval
func (j *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("type assertion to []byte failed")
	}

	return json.Unmarshal(bytes, j)
}

// GormDataType tells GORM how to handle this type
func (JSONMap) GormDataType() string {
	return "jsonb"
}

// Clone returns a shallow copy, never nil.
func (j JSONMap) Clone() JSONMap {
	out := make(JSONMap, len(j))
	for k, v := range j {
		out[k] = v
	}
	return out
}

// Merge returns a copy of j with every key of other set on top.
func (j JSONMap) Merge(other map[string]interface{}) JSONMap {
	out := j.Clone()
	for k, v := range other {
		out[k] = v
	}
	return out
}
