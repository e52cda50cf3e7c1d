package ledger

import "encoding/json"

// Optional is a tri-state JSON field for partial updates: absent keeps
// the stored value, explicit null clears it, a value replaces it. The
// distinction matters for transaction patches, where `"bucket_id":
// null` detaches a bucket while omitting the key leaves it alone.
type Optional[T any] struct {
	Set   bool
	Valid bool
	Value T
}

func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Valid = false
		return nil
	}
	if err := json.Unmarshal(b, &o.Value); err != nil {
		return err
	}
	o.Valid = true
	return nil
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set || !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}
