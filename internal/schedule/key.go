package schedule

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrMalformedOccurrenceID = errors.New("malformed occurrence id")

// OccurrenceKey identifies one dated instance of a session. Its string form
// "{sessionId}_{YYYY-MM-DD}" is only used on the wire and in paths.
type OccurrenceKey struct {
	SessionID string
	Date      string // YYYY-MM-DD
}

func NewOccurrenceKey(sessionID string, date time.Time) OccurrenceKey {
	return OccurrenceKey{SessionID: sessionID, Date: date.Format(DateLayout)}
}

func (k OccurrenceKey) String() string {
	return k.SessionID + "_" + k.Date
}

// ParseOccurrenceKey splits on the last underscore, so session ids that
// contain underscores survive the round trip.
func ParseOccurrenceKey(id string) (OccurrenceKey, error) {
	i := strings.LastIndex(id, "_")
	if i < 0 {
		return OccurrenceKey{}, fmt.Errorf("%w: %q has no underscore", ErrMalformedOccurrenceID, id)
	}
	k := OccurrenceKey{SessionID: id[:i], Date: id[i+1:]}
	if k.SessionID == "" {
		return OccurrenceKey{}, fmt.Errorf("%w: %q has an empty session id", ErrMalformedOccurrenceID, id)
	}
	if _, err := time.Parse(DateLayout, k.Date); err != nil {
		return OccurrenceKey{}, fmt.Errorf("%w: %q does not end in a YYYY-MM-DD date", ErrMalformedOccurrenceID, id)
	}
	return k, nil
}

func (k OccurrenceKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *OccurrenceKey) UnmarshalText(b []byte) error {
	parsed, err := ParseOccurrenceKey(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
