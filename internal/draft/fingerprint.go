package draft

import (
	"log/slog"

	"github.com/goccy/go-json"
)

type printed struct {
	Position int `json:"position"`
	Data     any `json:"data"`
}

// fingerprint serializes a record with its position. Two records with the
// same fingerprint would produce the same write. An unencodable record gets
// an empty fingerprint, which never matches a stored one.
func (s *Store[P, C, G]) fingerprint(kind string, position int, data any) string {
	b, err := json.Marshal(printed{Position: position, Data: data})
	if err != nil {
		s.logger.Error("failed to fingerprint record",
			slog.String("kind", kind),
			slog.Int("position", position),
			slog.String("error", err.Error()))
		return ""
	}
	return string(b)
}

// unchanged reports whether the stored fingerprint for id equals fp.
func unchanged(prints map[ServerID]string, id Ident, fp string) bool {
	sid, ok := AsServerID(id)
	if !ok || fp == "" {
		return false
	}
	stored, ok := prints[sid]
	return ok && stored == fp
}
