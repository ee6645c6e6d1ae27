// Package accounts resolves account codes embedded in export filenames to
// friendly account names.
package accounts

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// filenameCode matches an account code embedded in an export filename,
// e.g. "export_chk0441_2025-07.csv" or "brk1-history.xlsx".
var filenameCode = regexp.MustCompile(`(?i)(?:^|[_-])([a-z]{2,10}[0-9]{1,6})(?:[_\-.])`)

// Service provides in-memory lookup over the account-code table.
type Service struct {
	codes map[string]string // lowercase code -> friendly name
}

// NewService creates a Service from a code table. The table is copied, so
// later mutation by the caller has no effect.
func NewService(codes map[string]string) *Service {
	m := make(map[string]string, len(codes))
	for code, name := range codes {
		m[strings.ToLower(strings.TrimSpace(code))] = name
	}
	return &Service{codes: m}
}

// Resolve returns the friendly name for a code. Unknown codes synthesize a
// label instead of failing so the row can still be ingested.
func (s *Service) Resolve(code string) string {
	if name, ok := s.codes[strings.ToLower(strings.TrimSpace(code))]; ok {
		return name
	}
	return fmt.Sprintf("Unknown Account (%s)", strings.ToUpper(code))
}

// FromFilename infers the account from an export filename. ok is false when
// the filename carries no recognizable code.
func (s *Service) FromFilename(path string) (name, code string, ok bool) {
	base := strings.ToLower(filepath.Base(path))
	sub := filenameCode.FindStringSubmatch(base)
	if sub == nil {
		return "", "", false
	}
	code = sub[1]
	return s.Resolve(code), code, true
}
