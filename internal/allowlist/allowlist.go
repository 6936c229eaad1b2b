package allowlist

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/clubsupply/supplydesk-backend/pkg/enums"
)

// List maps allow-listed emails to the role they register with. Lookups are
// case-insensitive on the email.
type List struct {
	roles map[string]enums.UserRole
}

// Load reads a CSV file of "email,role" rows. A header row starting with
// "email" is skipped; blank lines and comment lines starting with '#' are
// ignored.
func Load(path string) (*List, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open allowlist: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads allowlist rows from the provided reader.
func Parse(r io.Reader) (*List, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.Comment = '#'

	roles := make(map[string]enums.UserRole)
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read allowlist: %w", err)
		}
		line++

		if len(record) == 0 {
			continue
		}
		email := strings.ToLower(strings.TrimSpace(record[0]))
		if email == "" {
			continue
		}
		if line == 1 && email == "email" {
			continue
		}
		if len(record) < 2 {
			return nil, fmt.Errorf("allowlist row %d: missing role for %s", line, email)
		}

		role, err := enums.ParseUserRole(strings.TrimSpace(record[1]))
		if err != nil {
			return nil, fmt.Errorf("allowlist row %d: %w", line, err)
		}
		roles[email] = role
	}

	return &List{roles: roles}, nil
}

// Lookup returns the role for the email when allow-listed.
func (l *List) Lookup(email string) (enums.UserRole, bool) {
	role, ok := l.roles[strings.ToLower(strings.TrimSpace(email))]
	return role, ok
}

// Len reports the number of allow-listed emails.
func (l *List) Len() int {
	return len(l.roles)
}
