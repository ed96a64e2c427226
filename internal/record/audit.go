package record

import (
	"strconv"

	"github.com/lungsight/apiserver/types"
)

// AuditLog is the denormalized append-only trail of signups, written next to
// the relational insert. The two writes are not transactional; a crash
// between them leaves the stores inconsistent (accepted gap).
type AuditLog struct {
	log *csvLog
}

func NewAuditLog(path string) *AuditLog {
	return &AuditLog{
		log: &csvLog{
			path:   path,
			header: []string{"full_name", "gender", "age", "username", "user_uuid"},
		},
	}
}

// Append records one signup.
func (a *AuditLog) Append(user types.User) error {
	return a.log.append([]string{
		user.FullName,
		user.Gender,
		strconv.Itoa(user.Age),
		user.Username,
		user.UUID,
	})
}
