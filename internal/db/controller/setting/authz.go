package setting

import (
	"errors"

	"gorm.io/gorm"

	"github.com/authgate/authgate/internal/authz"
)

// Runtime settings of the permission engine. They live in the settings table
// so operators can change them without a restart or config rollout.
const (
	// NameAuditMode holds the audit recording mode ("all" or "denials").
	NameAuditMode = "authz.audit_mode"
)

// ErrInvalidAuditMode is returned when the stored audit mode value is neither
// "all" nor "denials".
var ErrInvalidAuditMode = errors.New("audit mode must be \"all\" or \"denials\"")

// AuditMode reads the configured audit mode. An absent setting means
// record everything.
func AuditMode(db *gorm.DB) (authz.AuditMode, error) {
	s, err := Get(db, NameAuditMode)
	if errors.Is(err, ErrSettingNotFound) {
		return authz.AuditModeAll, nil
	}

	if err != nil {
		return authz.AuditModeAll, err
	}

	mode := authz.AuditMode(s.Value)
	if mode != authz.AuditModeAll && mode != authz.AuditModeDenials {
		return authz.AuditModeAll, ErrInvalidAuditMode
	}

	return mode, nil
}

// SetAuditMode stores the audit mode after validating it.
func SetAuditMode(db *gorm.DB, mode authz.AuditMode) error {
	if mode != authz.AuditModeAll && mode != authz.AuditModeDenials {
		return ErrInvalidAuditMode
	}

	_, err := Set(db, NameAuditMode, []byte(mode))

	return err
}
