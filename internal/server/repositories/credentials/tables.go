package credentials

import (
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/tenantauth/internal/server/models"
)

type table struct {
	name    string
	hashCol string
	// scoped tables hold several purposes and carry a purpose column.
	scoped bool
	// superAdmin restricts owners to users outside any tenant.
	superAdmin bool
}

func tableFor(p models.Purpose) (table, error) {
	switch p {
	case models.PurposePasswordReset:
		return table{name: "password_reset_tokens", hashCol: "token_hash"}, nil
	case models.PurposeMobileVerify, models.PurposePasswordOTP:
		return table{name: "tenant_password_otps", hashCol: "otp_hash", scoped: true}, nil
	case models.PurposeSuperAdminOTP:
		return table{name: "super_admin_otps", hashCol: "otp_hash", superAdmin: true}, nil
	}
	return table{}, fmt.Errorf("unknown credential purpose %q", p)
}

// args accumulates positional query arguments and hands out placeholders.
type args []any

func (a *args) add(v any) string {
	*a = append(*a, v)
	return "$" + strconv.Itoa(len(*a))
}
