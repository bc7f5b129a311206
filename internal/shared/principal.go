package shared

import (
	"strconv"
	"strings"
)

// Session value keys set at login.
const (
	SessionKeyTenant         = "tenant_id"
	SessionKeyRepresentative = "representative_id"
)

// Principal is the signed-in user as seen by handlers.
type Principal struct {
	UserID           int64
	TenantID         int64
	RepresentativeID string
}

// PrincipalFromSession reads the principal stored at login. It returns
// ErrUnauthenticated when the session has no valid user.
func PrincipalFromSession(sess *Session) (Principal, error) {
	if sess == nil {
		return Principal{}, ErrUnauthenticated
	}
	raw := strings.TrimSpace(sess.User())
	if raw == "" {
		return Principal{}, ErrUnauthenticated
	}
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || userID <= 0 {
		return Principal{}, ErrUnauthenticated
	}
	tenantID, err := strconv.ParseInt(sess.Get(SessionKeyTenant), 10, 64)
	if err != nil || tenantID <= 0 {
		return Principal{}, ErrUnauthenticated
	}
	return Principal{
		UserID:           userID,
		TenantID:         tenantID,
		RepresentativeID: strings.TrimSpace(sess.Get(SessionKeyRepresentative)),
	}, nil
}

// Owns reports whether the principal is the representative actorID.
func (p Principal) Owns(actorID string) bool {
	return p.RepresentativeID != "" && p.RepresentativeID == actorID
}

// StorePrincipal writes the principal into the session.
func StorePrincipal(sess *Session, p Principal) {
	if sess == nil {
		return
	}
	sess.SetUser(strconv.FormatInt(p.UserID, 10))
	sess.Set(SessionKeyTenant, strconv.FormatInt(p.TenantID, 10))
	if p.RepresentativeID != "" {
		sess.Set(SessionKeyRepresentative, p.RepresentativeID)
	} else {
		sess.Delete(SessionKeyRepresentative)
	}
}

// HasPermission reports whether perm appears in granted, ignoring case.
func HasPermission(granted []string, perm string) bool {
	required := strings.TrimSpace(perm)
	for _, g := range granted {
		if strings.EqualFold(strings.TrimSpace(g), required) {
			return true
		}
	}
	return false
}
