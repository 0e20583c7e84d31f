package models

// State is the session lifecycle stage.
//
//	unknown ──Restore──▶ restoring ──▶ authenticated | anonymous
//	anonymous ──Login/Register──▶ authenticated
//	authenticated ──Logout/401──▶ anonymous
type State string

const (
	StateUnknown       State = "unknown"
	StateRestoring     State = "restoring"
	StateAuthenticated State = "authenticated"
	StateAnonymous     State = "anonymous"
)

// Session is a read-only snapshot of the session store.
type Session struct {
	User  *User
	State State
}

// IsLoading is true until the initial restoration attempt has finished.
func (s Session) IsLoading() bool {
	return s.State == StateUnknown || s.State == StateRestoring
}

func (s Session) IsAuthenticated() bool {
	return s.State == StateAuthenticated && s.User != nil
}
