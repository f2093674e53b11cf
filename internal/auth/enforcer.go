package auth

// Enforcement helpers. Each is a pure function of the current database
// state and the given identifiers: a nil return means allow, ErrForbidden
// means deny, anything else is a resolution failure. Enforcement never
// mutates permission state.

// RequirePermission denies unless the user holds the permission (or the
// superuser role).
func (s *Service) RequirePermission(userID uint64, permission string) error {
	allowed, err := s.HasPermission(userID, permission)
	if err != nil {
		return err
	}

	if !allowed {
		return ErrForbidden
	}

	return nil
}

// RequireAdmin denies unless the user holds the superuser role.
func (s *Service) RequireAdmin(userID uint64) error {
	admin, err := s.IsAdmin(userID)
	if err != nil {
		return err
	}

	if !admin {
		return ErrForbidden
	}

	return nil
}

// RequireOwned decides an ownership-scoped action such as editorial
// edit or delete. The checks run in fixed order:
//
//  1. admin role: allow, overriding ownership entirely
//  2. the "any" permission: allow, ignoring ownership
//  3. the "own" permission AND the subject owns the resource: allow
//  4. otherwise: deny
//
// Admin is checked first so an admin without an explicit "any" row still
// succeeds; only the "own" branch compares identities.
func (s *Service) RequireOwned(userID, resourceOwnerID uint64, anyPermission, ownPermission string) error {
	access, err := s.Resolve(userID)
	if err != nil {
		return err
	}

	switch {
	case access.IsAdmin():
		return nil
	case access.Permissions[anyPermission]:
		return nil
	case access.Permissions[ownPermission] && resourceOwnerID == userID:
		return nil
	default:
		return ErrForbidden
	}
}
