package auth

// Authorize reports whether verified claims grant one of the required
// roles. It is stateless and side-effect free; route handlers use it to
// gate admin- and employee-scoped operations.
func Authorize(claims Claims, required ...Role) error {
	for _, role := range required {
		if claims.Role == role {
			return nil
		}
	}
	return ErrForbidden
}
