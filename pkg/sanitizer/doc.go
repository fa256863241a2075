// Package sanitizer provides input normalization for gig and role data.
//
// All normalization functions are idempotent - applying them multiple times
// produces the same result. Functions handle invalid input gracefully,
// typically by returning empty strings or empty slices rather than errors.
//
// Role names are the load-bearing case: the qualification matcher compares
// a user's instrument against a role name with NormalizeRole on both sides,
// so "  Lead GUITAR " and "lead guitar" must normalize identically.
package sanitizer
