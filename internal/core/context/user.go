// Package context provides request-scoped values extraction.
package context

import (
	"context"
)

// UserContext contains authenticated caller information.
// SellerID is set for seller accounts; IsAdmin grants back-office
// capabilities (overrides, cross-seller visibility).
type UserContext struct {
	UserID   string
	SellerID string
	Email    string
	IsAdmin  bool
}

type userContextKey struct{}

// WithUser adds UserContext to context.
func WithUser(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// GetUser returns UserContext from context.
func GetUser(ctx context.Context) *UserContext {
	if v, ok := ctx.Value(userContextKey{}).(*UserContext); ok {
		return v
	}
	return nil
}

// GetUserID returns user ID from context or empty string.
func GetUserID(ctx context.Context) string {
	if u := GetUser(ctx); u != nil {
		return u.UserID
	}
	return ""
}

// GetSellerID returns the caller's seller ID from context or empty string.
func GetSellerID(ctx context.Context) string {
	if u := GetUser(ctx); u != nil {
		return u.SellerID
	}
	return ""
}

// IsAdmin reports whether the caller has admin capability.
func IsAdmin(ctx context.Context) bool {
	u := GetUser(ctx)
	return u != nil && u.IsAdmin
}

// HasSellerAccess checks whether the caller may act on sellerID data.
// Admins see every seller; sellers see only their own.
func HasSellerAccess(ctx context.Context, sellerID string) bool {
	u := GetUser(ctx)
	if u == nil {
		return false
	}
	if u.IsAdmin {
		return true
	}
	return u.SellerID == sellerID
}
