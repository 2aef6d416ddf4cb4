// Package testutil holds fixtures shared by the shop's package tests:
// throwaway databases, a recording event handler and stable IDs.
package testutil

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var idNamespace = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

// NewTestUUID derives a stable UUID from seed
func NewTestUUID(seed string) uuid.UUID {
	return uuid.NewSHA1(idNamespace, []byte(seed))
}

// TestAdminID is the ID tests use for an acting administrator
func TestAdminID() uuid.UUID {
	return NewTestUUID("shop-admin")
}

// TestUserID is the ID tests use for an ordinary customer
func TestUserID() uuid.UUID {
	return NewTestUUID("shop-customer")
}
