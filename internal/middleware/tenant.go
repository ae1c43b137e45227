package middleware

import (
	"net/http"

	"vendaflow/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TenantScope resolves the tenant from the token's org_id claim and parks it
// in the context. Every org-scoped repository query runs under this ID, so a
// request can never read or write another organization's rows.
//
// Super admins carry no org_id and are rejected here: tenant routes require a
// tenant. They use the /admin surface instead.
func TenantScope() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil || claims.OrganizationID == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, apierror.New("Acesso restrito a usuários de uma organização"))
			return
		}
		orgID, err := uuid.Parse(claims.OrganizationID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, apierror.New("Organização inválida no token"))
			return
		}
		c.Set(OrgIDKey, orgID)
		c.Next()
	}
}
