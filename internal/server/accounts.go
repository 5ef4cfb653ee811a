package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	accountdomain "github.com/smallbiznis/portalauth/internal/account/domain"
)

// ListAccounts resolves every account registered under an email, primary
// first, so callers defaulting to "the" account pick consistently.
func (s *Server) ListAccounts(c *gin.Context) {
	accounts, err := s.accounts.GetAccountsByEmail(c.Request.Context(), c.Query("email"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	views := make([]gin.H, 0, len(accounts))
	for _, account := range accounts {
		views = append(views, accountView(account))
	}
	c.JSON(http.StatusOK, gin.H{"accounts": views})
}

func accountView(account accountdomain.CustomerAccount) gin.H {
	return gin.H{
		"id":                 account.ID.String(),
		"customer_name":      account.CustomerName,
		"email":              account.Email,
		"is_primary_account": account.IsPrimaryAccount,
		"account_status":     account.AccountStatus,
	}
}
