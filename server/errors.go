package server

import (
	"net/http"

	"boardbank/service"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// statusForCode maps the domain error taxonomy onto HTTP statuses
func statusForCode(code service.ErrorCode) int {
	switch code {
	case service.CodeInvalidAmount, service.CodeSameAccount:
		return http.StatusBadRequest
	case service.CodeIdentityMissing:
		return http.StatusUnauthorized
	case service.CodeGameNotFound, service.CodePlayerNotFound:
		return http.StatusNotFound
	case service.CodeInsufficientFunds, service.CodeBankInsufficient, service.CodeAlreadyMember:
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

// respondError writes a domain error as a structured 4xx body, and
// anything else as a 502 without leaking store internals.
func respondError(c *gin.Context, err error) {
	if domainErr, ok := service.AsDomainError(err); ok {
		c.JSON(statusForCode(domainErr.Code), gin.H{
			"code":  domainErr.Code,
			"field": domainErr.Field,
			"error": domainErr.Message,
		})
		return
	}

	log.WithError(err).WithField("path", c.Request.URL.Path).Error("Storage operation failed")
	c.JSON(http.StatusBadGateway, gin.H{"error": "storage unavailable"})
}
