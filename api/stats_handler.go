package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (a *API) stats(c *gin.Context) {
	st, err := a.eng.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, st)
}
