package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xraph/wayfarer"
	"github.com/xraph/wayfarer/id"
)

func (a *API) getJob(c *gin.Context) {
	jobID, err := id.ParseJobID(c.Param("jobID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid job ID: %v", err)})
		return
	}

	j, err := a.eng.GetJob(c.Request.Context(), jobID)
	if err != nil {
		if errors.Is(err, wayfarer.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, j)
}
