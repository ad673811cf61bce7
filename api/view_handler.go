package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xraph/wayfarer"
	"github.com/xraph/wayfarer/id"
	"github.com/xraph/wayfarer/job"
)

// timestampLayout renders record timestamps like "August 23, 2026 at 14:05".
const timestampLayout = "January 02, 2006 at 15:04"

// generateRequest carries the submission form fields. DurationDays stays a
// string through binding so a non-numeric value gets its own error view
// instead of a generic binding failure.
type generateRequest struct {
	Destination  string `form:"destination" binding:"required,notblank"`
	DurationDays string `form:"durationDays" binding:"required"`
}

func (a *API) home(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", nil)
}

func (a *API) redirectHome(c *gin.Context) {
	c.Redirect(http.StatusFound, "/")
}

func (a *API) generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBind(&req); err != nil {
		a.renderError(c, http.StatusOK, "Missing Information",
			"Please provide both destination and duration")
		return
	}

	days, err := strconv.Atoi(strings.TrimSpace(req.DurationDays))
	if err != nil || days < job.MinDurationDays || days > job.MaxDurationDays {
		a.renderError(c, http.StatusOK, "Invalid Duration",
			"Please enter a valid number between 1 and 30")
		return
	}

	j, err := a.eng.CreateJob(c.Request.Context(), req.Destination, days)
	if err != nil {
		a.logger.Error("job creation failed",
			slog.String("destination", req.Destination),
			slog.String("error", err.Error()),
		)
		a.renderError(c, http.StatusOK, "Server Error",
			"An unexpected error occurred while processing your request")
		return
	}

	c.Redirect(http.StatusSeeOther, "/itineraries/"+j.ID.String())
}

func (a *API) showItinerary(c *gin.Context) {
	rawID := c.Param("jobID")

	jobID, err := id.ParseJobID(rawID)
	if err != nil {
		a.renderError(c, http.StatusNotFound, "Itinerary Not Found",
			"No itinerary found with ID: "+rawID)
		return
	}

	rec, err := a.eng.GetJob(c.Request.Context(), jobID)
	if err != nil {
		if errors.Is(err, wayfarer.ErrJobNotFound) {
			a.renderError(c, http.StatusNotFound, "Itinerary Not Found",
				"No itinerary found with ID: "+rawID)
			return
		}
		a.logger.Error("itinerary lookup failed",
			slog.String("job_id", rawID),
			slog.String("error", err.Error()),
		)
		a.renderError(c, http.StatusInternalServerError, "Server Error",
			"An unexpected error occurred while fetching your itinerary")
		return
	}

	switch rec.Status {
	case job.StatusCompleted:
		c.HTML(http.StatusOK, "itinerary.html", gin.H{
			"JobID":       rec.ID.String(),
			"Destination": rec.Destination,
			"Duration":    rec.DurationDays,
			"Itinerary":   rec.Itinerary,
			"CreatedAt":   formatTimestamp(&rec.CreatedAt),
			"CompletedAt": formatTimestamp(rec.CompletedAt),
		})
	case job.StatusProcessing:
		c.HTML(http.StatusOK, "processing.html", gin.H{
			"JobID":       rec.ID.String(),
			"Destination": rec.Destination,
			"Duration":    rec.DurationDays,
		})
	case job.StatusFailed:
		msg := rec.Error
		if msg == "" {
			msg = "Unknown error"
		}
		a.renderError(c, http.StatusOK, "Generation Failed", msg)
	default:
		a.renderError(c, http.StatusOK, "Unknown Status",
			fmt.Sprintf("Unexpected status: %s", rec.Status))
	}
}

func (a *API) renderError(c *gin.Context, code int, title, message string) {
	c.HTML(code, "error.html", gin.H{
		"ErrorTitle":   title,
		"ErrorMessage": message,
	})
}

func formatTimestamp(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(timestampLayout)
}
