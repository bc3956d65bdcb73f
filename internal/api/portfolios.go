package api

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	"gomarkov/adapters/postgres"
	"gomarkov/domain/core"
	"gomarkov/internal/errors"
	"gomarkov/ports"

	"github.com/gin-gonic/gin"
)

// windowDateLayout is the format of the from/to query parameters.
const windowDateLayout = "2006-01-02"

func (s *Server) handleListPortfolios(c *gin.Context) {
	if s.repo == nil {
		s.respondError(c, errors.NotFound("portfolio repository"))
		return
	}

	portfolios, err := s.repo.ListPortfolios(c.Request.Context())
	if err != nil {
		s.respondError(c, errors.WithCode(errors.CodeDatabaseError, err))
		return
	}
	if portfolios == nil {
		portfolios = []ports.PortfolioSummary{}
	}
	c.JSON(http.StatusOK, gin.H{"portfolios": portfolios})
}

// handlePortfolioAnalysis runs the full analysis on one stored portfolio,
// optionally restricted with ?from=YYYY-MM-DD&to=YYYY-MM-DD.
func (s *Server) handlePortfolioAnalysis(c *gin.Context) {
	if s.repo == nil {
		s.respondError(c, errors.NotFound("portfolio repository"))
		return
	}

	window, err := parseWindow(c)
	if err != nil {
		s.respondError(c, err)
		return
	}

	portfolio := c.Param("portfolio")
	full, err := s.engine.AnalyzeSource(c.Request.Context(), postgres.PortfolioSource{
		Repo:      s.repo,
		Portfolio: portfolio,
		Window:    window,
	})
	switch {
	case err == nil:
		c.JSON(http.StatusOK, full)
	case stderrors.Is(err, core.ErrEmptyObservations):
		s.respondError(c, errors.NotFound(fmt.Sprintf("portfolio %q", portfolio)))
	case core.IsInvalidInput(err):
		s.respondError(c, err)
	default:
		s.respondError(c, errors.WithCode(errors.CodeDatabaseError, err))
	}
}

func parseWindow(c *gin.Context) (ports.ObservationWindow, error) {
	var w ports.ObservationWindow
	for _, p := range []struct {
		name string
		dst  *time.Time
	}{
		{"from", &w.From},
		{"to", &w.To},
	} {
		raw := c.Query(p.name)
		if raw == "" {
			continue
		}
		t, err := time.Parse(windowDateLayout, raw)
		if err != nil {
			return w, errors.ValidationError(fmt.Sprintf("%s must be a %s date: %q", p.name, windowDateLayout, raw))
		}
		*p.dst = t
	}
	if !w.From.IsZero() && !w.To.IsZero() && !w.From.Before(w.To) {
		return w, errors.ValidationError("from must be before to")
	}
	return w, nil
}
