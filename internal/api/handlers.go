package api

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"

	"gomarkov/adapters/excel"
	"gomarkov/internal/analysis"
	"gomarkov/internal/errors"
	"gomarkov/internal/markov"
	"gomarkov/internal/report"

	"github.com/gin-gonic/gin"
)

// Multipart field names accepted by the observation endpoints.
const (
	formFieldFile      = "file"
	formFieldRegistros = "registros"
)

func (s *Server) handleIndex(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Credit risk analysis API with Markov chains",
		"version": Version,
		"status":  "online",
		"endpoints": gin.H{
			"/matrix":     "POST - estimate the transition matrix and analyze it (alias /matriz)",
			"/stationary": "POST - stationary distribution (alias /estacionario)",
			"/losses":     "POST - expected losses per state (alias /perdidas)",
			"/stress":     "POST - apply a stress scenario",
			"/report":     "POST - HTML analysis report",
			"/health":     "GET - health check",
		},
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "backend is running",
	})
}

// handleMatrix estimates the chain from observations and returns the full analysis.
func (s *Server) handleMatrix(c *gin.Context) {
	obs, err := s.readObservations(c)
	if err != nil {
		s.respondError(c, err)
		return
	}

	full, err := s.engine.Analyze(c.Request.Context(), obs)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, full)
}

func (s *Server) handleStationary(c *gin.Context) {
	var req stationaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, bindError(err))
		return
	}
	if req.States == nil {
		req.States = []string{}
	}
	if len(req.States) > 0 {
		if _, err := markov.ValidateChain(req.Matrix, req.States); err != nil {
			s.respondError(c, err)
			return
		}
	}

	res, err := s.engine.StationaryDistribution(c.Request.Context(), req.Matrix, analysis.StationaryParams{
		Tolerance:     req.Tolerance,
		MaxIterations: req.MaxIter,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stationaryResponse{
		AnalysisID:       analysisID(c),
		StationaryResult: res,
		States:           req.States,
	})
}

func (s *Server) handleLosses(c *gin.Context) {
	var req lossesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, bindError(err))
		return
	}

	rep, err := s.engine.ExpectedLosses(c.Request.Context(), req.Matrix, req.States, req.EAD, req.LGD)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, lossesResponse{AnalysisID: analysisID(c), LossReport: rep})
}

func (s *Server) handleStress(c *gin.Context) {
	var req stressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, bindError(err))
		return
	}

	res, err := s.engine.ApplyStress(c.Request.Context(), req.Matrix, req.States, analysis.StressFactors{
		Delinquent:    req.Delinquent,
		Uncollectible: req.Uncollectible,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stressResponse{
		AnalysisID:   analysisID(c),
		StressResult: res,
		States:       req.States,
	})
}

// handleReport renders the full analysis as HTML, or as markdown with
// ?format=markdown.
func (s *Server) handleReport(c *gin.Context) {
	obs, err := s.readObservations(c)
	if err != nil {
		s.respondError(c, err)
		return
	}

	full, err := s.engine.Analyze(c.Request.Context(), obs)
	if err != nil {
		s.respondError(c, err)
		return
	}

	if c.Query("format") == "markdown" {
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(report.Markdown(full)))
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", report.HTML(full))
}

// readObservations accepts a JSON body, a multipart "registros" JSON field
// or a multipart xlsx/csv "file".
func (s *Server) readObservations(c *gin.Context) ([]markov.Observation, error) {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		var req observationsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			return nil, bindError(err)
		}
		return markov.ObservationsFromPairs(req.pairs())
	}

	if fh, err := c.FormFile(formFieldFile); err == nil {
		f, err := fh.Open()
		if err != nil {
			return nil, errors.Wrapf(err, "failed to open upload %s", fh.Filename)
		}
		defer f.Close()

		obs, err := excel.NewDataReader(fh.Filename).WithLogger(s.logger).ReadObservations(f)
		if err != nil {
			return nil, errors.WithCode(errors.CodeInvalidInput, fmt.Errorf("%s: %w", fh.Filename, err))
		}
		return obs, nil
	} else if !stderrors.Is(err, http.ErrMissingFile) {
		return nil, bindError(err)
	}

	raw := c.PostForm(formFieldRegistros)
	if raw == "" {
		return nil, errors.InvalidInput(fmt.Sprintf("multipart body needs a %q file or a %q field", formFieldFile, formFieldRegistros))
	}
	var pairs [][]string
	if err := json.Unmarshal([]byte(raw), &pairs); err != nil {
		return nil, errors.InvalidInput(fmt.Sprintf("%s is not a JSON list of pairs: %v", formFieldRegistros, err))
	}
	return markov.ObservationsFromPairs(pairs)
}

// bindError keeps oversized bodies distinguishable from malformed ones.
func bindError(err error) error {
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		return errors.PayloadTooLarge(tooLarge.Limit)
	}
	return errors.ValidationError(err.Error())
}

// respondError maps an error to its status and writes {"error", "code"}.
func (s *Server) respondError(c *gin.Context, err error) {
	appErr := errors.FromDomain(err)
	status := errors.HTTPStatus(appErr.Code)

	if status >= http.StatusInternalServerError {
		s.logger.Error("%s %s failed: %v", c.Request.Method, c.FullPath(), err)
	} else {
		s.logger.Debug("%s %s rejected: %v", c.Request.Method, c.FullPath(), err)
	}
	c.AbortWithStatusJSON(status, errorResponse{Error: appErr.Message, Code: appErr.Code})
}
