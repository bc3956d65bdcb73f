package api

import (
	"gomarkov/domain/core"
	"gomarkov/internal/markov"
	"gomarkov/internal/risk"
)

// observationsRequest accepts "registros" and its English alias "observations".
type observationsRequest struct {
	Registros    [][]string `json:"registros"`
	Observations [][]string `json:"observations"`
}

func (r observationsRequest) pairs() [][]string {
	if len(r.Registros) > 0 {
		return r.Registros
	}
	return r.Observations
}

type stationaryRequest struct {
	Matrix    [][]float64 `json:"matriz_transicion" binding:"required"`
	States    []string    `json:"estados"`
	Tolerance float64     `json:"tolerance" binding:"gte=0"`
	MaxIter   int         `json:"max_iter" binding:"gte=0"`
}

type stationaryResponse struct {
	AnalysisID core.AnalysisID `json:"analysis_id"`
	*markov.StationaryResult
	States []string `json:"estados"`
}

type lossesRequest struct {
	Matrix [][]float64        `json:"matriz_transicion" binding:"required"`
	States []string           `json:"estados" binding:"required"`
	EAD    map[string]float64 `json:"ead" binding:"required"`
	LGD    map[string]float64 `json:"lgd" binding:"required"`
}

type lossesResponse struct {
	AnalysisID core.AnalysisID `json:"analysis_id"`
	*risk.LossReport
}

type stressRequest struct {
	Matrix        [][]float64 `json:"matriz_base" binding:"required"`
	States        []string    `json:"estados" binding:"required"`
	Delinquent    *float64    `json:"factor_moroso"`
	Uncollectible *float64    `json:"factor_incobrable"`
}

type stressResponse struct {
	AnalysisID core.AnalysisID `json:"analysis_id"`
	*risk.StressResult
	States []string `json:"estados"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
