package controller

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"github.com/cinnamoroll16/reforestadmin-backend-sub000/internal/dataset"
	"github.com/cinnamoroll16/reforestadmin-backend-sub000/internal/modules/recommendation/service"
	"github.com/cinnamoroll16/reforestadmin-backend-sub000/internal/modules/recommendation/types"
	"github.com/cinnamoroll16/reforestadmin-backend-sub000/internal/modules/recommendation/views"
	"github.com/cinnamoroll16/reforestadmin-backend-sub000/internal/recommend"
	"github.com/cinnamoroll16/reforestadmin-backend-sub000/internal/telemetry"
	"github.com/cinnamoroll16/reforestadmin-backend-sub000/internal/utils"
)

// writeServiceError answers with the status mapped from err. Server errors are
// logged and their detail withheld.
func (c *recommendationControllerImpl) writeServiceError(w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		c.logger.Error(op+" failed", "error", err)
		utils.WriteError(w, status, op+" failed")
		return
	}
	utils.WriteError(w, status, err.Error())
}

func (c *recommendationControllerImpl) handleIndex(w http.ResponseWriter, r *http.Request) {
	status := c.service.DatasetStatus()
	data := views.IndexData{
		Loaded:       status.Loaded,
		SpeciesCount: status.SpeciesCount,
		Strategy:     status.Strategy,
		DefaultTopN:  c.service.DefaultTopN(),
	}
	if status.LastUpdated != nil {
		data.LastUpdated = status.LastUpdated.Format(time.DateTime)
	}

	var buf bytes.Buffer
	if err := views.RenderIndex(&buf, &data); err != nil {
		c.logger.Error("index template render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render page")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(buf.Bytes()); err != nil {
		c.logger.Error("index: write response failed", "error", err)
	}
}

func (c *recommendationControllerImpl) handleRecommendationsPartial(w http.ResponseWriter, r *http.Request) {
	var data views.RecommendationsData

	// Input and dataset problems render as a message so the fragment still swaps in.
	reading, topN, err := parseReadingQuery(r)
	if err != nil {
		data.Message = err.Error()
	} else {
		recs, recErr := c.service.Preview(reading, topN)
		switch {
		case recErr == nil:
			data.Recommendations = recs
		case errors.Is(recErr, dataset.ErrDatasetNotLoaded):
			data.Message = "No dataset loaded"
		case errors.Is(recErr, dataset.ErrEmptyDataset):
			data.Message = "The loaded dataset has no species"
		default:
			c.logger.Error("recommendations partial: preview failed", "error", recErr)
			utils.WriteError(w, http.StatusInternalServerError, "failed to score reading")
			return
		}
	}

	var buf bytes.Buffer
	if err := views.RenderRecommendationsPartial(&buf, &data); err != nil {
		c.logger.Error("recommendations partial render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(buf.Bytes()); err != nil {
		c.logger.Error("recommendations partial: write response failed", "error", err)
	}
}

func (c *recommendationControllerImpl) handleDatasetStatus(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, c.service.DatasetStatus())
}

func (c *recommendationControllerImpl) handleDatasetReload(w http.ResponseWriter, r *http.Request) {
	status, err := c.service.LoadDataset(r.Context())
	if err != nil {
		c.writeServiceError(w, "dataset reload", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, status)
}

func (c *recommendationControllerImpl) handleDatasetClear(w http.ResponseWriter, r *http.Request) {
	c.service.ClearDataset()
	utils.WriteJSON(w, http.StatusOK, c.service.DatasetStatus())
}

func (c *recommendationControllerImpl) handleSpecies(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := parseSpeciesQuery(r)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	page, err := c.service.Species(limit, offset)
	if err != nil {
		c.writeServiceError(w, "list species", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, page)
}

func (c *recommendationControllerImpl) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var req types.RecommendRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := telemetry.Describe(telemetry.Validator().Struct(req)); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	run, err := c.service.Recommend(r.Context(), service.RunRequest{
		Reading: recommend.SensorReading{
			PH:           *req.PH,
			SoilMoisture: *req.SoilMoisture,
			Temperature:  *req.Temperature,
			Location:     req.Location,
		},
		TopN:   req.TopN,
		Source: types.SourceHTTP,
	})
	if err != nil {
		c.writeServiceError(w, "recommend", err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, run)
}

func (c *recommendationControllerImpl) handleListRuns(w http.ResponseWriter, r *http.Request) {
	stationID, page, limit, err := parseRunsQuery(r)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	runs, err := c.service.ListRuns(r.Context(), stationID, page, limit)
	if err != nil {
		c.writeServiceError(w, "list recommendations", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, runs)
}

func (c *recommendationControllerImpl) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		utils.WriteError(w, http.StatusBadRequest, "missing recommendation id")
		return
	}
	run, err := c.service.GetRun(r.Context(), id)
	if err != nil {
		c.writeServiceError(w, "get recommendation", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, run)
}

func (c *recommendationControllerImpl) handleLatestReadings(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		utils.WriteError(w, http.StatusBadRequest, "missing station id")
		return
	}

	limit, err := parseLatestQuery(r)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	latest, err := c.service.LatestReadings(r.Context(), id, limit)
	if err != nil {
		c.writeServiceError(w, "latest readings", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, latest)
}
