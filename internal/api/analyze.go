package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/banshee-data/pitch.report/internal/db"
	"github.com/banshee-data/pitch.report/internal/intensity"
	"github.com/banshee-data/pitch.report/internal/pipeline"
	"github.com/banshee-data/pitch.report/internal/possession"
	"github.com/banshee-data/pitch.report/internal/tracking"
	"github.com/banshee-data/pitch.report/internal/units"
)

// positionPayload is one tracked location in a request body. The height
// component is optional; most providers supply it for the ball only.
type positionPayload struct {
	X float64  `json:"x"`
	Y float64  `json:"y"`
	Z *float64 `json:"z,omitempty"`
}

type framePayload struct {
	FrameID   int64                      `json:"frame_id"`
	PeriodID  int                        `json:"period_id"`
	Timestamp float64                    `json:"timestamp"`
	BallState string                     `json:"ball_state"`
	Ball      *positionPayload           `json:"ball,omitempty"`
	Entities  map[string]positionPayload `json:"entities"`
}

type playerPayload struct {
	ID       int64  `json:"id"`
	Name     string `json:"name,omitempty"`
	JerseyNo int    `json:"jersey_no,omitempty"`
	TeamID   int64  `json:"team_id,omitempty"`
	TeamName string `json:"team_name,omitempty"`
	Position string `json:"position,omitempty"`
}

type analyzeRequest struct {
	Source string          `json:"source"`
	Frames []framePayload  `json:"frames"`
	Roster []playerPayload `json:"roster,omitempty"`
}

type analyzeResponse struct {
	Run    db.Run           `json:"run"`
	Result *pipeline.Result `json:"result"`
}

// maxAnalyzeBody caps request bodies; a full match at 25 Hz fits well
// inside this.
const maxAnalyzeBody = 512 << 20 // 512MB

func (p positionPayload) toTracking() tracking.Position {
	pos := tracking.Position{X: p.X, Y: p.Y}
	if p.Z != nil {
		pos.Z = *p.Z
		pos.HasZ = true
	}
	return pos
}

func (req *analyzeRequest) toInput() (pipeline.Input, error) {
	frames := make([]tracking.Frame, 0, len(req.Frames))
	for _, fp := range req.Frames {
		state := tracking.BallState(fp.BallState)
		if state != tracking.BallAlive && state != tracking.BallDead {
			return pipeline.Input{}, fmt.Errorf("frame %d: invalid ball_state %q", fp.FrameID, fp.BallState)
		}

		f := tracking.Frame{
			FrameID:   fp.FrameID,
			PeriodID:  fp.PeriodID,
			Timestamp: fp.Timestamp,
			BallState: state,
			Entities:  make(map[int64]tracking.Position, len(fp.Entities)),
		}
		if fp.Ball != nil {
			pos := fp.Ball.toTracking()
			f.Ball = &pos
		}
		for key, pp := range fp.Entities {
			id, err := strconv.ParseInt(key, 10, 64)
			if err != nil {
				return pipeline.Input{}, fmt.Errorf("frame %d: invalid entity id %q", fp.FrameID, key)
			}
			f.Entities[id] = pp.toTracking()
		}
		frames = append(frames, f)
	}

	var roster *tracking.Roster
	if len(req.Roster) > 0 {
		players := make([]tracking.Player, 0, len(req.Roster))
		for _, pp := range req.Roster {
			players = append(players, tracking.Player{
				ID:       pp.ID,
				Name:     pp.Name,
				JerseyNo: pp.JerseyNo,
				TeamID:   pp.TeamID,
				TeamName: pp.TeamName,
				Position: pp.Position,
			})
		}
		roster = tracking.NewRoster(players)
	}

	return pipeline.Input{Source: req.Source, Frames: frames, Roster: roster}, nil
}

// createRun ingests a tracking feed, runs the analysis pipeline over it,
// and persists the derived metrics under a fresh run id.
func (s *Server) createRun(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxAnalyzeBody)

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if len(req.Frames) == 0 {
		s.writeJSONError(w, http.StatusBadRequest, "no frames provided")
		return
	}

	in, err := req.toInput()
	if err != nil {
		s.writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := pipeline.Run(in, s.cfg)
	if err != nil {
		s.writeJSONError(w, http.StatusUnprocessableEntity, fmt.Sprintf("analysis failed: %v", err))
		return
	}

	runID := db.NewRunID()
	if err := s.db.CreateRun(runID, result.Source, result.FrameCount); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to store run: %v", err))
		return
	}
	if err := s.db.SavePlayerMetrics(runID, result.Players); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to store player metrics: %v", err))
		return
	}
	if err := s.db.SavePossessionShares(runID, result.Shares); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to store possession shares: %v", err))
		return
	}

	run, err := s.db.GetRun(runID)
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to load stored run: %v", err))
		return
	}

	s.writeJSONStatus(w, http.StatusCreated, analyzeResponse{Run: *run, Result: result})
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.db.ListRuns()
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to list runs: %v", err))
		return
	}
	if runs == nil {
		runs = []db.Run{}
	}
	s.writeJSON(w, runs)
}

// lookupRun resolves the {id} path value, writing a 404 when no such run
// exists. The boolean is false when a response has already been written.
func (s *Server) lookupRun(w http.ResponseWriter, r *http.Request) (*db.Run, bool) {
	run, err := s.db.GetRun(r.PathValue("id"))
	if errors.Is(err, db.ErrRunNotFound) {
		s.writeJSONError(w, http.StatusNotFound, "run not found")
		return nil, false
	}
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to load run: %v", err))
		return nil, false
	}
	return run, true
}

func (s *Server) showRun(w http.ResponseWriter, r *http.Request) {
	run, ok := s.lookupRun(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, run)
}

func (s *Server) showPlayerMetrics(w http.ResponseWriter, r *http.Request) {
	run, ok := s.lookupRun(w, r)
	if !ok {
		return
	}

	targetUnits := r.URL.Query().Get("units")
	if targetUnits == "" {
		targetUnits = units.KMPH
	}
	if !units.IsValid(targetUnits) {
		s.writeJSONError(w, http.StatusBadRequest,
			fmt.Sprintf("invalid units %q, valid units are: %s", targetUnits, units.GetValidUnitsString()))
		return
	}

	metrics, err := s.db.PlayerMetricsForRun(run.RunID)
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to load player metrics: %v", err))
		return
	}
	if metrics == nil {
		metrics = []intensity.PlayerMetrics{}
	}

	if targetUnits != units.KMPH && targetUnits != units.KPH {
		for i := range metrics {
			metrics[i] = convertPlayerSpeeds(metrics[i], targetUnits)
		}
	}

	s.writeJSON(w, metrics)
}

func (s *Server) showSprints(w http.ResponseWriter, r *http.Request) {
	run, ok := s.lookupRun(w, r)
	if !ok {
		return
	}
	sprints, err := s.db.SprintsForRun(run.RunID)
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to load sprints: %v", err))
		return
	}
	s.writeJSON(w, sprints)
}

func (s *Server) showPossession(w http.ResponseWriter, r *http.Request) {
	run, ok := s.lookupRun(w, r)
	if !ok {
		return
	}
	shares, err := s.db.PossessionForRun(run.RunID)
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to load possession shares: %v", err))
		return
	}
	if shares == nil {
		shares = []possession.PlayerShare{}
	}
	s.writeJSON(w, shares)
}
