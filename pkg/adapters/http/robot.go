package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/aretw0/toyrobot/pkg/domain"
	"github.com/aretw0/toyrobot/pkg/session"
	"github.com/oapi-codegen/runtime"
)

const (
	msgSuccess          = "Success"
	msgMoved            = "Moved"
	msgIgnored          = "Ignored"
	msgBadRequest       = "Bad Request"
	msgLocationInvalid  = "Location Parameters invalid"
	msgDirectionInvalid = "Direction parameter invalid"
)

var errNoSession = errors.New("no session")

type messageResponse struct {
	Message string `json:"message"`
}

type outcomeResponse struct {
	Message string       `json:"message"`
	State   domain.State `json:"state"`
}

type reportResponse struct {
	Location  [2]int       `json:"location"`
	Direction string       `json:"direction"`
	State     domain.State `json:"state"`
}

// Place handles POST /place?x=&y=&direction=. A missing direction defaults to EAST.
func (s *Server) Place(w http.ResponseWriter, r *http.Request) {
	var (
		x, y      int
		direction *string
	)
	query := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, true, "x", query, &x); err != nil {
		writeMessage(w, http.StatusBadRequest, msgLocationInvalid)
		return
	}
	if err := runtime.BindQueryParameter("form", true, true, "y", query, &y); err != nil {
		writeMessage(w, http.StatusBadRequest, msgLocationInvalid)
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "direction", query, &direction); err != nil {
		writeMessage(w, http.StatusBadRequest, msgDirectionInvalid)
		return
	}

	facing := domain.East
	if direction != nil {
		var err error
		if facing, err = domain.ParseDirection(*direction); err != nil {
			writeMessage(w, http.StatusBadRequest, msgDirectionInvalid)
			return
		}
	}

	id := s.sessionID(r)
	if id == "" {
		id = session.NewID()
	}

	var before, state domain.State
	err := s.sessions.Start(r.Context(), id, func(robot *domain.Robot) error {
		before = poseState(robot)
		res := s.engine.Apply(r.Context(), id, robot, domain.PlaceCommand(x, y, facing))
		if res.Outcome != domain.OutcomeSuccess {
			return domain.ErrOutOfBounds
		}
		state = domain.StateOf(*res.Pose)
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.publish(id, before, state)
	s.setCookie(w, id)
	writeJSON(w, http.StatusOK, outcomeResponse{Message: msgSuccess, State: state})
}

// Move handles POST /move.
func (s *Server) Move(w http.ResponseWriter, r *http.Request) {
	s.command(w, r, domain.CommandMove)
}

// Left handles POST /left.
func (s *Server) Left(w http.ResponseWriter, r *http.Request) {
	s.command(w, r, domain.CommandLeft)
}

// Right handles POST /right.
func (s *Server) Right(w http.ResponseWriter, r *http.Request) {
	s.command(w, r, domain.CommandRight)
}

func (s *Server) command(w http.ResponseWriter, r *http.Request, cmd domain.CommandType) {
	var (
		res           domain.Result
		id            string
		before, state domain.State
	)
	err := s.withRobot(w, r, func(ctx context.Context, sid string, robot *domain.Robot) error {
		id = sid
		before = poseState(robot)
		res = s.engine.Apply(ctx, id, robot, domain.Command{Type: cmd})
		state = poseState(robot)
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.publish(id, before, state)

	msg := msgSuccess
	switch res.Outcome {
	case domain.OutcomeMoved:
		msg = msgMoved
	case domain.OutcomeIgnored:
		msg = msgIgnored
	}
	writeJSON(w, http.StatusOK, outcomeResponse{Message: msg, State: state})
}

// Report handles GET /report.
func (s *Server) Report(w http.ResponseWriter, r *http.Request) {
	var resp reportResponse
	err := s.withRobot(w, r, func(ctx context.Context, id string, robot *domain.Robot) error {
		res := s.engine.Apply(ctx, id, robot, domain.Command{Type: domain.CommandReport})
		if res.Pose == nil {
			return errNoSession
		}
		resp = reportResponse{
			Location:  [2]int{res.Pose.Position.X, res.Pose.Position.Y},
			Direction: res.Pose.Facing.String(),
			State:     domain.StateOf(*res.Pose),
		}
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// DeleteSession handles DELETE /session.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if id := s.sessionID(r); id != "" {
		if err := s.sessions.Delete(r.Context(), id); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	http.SetCookie(w, &http.Cookie{Name: s.cookie, Value: "", Path: "/", MaxAge: -1})
	writeMessage(w, http.StatusOK, msgSuccess)
}

// withRobot runs fn against the caller's stored robot. Without a stored
// session, the robot is seeded from the compact ?state= parameter and a new
// session is started for it.
func (s *Server) withRobot(w http.ResponseWriter, r *http.Request, fn func(context.Context, string, *domain.Robot) error) error {
	ctx := r.Context()
	id := s.sessionID(r)

	if id != "" {
		err := s.sessions.Execute(ctx, id, func(robot *domain.Robot) error {
			return fn(ctx, id, robot)
		})
		if !errors.Is(err, domain.ErrSessionNotFound) {
			return err
		}
	}

	var raw *string
	if err := runtime.BindQueryParameter("form", true, false, "state", r.URL.Query(), &raw); err != nil || raw == nil {
		return errNoSession
	}
	seed, err := domain.ParseState(*raw)
	if err != nil {
		return err
	}
	pose, err := seed.Pose()
	if err != nil {
		return err
	}

	if id == "" {
		id = session.NewID()
	}
	err = s.sessions.Start(ctx, id, func(robot *domain.Robot) error {
		if !robot.Place(pose.Position, pose.Facing) {
			return domain.ErrOutOfBounds
		}
		return fn(ctx, id, robot)
	})
	if err != nil {
		return err
	}
	s.setCookie(w, id)
	return nil
}

// sessionID returns the caller's session from the cookie. Values that were
// not issued by session.NewID count as no session.
func (s *Server) sessionID(r *http.Request) string {
	c, err := r.Cookie(s.cookie)
	if err != nil {
		return ""
	}
	if !session.ValidID(c.Value) {
		s.logger.Warn("ignoring foreign session cookie", "path", r.URL.Path)
		return ""
	}
	return c.Value
}

// poseState is the robot's current State, or the zero State while unplaced.
func poseState(robot *domain.Robot) domain.State {
	if pose, ok := robot.Report(); ok {
		return domain.StateOf(pose)
	}
	return domain.State{}
}

func (s *Server) setCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// publish sends the pose change to SSE listeners. An empty before state
// (unplaced robot) publishes the full pose.
func (s *Server) publish(id string, before, after domain.State) {
	old := &before
	if before.Direction == "" {
		old = nil
	}
	s.streams.Publish(domain.Diff(id, old, &after))
}
