package api

import (
	"net/http"
	"strings"
)

func (s *Server) handleTables(w http.ResponseWriter, r *http.Request) {
	tables := s.engine.ListTables()
	s.respondJSON(w, http.StatusOK, TableListResponse{Tables: tables, Count: len(tables)})
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	name, ok := s.pathSuffix(w, r, "/api/tables/")
	if !ok {
		return
	}
	t, err := s.engine.GetTable(name)
	if err != nil {
		s.respondQueryError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, TableToResponse(t))
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	name, ok := s.pathSuffix(w, r, "/api/actions/")
	if !ok {
		return
	}
	a, err := s.engine.GetAction(name)
	if err != nil {
		s.respondQueryError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, ActionToResponse(a))
}

func (s *Server) handleJumpDict(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.engine.JumpDict())
}

func (s *Server) handleRankedTables(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.engine.RankedTables())
}

func (s *Server) handleConstraints(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("target")
	if target == "" {
		s.respondError(w, http.StatusBadRequest, "target query parameter is required")
		return
	}
	res, err := s.engine.PathConstraints(target)
	if err != nil {
		s.respondQueryError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, res)
}

func (s *Server) handleStateful(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, StatefulToResponse(s.engine.StatefulObjects()))
}

func (s *Server) handleHeaders(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.engine.HeaderDefinitions())
}

func (s *Server) handleHeaderBits(w http.ResponseWriter, r *http.Request) {
	field := r.URL.Query().Get("field")
	if field == "" {
		s.respondError(w, http.StatusBadRequest, "field query parameter is required")
		return
	}
	f, err := s.engine.HeaderBits(field)
	if err != nil {
		s.respondQueryError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, f)
}

func (s *Server) handleParserPaths(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.engine.ParserPaths())
}

func (s *Server) handleParserState(w http.ResponseWriter, r *http.Request) {
	name, ok := s.pathSuffix(w, r, "/api/parser/states/")
	if !ok {
		return
	}
	st, err := s.engine.ParserTransitions(name)
	if err != nil {
		s.respondQueryError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{
		"state":         st.Name,
		"extracts":      st.Extracts,
		"select_fields": st.SelectFields,
		"cases":         st.Cases,
	})
}

func (s *Server) handleHosts(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.engine.TopologyHosts())
}

func (s *Server) handleHost(w http.ResponseWriter, r *http.Request) {
	rest, ok := s.pathSuffix(w, r, "/api/hosts/")
	if !ok {
		return
	}

	// /api/hosts/{id}/zone answers the zone classification.
	if id, found := strings.CutSuffix(rest, "/zone"); found {
		zone, err := s.engine.ClassifyHostZone(id)
		if err != nil {
			s.respondQueryError(w, err)
			return
		}
		s.respondJSON(w, http.StatusOK, ZoneResponse{Host: id, Zone: zone})
		return
	}

	h, err := s.engine.HostInfo(rest)
	if err != nil {
		s.respondQueryError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, h)
}

func (s *Server) handleLinks(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.engine.TopologyLinks())
}

func (s *Server) handleHostPair(w http.ResponseWriter, r *http.Request) {
	a, b, err := s.engine.DefaultHostPair()
	if err != nil {
		s.respondQueryError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"a": a, "b": b})
}

// pathSuffix extracts the non-empty remainder of the URL path after prefix.
func (s *Server) pathSuffix(w http.ResponseWriter, r *http.Request, prefix string) (string, bool) {
	rest := strings.TrimPrefix(r.URL.Path, prefix)
	rest = strings.TrimSuffix(rest, "/")
	if rest == "" || rest == r.URL.Path {
		s.respondError(w, http.StatusBadRequest, "invalid path")
		return "", false
	}
	return rest, true
}
