package api

import (
	"time"

	"github.com/p4lens/p4lens/pkg/model"
)

// HealthResponse is returned by /health
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Program   string    `json:"program"`
	ContextID string    `json:"context_id"`
	Uptime    string    `json:"uptime"`
}

// ErrorResponse is returned on any error
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// TableListResponse is returned by /api/tables
type TableListResponse struct {
	Tables []string `json:"tables"`
	Count  int      `json:"count"`
}

// KeyResponse is one match key of a table
type KeyResponse struct {
	Field string `json:"field"`
	Match string `json:"match"`
	Mask  string `json:"mask,omitempty"`
}

// TableResponse is the full definition of one table
type TableResponse struct {
	Name          string        `json:"name"`
	Keys          []KeyResponse `json:"keys"`
	Actions       []string      `json:"actions"`
	DefaultAction string        `json:"default_action,omitempty"`
	Size          int           `json:"size"`
	Const         bool          `json:"const,omitempty"`
}

// ParamResponse is one runtime parameter of an action
type ParamResponse struct {
	Name     string `json:"name"`
	Bitwidth int    `json:"bitwidth"`
}

// OpArgResponse is one structured primitive argument
type OpArgResponse struct {
	Kind  string `json:"kind"`
	Field string `json:"field,omitempty"`
	Value string `json:"value,omitempty"`
	Index int    `json:"index,omitempty"`
}

// OpResponse is one primitive operation of an action body
type OpResponse struct {
	Op   string          `json:"op"`
	Args []OpArgResponse `json:"args"`
}

// ActionResponse is the full definition of one action
type ActionResponse struct {
	Name       string          `json:"name"`
	Params     []ParamResponse `json:"params"`
	Primitives []OpResponse    `json:"primitives"`
}

// StatefulResponse is one register/counter/meter array
type StatefulResponse struct {
	Kind     string `json:"kind"`
	Name     string `json:"name"`
	Bitwidth int    `json:"bitwidth"`
	Size     int    `json:"size"`
}

// ZoneResponse is returned by /api/hosts/{id}/zone
type ZoneResponse struct {
	Host string `json:"host"`
	Zone string `json:"zone"`
}

// TableToResponse converts a table definition to its wire shape, flattening
// each key's match kind to its artifact-level name.
func TableToResponse(t *model.Table) *TableResponse {
	keys := make([]KeyResponse, 0, len(t.Keys))
	for _, k := range t.Keys {
		kr := KeyResponse{Field: k.Field, Match: k.Match.Kind().String()}
		if tm, ok := k.Match.(model.TernaryMatch); ok {
			kr.Mask = tm.Mask
		}
		keys = append(keys, kr)
	}
	return &TableResponse{
		Name:          t.Name,
		Keys:          keys,
		Actions:       t.Actions,
		DefaultAction: t.DefaultAction,
		Size:          t.Size,
		Const:         t.Const,
	}
}

// ActionToResponse converts an action definition to its wire shape.
func ActionToResponse(a *model.Action) *ActionResponse {
	params := make([]ParamResponse, 0, len(a.Params))
	for _, p := range a.Params {
		params = append(params, ParamResponse{Name: p.Name, Bitwidth: p.Bitwidth})
	}
	ops := make([]OpResponse, 0, len(a.Primitives))
	for _, op := range a.Primitives {
		args := make([]OpArgResponse, 0, len(op.Args))
		for _, arg := range op.Args {
			args = append(args, OpArgResponse{
				Kind:  arg.Kind,
				Field: arg.Field,
				Value: arg.Value,
				Index: arg.Index,
			})
		}
		ops = append(ops, OpResponse{Op: op.Op, Args: args})
	}
	return &ActionResponse{Name: a.Name, Params: params, Primitives: ops}
}

// StatefulToResponse converts stateful object records to their wire shape,
// naming each kind instead of leaving it as an enum ordinal.
func StatefulToResponse(objs []model.StatefulObject) []StatefulResponse {
	out := make([]StatefulResponse, 0, len(objs))
	for _, o := range objs {
		out = append(out, StatefulResponse{
			Kind:     o.Kind.String(),
			Name:     o.Name,
			Bitwidth: o.Bitwidth,
			Size:     o.Size,
		})
	}
	return out
}
