package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/graphql-go/graphql"

	"github.com/p4lens/p4lens/pkg/cfg"
	"github.com/p4lens/p4lens/pkg/engine"
	"github.com/p4lens/p4lens/pkg/model"
	"github.com/p4lens/p4lens/pkg/parser"
	"github.com/p4lens/p4lens/pkg/topology"
)

// GraphQLRequest represents a GraphQL HTTP request
type GraphQLRequest struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables,omitempty"`
	OperationName string         `json:"operationName,omitempty"`
}

// GraphQLResponse represents a GraphQL HTTP response
type GraphQLResponse struct {
	Data   any            `json:"data,omitempty"`
	Errors []GraphQLError `json:"errors,omitempty"`
}

// GraphQLError represents a GraphQL error
type GraphQLError struct {
	Message string `json:"message"`
}

// GraphQLHandler handles GraphQL HTTP requests
type GraphQLHandler struct {
	schema graphql.Schema
}

// NewGraphQLHandler creates a new GraphQL HTTP handler
func NewGraphQLHandler(schema graphql.Schema) *GraphQLHandler {
	return &GraphQLHandler{schema: schema}
}

// ServeHTTP handles HTTP requests for GraphQL queries. Only POST is allowed;
// the schema itself carries no mutations, so the endpoint is read-only.
func (h *GraphQLHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req GraphQLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result := graphql.Do(graphql.Params{
		Schema:         h.schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
	})

	response := GraphQLResponse{Data: result.Data}
	if result.HasErrors() {
		response.Errors = make([]GraphQLError, len(result.Errors))
		for i, err := range result.Errors {
			response.Errors[i] = GraphQLError{Message: err.Message}
		}
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// GenerateSchema builds the read-only GraphQL schema over the engine facade.
func GenerateSchema(e *engine.Engine) (graphql.Schema, error) {
	keyType := graphql.NewObject(graphql.ObjectConfig{
		Name: "MatchKey",
		Fields: graphql.Fields{
			"field": stringField(func(src any) any { return src.(KeyResponse).Field }),
			"match": stringField(func(src any) any { return src.(KeyResponse).Match }),
			"mask":  stringField(func(src any) any { return src.(KeyResponse).Mask }),
		},
	})

	tableType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Table",
		Fields: graphql.Fields{
			"name": stringField(func(src any) any { return src.(*TableResponse).Name }),
			"keys": &graphql.Field{
				Type: graphql.NewList(keyType),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(*TableResponse).Keys, nil
				},
			},
			"actions": &graphql.Field{
				Type: graphql.NewList(graphql.String),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(*TableResponse).Actions, nil
				},
			},
			"defaultAction": stringField(func(src any) any { return src.(*TableResponse).DefaultAction }),
			"size": &graphql.Field{
				Type: graphql.Int,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(*TableResponse).Size, nil
				},
			},
		},
	})

	rankedTableType := graphql.NewObject(graphql.ObjectConfig{
		Name: "RankedTable",
		Fields: graphql.Fields{
			"table": stringField(func(src any) any { return src.(cfg.RankedTable).Table }),
			"rank": &graphql.Field{
				Type: graphql.Int,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(cfg.RankedTable).Rank, nil
				},
			},
		},
	})

	constraintType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Constraint",
		Fields: graphql.Fields{
			"field":    stringField(func(src any) any { return src.(model.Constraint).Field }),
			"relation": stringField(func(src any) any { return src.(model.Constraint).Relation.String() }),
			"values": &graphql.Field{
				Type: graphql.NewList(graphql.String),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(model.Constraint).Values, nil
				},
			},
			"mask": stringField(func(src any) any { return src.(model.Constraint).Mask }),
			"symbolic": &graphql.Field{
				Type: graphql.Boolean,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(model.Constraint).Symbolic, nil
				},
			},
		},
	})

	stepType := graphql.NewObject(graphql.ObjectConfig{
		Name: "PathStep",
		Fields: graphql.Fields{
			"node":    stringField(func(src any) any { return src.(model.PathStep).Node }),
			"outcome": stringField(func(src any) any { return src.(model.PathStep).Outcome }),
			"constraints": &graphql.Field{
				Type: graphql.NewList(constraintType),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(model.PathStep).Constraints, nil
				},
			},
		},
	})

	pathSetType := graphql.NewObject(graphql.ObjectConfig{
		Name: "PathConstraintSet",
		Fields: graphql.Fields{
			"steps": &graphql.Field{
				Type: graphql.NewList(stepType),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(model.PathConstraintSet).Steps, nil
				},
			},
		},
	})

	constraintResultType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ConstraintResult",
		Fields: graphql.Fields{
			"target": stringField(func(src any) any { return src.(*model.ConstraintResult).Target }),
			"unreachable": &graphql.Field{
				Type: graphql.Boolean,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(*model.ConstraintResult).Unreachable, nil
				},
			},
			"paths": &graphql.Field{
				Type: graphql.NewList(pathSetType),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(*model.ConstraintResult).Paths, nil
				},
			},
		},
	})

	hopType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ParserHop",
		Fields: graphql.Fields{
			"state": stringField(func(src any) any { return src.(parser.Hop).State }),
			"value": stringField(func(src any) any { return src.(parser.Hop).Case.Value }),
			"next":  stringField(func(src any) any { return src.(parser.Hop).Case.Next }),
		},
	})

	parserPathType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ParserPath",
		Fields: graphql.Fields{
			"terminal": stringField(func(src any) any { return src.(parser.Path).Terminal }),
			"headers": &graphql.Field{
				Type: graphql.NewList(graphql.String),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(parser.Path).Headers, nil
				},
			},
			"hops": &graphql.Field{
				Type: graphql.NewList(hopType),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(parser.Path).Hops, nil
				},
			},
		},
	})

	hostType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Host",
		Fields: graphql.Fields{
			"id":     stringField(func(src any) any { return src.(*topology.Host).ID }),
			"ip":     stringField(func(src any) any { return src.(*topology.Host).IP }),
			"mac":    stringField(func(src any) any { return src.(*topology.Host).MAC }),
			"zone":   stringField(func(src any) any { return src.(*topology.Host).Zone }),
			"switch": stringField(func(src any) any { return src.(*topology.Host).Switch }),
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"health": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return "ok", nil
				},
			},
			"program": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return e.ProgramName(), nil
				},
			},
			"tables": &graphql.Field{
				Type: graphql.NewList(graphql.String),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return e.ListTables(), nil
				},
			},
			"table": &graphql.Field{
				Type: tableType,
				Args: graphql.FieldConfigArgument{
					"name": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					name, ok := p.Args["name"].(string)
					if !ok {
						return nil, fmt.Errorf("name argument is required")
					}
					t, err := e.GetTable(name)
					if err != nil {
						return nil, err
					}
					return TableToResponse(t), nil
				},
			},
			"rankedTables": &graphql.Field{
				Type: graphql.NewList(rankedTableType),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return e.RankedTables(), nil
				},
			},
			"constraints": &graphql.Field{
				Type: constraintResultType,
				Args: graphql.FieldConfigArgument{
					"target": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					target, ok := p.Args["target"].(string)
					if !ok {
						return nil, fmt.Errorf("target argument is required")
					}
					return e.PathConstraints(target)
				},
			},
			"parserPaths": &graphql.Field{
				Type: graphql.NewList(parserPathType),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return e.ParserPaths(), nil
				},
			},
			"hosts": &graphql.Field{
				Type: graphql.NewList(hostType),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return e.TopologyHosts(), nil
				},
			},
			"host": &graphql.Field{
				Type: hostType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					id, ok := p.Args["id"].(string)
					if !ok {
						return nil, fmt.Errorf("id argument is required")
					}
					return e.HostInfo(id)
				},
			},
			"defaultHostPair": &graphql.Field{
				Type: graphql.NewList(hostType),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					a, b, err := e.DefaultHostPair()
					if err != nil {
						return nil, err
					}
					return []*topology.Host{a, b}, nil
				},
			},
		},
	})

	schema, err := graphql.NewSchema(graphql.SchemaConfig{Query: queryType})
	if err != nil {
		return graphql.Schema{}, fmt.Errorf("failed to create schema: %w", err)
	}
	return schema, nil
}

// stringField builds a String field resolved by a source accessor.
func stringField(get func(src any) any) *graphql.Field {
	return &graphql.Field{
		Type: graphql.String,
		Resolve: func(p graphql.ResolveParams) (any, error) {
			return get(p.Source), nil
		},
	}
}
