package actions

import (
	"context"
	"encoding/json"

	"golang.org/x/sync/errgroup"
)

// Declaration is one catalog entry handed to the planner.
type Declaration struct {
	Name        string
	Description string
	Parameters  json.RawMessage
}

// Registry holds the closed set of executors for a process. It is built
// once at startup and read-only afterwards, so no locking.
type Registry struct {
	order     []string
	executors map[string]Executor
}

func NewRegistry() *Registry {
	return &Registry{executors: make(map[string]Executor)}
}

func (r *Registry) Register(e Executor) {
	name := e.Name()
	if _, exists := r.executors[name]; !exists {
		r.order = append(r.order, name)
	}
	r.executors[name] = e
}

func (r *Registry) Get(name string) (Executor, bool) {
	e, ok := r.executors[name]
	return e, ok
}

func (r *Registry) Catalog() []Declaration {
	catalog := make([]Declaration, 0, len(r.order))
	for _, name := range r.order {
		e := r.executors[name]
		catalog = append(catalog, Declaration{
			Name:        e.Name(),
			Description: e.Description(),
			Parameters:  e.ParametersSchema(),
		})
	}
	return catalog
}

// Dispatch executes the requests concurrently against their providers.
// Results land at the index of the request that produced them, so the
// slice handed to synthesis is always in planner emission order no matter
// how execution interleaved. A failed action never aborts its siblings.
func (r *Registry) Dispatch(ctx context.Context, inv Invocation, requests []Request) []Result {
	results := make([]Result, len(requests))
	group, groupCtx := errgroup.WithContext(ctx)
	for index, request := range requests {
		index, request := index, request
		group.Go(func() error {
			executor, ok := r.Get(request.Name)
			if !ok {
				results[index] = failure(request.Name, ReasonUnknownAction)
				return nil
			}
			results[index] = executor.Execute(groupCtx, inv, request.Args)
			return nil
		})
	}
	_ = group.Wait() // workers only report through results
	return results
}
