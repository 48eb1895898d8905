package dashboard

import (
	"context"
	"fmt"
)

type Operation string

const (
	CreateOperation Operation = "create"
	DeleteOperation Operation = "delete"
)

// MutationResult is the outcome of a create or delete request.
type MutationResult struct {
	Operation  Operation
	Collection Collection
	ID         int64
	Err        error
}

// Create coerces the draft owned by collection and submits it. Coercion errors are
// returned without a request being made.
func (s *Shell) Create(ctx context.Context, backend Backend, collection Collection) MutationResult {
	res := MutationResult{Operation: CreateOperation, Collection: collection}

	switch collection {
	case ProgramsCollection:
		req, err := s.ProgramForm.ToCreate()
		if err != nil {
			res.Err = err
			return res
		}
		program, err := backend.CreateProgram(ctx, req)
		res.ID, res.Err = program.ID, err
	case TargetsCollection:
		req, err := s.TargetForm.ToCreate()
		if err != nil {
			res.Err = err
			return res
		}
		target, err := backend.CreateTarget(ctx, req)
		res.ID, res.Err = target.ID, err
	case VulnerabilitiesCollection:
		req, err := s.VulnForm.ToCreate()
		if err != nil {
			res.Err = err
			return res
		}
		vuln, err := backend.CreateVulnerability(ctx, req)
		res.ID, res.Err = vuln.ID, err
	default:
		res.Err = fmt.Errorf("Cannot create %s", collection)
	}

	return res
}

func Delete(ctx context.Context, backend Backend, collection Collection, id int64) MutationResult {
	res := MutationResult{Operation: DeleteOperation, Collection: collection, ID: id}

	switch collection {
	case ProgramsCollection:
		res.Err = backend.DeleteProgram(ctx, id)
	case TargetsCollection:
		res.Err = backend.DeleteTarget(ctx, id)
	case VulnerabilitiesCollection:
		res.Err = backend.DeleteVulnerability(ctx, id)
	default:
		res.Err = fmt.Errorf("Cannot delete %s", collection)
	}

	return res
}

// ApplyMutation updates the shell after a create or delete and returns the collections
// that must be re-fetched. A failed request leaves drafts and form visibility untouched.
func (s *Shell) ApplyMutation(res MutationResult) []Collection {
	if res.Err != nil {
		s.log.Error().
			Err(res.Err).
			Str("operation", string(res.Operation)).
			Str("collection", res.Collection.String()).
			Msgf("Error on %s %s", res.Operation, res.Collection)
		s.LastError = fmt.Errorf("Failed to %s %s: %w", res.Operation, res.Collection, res.Err)
		return nil
	}

	s.LastError = nil

	if res.Operation == CreateOperation {
		switch res.Collection {
		case ProgramsCollection:
			s.ProgramForm.Reset()
			s.ProgramForm.Visible = false
		case TargetsCollection:
			s.TargetForm.Reset()
			s.TargetForm.Visible = false
		case VulnerabilitiesCollection:
			s.VulnForm.Reset()
			s.VulnForm.Visible = false
		}
	}

	return Refetches(res.Operation, res.Collection)
}

// Refetches lists the collections a successful mutation invalidates. Deleting a parent
// removes its children on the server, so their collections are re-fetched too.
func Refetches(op Operation, collection Collection) []Collection {
	ret := []Collection{collection}
	if op == DeleteOperation {
		switch collection {
		case ProgramsCollection:
			ret = append(ret, TargetsCollection, VulnerabilitiesCollection)
		case TargetsCollection:
			ret = append(ret, VulnerabilitiesCollection)
		}
	}

	return append(ret, StatsCollection)
}

// Submit runs a create end to end: request, draft reset and re-fetch.
func (s *Shell) Submit(ctx context.Context, backend Backend, collection Collection) error {
	res := s.Create(ctx, backend, collection)
	refetch := s.ApplyMutation(res)
	if res.Err != nil {
		return res.Err
	}

	s.Load(ctx, backend, refetch...)
	return nil
}

// Remove deletes id from collection and re-fetches on success.
func (s *Shell) Remove(ctx context.Context, backend Backend, collection Collection, id int64) error {
	res := Delete(ctx, backend, collection, id)
	refetch := s.ApplyMutation(res)
	if res.Err != nil {
		return res.Err
	}

	s.Load(ctx, backend, refetch...)
	return nil
}
